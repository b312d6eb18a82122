package lbank

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matrix-911/Airbitrage/internal/apperror"
	"github.com/matrix-911/Airbitrage/internal/logger"
)

const (
	// WSURL is LBank's public WebSocket v2 endpoint.
	WSURL = "wss://www.lbkex.net/ws/V2/"

	depth = "1"

	pingInterval = 20 * time.Second
	pongWait     = 2 * pingInterval
)

// client is a single LBank session carrying one batch of symbols. It
// retains the live connection and a write mutex so handleMessage can
// reply to the server's application-level ping from the read loop while
// pingLoop writes transport-level pings concurrently.
type client struct {
	wsURL   string
	symbols []string
	logger  logger.LoggerInterface
	onDepth func(pair string, body depthBody)

	writeMu sync.Mutex
	conn    *websocket.Conn
}

func newClient(wsURL string, symbols []string, log logger.LoggerInterface, onDepth func(string, depthBody)) *client {
	return &client{wsURL: wsURL, symbols: symbols, logger: log, onDepth: onDepth}
}

func (c *client) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	conn, _, err := dialer.DialContext(ctx, c.wsURL, nil)
	if err != nil {
		return apperror.New(apperror.CodeWebSocketConnectionError,
			apperror.WithCause(err), apperror.WithContext("failed to dial LBank"))
	}
	c.conn = conn
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for _, sym := range c.symbols {
		req := subscribeRequest{Action: "subscribe", Subscribe: "depth", Depth: depth, Pair: sym}
		if err := c.writeJSON(req); err != nil {
			return apperror.New(apperror.CodeWebSocketSendError,
				apperror.WithCause(err), apperror.WithContext("failed to subscribe "+sym))
		}
	}

	c.logger.Info(ctx, "lbank session subscribed", "symbols", c.symbols)

	done := make(chan struct{})
	go c.pingLoop(ctx, done)
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	return c.readLoop(ctx)
}

func (c *client) writeJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *client) pingLoop(ctx context.Context, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.writeMu.Lock()
			err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		case <-done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (c *client) readLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return apperror.New(apperror.CodeWebSocketConnectionError,
				apperror.WithCause(err), apperror.WithContext("lbank read failed"))
		}
		c.handleMessage(ctx, data)
	}
}

func (c *client) handleMessage(ctx context.Context, data []byte) {
	var ping pingFrame
	if err := json.Unmarshal(data, &ping); err == nil && ping.Action == "ping" {
		pong := pongFrame{Action: "pong", Pong: ping.Ping}
		if err := c.writeJSON(pong); err != nil {
			c.logger.Warn(ctx, "lbank pong failed", "error", err)
		}
		return
	}

	var push depthPush
	if err := json.Unmarshal(data, &push); err != nil {
		return
	}
	if push.Type != "depth" || push.Pair == "" {
		return
	}
	c.onDepth(push.Pair, push.Depth)
}
