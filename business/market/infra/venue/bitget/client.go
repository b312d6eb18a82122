package bitget

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matrix-911/Airbitrage/internal/apperror"
	"github.com/matrix-911/Airbitrage/internal/logger"
)

const (
	// WSURL is Bitget's public spot/futures WebSocket endpoint.
	WSURL = "wss://ws.bitget.com/v2/ws/public"

	channel = "books"
)

// subscribeRequest is the op/args control frame Bitget expects on
// connect; it carries one arg per instrument.
type subscribeRequest struct {
	Op   string  `json:"op"`
	Args []wsArg `json:"args"`
}

// client is a single Bitget public-channel session carrying one batch of
// instruments (spec.md §4.C: "each handling at most SUB_BATCH pairs").
type client struct {
	wsURL   string
	instIDs []string
	logger  logger.LoggerInterface
	onBook  func(instID string, action string, payload wsBookPayload)
}

func newClient(wsURL string, instIDs []string, log logger.LoggerInterface, onBook func(string, string, wsBookPayload)) *client {
	return &client{wsURL: wsURL, instIDs: instIDs, logger: log, onBook: onBook}
}

const (
	pingInterval = 20 * time.Second
	pongWait     = 2 * pingInterval
)

// connect opens one session, subscribes every instrument in the batch and
// blocks until ctx is cancelled or the session ends.
func (c *client) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	conn, _, err := dialer.DialContext(ctx, c.wsURL, nil)
	if err != nil {
		return apperror.New(apperror.CodeWebSocketConnectionError,
			apperror.WithCause(err), apperror.WithContext("failed to dial Bitget"))
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	args := make([]wsArg, 0, len(c.instIDs))
	for _, id := range c.instIDs {
		args = append(args, wsArg{InstType: "SPOT", Channel: channel, InstID: id})
	}
	if err := conn.WriteJSON(subscribeRequest{Op: "subscribe", Args: args}); err != nil {
		return apperror.New(apperror.CodeWebSocketSendError,
			apperror.WithCause(err), apperror.WithContext("failed to subscribe"))
	}

	c.logger.Info(ctx, "bitget session subscribed", "instruments", c.instIDs)

	done := make(chan struct{})
	go c.pingLoop(ctx, conn, done)
	defer close(done)

	// ReadMessage blocks until a frame arrives or the deadline trips;
	// closing the connection on ctx cancellation unblocks it promptly
	// instead of waiting out the read deadline.
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	return c.readLoop(ctx, conn)
}

func (c *client) pingLoop(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case <-done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (c *client) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			return apperror.New(apperror.CodeWebSocketConnectionError,
				apperror.WithCause(err), apperror.WithContext("bitget read failed"))
		}
		c.handleMessage(ctx, data)
	}
}

func (c *client) handleMessage(ctx context.Context, data []byte) {
	var env wsEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return
	}

	if env.Event == "subscribe" {
		return
	}
	if env.Event == "error" {
		c.logger.Warn(ctx, "bitget error frame", "data", string(data))
		return
	}
	if env.Action == "" || env.Arg.InstID == "" || len(env.Data) == 0 {
		return
	}

	for _, payload := range env.Data {
		c.onBook(env.Arg.InstID, env.Action, payload)
	}
}
