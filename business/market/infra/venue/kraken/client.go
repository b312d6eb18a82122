package kraken

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
	// WSURL is Kraken's public spot WebSocket v1 endpoint.
	WSURL = "wss://ws.kraken.com/"

	bookDepth = 10
)

// client is a single Kraken session carrying one batch of wsnames. It
// tracks the channelID -> wsname mapping Kraken assigns per
// subscription ack, since data frames are tagged only by channel ID.
type client struct {
	wsURL    string
	wsnames  []string
	logger   logger.LoggerInterface
	onBook   func(pair string, payload bookPayload)

	mu       sync.Mutex
	chanPair map[int64]string
}

func newClient(wsURL string, wsnames []string, log logger.LoggerInterface, onBook func(string, bookPayload)) *client {
	return &client{
		wsURL:    wsURL,
		wsnames:  wsnames,
		logger:   log,
		onBook:   onBook,
		chanPair: make(map[int64]string),
	}
}

const (
	pingInterval = 20 * time.Second
	pongWait     = 2 * pingInterval
)

func (c *client) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	conn, _, err := dialer.DialContext(ctx, c.wsURL, nil)
	if err != nil {
		return apperror.New(apperror.CodeWebSocketConnectionError,
			apperror.WithCause(err), apperror.WithContext("failed to dial Kraken"))
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	sub := subscribeRequest{
		Event:        "subscribe",
		Pair:         c.wsnames,
		Subscription: bookSubscriptionReq{Name: "book", Depth: bookDepth},
	}
	if err := conn.WriteJSON(sub); err != nil {
		return apperror.New(apperror.CodeWebSocketSendError,
			apperror.WithCause(err), apperror.WithContext("failed to subscribe"))
	}

	c.logger.Info(ctx, "kraken session subscribed", "pairs", c.wsnames)

	done := make(chan struct{})
	go c.pingLoop(ctx, conn, done)
	defer close(done)

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
				apperror.WithCause(err), apperror.WithContext("kraken read failed"))
		}
		c.handleMessage(ctx, data)
	}
}

func (c *client) handleMessage(ctx context.Context, data []byte) {
	trimmed := trimLeadingSpace(data)
	if len(trimmed) == 0 {
		return
	}

	switch trimmed[0] {
	case '{':
		c.handleControlMessage(ctx, trimmed)
	case '[':
		c.handleDataMessage(ctx, trimmed)
	}
}

func (c *client) handleControlMessage(ctx context.Context, data []byte) {
	var status subscriptionStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return
	}
	if status.Event != "subscriptionStatus" || status.Status != "subscribed" {
		return
	}
	if len(status.ChannelName) < 4 || status.ChannelName[:4] != "book" {
		return
	}
	if status.Pair == "" {
		return
	}

	// chanPair keys by the channelID Kraken tags every data frame with,
	// and stores the wsname (not the human pair) since that's what
	// Provider.handleBookPush looks books up by.
	c.mu.Lock()
	c.chanPair[status.ChannelID] = status.Pair
	c.mu.Unlock()
}

func (c *client) handleDataMessage(ctx context.Context, data []byte) {
	var frame []json.RawMessage
	if err := json.Unmarshal(data, &frame); err != nil || len(frame) < 2 {
		return
	}

	var channelID int64
	if err := json.Unmarshal(frame[0], &channelID); err != nil {
		return
	}

	c.mu.Lock()
	wsname, ok := c.chanPair[channelID]
	c.mu.Unlock()
	if !ok {
		return
	}

	var payload bookPayload
	if err := json.Unmarshal(frame[1], &payload); err != nil {
		// Heartbeats and other non-book payloads don't parse as a
		// bookPayload; that's expected, not an error worth logging.
		return
	}
	if !payload.isSnapshot() && !payload.isUpdate() {
		return
	}

	c.onBook(wsname, payload)
}

func trimLeadingSpace(b []byte) []byte {
	i := 0
	for i < len(b) && (b[i] == ' ' || b[i] == '\n' || b[i] == '\t' || b[i] == '\r') {
		i++
	}
	return b[i:]
}
