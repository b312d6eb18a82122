package binance

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/matrix-911/Airbitrage/internal/apperror"
	"github.com/matrix-911/Airbitrage/internal/logger"
	"github.com/matrix-911/Airbitrage/internal/wsconn"
)

const (
	tracerName = "binance"

	// BaseWSURL is Binance's default combined-streams endpoint.
	BaseWSURL = "wss://stream.binance.com:9443"

	// keepAliveInterval mirrors Binance's requirement of a message at
	// least every 3 minutes to keep the combined stream alive.
	keepAliveInterval = 2 * time.Minute
)

// wsRequest is a SUBSCRIBE/UNSUBSCRIBE/LIST_SUBSCRIPTIONS control frame.
type wsRequest struct {
	Method string   `json:"method"`
	Params []string `json:"params,omitempty"`
	ID     int64    `json:"id"`
}

// clientConfig configures a single combined-streams session.
type clientConfig struct {
	BaseURL      string
	Symbols      []string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// client is a Binance combined-streams WebSocket session.
type client struct {
	config clientConfig
	logger logger.LoggerInterface

	conn   *wsconn.Client
	connMu sync.RWMutex

	onBookTicker func(*bookTickerEvent)
	handlersMu   sync.RWMutex

	stopKeepAlive chan struct{}
	nextID        atomic.Int64
	running       atomic.Bool

	tracer trace.Tracer
}

func newClient(cfg clientConfig, log logger.LoggerInterface) *client {
	return &client{
		config:        cfg,
		logger:        log,
		stopKeepAlive: make(chan struct{}),
		tracer:        otel.Tracer(tracerName),
	}
}

func (c *client) onBookTickerEvent(handler func(*bookTickerEvent)) {
	c.handlersMu.Lock()
	c.onBookTicker = handler
	c.handlersMu.Unlock()
}

// connect establishes the combined stream for the configured symbols and
// blocks until ctx is cancelled or the underlying session ends.
func (c *client) connect(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "binance.connect",
		trace.WithAttributes(attribute.StringSlice("symbols", c.config.Symbols)))
	defer span.End()

	wsURL, err := c.buildStreamURL()
	if err != nil {
		return err
	}

	wsCfg := wsconn.DefaultConfig(wsURL, "binance")
	wsCfg.ReadTimeout = c.config.ReadTimeout
	wsCfg.WriteTimeout = c.config.WriteTimeout

	conn, err := wsconn.New(wsCfg)
	if err != nil {
		return apperror.New(apperror.CodeWebSocketConnectionError,
			apperror.WithCause(err), apperror.WithContext("failed to create wsconn"))
	}

	conn.OnMessage(c.handleMessage)

	if err := conn.ConnectWithRetry(ctx); err != nil {
		return apperror.New(apperror.CodeWebSocketConnectionError,
			apperror.WithCause(err), apperror.WithContext("failed to connect to Binance"))
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	c.running.Store(true)
	go c.keepAlive(ctx)

	c.logger.Info(ctx, "binance stream connected", "url", wsURL, "symbols", c.config.Symbols)

	<-ctx.Done()
	c.close()
	return ctx.Err()
}

func (c *client) buildStreamURL() (string, error) {
	if len(c.config.Symbols) == 0 {
		return "", apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext("no symbols configured"))
	}

	streams := make([]string, 0, len(c.config.Symbols))
	for _, sym := range c.config.Symbols {
		streams = append(streams, bookTickerStream(sym))
	}

	u, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", err
	}
	u.Path = "/stream"
	u.RawQuery = "streams=" + strings.Join(streams, "/")
	return u.String(), nil
}

func (c *client) handleMessage(ctx context.Context, data []byte) {
	var event streamEvent
	if err := json.Unmarshal(data, &event); err != nil {
		// Likely a subscription ack; combined streams auto-subscribe so
		// there is nothing further to do with it.
		return
	}
	if !strings.HasSuffix(event.Stream, "@bookTicker") {
		return
	}

	var ticker bookTickerEvent
	if err := json.Unmarshal(event.Data, &ticker); err != nil {
		c.logger.Debug(ctx, "failed to parse book ticker", "error", err)
		return
	}

	c.handlersMu.RLock()
	handler := c.onBookTicker
	c.handlersMu.RUnlock()
	if handler != nil {
		handler(&ticker)
	}
}

func (c *client) keepAlive(ctx context.Context) {
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopKeepAlive:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !c.running.Load() {
				return
			}
			c.connMu.RLock()
			conn := c.conn
			c.connMu.RUnlock()
			if conn == nil {
				continue
			}
			req := wsRequest{Method: "LIST_SUBSCRIPTIONS", ID: c.nextID.Add(1)}
			data, _ := json.Marshal(req)
			if err := conn.Send(ctx, data); err != nil {
				c.logger.Warn(ctx, "binance keep-alive failed", "error", err)
			}
		}
	}
}

func (c *client) close() {
	if !c.running.CompareAndSwap(true, false) {
		return
	}
	close(c.stopKeepAlive)

	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.conn != nil {
		_ = c.conn.Close()
	}
}
