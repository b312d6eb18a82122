package coinbase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matrix-911/Airbitrage/internal/apperror"
	"github.com/matrix-911/Airbitrage/internal/logger"
	"github.com/matrix-911/Airbitrage/internal/wsconn"
)

const (
	// WSURL is Coinbase Exchange's public WebSocket feed.
	WSURL = "wss://ws-feed.exchange.coinbase.com"

	channelName = "level2_batch"
)

// client is a single Coinbase session carrying one batch of products.
type client struct {
	wsURL      string
	productIDs []string
	logger     logger.LoggerInterface

	onSnapshot func(productID string, ev snapshotEvent)
	onUpdate   func(productID string, ev l2UpdateEvent)
}

func newClient(wsURL string, productIDs []string, log logger.LoggerInterface,
	onSnapshot func(string, snapshotEvent), onUpdate func(string, l2UpdateEvent)) *client {
	return &client{wsURL: wsURL, productIDs: productIDs, logger: log, onSnapshot: onSnapshot, onUpdate: onUpdate}
}

func (c *client) connect(ctx context.Context) error {
	wsCfg := wsconn.DefaultConfig(c.wsURL, "coinbase")
	wsCfg.PingInterval = 20 * time.Second

	conn, err := wsconn.New(wsCfg)
	if err != nil {
		return apperror.New(apperror.CodeWebSocketConnectionError,
			apperror.WithCause(err), apperror.WithContext("failed to create wsconn"))
	}

	conn.OnMessage(c.handleMessage)

	if err := conn.ConnectWithRetry(ctx); err != nil {
		return apperror.New(apperror.CodeWebSocketConnectionError,
			apperror.WithCause(err), apperror.WithContext("failed to connect to Coinbase"))
	}
	defer conn.Close()

	sub := subscribeRequest{
		Type: "subscribe",
		Channels: []subscribeChannel{
			{Name: channelName, ProductIDs: c.productIDs},
		},
	}
	data, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	if err := conn.Send(ctx, data); err != nil {
		return apperror.New(apperror.CodeWebSocketSendError,
			apperror.WithCause(err), apperror.WithContext("failed to subscribe"))
	}

	c.logger.Info(ctx, "coinbase session subscribed", "products", c.productIDs)

	<-ctx.Done()
	return ctx.Err()
}

func (c *client) handleMessage(ctx context.Context, data []byte) {
	var env wsEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return
	}

	switch env.Type {
	case "subscriptions":
		return
	case "error":
		c.logger.Warn(ctx, "coinbase ws error", "payload", string(data))
		return
	case "snapshot":
		var ev snapshotEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return
		}
		c.onSnapshot(ev.ProductID, ev)
	case "l2update":
		var ev l2UpdateEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return
		}
		c.onUpdate(ev.ProductID, ev)
	}
}
