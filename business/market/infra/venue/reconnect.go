package venue

import (
	"context"
	"time"

	"github.com/matrix-911/Airbitrage/internal/logger"
)

// ReconnectBackoff is the fixed delay between session attempts
// (spec.md §4.C: "sleep RECONNECT_BACKOFF (reference: 3 seconds fixed),
// and reconnect"). There is deliberately no exponential growth, no
// jitter and no maximum attempt count here, unlike internal/wsconn's
// general-purpose backoff — spec.md §5 is explicit that reconnect is
// attempted indefinitely with a fixed backoff and no circuit breaker.
const ReconnectBackoff = 3 * time.Second

// RunSession repeatedly invokes session until ctx is cancelled. Each
// invocation owns one websocket connection attempt and its lifetime;
// when it returns (successfully or with an error) RunSession logs,
// sleeps ReconnectBackoff, and invokes it again. This is the "session
// protocol" shared frame described in spec.md §4.C, generalized across
// every venue so each connector only needs to supply the body of a
// single connect-subscribe-read loop.
func RunSession(ctx context.Context, log logger.LoggerInterface, venueName string, batchLabel string, session func(ctx context.Context) error) {
	runSessionWithBackoff(ctx, log, venueName, batchLabel, ReconnectBackoff, session)
}

func runSessionWithBackoff(ctx context.Context, log logger.LoggerInterface, venueName, batchLabel string, backoff time.Duration, session func(ctx context.Context) error) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		err := session(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			log.Warn(ctx, "venue session ended, reconnecting", "venue", venueName, "batch", batchLabel, "error", err)
		} else {
			log.Info(ctx, "venue session closed, reconnecting", "venue", venueName, "batch", batchLabel)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}
}
