package venue

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matrix-911/Airbitrage/internal/logger"
)

func TestRunSessionWithBackoff_RetriesOnError(t *testing.T) {
	var calls int32
	log := logger.New(&bytes.Buffer{}, logger.LevelDebug, "test")
	ctx, cancel := context.WithCancel(context.Background())

	runSessionWithBackoff(ctx, log, "binance", "batch-0", time.Millisecond, func(ctx context.Context) error {
		n := atomic.AddInt32(&calls, 1)
		if n >= 3 {
			cancel()
		}
		return errors.New("connection reset")
	})

	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("session invoked %d times, want 3", got)
	}
}

func TestRunSessionWithBackoff_StopsImmediatelyOnCancelledContext(t *testing.T) {
	var calls int32
	log := logger.New(&bytes.Buffer{}, logger.LevelDebug, "test")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runSessionWithBackoff(ctx, log, "binance", "batch-0", time.Millisecond, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Fatalf("session invoked %d times, want 0 on a pre-cancelled context", got)
	}
}

func TestRunSessionWithBackoff_NoErrorStillReconnects(t *testing.T) {
	var calls int32
	log := logger.New(&bytes.Buffer{}, logger.LevelDebug, "test")
	ctx, cancel := context.WithCancel(context.Background())

	runSessionWithBackoff(ctx, log, "kraken", "batch-0", time.Millisecond, func(ctx context.Context) error {
		n := atomic.AddInt32(&calls, 1)
		if n >= 2 {
			cancel()
		}
		return nil
	})

	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("session invoked %d times, want 2", got)
	}
}
