package app

import (
	"bytes"
	"context"
	"sync/atomic"
	"testing"
	"time"

	marketdomain "github.com/matrix-911/Airbitrage/business/market/domain"
	"github.com/matrix-911/Airbitrage/business/market/infra/quotetable"
	"github.com/matrix-911/Airbitrage/business/market/infra/venue"
	"github.com/matrix-911/Airbitrage/internal/config"
	"github.com/matrix-911/Airbitrage/internal/logger"
)

type fakeConnector struct {
	name      string
	sink      venue.Sink
	runCalls  int32
	published marketdomain.Quote
	pair      marketdomain.Pair
}

func (c *fakeConnector) Name() string { return c.name }

func (c *fakeConnector) Discover(ctx context.Context, desired []marketdomain.Pair) ([]marketdomain.Pair, error) {
	return desired, nil
}

func (c *fakeConnector) Run(ctx context.Context, supported []marketdomain.Pair) error {
	atomic.AddInt32(&c.runCalls, 1)
	if len(supported) > 0 {
		c.sink(c.name, supported[0], c.published)
	}
	<-ctx.Done()
	return nil
}

func registerFakeVenue(t *testing.T, name string, published marketdomain.Quote) {
	t.Helper()
	venue.Register(name, func(opts config.VenueOptions, sink venue.Sink, log logger.LoggerInterface) (venue.Connector, error) {
		return &fakeConnector{name: name, sink: sink, published: published}, nil
	})
}

func newTestSupervisor(t *testing.T, venues []string) (*Supervisor, *quotetable.Table) {
	t.Helper()
	table := quotetable.New()
	cfg := EngineConfig{
		ThreshEnterFraction: dec(t, "0.004"),
		ThreshExitFraction:  dec(t, "0.003"),
		MaxProfitPct:        dec(t, "10"),
		LongMs:              60000,
		StaleMs:             30000,
	}
	engine := NewEngine(table, cfg, nil)
	log := logger.New(&bytes.Buffer{}, logger.LevelDebug, "test")
	return NewSupervisor(log, table, engine, venues, nil), table
}

func TestSupervisor_StartWiresConnectorOutputIntoQuoteTable(t *testing.T) {
	pair := marketdomain.NewPair("BTC", "USDT")
	b, a := dec(t, "100"), dec(t, "101")
	registerFakeVenue(t, "supervisor-test-venue-1", marketdomain.Quote{Bid: &b, Ask: &a, TsMs: 1})

	sup, table := newTestSupervisor(t, []string{"supervisor-test-venue-1"})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sup.Start(ctx, []marketdomain.Pair{pair}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// The fake connector's Run publishes synchronously before blocking on
	// ctx.Done(), but it runs on its own goroutine; give it a moment.
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(table.Snapshot().All()) > 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	entries := table.Snapshot().All()
	if len(entries) != 1 || entries[0].Pair != pair {
		t.Fatalf("expected the fake connector's quote to reach the table, got %v", entries)
	}
}

func TestSupervisor_UnknownVenueIsSkippedNotFatal(t *testing.T) {
	sup, _ := newTestSupervisor(t, []string{"no-such-venue-registered"})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sup.Start(ctx, []marketdomain.Pair{marketdomain.NewPair("BTC", "USDT")}); err != nil {
		t.Fatalf("Start() must not fail just because one venue is unregistered: %v", err)
	}
}

func TestSupervisor_ReconfigureIsNoOpForSameCanonicalSet(t *testing.T) {
	registerFakeVenue(t, "supervisor-test-venue-2", marketdomain.Quote{})
	sup, _ := newTestSupervisor(t, []string{"supervisor-test-venue-2"})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pairs := []marketdomain.Pair{marketdomain.NewPair("BTC", "USDT"), marketdomain.NewPair("ETH", "USDT")}
	reordered := []marketdomain.Pair{marketdomain.NewPair("ETH", "USDT"), marketdomain.NewPair("BTC", "USDT")}

	if err := sup.Start(ctx, pairs); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	before := sup.current

	if err := sup.Reconfigure(ctx, reordered); err != nil {
		t.Fatalf("Reconfigure() error = %v", err)
	}
	if len(sup.current) != len(before) {
		t.Fatal("reconfiguring with the same canonical set should not change current")
	}
}

func TestSupervisor_SnapshotWrapsEngine(t *testing.T) {
	sup, _ := newTestSupervisor(t, nil)
	snap := sup.Snapshot()
	if snap.Opportunities == nil && len(snap.Opportunities) != 0 {
		t.Fatal("Snapshot().Opportunities should be an empty slice, not an error")
	}
}
