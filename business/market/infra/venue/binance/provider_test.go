package binance

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/matrix-911/Airbitrage/business/market/domain"
	"github.com/matrix-911/Airbitrage/business/market/infra/venue"
	"github.com/matrix-911/Airbitrage/internal/config"
	"github.com/matrix-911/Airbitrage/internal/logger"
)

func testLogger() logger.LoggerInterface {
	return logger.New(&bytes.Buffer{}, logger.LevelDebug, "test")
}

func TestSymbolFor(t *testing.T) {
	if got := symbolFor("btc", "usdt"); got != "BTCUSDT" {
		t.Fatalf("symbolFor() = %q, want BTCUSDT", got)
	}
}

func TestProvider_Discover_FiltersToTradingSpotSymbols(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := exchangeInfoResponse{Symbols: []exchangeSymbol{
			{Symbol: "BTCUSDT", Status: "TRADING", IsSpot: true},
			{Symbol: "ETHUSDT", Status: "TRADING", IsSpot: true},
			{Symbol: "XRPUSDT", Status: "BREAK", IsSpot: true}, // not trading
			{Symbol: "SOLUSDT", Status: "TRADING", IsSpot: false}, // not spot
		}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	p, err := New(config.VenueOptions{RestURL: srv.URL}, func(string, domain.Pair, domain.Quote) {}, testLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	desired := []domain.Pair{
		domain.NewPair("BTC", "USDT"),
		domain.NewPair("ETH", "USDT"),
		domain.NewPair("XRP", "USDT"),
		domain.NewPair("SOL", "USDT"),
		domain.NewPair("DOGE", "USDT"), // not even in the catalog
	}

	supported, err := p.Discover(context.Background(), desired)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	if len(supported) != 2 {
		t.Fatalf("Discover() returned %d pairs, want 2: %v", len(supported), supported)
	}
	want := map[domain.Pair]bool{domain.NewPair("BTC", "USDT"): true, domain.NewPair("ETH", "USDT"): true}
	for _, pair := range supported {
		if !want[pair] {
			t.Fatalf("Discover() returned unexpected pair %v", pair)
		}
	}
}

func TestProvider_Discover_NoneTradableReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(exchangeInfoResponse{})
	}))
	defer srv.Close()

	p, err := New(config.VenueOptions{RestURL: srv.URL}, func(string, domain.Pair, domain.Quote) {}, testLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = p.Discover(context.Background(), []domain.Pair{domain.NewPair("BTC", "USDT")})
	if err == nil {
		t.Fatal("Discover() error = nil, want non-nil when nothing is tradable")
	}
}

func TestProvider_HandleBookTicker_PublishesQuoteThroughSink(t *testing.T) {
	var mu sync.Mutex
	var gotVenue string
	var gotPair domain.Pair
	var gotQuote domain.Quote

	p := &Provider{
		log: testLogger(),
		sink: func(v string, pair domain.Pair, q domain.Quote) {
			mu.Lock()
			defer mu.Unlock()
			gotVenue, gotPair, gotQuote = v, pair, q
		},
		symbol: map[string]domain.Pair{"BTCUSDT": domain.NewPair("BTC", "USDT")},
	}

	before := time.Now().UnixMilli()
	p.handleBookTicker(&bookTickerEvent{
		Symbol:   "BTCUSDT",
		BidPrice: "50000.10",
		BidQty:   "1.5",
		AskPrice: "50000.20",
		AskQty:   "2.0",
	})
	after := time.Now().UnixMilli()

	mu.Lock()
	defer mu.Unlock()

	if gotVenue != venueName {
		t.Fatalf("sink venue = %q, want %q", gotVenue, venueName)
	}
	if gotPair != domain.NewPair("BTC", "USDT") {
		t.Fatalf("sink pair = %v, want BTC/USDT", gotPair)
	}
	if !gotQuote.HasBothSides() {
		t.Fatal("sink quote missing bid/ask")
	}
	if gotQuote.Bid.String() != "50000.1" {
		t.Fatalf("bid = %s, want 50000.1", gotQuote.Bid.String())
	}
	if gotQuote.TsMs < before || gotQuote.TsMs > after {
		t.Fatalf("TsMs = %d, want receive-time timestamp in [%d, %d]", gotQuote.TsMs, before, after)
	}
}

func TestProvider_HandleBookTicker_UnknownSymbolIsIgnored(t *testing.T) {
	called := false
	p := &Provider{
		log:    testLogger(),
		sink:   func(string, domain.Pair, domain.Quote) { called = true },
		symbol: map[string]domain.Pair{},
	}

	p.handleBookTicker(&bookTickerEvent{Symbol: "UNKNOWNUSDT", BidPrice: "1", AskPrice: "2"})

	if called {
		t.Fatal("sink should not be called for an unrecognized symbol")
	}
}

func TestRegistry_BinanceRegistersItself(t *testing.T) {
	found := false
	for _, name := range venue.Registered() {
		if name == venueName {
			found = true
		}
	}
	if !found {
		t.Fatal("binance did not register itself with the venue registry")
	}
}
