package kraken

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/matrix-911/Airbitrage/business/market/domain"
	"github.com/matrix-911/Airbitrage/business/market/infra/book"
	"github.com/matrix-911/Airbitrage/business/market/infra/venue"
	"github.com/matrix-911/Airbitrage/internal/config"
	"github.com/matrix-911/Airbitrage/internal/logger"
)

func testLogger() logger.LoggerInterface {
	return logger.New(&bytes.Buffer{}, logger.LevelDebug, "test")
}

func TestWSNameToHuman_RemapsXBT(t *testing.T) {
	got, ok := wsNameToHuman("XBT/USD")
	if !ok || got != "BTC/USD" {
		t.Fatalf("wsNameToHuman(XBT/USD) = (%q, %v), want (BTC/USD, true)", got, ok)
	}
}

func TestHumanToWSName_RemapsBack(t *testing.T) {
	if got := humanToWSName("BTC", "USD"); got != "XBT/USD" {
		t.Fatalf("humanToWSName(BTC, USD) = %q, want XBT/USD", got)
	}
	if got := humanToWSName("ETH", "USD"); got != "ETH/USD" {
		t.Fatalf("humanToWSName(ETH, USD) = %q, want ETH/USD (unmapped asset passes through)", got)
	}
}

func TestProvider_Discover_BuildsPairWSNameMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := assetPairsResponse{Result: map[string]assetPairInfo{
			"XXBTZUSD": {WSName: "XBT/USD"},
			"XETHZUSD": {WSName: "ETH/USD"},
		}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	p, err := New(config.VenueOptions{RestURL: srv.URL}, func(string, domain.Pair, domain.Quote) {}, testLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	supported, err := p.Discover(context.Background(), []domain.Pair{
		domain.NewPair("BTC", "USD"),
		domain.NewPair("DOGE", "USD"),
	})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(supported) != 1 || supported[0] != domain.NewPair("BTC", "USD") {
		t.Fatalf("Discover() = %v, want only BTC/USD", supported)
	}

	pv := p.(*Provider)
	if pv.pairToWS[domain.NewPair("BTC", "USD")] != "XBT/USD" {
		t.Fatalf("pairToWS mapping not populated for BTC/USD")
	}
}

func TestProvider_HandleBookPush_SnapshotThenUpdate(t *testing.T) {
	var mu sync.Mutex
	var lastQuote domain.Quote
	var calls int

	sink := func(v string, pair domain.Pair, q domain.Quote) { mu.Lock(); lastQuote = q; calls++; mu.Unlock() }
	pr, err := New(config.VenueOptions{RestURL: "http://unused"}, sink, testLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	pv := pr.(*Provider)
	pv.mu.Lock()
	pv.wsToPair["XBT/USD"] = domain.NewPair("BTC", "USD")
	pv.books["XBT/USD"] = book.New()
	pv.mu.Unlock()

	pv.handleBookPush("XBT/USD", bookPayload{
		BidSnapshot: [][]string{{"50000.0", "1.0"}, {"49999.0", "2.0"}},
		AskSnapshot: [][]string{{"50001.0", "1.5"}},
	})

	mu.Lock()
	if calls != 1 || lastQuote.Bid.String() != "50000" {
		mu.Unlock()
		t.Fatalf("after snapshot: calls=%d bid=%v, want calls=1 bid=50000", calls, lastQuote.Bid)
	}
	mu.Unlock()

	pv.handleBookPush("XBT/USD", bookPayload{
		BidUpdate: [][]string{{"50000.0", "0"}},
	})

	mu.Lock()
	defer mu.Unlock()
	if calls != 2 {
		t.Fatalf("calls after update = %d, want 2", calls)
	}
	if lastQuote.Bid.String() != "49999" {
		t.Fatalf("best bid after removal = %s, want 49999", lastQuote.Bid.String())
	}
}

// TestClient_HandleMessage_RoutesRemappedPairAckToBookPush drives a real
// subscriptionStatus ack followed by a data frame through
// client.handleMessage for XBT/USD, a pair remapped by krakenAssetCodes.
// It guards against chanPair being keyed by the human pair ("BTC/USD")
// while books/wsToPair are keyed by the wsname ("XBT/USD"): that mismatch
// silently drops every Kraken BTC quote even though handleBookPush works
// fine when called directly with a matching wsname.
func TestClient_HandleMessage_RoutesRemappedPairAckToBookPush(t *testing.T) {
	var mu sync.Mutex
	var calls int
	var lastQuote domain.Quote

	sink := func(v string, pair domain.Pair, q domain.Quote) {
		mu.Lock()
		calls++
		lastQuote = q
		mu.Unlock()
	}
	pr, err := New(config.VenueOptions{RestURL: "http://unused"}, sink, testLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	pv := pr.(*Provider)
	pv.mu.Lock()
	pv.wsToPair["XBT/USD"] = domain.NewPair("BTC", "USD")
	pv.books["XBT/USD"] = book.New()
	pv.mu.Unlock()

	c := newClient(WSURL, []string{"XBT/USD"}, testLogger(), pv.handleBookPush)

	ack, err := json.Marshal(subscriptionStatus{
		Event: "subscriptionStatus", Status: "subscribed",
		ChannelName: "book-10", ChannelID: 336, Pair: "XBT/USD",
	})
	if err != nil {
		t.Fatalf("marshal ack: %v", err)
	}
	c.handleMessage(context.Background(), ack)

	frame, err := json.Marshal([]interface{}{
		336,
		bookPayload{BidSnapshot: [][]string{{"50000.0", "1.0"}}, AskSnapshot: [][]string{{"50001.0", "1.5"}}},
		"book-10",
		"XBT/USD",
	})
	if err != nil {
		t.Fatalf("marshal data frame: %v", err)
	}
	c.handleMessage(context.Background(), frame)

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("sink calls = %d, want 1 (ack->data routing for a remapped pair must reach handleBookPush)", calls)
	}
	if lastQuote.Bid == nil || lastQuote.Bid.String() != "50000" {
		t.Fatalf("bid = %v, want 50000", lastQuote.Bid)
	}
}

func TestRegistry_KrakenRegistersItself(t *testing.T) {
	found := false
	for _, name := range venue.Registered() {
		if name == venueName {
			found = true
		}
	}
	if !found {
		t.Fatal("kraken did not register itself with the venue registry")
	}
}
