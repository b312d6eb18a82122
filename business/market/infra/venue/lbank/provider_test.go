package lbank

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/matrix-911/Airbitrage/business/market/domain"
	"github.com/matrix-911/Airbitrage/business/market/infra/venue"
	"github.com/matrix-911/Airbitrage/internal/config"
	"github.com/matrix-911/Airbitrage/internal/logger"
)

func testLogger() logger.LoggerInterface {
	return logger.New(&bytes.Buffer{}, logger.LevelDebug, "test")
}

func TestSymbolFor(t *testing.T) {
	if got := symbolFor("ETH", "USDT"); got != "eth_usdt" {
		t.Fatalf("symbolFor() = %q, want eth_usdt", got)
	}
}

func TestExtractSymbols_BareList(t *testing.T) {
	syms := extractSymbols([]interface{}{"btc_usdt", "eth_usdt"})
	if !syms["btc_usdt"] || !syms["eth_usdt"] {
		t.Fatalf("extractSymbols(bare list) = %v, missing expected entries", syms)
	}
}

func TestExtractSymbols_WrappedObjectList(t *testing.T) {
	syms := extractSymbols(map[string]interface{}{
		"data": []interface{}{
			map[string]interface{}{"symbol": "BTC_USDT"},
			map[string]interface{}{"pair": "eth_usdt"},
		},
	})
	if !syms["btc_usdt"] || !syms["eth_usdt"] {
		t.Fatalf("extractSymbols(wrapped object list) = %v, missing expected entries", syms)
	}
}

func TestExtractSymbols_CommaString(t *testing.T) {
	syms := extractSymbols("btc_usdt, eth_usdt")
	if !syms["btc_usdt"] || !syms["eth_usdt"] {
		t.Fatalf("extractSymbols(comma string) = %v, missing expected entries", syms)
	}
}

func TestProvider_Discover_FallsBackToNextEndpoint(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`["btc_usdt","eth_usdt"]`))
	}))
	defer good.Close()

	restEndpointsBackup := restEndpoints
	restEndpoints = []string{bad.URL, good.URL}
	defer func() { restEndpoints = restEndpointsBackup }()

	p, err := New(config.VenueOptions{RestURL: bad.URL}, func(string, domain.Pair, domain.Quote) {}, testLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	supported, err := p.Discover(context.Background(), []domain.Pair{domain.NewPair("BTC", "USDT")})
	if err != nil {
		t.Fatalf("Discover() error = %v, want fallback to succeed", err)
	}
	if len(supported) != 1 || supported[0] != domain.NewPair("BTC", "USDT") {
		t.Fatalf("Discover() = %v, want BTC/USDT", supported)
	}
}

func TestProvider_HandleDepth_PicksBestLevelsIgnoringNonPositiveSizes(t *testing.T) {
	var mu sync.Mutex
	var lastQuote domain.Quote
	var calls int

	sink := func(v string, pair domain.Pair, q domain.Quote) { mu.Lock(); lastQuote = q; calls++; mu.Unlock() }
	pr, err := New(config.VenueOptions{}, sink, testLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	pv := pr.(*Provider)
	pv.mu.Lock()
	pv.symbol["eth_usdt"] = domain.NewPair("ETH", "USDT")
	pv.mu.Unlock()

	pv.handleDepth("eth_usdt", depthBody{
		Bids: [][2]string{{"3000.00", "0"}, {"2999.00", "1.5"}, {"3001.00", "2.0"}},
		Asks: [][2]string{{"3002.00", "1.0"}, {"3003.00", "0.5"}},
	})

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if lastQuote.Bid.String() != "3001" {
		t.Fatalf("best bid = %s, want 3001 (the zero-size level must be skipped)", lastQuote.Bid.String())
	}
	if lastQuote.Ask.String() != "3002" {
		t.Fatalf("best ask = %s, want 3002", lastQuote.Ask.String())
	}
}

func TestRegistry_LBankRegistersItself(t *testing.T) {
	found := false
	for _, name := range venue.Registered() {
		if name == venueName {
			found = true
		}
	}
	if !found {
		t.Fatal("lbank did not register itself with the venue registry")
	}
}
