package lbank

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/matrix-911/Airbitrage/business/market/domain"
	"github.com/matrix-911/Airbitrage/business/market/infra/venue"
	"github.com/matrix-911/Airbitrage/internal/apperror"
	"github.com/matrix-911/Airbitrage/internal/config"
	"github.com/matrix-911/Airbitrage/internal/logger"
)

const (
	venueName = "lbank"

	// defaultRestURL is the primary discovery endpoint; Discover falls
	// back to the rest of restEndpoints on failure, mirroring the
	// original implementation's multi-endpoint resilience.
	defaultRestURL = "https://api.lbkex.com"

	subBatch = 35

	requestsPerMinute = 20
)

// restEndpoints are tried in order until one returns a usable symbol
// list; LBank's public REST surface has historically moved between
// mirrors.
var restEndpoints = []string{
	"https://api.lbkex.com/v2/currencyPairs.do",
	"https://api.lbkex.net/v2/currencyPairs.do",
	"https://www.lbkex.net/v2/currencyPairs.do",
}

func init() {
	venue.Register(venueName, New)
}

// Provider implements venue.Connector for LBank's public depth channel.
type Provider struct {
	opts  config.VenueOptions
	sink  venue.Sink
	log   logger.LoggerInterface
	guard *venue.DiscoveryGuard

	mu     sync.Mutex
	symbol map[string]domain.Pair // lbank symbol -> canonical pair
}

// New builds an LBank connector, registered under "lbank" from init().
func New(opts config.VenueOptions, sink venue.Sink, log logger.LoggerInterface) (venue.Connector, error) {
	if opts.RestURL == "" {
		opts.RestURL = defaultRestURL
	}
	if opts.WebSocketURL == "" {
		opts.WebSocketURL = WSURL
	}
	if opts.SubBatch <= 0 {
		opts.SubBatch = subBatch
	}

	hc, err := newHTTPClient()
	if err != nil {
		return nil, err
	}

	return &Provider{
		opts:   opts,
		sink:   sink,
		log:    log,
		guard:  venue.NewDiscoveryGuard(hc, log, venueName, requestsPerMinute),
		symbol: make(map[string]domain.Pair),
	}, nil
}

func (p *Provider) Name() string { return venueName }

// Discover tries each of restEndpoints in turn until one yields a
// non-empty symbol catalog, then intersects it with desired.
func (p *Provider) Discover(ctx context.Context, desired []domain.Pair) ([]domain.Pair, error) {
	endpoints := restEndpoints
	if p.opts.RestURL != "" && p.opts.RestURL != defaultRestURL {
		endpoints = append([]string{p.opts.RestURL}, restEndpoints...)
	}

	var avail map[string]bool
	var lastErr error
	for _, url := range endpoints {
		var raw interface{}
		if err := p.guard.FetchJSON(ctx, url, &raw); err != nil {
			lastErr = err
			continue
		}
		if syms := extractSymbols(raw); len(syms) > 0 {
			avail = syms
			break
		}
	}
	if avail == nil {
		if lastErr == nil {
			lastErr = apperror.New(apperror.CodeDiscoveryParseFailed,
				apperror.WithContext("lbank: no endpoint returned a usable symbol catalog"))
		}
		return nil, lastErr
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	supported := make([]domain.Pair, 0, len(desired))
	for _, pair := range desired {
		base, quote := pair.Split()
		sym := symbolFor(base, quote)
		if avail[sym] {
			p.symbol[sym] = pair
			supported = append(supported, pair)
		}
	}

	if len(supported) == 0 {
		return nil, apperror.New(apperror.CodeDiscoveryParseFailed,
			apperror.WithContext("lbank: none of the desired pairs are in the symbol catalog"))
	}
	return supported, nil
}

// extractSymbols normalizes LBank's several historical response shapes
// into a lower-cased symbol set: a bare list of strings, a list of
// {"symbol"|"pair": ...} objects, an object wrapping one of those lists
// under "data"/"pairs"/"result", or a single comma-separated string.
func extractSymbols(payload interface{}) map[string]bool {
	out := make(map[string]bool)

	switch v := payload.(type) {
	case []interface{}:
		for _, item := range v {
			addSymbol(out, item)
		}
	case string:
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out[strings.ToLower(s)] = true
			}
		}
	case map[string]interface{}:
		for _, key := range []string{"data", "pairs", "result"} {
			if list, ok := v[key].([]interface{}); ok {
				for _, item := range list {
					addSymbol(out, item)
				}
			}
		}
	}
	return out
}

func addSymbol(out map[string]bool, item interface{}) {
	switch v := item.(type) {
	case string:
		out[strings.ToLower(strings.TrimSpace(v))] = true
	case map[string]interface{}:
		sym, _ := v["symbol"].(string)
		if sym == "" {
			sym, _ = v["pair"].(string)
		}
		if sym = strings.TrimSpace(sym); sym != "" {
			out[strings.ToLower(sym)] = true
		}
	}
}

// Run starts one session per batch of up to SubBatch symbols.
func (p *Provider) Run(ctx context.Context, supported []domain.Pair) error {
	batches := venue.Chunk(supported, p.opts.SubBatch)

	for i, batch := range batches {
		batch := batch
		label := "batch-" + strconv.Itoa(i)
		go venue.RunSession(ctx, p.log, venueName, label, func(ctx context.Context) error {
			return p.runBatch(ctx, batch)
		})
	}

	<-ctx.Done()
	return ctx.Err()
}

func (p *Provider) runBatch(ctx context.Context, batch []domain.Pair) error {
	symbols := make([]string, 0, len(batch))

	p.mu.Lock()
	for _, pair := range batch {
		base, quote := pair.Split()
		sym := symbolFor(base, quote)
		symbols = append(symbols, sym)
		p.symbol[sym] = pair
	}
	p.mu.Unlock()

	c := newClient(p.opts.WebSocketURL, symbols, p.log, p.handleDepth)
	return c.connect(ctx)
}

// handleDepth rebuilds the top-of-book directly from one push (LBank
// resends the whole requested depth every time) and publishes it.
func (p *Provider) handleDepth(sym string, body depthBody) {
	p.mu.Lock()
	pair, ok := p.symbol[sym]
	p.mu.Unlock()
	if !ok {
		return
	}

	bestBid, hasBid := bestLevel(body.Bids, true)
	bestAsk, hasAsk := bestLevel(body.Asks, false)
	if !hasBid && !hasAsk {
		return
	}

	nowMs := time.Now().UnixMilli()
	q := domain.Quote{TsMs: nowMs}
	if hasBid {
		q.Bid, q.BidSz, q.BidStr = &bestBid.price, &bestBid.size, &bestBid.priceStr
	}
	if hasAsk {
		q.Ask, q.AskSz, q.AskStr = &bestAsk.price, &bestAsk.size, &bestAsk.priceStr
	}

	p.sink(venueName, pair, q)
}

type level struct {
	priceStr string
	price    decimal.Decimal
	size     decimal.Decimal
}

// bestLevel scans raw [price, size] pairs and returns the highest price
// for bids, the lowest for asks, skipping non-positive sizes.
func bestLevel(raw [][2]string, wantMax bool) (level, bool) {
	var best level
	found := false

	for _, lvl := range raw {
		price, err := decimal.NewFromString(lvl[0])
		if err != nil {
			continue
		}
		size, err := decimal.NewFromString(lvl[1])
		if err != nil || !size.IsPositive() {
			continue
		}
		if !found {
			best = level{priceStr: lvl[0], price: price, size: size}
			found = true
			continue
		}
		if wantMax && price.GreaterThan(best.price) {
			best = level{priceStr: lvl[0], price: price, size: size}
		}
		if !wantMax && price.LessThan(best.price) {
			best = level{priceStr: lvl[0], price: price, size: size}
		}
	}
	return best, found
}
