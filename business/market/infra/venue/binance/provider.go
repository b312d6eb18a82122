package binance

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/matrix-911/Airbitrage/business/market/domain"
	"github.com/matrix-911/Airbitrage/business/market/infra/venue"
	"github.com/matrix-911/Airbitrage/internal/apperror"
	"github.com/matrix-911/Airbitrage/internal/config"
	"github.com/matrix-911/Airbitrage/internal/logger"
)

const (
	venueName = "binance"

	defaultRestURL = "https://api.binance.com"

	// subBatch is the max pairs a single combined-streams session
	// carries (spec.md §4.C).
	subBatch = 50

	// requestsPerMinute bounds the discovery HTTP guard's rate limiter.
	requestsPerMinute = 20
)

func init() {
	venue.Register(venueName, New)
}

// Provider implements venue.Connector for Binance.
type Provider struct {
	opts   config.VenueOptions
	sink   venue.Sink
	log    logger.LoggerInterface
	guard  *venue.DiscoveryGuard
	symbol map[string]domain.Pair // symbol -> canonical pair, populated by Discover
}

// New builds a Binance connector. It satisfies venue.Constructor and is
// registered under "binance" from init().
func New(opts config.VenueOptions, sink venue.Sink, log logger.LoggerInterface) (venue.Connector, error) {
	if opts.RestURL == "" {
		opts.RestURL = defaultRestURL
	}
	if opts.WebSocketURL == "" {
		opts.WebSocketURL = BaseWSURL
	}
	if opts.SubBatch <= 0 {
		opts.SubBatch = subBatch
	}

	hc, err := newHTTPClient(opts.RestURL)
	if err != nil {
		return nil, err
	}

	return &Provider{
		opts:  opts,
		sink:  sink,
		log:   log,
		guard: venue.NewDiscoveryGuard(hc, log, venueName, requestsPerMinute),
	}, nil
}

func (p *Provider) Name() string { return venueName }

// Discover fetches Binance's spot exchange info and intersects it with
// desired, building the symbol->Pair lookup Run's handlers key off.
func (p *Provider) Discover(ctx context.Context, desired []domain.Pair) ([]domain.Pair, error) {
	wanted := make(map[string]domain.Pair, len(desired))
	for _, pair := range desired {
		base, quote := pair.Split()
		wanted[symbolFor(base, quote)] = pair
	}

	var info exchangeInfoResponse
	if err := p.guard.FetchJSON(ctx, p.opts.RestURL+"/api/v3/exchangeInfo", &info); err != nil {
		return nil, err
	}

	symbolMap := make(map[string]domain.Pair, len(wanted))
	supported := make([]domain.Pair, 0, len(wanted))
	for _, sym := range info.Symbols {
		if sym.Status != "TRADING" || !sym.IsSpot {
			continue
		}
		pair, ok := wanted[sym.Symbol]
		if !ok {
			continue
		}
		symbolMap[sym.Symbol] = pair
		supported = append(supported, pair)
	}

	if len(supported) == 0 {
		return nil, apperror.New(apperror.CodeDiscoveryParseFailed,
			apperror.WithContext("binance: none of the desired pairs are tradable spot symbols"))
	}

	p.symbol = symbolMap
	return supported, nil
}

// Run starts one combined-streams session per batch of up to SubBatch
// symbols, each reconnecting indefinitely with fixed backoff on any
// transient failure (spec.md §5).
func (p *Provider) Run(ctx context.Context, supported []domain.Pair) error {
	batches := venue.Chunk(supported, p.opts.SubBatch)

	for i, batch := range batches {
		batch := batch
		label := batchLabel(i)
		go venue.RunSession(ctx, p.log, venueName, label, func(ctx context.Context) error {
			return p.runBatch(ctx, batch)
		})
	}

	<-ctx.Done()
	return ctx.Err()
}

func (p *Provider) runBatch(ctx context.Context, batch []domain.Pair) error {
	symbols := make([]string, 0, len(batch))
	for _, pair := range batch {
		base, quote := pair.Split()
		symbols = append(symbols, symbolFor(base, quote))
	}

	c := newClient(clientConfig{
		BaseURL:      p.opts.WebSocketURL,
		Symbols:      symbols,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Second,
	}, p.log)

	c.onBookTickerEvent(func(ev *bookTickerEvent) {
		p.handleBookTicker(ev)
	})

	return c.connect(ctx)
}

// handleBookTicker converts a raw tick into a domain.Quote and publishes
// it through the connector's sink. Receive time, not any venue-supplied
// timestamp, becomes TsMs (spec.md §9).
func (p *Provider) handleBookTicker(ev *bookTickerEvent) {
	pair, ok := p.symbol[strings.ToUpper(ev.Symbol)]
	if !ok {
		return
	}

	nowMs := time.Now().UnixMilli()
	q := domain.NewQuoteFromStrings(&ev.BidPrice, &ev.BidQty, &ev.AskPrice, &ev.AskQty, nowMs)
	p.sink(venueName, pair, q)
}

func batchLabel(i int) string {
	if i == 0 {
		return "primary"
	}
	return "batch-" + strconv.Itoa(i)
}
