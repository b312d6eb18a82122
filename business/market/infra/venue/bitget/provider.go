package bitget

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/matrix-911/Airbitrage/business/market/domain"
	"github.com/matrix-911/Airbitrage/business/market/infra/book"
	"github.com/matrix-911/Airbitrage/business/market/infra/venue"
	"github.com/matrix-911/Airbitrage/internal/apperror"
	"github.com/matrix-911/Airbitrage/internal/config"
	"github.com/matrix-911/Airbitrage/internal/logger"
)

const (
	venueName = "bitget"

	defaultRestURL = "https://api.bitget.com"

	// subBatch mirrors the original implementation's SUB_BATCH tunable.
	subBatch = 65

	requestsPerMinute = 20
)

func init() {
	venue.Register(venueName, New)
}

// Provider implements venue.Connector for Bitget's public spot channel.
type Provider struct {
	opts  config.VenueOptions
	sink  venue.Sink
	log   logger.LoggerInterface
	guard *venue.DiscoveryGuard

	mu      sync.Mutex
	instID  map[string]domain.Pair // instID -> canonical pair
	books   map[string]*book.Book  // instID -> per-pair level store
}

// New builds a Bitget connector, registered under "bitget" from init().
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

	hc, err := newHTTPClient(opts.RestURL)
	if err != nil {
		return nil, err
	}

	return &Provider{
		opts:   opts,
		sink:   sink,
		log:    log,
		guard:  venue.NewDiscoveryGuard(hc, log, venueName, requestsPerMinute),
		instID: make(map[string]domain.Pair),
		books:  make(map[string]*book.Book),
	}, nil
}

func (p *Provider) Name() string { return venueName }

// Discover fetches Bitget's spot symbol catalog and keeps only instruments
// that are "online" and desired.
func (p *Provider) Discover(ctx context.Context, desired []domain.Pair) ([]domain.Pair, error) {
	wanted := make(map[string]domain.Pair, len(desired))
	for _, pair := range desired {
		base, quote := pair.Split()
		wanted[instID(base, quote)] = pair
	}

	var resp exchangeSymbolsResponse
	if err := p.guard.FetchJSON(ctx, p.opts.RestURL+"/api/v2/spot/public/symbols", &resp); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	supported := make([]domain.Pair, 0, len(wanted))
	for _, sym := range resp.Data {
		if !strings.EqualFold(sym.Status, "online") {
			continue
		}
		id := instID(strings.ToUpper(sym.BaseCoin), strings.ToUpper(sym.QuoteCoin))
		pair, ok := wanted[id]
		if !ok {
			continue
		}
		p.instID[id] = pair
		supported = append(supported, pair)
	}

	if len(supported) == 0 {
		return nil, apperror.New(apperror.CodeDiscoveryParseFailed,
			apperror.WithContext("bitget: none of the desired pairs are online spot symbols"))
	}
	return supported, nil
}

// Run starts one session per batch of up to SubBatch instruments.
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
	instIDs := make([]string, 0, len(batch))

	p.mu.Lock()
	for _, pair := range batch {
		base, quote := pair.Split()
		id := instID(base, quote)
		instIDs = append(instIDs, id)
		p.instID[id] = pair
		// A fresh Book per reconnect attempt: the prior session's book
		// is never carried across a reconnect (spec.md §4.C).
		p.books[id] = book.New()
	}
	p.mu.Unlock()

	c := newClient(p.opts.WebSocketURL, instIDs, p.log, p.handleBookPush)
	return c.connect(ctx)
}

// handleBookPush applies a snapshot/update payload to the instrument's
// book and republishes its top-of-book through the sink.
func (p *Provider) handleBookPush(id string, action string, payload wsBookPayload) {
	p.mu.Lock()
	b, ok := p.books[id]
	pair, pairOK := p.instID[id]
	p.mu.Unlock()
	if !ok || !pairOK {
		return
	}

	if action == "snapshot" {
		b.Reset()
	}

	for _, lvl := range payload.Bids {
		applyLevel(b, book.SideBid, lvl)
	}
	for _, lvl := range payload.Asks {
		applyLevel(b, book.SideAsk, lvl)
	}

	bestBid, hasBid := b.Best(book.SideBid)
	bestAsk, hasAsk := b.Best(book.SideAsk)
	if !hasBid && !hasAsk {
		return
	}

	nowMs := time.Now().UnixMilli()
	q := domain.Quote{TsMs: nowMs}
	if hasBid {
		price := bestBid.Price
		size := bestBid.Size
		priceStr := bestBid.PriceStr
		q.Bid = &price
		q.BidSz = &size
		q.BidStr = &priceStr
	}
	if hasAsk {
		price := bestAsk.Price
		size := bestAsk.Size
		priceStr := bestAsk.PriceStr
		q.Ask = &price
		q.AskSz = &size
		q.AskStr = &priceStr
	}

	p.sink(venueName, pair, q)
}

func applyLevel(b *book.Book, side book.Side, lvl [2]string) {
	priceStr, sizeStr := lvl[0], lvl[1]
	size, err := decimal.NewFromString(sizeStr)
	if err != nil {
		return
	}
	_ = b.Apply(side, priceStr, size)
}
