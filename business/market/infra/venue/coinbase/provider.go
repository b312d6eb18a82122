package coinbase

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
	venueName = "coinbase"

	defaultRestURL = "https://api.exchange.coinbase.com"

	subBatch = 60

	requestsPerMinute = 15
)

func init() {
	venue.Register(venueName, New)
}

// Provider implements venue.Connector for Coinbase Exchange's public
// level2_batch channel: a snapshot+delta connector (spec.md §4.C),
// maintaining one book.Book per product for the life of a batch
// session, reset on every reconnect.
type Provider struct {
	opts  config.VenueOptions
	sink  venue.Sink
	log   logger.LoggerInterface
	guard *venue.DiscoveryGuard

	mu      sync.Mutex
	product map[string]domain.Pair // product id -> canonical pair
	books   map[string]*book.Book
}

// New builds a Coinbase connector, registered under "coinbase" from init().
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
		opts:    opts,
		sink:    sink,
		log:     log,
		guard:   venue.NewDiscoveryGuard(hc, log, venueName, requestsPerMinute),
		product: make(map[string]domain.Pair),
		books:   make(map[string]*book.Book),
	}, nil
}

func (p *Provider) Name() string { return venueName }

// Discover fetches the products catalog and filters to pairs that are
// online, tradable, and present in desired.
func (p *Provider) Discover(ctx context.Context, desired []domain.Pair) ([]domain.Pair, error) {
	var products productsResponse
	if err := p.guard.FetchJSON(ctx, "/products", &products); err != nil {
		return nil, err
	}

	wanted := make(map[string]domain.Pair, len(desired))
	for _, pair := range desired {
		base, quote := pair.Split()
		wanted[productID(base, quote)] = pair
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	supported := make([]domain.Pair, 0, len(desired))
	for _, prod := range products {
		id := productID(prod.BaseCurrency, prod.QuoteCurrency)
		pair, ok := wanted[id]
		if !ok {
			continue
		}
		if !strings.EqualFold(prod.Status, "online") {
			continue
		}
		if prod.TradingDisabled || prod.CancelOnly || prod.PostOnly {
			continue
		}
		p.product[id] = pair
		supported = append(supported, pair)
	}

	if len(supported) == 0 {
		return nil, apperror.New(apperror.CodeDiscoveryParseFailed,
			apperror.WithContext("coinbase: none of the desired pairs are online and tradable"))
	}
	return supported, nil
}

// Run starts one session per batch of up to SubBatch products.
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
	productIDs := make([]string, 0, len(batch))

	p.mu.Lock()
	for _, pair := range batch {
		base, quote := pair.Split()
		id := productID(base, quote)
		productIDs = append(productIDs, id)
		p.product[id] = pair
		p.books[id] = book.New()
	}
	p.mu.Unlock()

	c := newClient(p.opts.WebSocketURL, productIDs, p.log, p.handleSnapshot, p.handleUpdate)
	return c.connect(ctx)
}

func (p *Provider) handleSnapshot(id string, ev snapshotEvent) {
	p.mu.Lock()
	b, ok := p.books[id]
	p.mu.Unlock()
	if !ok {
		return
	}

	b.Reset()
	for _, lvl := range ev.Bids {
		applyLevel(b, book.SideBid, lvl)
	}
	for _, lvl := range ev.Asks {
		applyLevel(b, book.SideAsk, lvl)
	}

	p.publish(id, b)
}

func (p *Provider) handleUpdate(id string, ev l2UpdateEvent) {
	p.mu.Lock()
	b, ok := p.books[id]
	p.mu.Unlock()
	if !ok {
		return
	}

	for _, change := range ev.Changes {
		side, priceStr, sizeStr := change[0], change[1], change[2]
		size, err := decimal.NewFromString(sizeStr)
		if err != nil {
			continue
		}
		if strings.EqualFold(side, "buy") {
			b.Apply(book.SideBid, priceStr, size)
		} else {
			b.Apply(book.SideAsk, priceStr, size)
		}
	}

	p.publish(id, b)
}

func applyLevel(b *book.Book, side book.Side, lvl [2]string) {
	size, err := decimal.NewFromString(lvl[1])
	if err != nil {
		return
	}
	b.Apply(side, lvl[0], size)
}

func (p *Provider) publish(id string, b *book.Book) {
	p.mu.Lock()
	pair, ok := p.product[id]
	p.mu.Unlock()
	if !ok {
		return
	}

	bestBid, hasBid := b.Best(book.SideBid)
	bestAsk, hasAsk := b.Best(book.SideAsk)
	if !hasBid && !hasAsk {
		return
	}

	nowMs := time.Now().UnixMilli()
	q := domain.Quote{TsMs: nowMs}
	if hasBid {
		q.Bid, q.BidSz, q.BidStr = &bestBid.Price, &bestBid.Size, &bestBid.PriceStr
	}
	if hasAsk {
		q.Ask, q.AskSz, q.AskStr = &bestAsk.Price, &bestAsk.Size, &bestAsk.PriceStr
	}

	p.sink(venueName, pair, q)
}
