package kraken

import (
	"context"
	"strconv"
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
	venueName = "kraken"

	defaultRestURL = "https://api.kraken.com"

	subBatch = 60

	requestsPerMinute = 15
)

func init() {
	venue.Register(venueName, New)
}

// Provider implements venue.Connector for Kraken's public WebSocket book
// channel.
type Provider struct {
	opts  config.VenueOptions
	sink  venue.Sink
	log   logger.LoggerInterface
	guard *venue.DiscoveryGuard

	mu         sync.Mutex
	pairToWS   map[domain.Pair]string
	wsToPair   map[string]domain.Pair
	books      map[string]*book.Book // wsname -> book
}

// New builds a Kraken connector, registered under "kraken" from init().
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
		opts:     opts,
		sink:     sink,
		log:      log,
		guard:    venue.NewDiscoveryGuard(hc, log, venueName, requestsPerMinute),
		pairToWS: make(map[domain.Pair]string),
		wsToPair: make(map[string]domain.Pair),
		books:    make(map[string]*book.Book),
	}, nil
}

func (p *Provider) Name() string { return venueName }

// Discover fetches Kraken's tradable asset pairs and caches the
// pair<->wsname mapping Run needs to subscribe and route book pushes.
func (p *Provider) Discover(ctx context.Context, desired []domain.Pair) ([]domain.Pair, error) {
	wanted := make(map[domain.Pair]bool, len(desired))
	for _, pair := range desired {
		wanted[pair] = true
	}

	var resp assetPairsResponse
	if err := p.guard.FetchJSON(ctx, p.opts.RestURL+"/0/public/AssetPairs", &resp); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	supported := make([]domain.Pair, 0, len(wanted))
	for _, info := range resp.Result {
		if info.WSName == "" {
			continue
		}
		human, ok := wsNameToHuman(info.WSName)
		if !ok {
			continue
		}
		pair := domain.Pair(human)
		if !wanted[pair] {
			continue
		}
		p.pairToWS[pair] = info.WSName
		p.wsToPair[info.WSName] = pair
		supported = append(supported, pair)
	}

	if len(supported) == 0 {
		return nil, apperror.New(apperror.CodeDiscoveryParseFailed,
			apperror.WithContext("kraken: none of the desired pairs have a tradable wsname"))
	}
	return supported, nil
}

// Run starts one session per batch of up to SubBatch pairs.
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
	wsnames := make([]string, 0, len(batch))

	p.mu.Lock()
	for _, pair := range batch {
		wsname, ok := p.pairToWS[pair]
		if !ok {
			// Run may be called without a prior Discover (e.g. a
			// reconfigure that re-adds a pair); fall back to a direct
			// asset-code remap rather than dropping the pair.
			base, quote := pair.Split()
			wsname = humanToWSName(base, quote)
			p.pairToWS[pair] = wsname
			p.wsToPair[wsname] = pair
		}
		wsnames = append(wsnames, wsname)
		// A fresh Book per reconnect attempt: the prior session's book
		// is never carried across a reconnect (spec.md §4.C).
		p.books[wsname] = book.New()
	}
	p.mu.Unlock()

	c := newClient(p.opts.WebSocketURL, wsnames, p.log, p.handleBookPush)
	return c.connect(ctx)
}

// handleBookPush applies a snapshot/update payload to the wsname's book
// and republishes its top-of-book through the sink.
func (p *Provider) handleBookPush(wsname string, payload bookPayload) {
	p.mu.Lock()
	b, ok := p.books[wsname]
	pair, pairOK := p.wsToPair[wsname]
	p.mu.Unlock()
	if !ok || !pairOK {
		return
	}

	if payload.isSnapshot() {
		b.Reset()
		applyLevels(b, book.SideBid, payload.BidSnapshot)
		applyLevels(b, book.SideAsk, payload.AskSnapshot)
	}
	if payload.isUpdate() {
		applyLevels(b, book.SideBid, payload.BidUpdate)
		applyLevels(b, book.SideAsk, payload.AskUpdate)
	}

	bestBid, hasBid := b.Best(book.SideBid)
	bestAsk, hasAsk := b.Best(book.SideAsk)
	if !hasBid && !hasAsk {
		return
	}

	nowMs := time.Now().UnixMilli()
	q := domain.Quote{TsMs: nowMs}
	if hasBid {
		price, size, priceStr := bestBid.Price, bestBid.Size, bestBid.PriceStr
		q.Bid, q.BidSz, q.BidStr = &price, &size, &priceStr
	}
	if hasAsk {
		price, size, priceStr := bestAsk.Price, bestAsk.Size, bestAsk.PriceStr
		q.Ask, q.AskSz, q.AskStr = &price, &size, &priceStr
	}

	p.sink(venueName, pair, q)
}

func applyLevels(b *book.Book, side book.Side, levels [][]string) {
	for _, lvl := range levels {
		if len(lvl) < 2 {
			continue
		}
		size, err := decimal.NewFromString(lvl[1])
		if err != nil {
			continue
		}
		_ = b.Apply(side, lvl[0], size)
	}
}
