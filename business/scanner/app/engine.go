package app

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	marketdomain "github.com/matrix-911/Airbitrage/business/market/domain"
	"github.com/matrix-911/Airbitrage/business/market/infra/quotetable"
	"github.com/matrix-911/Airbitrage/business/scanner/domain"
)

// clock returns the current time as monotonic-wall-clock milliseconds.
// It is a field on Engine (not a package func) so tests can substitute a
// deterministic source without wall-clock flakiness.
type clock func() int64

// Engine is component F: the cross-venue scan, hysteresis application
// and stale accounting (spec.md §4.F). It owns the HysteresisStore; the
// quote table is read-only from its perspective.
type Engine struct {
	table  *quotetable.Table
	hyst   *HysteresisStore
	now    clock
	config EngineConfig
}

// EngineConfig is the subset of scanner configuration the engine needs,
// already converted to the units compute() operates in (fractions and
// milliseconds, never percent or seconds) to avoid scaling bugs
// (spec.md §4.F: "profit comparisons MUST use the same representation
// as the hysteresis thresholds").
type EngineConfig struct {
	ThreshEnterFraction decimal.Decimal
	ThreshExitFraction  decimal.Decimal
	MaxProfitPct        decimal.Decimal
	LongMs              int64
	StaleMs             int64
}

// NewEngine builds an engine reading from table with its own hysteresis
// store. now defaults to a wall-clock source if nil.
func NewEngine(table *quotetable.Table, config EngineConfig, now clock) *Engine {
	if now == nil {
		now = defaultClock
	}
	return &Engine{table: table, hyst: NewHysteresisStore(), now: now, config: config}
}

// Compute is §4.F's compute(): scan every pair observed in any venue,
// form every ordered (buy,sell) venue pair with both sides present,
// apply hysteresis, and return opportunities ranked by profit_pct
// descending (stable).
func (e *Engine) Compute() []domain.Opportunity {
	nowMs := e.now()
	byPair := e.table.Snapshot().ByPair()

	var out []domain.Opportunity
	for pair, entries := range byPair {
		avail := make([]quotetable.VenueQuote, 0, len(entries))
		for _, entry := range entries {
			if entry.Quote.HasBothSides() {
				avail = append(avail, entry)
			}
		}

		for _, buy := range avail {
			for _, sell := range avail {
				if buy.Venue == sell.Venue {
					continue
				}
				if buy.Quote.AskSz == nil || sell.Quote.BidSz == nil {
					continue
				}

				opp, ok := e.evaluate(pair, buy, sell, nowMs)
				if !ok {
					continue
				}
				out = append(out, opp)
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ProfitPct.Cmp(out[j].ProfitPct) > 0
	})
	return out
}

// evaluate computes the profit for one (buy,sell) venue pair on pair,
// applies the sanity cap and hysteresis transition, and returns the
// opportunity if (and only if) the resulting state is in-window.
func (e *Engine) evaluate(pair marketdomain.Pair, buy, sell quotetable.VenueQuote, nowMs int64) (domain.Opportunity, bool) {
	buyAsk := *buy.Quote.Ask
	sellBid := *sell.Quote.Bid

	if buyAsk.IsZero() {
		return domain.Opportunity{}, false
	}
	profitFrac := sellBid.Sub(buyAsk).Div(buyAsk)
	profitPct := profitFrac.Mul(decimal.NewFromInt(100))

	if profitPct.Cmp(e.config.MaxProfitPct) > 0 {
		// Sanity cap: discard before the hysteresis transition runs, so a
		// single bad quote can never open a window (spec.md §8 S6).
		return domain.Opportunity{}, false
	}

	key := domain.OpportunityKey{Pair: pair, BuyVenue: buy.Venue, SellVenue: sell.Venue}
	state := e.hyst.Observe(key, profitFrac, e.config.ThreshEnterFraction, e.config.ThreshExitFraction, nowMs)
	if !state.InWindow {
		return domain.Opportunity{}, false
	}

	execQty := *buy.Quote.AskSz
	if sell.Quote.BidSz.Cmp(execQty) < 0 {
		execQty = *sell.Quote.BidSz
	}

	opp := domain.Opportunity{
		ID:           uuid.NewString(),
		Pair:         pair,
		BuyVenue:     buy.Venue,
		SellVenue:    sell.Venue,
		BuyPrice:     buyAsk,
		SellPrice:    sellBid,
		BuyPriceStr:  derefStr(buy.Quote.AskStr, buyAsk.String()),
		SellPriceStr: derefStr(sell.Quote.BidStr, sellBid.String()),
		ProfitPct:    profitPct,
		BuyQty:       *buy.Quote.AskSz,
		SellQty:      *sell.Quote.BidSz,
		ExecQty:      execQty,
		BuyAgeSec:    float64(buy.Quote.AgeMs(nowMs)) / 1000.0,
		SellAgeSec:   float64(sell.Quote.AgeMs(nowMs)) / 1000.0,
		Long:         state.IsLong(nowMs, e.config.LongMs),
	}
	return opp, true
}

// ListStale is §4.F's list_stale(): every stored quote whose age is at least
// StaleMs, sorted by age descending then venue then pair.
func (e *Engine) ListStale() []domain.StaleQuote {
	nowMs := e.now()
	entries := e.table.Snapshot().All()

	var out []domain.StaleQuote
	for _, entry := range entries {
		age := entry.Quote.AgeMs(nowMs)
		if age < e.config.StaleMs {
			continue
		}
		out = append(out, domain.StaleQuote{
			Venue:  entry.Venue,
			Pair:   entry.Pair,
			AgeSec: float64(age) / 1000.0,
			Quote:  entry.Quote,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].AgeSec != out[j].AgeSec {
			return out[i].AgeSec > out[j].AgeSec
		}
		if out[i].Venue != out[j].Venue {
			return out[i].Venue < out[j].Venue
		}
		return out[i].Pair < out[j].Pair
	})
	return out
}

func derefStr(s *string, fallback string) string {
	if s != nil {
		return *s
	}
	return fallback
}
