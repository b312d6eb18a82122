package book

import (
	"testing"

	"github.com/shopspring/decimal"
)

func decStr(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("decimal.NewFromString(%q) error: %v", s, err)
	}
	return d
}

// Invariant 10: applying (side, price, 0) removes that level; subsequent
// Best never returns that price.
func TestBook_ApplyZeroSizeRemoves(t *testing.T) {
	b := New()
	if err := b.Apply(SideBid, "100.50", decStr(t, "1.0")); err != nil {
		t.Fatal(err)
	}
	lvl, ok := b.Best(SideBid)
	if !ok || lvl.PriceStr != "100.50" {
		t.Fatalf("expected best bid 100.50, got %+v ok=%v", lvl, ok)
	}

	if err := b.Apply(SideBid, "100.50", decStr(t, "0")); err != nil {
		t.Fatal(err)
	}
	if _, ok := b.Best(SideBid); ok {
		t.Fatal("expected no best bid after zero-size removal")
	}
}

func TestBook_BestBidIsMax_BestAskIsMin(t *testing.T) {
	b := New()
	for _, p := range []string{"100.00", "101.00", "99.50"} {
		if err := b.Apply(SideBid, p, decStr(t, "1")); err != nil {
			t.Fatal(err)
		}
	}
	for _, p := range []string{"102.00", "101.50", "103.00"} {
		if err := b.Apply(SideAsk, p, decStr(t, "1")); err != nil {
			t.Fatal(err)
		}
	}

	bid, ok := b.Best(SideBid)
	if !ok || bid.PriceStr != "101.00" {
		t.Fatalf("best bid = %+v, want 101.00", bid)
	}
	ask, ok := b.Best(SideAsk)
	if !ok || ask.PriceStr != "101.50" {
		t.Fatalf("best ask = %+v, want 101.50", ask)
	}
}

// S7: reconnect behavior — a snapshot replaces the in-memory book
// wholesale, with no level from a prior snapshot surviving Reset.
func TestBook_ResetDropsAllPriorLevels(t *testing.T) {
	b := New()
	mustApply(t, b, SideBid, "99", "1")
	mustApply(t, b, SideAsk, "101", "1")

	b.Reset()
	mustApply(t, b, SideBid, "98", "1")
	mustApply(t, b, SideAsk, "100", "1")

	bid, _ := b.Best(SideBid)
	ask, _ := b.Best(SideAsk)
	if bid.PriceStr != "98" || ask.PriceStr != "100" {
		t.Fatalf("expected fresh snapshot levels only, got bid=%s ask=%s", bid.PriceStr, ask.PriceStr)
	}
	if b.Depth(SideBid) != 1 || b.Depth(SideAsk) != 1 {
		t.Fatalf("expected exactly one level per side after reset, got bid depth=%d ask depth=%d", b.Depth(SideBid), b.Depth(SideAsk))
	}
}

func TestBook_EmptySideHasNoBest(t *testing.T) {
	b := New()
	if _, ok := b.Best(SideBid); ok {
		t.Fatal("expected no best bid on empty book")
	}
}

func TestBook_InvalidPriceStringReturnsError(t *testing.T) {
	b := New()
	if err := b.Apply(SideBid, "not-a-price", decStr(t, "1")); err == nil {
		t.Fatal("expected error for unparsable price string")
	}
}

func mustApply(t *testing.T, b *Book, side Side, priceStr, sizeStr string) {
	t.Helper()
	if err := b.Apply(side, priceStr, decStr(t, sizeStr)); err != nil {
		t.Fatalf("Apply(%v, %q, %q) error: %v", side, priceStr, sizeStr, err)
	}
}
