package di

import "testing"

func TestContainer_RegisterAndGet(t *testing.T) {
	c := NewContainer()
	c.Register("name", "arb-scanner")

	if got := c.Get("name"); got != "arb-scanner" {
		t.Fatalf("Get() = %v, want arb-scanner", got)
	}
}

func TestContainer_FactoryIsMemoized(t *testing.T) {
	c := NewContainer()
	calls := 0
	RegisterToken(c, "count", func(sr ServiceRegistry) int {
		calls++
		return calls
	})

	first := Get[int](c, "count")
	second := Get[int](c, "count")

	if first != 1 || second != 1 {
		t.Fatalf("expected factory memoized to 1, got first=%d second=%d", first, second)
	}
	if calls != 1 {
		t.Fatalf("expected factory invoked once, got %d", calls)
	}
}

func TestContainer_FactoryCanDependOnOtherTokens(t *testing.T) {
	c := NewContainer()
	c.Register("base", 10)
	RegisterToken(c, "doubled", func(sr ServiceRegistry) int {
		return Get[int](sr, "base") * 2
	})

	if got := Get[int](c, "doubled"); got != 20 {
		t.Fatalf("Get(doubled) = %d, want 20", got)
	}
}

func TestContainer_UnknownTokenPanics(t *testing.T) {
	c := NewContainer()
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for unknown token")
		}
	}()
	c.Get("missing")
}

func TestGet_WrongTypePanics(t *testing.T) {
	c := NewContainer()
	c.Register("name", "a string")

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for type mismatch")
		}
	}()
	Get[int](c, "name")
}
