package quizcache

import (
	"testing"
	"time"

	"github.com/equityguesser/gameserver/internal/poker"
)

// testScenario builds a distinct scenario whose hand pair encodes nothing;
// tests compare entry identity via pointers.
func testScenario(level int) *poker.Scenario {
	h1 := 0.9
	h2 := 0.1
	return &poker.Scenario{
		Hand1:       []poker.Card{poker.MustCard("Ah"), poker.MustCard("Ac")},
		Hand2:       []poker.Card{poker.MustCard("Kd"), poker.MustCard("Qd")},
		Community:   []poker.Card{},
		Stage:       poker.StagePreflop,
		Hand1Equity: &h1,
		Hand2Equity: &h2,
	}
}

// bareScenario has no embedded equities, forcing the equity lookup path.
func bareScenario(level int) *poker.Scenario {
	return &poker.Scenario{
		Hand1:     []poker.Card{poker.MustCard("Ah"), poker.MustCard("Ac")},
		Hand2:     []poker.Card{poker.MustCard("Kd"), poker.MustCard("Qd")},
		Community: []poker.Card{poker.MustCard("2c"), poker.MustCard("4c"), poker.MustCard("5h")},
		Stage:     poker.StageFlop,
	}
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time            { return c.t }
func (c *fakeClock) advance(d time.Duration)   { c.t = c.t.Add(d) }
func newFakeClock() *fakeClock                 { return &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)} }
func storeWithClock(ttl time.Duration, max int) (*Store, *fakeClock) {
	s := NewStore(ttl, max)
	clk := newFakeClock()
	s.now = clk.now
	return s, clk
}

func TestTryTakeExactlyOnce(t *testing.T) {
	s := NewStore(time.Minute, 4)
	s.Insert(0, testScenario(0), nil)

	e1, ok := s.TryTake(0)
	if !ok || e1 == nil {
		t.Fatal("expected an entry on first take")
	}
	if _, ok := s.TryTake(0); ok {
		t.Fatal("entry served twice")
	}
	if n := s.CountReady(0); n != 0 {
		t.Errorf("CountReady after take = %d, want 0", n)
	}
}

func TestTryTakeInsertionOrder(t *testing.T) {
	s := NewStore(time.Minute, 4)
	first := testScenario(0)
	second := testScenario(0)
	s.Insert(0, first, nil)
	s.Insert(0, second, nil)

	e, _ := s.TryTake(0)
	if e.Scenario != first {
		t.Error("expected oldest entry first")
	}
	e, _ = s.TryTake(0)
	if e.Scenario != second {
		t.Error("expected second entry next")
	}
}

func TestTTLExpiry(t *testing.T) {
	ttl := 2 * time.Minute
	s, clk := storeWithClock(ttl, 4)
	s.Insert(3, testScenario(3), nil)

	clk.advance(ttl - time.Second)
	if n := s.CountReady(3); n != 1 {
		t.Fatalf("CountReady just before TTL = %d, want 1", n)
	}

	clk.advance(time.Second) // now exactly at TTL
	if n := s.CountReady(3); n != 0 {
		t.Errorf("CountReady at TTL = %d, want 0", n)
	}
	if _, ok := s.TryTake(3); ok {
		t.Error("TryTake returned an expired entry")
	}
}

func TestCapacityBound(t *testing.T) {
	const maxEntries = 4
	s := NewStore(time.Minute, maxEntries)

	scenarios := make([]*poker.Scenario, 5)
	for i := range scenarios {
		scenarios[i] = testScenario(2)
		s.Insert(2, scenarios[i], nil)
	}

	stats := s.Stats()[2]
	if stats.Total != maxEntries {
		t.Fatalf("stored %d entries, cap is %d", stats.Total, maxEntries)
	}
	// oldest was evicted; the next take is scenarios[1]
	e, _ := s.TryTake(2)
	if e.Scenario != scenarios[1] {
		t.Error("expected oldest entry to have been evicted")
	}
}

func TestCountReadySkipsConsumedAndExpired(t *testing.T) {
	s, clk := storeWithClock(time.Minute, 8)
	s.Insert(1, testScenario(1), nil)
	clk.advance(2 * time.Minute) // first entry expires
	s.Insert(1, testScenario(1), nil)
	s.Insert(1, testScenario(1), nil)

	if n := s.CountReady(1); n != 2 {
		t.Fatalf("CountReady = %d, want 2", n)
	}
	s.TryTake(1)
	if n := s.CountReady(1); n != 1 {
		t.Errorf("CountReady after take = %d, want 1", n)
	}
}

func TestClear(t *testing.T) {
	s := NewStore(time.Minute, 4)
	for level := 0; level < 3; level++ {
		s.Insert(level, testScenario(level), nil)
	}

	s.ClearLevel(1)
	if _, ok := s.TryTake(1); ok {
		t.Error("level 1 should be empty after ClearLevel")
	}
	if n := s.CountReady(0); n != 1 {
		t.Error("ClearLevel must not touch other levels")
	}

	s.Clear()
	for level := 0; level < 3; level++ {
		if _, ok := s.TryTake(level); ok {
			t.Errorf("level %d should be empty after Clear", level)
		}
	}
}

func TestStats(t *testing.T) {
	s, clk := storeWithClock(time.Minute, 8)
	s.Insert(0, testScenario(0), nil)
	clk.advance(2 * time.Minute) // expires the first entry
	s.Insert(0, testScenario(0), nil)
	s.Insert(0, testScenario(0), nil)
	s.TryTake(0)

	got := s.Stats()[0]
	want := LevelStats{Total: 3, Valid: 2, Unused: 1}
	if got != want {
		t.Errorf("Stats = %+v, want %+v", got, want)
	}

	for level, st := range s.Stats() {
		if st.Total < st.Valid || st.Valid < st.Unused {
			t.Errorf("level %d stats not monotone: %+v", level, st)
		}
	}
}
