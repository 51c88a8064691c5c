package quizcache

import (
	"sync"
	"time"

	"github.com/equityguesser/gameserver/internal/poker"
)

// Entry is one cached round for a streak level. An entry is handed out at
// most once: TryTake marks it consumed and it is never returned again,
// though it stays in the store (and counts against the per-level cap) until
// eviction pushes it out.
type Entry struct {
	Scenario *poker.Scenario
	Equity   *poker.EquityResult

	createdAt time.Time
	consumed  bool
}

// LevelStats is a diagnostics snapshot for one level.
type LevelStats struct {
	Total  int `json:"total"`
	Valid  int `json:"valid"`
	Unused int `json:"unused"`
}

// Store keeps prefetched rounds per streak level, insertion-ordered.
// Expiry is a pure function of (now, createdAt, ttl) checked on every read;
// there is no background sweeper. All methods are safe for concurrent use.
type Store struct {
	mu          sync.Mutex
	entries     map[int][]*Entry
	ttl         time.Duration
	maxPerLevel int

	now func() time.Time // overridable in tests
}

func NewStore(ttl time.Duration, maxPerLevel int) *Store {
	return &Store{
		entries:     make(map[int][]*Entry),
		ttl:         ttl,
		maxPerLevel: maxPerLevel,
		now:         time.Now,
	}
}

// TryTake returns the first unconsumed, unexpired entry for the level and
// marks it consumed. This is the only read path on purpose: a peek that
// left state unchanged would let two callers double-consume one entry.
func (s *Store) TryTake(level int) (*Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, e := range s.entries[level] {
		if e.consumed || !s.fresh(e, now) {
			continue
		}
		e.consumed = true
		return e, true
	}
	return nil, false
}

// Insert appends a new entry for the level, then evicts oldest-first while
// the level holds more than maxPerLevel entries. Consumed entries count
// toward the cap too, so memory stays bounded without a collector.
func (s *Store) Insert(level int, sc *poker.Scenario, eq *poker.EquityResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	es := append(s.entries[level], &Entry{
		Scenario:  sc,
		Equity:    eq,
		createdAt: s.now(),
	})
	if s.maxPerLevel > 0 && len(es) > s.maxPerLevel {
		es = es[len(es)-s.maxPerLevel:]
	}
	s.entries[level] = es
}

// CountReady reports how many entries the level could still serve.
func (s *Store) CountReady(level int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for _, e := range s.entries[level] {
		if !e.consumed && s.fresh(e, now) {
			n++
		}
	}
	return n
}

// Clear drops every cached entry, for game restarts.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[int][]*Entry)
}

// ClearLevel drops the entries of a single level.
func (s *Store) ClearLevel(level int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, level)
}

// Stats snapshots per-level counts for the diagnostics endpoint.
func (s *Store) Stats() map[int]LevelStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	out := make(map[int]LevelStats, len(s.entries))
	for level, es := range s.entries {
		st := LevelStats{Total: len(es)}
		for _, e := range es {
			if !s.fresh(e, now) {
				continue
			}
			st.Valid++
			if !e.consumed {
				st.Unused++
			}
		}
		out[level] = st
	}
	return out
}

func (s *Store) fresh(e *Entry, now time.Time) bool {
	return s.ttl <= 0 || now.Sub(e.createdAt) < s.ttl
}
