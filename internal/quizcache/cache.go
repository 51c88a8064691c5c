// Package quizcache hides scenario-service latency between quiz rounds.
//
// It keeps a small rolling cache of prefetched rounds keyed by the player's
// streak: serving a round from cache triggers background top-ups of the
// current and next few levels, so by the time the player answers, the next
// round is usually already local. Concurrent fetches for one level are
// collapsed into a single network call.
package quizcache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultTTL            = 5 * time.Minute
	DefaultTargetPerLevel = 2
	DefaultLookahead      = 2
)

// Options configures a Cache. Scenarios is required; everything else has a
// sensible default. Equities may be nil when every scenario ships with
// precomputed equities.
type Options struct {
	Scenarios ScenarioSource
	Equities  EquitySource
	Logger    zerolog.Logger

	// TTL is how long a cached entry stays servable. 0 means DefaultTTL.
	TTL time.Duration
	// TargetPerLevel is how many ready entries a top-up aims for.
	// 0 means DefaultTargetPerLevel. The per-level store cap is twice this.
	TargetPerLevel int
	// Lookahead is how many levels past the current one get warmed.
	// 0 means DefaultLookahead.
	Lookahead int
}

// Cache is the acquisition facade the game loop talks to. One Cache is
// constructed per process and owns all mutable state; nothing here is
// package-global.
type Cache struct {
	store     *Store
	coord     *coordinator
	sched     *scheduler
	lookahead int
	log       zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(opts Options) (*Cache, error) {
	if opts.Scenarios == nil {
		return nil, errors.New("quizcache: scenario source required")
	}

	ttl := opts.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	target := opts.TargetPerLevel
	if target == 0 {
		target = DefaultTargetPerLevel
	}
	lookahead := opts.Lookahead
	if lookahead == 0 {
		lookahead = DefaultLookahead
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Cache{
		store:     NewStore(ttl, 2*target),
		lookahead: lookahead,
		log:       opts.Logger,
		ctx:       ctx,
		cancel:    cancel,
	}
	c.coord = &coordinator{
		scenarios: opts.Scenarios,
		equities:  opts.Equities,
		store:     c.store,
		log:       opts.Logger,
		baseCtx:   ctx,
	}
	c.sched = &scheduler{
		store:  c.store,
		coord:  c.coord,
		target: target,
		log:    opts.Logger,
		ctx:    ctx,
		wg:     &c.wg,
	}
	return c, nil
}

// GetScenario returns one round for the given streak level. A cache hit
// returns immediately; a miss blocks on a (de-duplicated) fetch whose shared
// result is returned directly while the cached copy stays in the store.
// Either way the current and look-ahead levels are topped up in the
// background before returning. On error the caller applies its own
// fallback; the cache never invents rounds.
func (c *Cache) GetScenario(ctx context.Context, level int) (*Result, error) {
	if e, ok := c.store.TryTake(level); ok {
		c.log.Debug().Int("streak", level).Msg("scenario cache hit")
		c.replenish(level)
		return &Result{Scenario: e.Scenario, Equity: e.Equity}, nil
	}

	c.log.Debug().Int("streak", level).Msg("scenario cache miss, fetching")
	res, err := c.coord.Fetch(ctx, level)
	// Top up regardless of outcome: self-heal the level that just missed
	// and warm the next ones.
	c.replenish(level)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// PrefetchLevels warms count consecutive levels starting at start, without
// blocking. Used for the initial warm-up while the player reads the
// instructions and after an answer advances the streak.
func (c *Cache) PrefetchLevels(start, count int) {
	c.sched.TopUpRange(start, count)
}

// Lookahead returns the configured look-ahead depth.
func (c *Cache) Lookahead() int { return c.lookahead }

// Clear drops all cached entries, for game restarts.
func (c *Cache) Clear() {
	c.store.Clear()
}

// Stats snapshots per-level cache counts for diagnostics.
func (c *Cache) Stats() map[int]LevelStats {
	return c.store.Stats()
}

// Close stops background prefetching and waits for in-flight work.
func (c *Cache) Close() {
	c.cancel()
	c.wg.Wait()
}

func (c *Cache) replenish(level int) {
	c.sched.TopUp(level)
	c.sched.TopUpRange(level+1, c.lookahead)
}

// wait blocks until all spawned background fetches finish. Test hook.
func (c *Cache) wait() {
	c.wg.Wait()
}
