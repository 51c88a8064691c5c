package quizcache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/equityguesser/gameserver/internal/poker"
)

// ScenarioSource fetches one scenario for a streak level.
type ScenarioSource interface {
	Get(ctx context.Context, streak int) (*poker.Scenario, error)
}

// EquitySource computes equities for hands that arrive without them.
type EquitySource interface {
	HandEquities(ctx context.Context, hands []string, board string) (*poker.EquityResult, error)
}

// Result is one acquired round: a scenario plus its equities when known.
type Result struct {
	Scenario *poker.Scenario
	Equity   *poker.EquityResult
}

// coordinator performs the actual network acquisition and de-duplicates
// concurrent fetches per level: N callers for the same level share exactly
// one round-trip and observe the same result or the same failure. The
// singleflight group is the in-flight registry; it drops the registration
// on every exit path once the shared call settles.
type coordinator struct {
	scenarios ScenarioSource
	equities  EquitySource // optional
	store     *Store
	group     singleflight.Group
	log       zerolog.Logger

	// baseCtx outlives any single caller. Fetches are deliberately not
	// cancellable once started: a caller that goes away must not abort a
	// flight other waiters share, and a superseded fetch still lands in
	// the store for later use.
	baseCtx context.Context
}

// Fetch returns the level's in-flight result if one is pending, otherwise
// starts a new acquisition. On success the result is inserted into the
// store before being returned; on failure nothing is cached. The caller's
// ctx only bounds the wait, never the flight itself.
func (c *coordinator) Fetch(ctx context.Context, level int) (*Result, error) {
	ch := c.group.DoChan(strconv.Itoa(level), func() (any, error) {
		return c.acquire(level)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*Result), nil
	}
}

func (c *coordinator) acquire(level int) (*Result, error) {
	sc, err := c.scenarios.Get(c.baseCtx, level)
	if err != nil {
		return nil, fmt.Errorf("fetch scenario for streak %d: %w", level, err)
	}

	res := &Result{Scenario: sc, Equity: sc.EmbeddedEquity()}
	if res.Equity == nil && c.equities != nil {
		hands := []string{poker.HandCode(sc.Hand1), poker.HandCode(sc.Hand2)}
		eq, err := c.equities.HandEquities(c.baseCtx, hands, sc.BoardCode())
		if err != nil {
			// Equity is optional on an entry; the round is still playable
			// and the reveal simply has nothing to show.
			c.log.Warn().Int("streak", level).Err(err).
				Msg("equity lookup failed, caching scenario without equities")
		} else {
			res.Equity = eq
		}
	}

	c.store.Insert(level, res.Scenario, res.Equity)
	return res, nil
}
