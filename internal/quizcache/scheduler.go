package quizcache

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// scheduler tops up levels in the background so the next rounds are already
// local when the player reaches them. It never blocks its caller and never
// surfaces an error: a failed speculative fetch is logged and the level is
// simply fetched synchronously later if it is still empty when needed.
type scheduler struct {
	store  *Store
	coord  *coordinator
	target int
	log    zerolog.Logger

	ctx context.Context
	wg  *sync.WaitGroup
}

// TopUp spawns one background fetch for the level if it has fewer ready
// entries than the target. At target it is a no-op, so repeated calls don't
// pile up network traffic; a level further than one entry below target is
// topped up one fetch per call.
func (s *scheduler) TopUp(level int) {
	if s.store.CountReady(level) >= s.target {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if _, err := s.coord.Fetch(s.ctx, level); err != nil {
			// Swallowed by contract: background prefetch failures must
			// never reach the game loop.
			s.log.Warn().Int("streak", level).Err(err).Msg("background prefetch failed")
			return
		}
		s.log.Debug().Int("streak", level).Msg("prefetched scenario")
	}()
}

// TopUpRange tops up count consecutive levels starting at start. The range
// is small on purpose: the game advances one level per correct answer, so
// deep speculation buys scenarios the player may never reach.
func (s *scheduler) TopUpRange(start, count int) {
	for i := 0; i < count; i++ {
		s.TopUp(start + i)
	}
}
