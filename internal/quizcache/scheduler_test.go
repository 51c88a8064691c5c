package quizcache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestScheduler(src ScenarioSource, target int) (*scheduler, *Store, *sync.WaitGroup) {
	coord, store := newTestCoordinator(src, nil)
	wg := &sync.WaitGroup{}
	sched := &scheduler{
		store:  store,
		coord:  coord,
		target: target,
		log:    zerolog.Nop(),
		ctx:    context.Background(),
		wg:     wg,
	}
	return sched, store, wg
}

func TestTopUpIdempotent(t *testing.T) {
	src := newStubScenarios()
	sched, store, wg := newTestScheduler(src, 1)

	sched.TopUp(3)
	wg.Wait()
	if n := src.callCount(3); n != 1 {
		t.Fatalf("upstream calls = %d, want 1", n)
	}
	if n := store.CountReady(3); n != 1 {
		t.Fatalf("CountReady = %d, want 1", n)
	}

	// already at target: a second top-up must not touch the network
	sched.TopUp(3)
	wg.Wait()
	if n := src.callCount(3); n != 1 {
		t.Errorf("top-up at target issued a network call, total = %d", n)
	}
}

func TestTopUpRange(t *testing.T) {
	src := newStubScenarios()
	sched, store, wg := newTestScheduler(src, 1)

	sched.TopUpRange(0, 3)
	wg.Wait()

	for level := 0; level < 3; level++ {
		if n := src.callCount(level); n != 1 {
			t.Errorf("level %d upstream calls = %d, want 1", level, n)
		}
		if n := store.CountReady(level); n != 1 {
			t.Errorf("level %d CountReady = %d, want 1", level, n)
		}
	}
}

func TestTopUpFailureIsSwallowedAndRetriable(t *testing.T) {
	src := newStubScenarios()
	src.failures[7] = -1 // always fail
	sched, store, wg := newTestScheduler(src, 1)

	sched.TopUp(7) // must not panic or surface anywhere
	wg.Wait()
	if n := store.CountReady(7); n != 0 {
		t.Fatalf("failed prefetch cached %d entries", n)
	}

	// the level stays empty, so the next top-up tries again
	sched.TopUp(7)
	wg.Wait()
	if n := src.callCount(7); n != 2 {
		t.Errorf("upstream calls = %d, want 2", n)
	}
}

func TestConcurrentTopUpsShareOneFlight(t *testing.T) {
	src := newStubScenarios()
	src.delay = 50 * time.Millisecond
	sched, _, wg := newTestScheduler(src, 2)

	// both see zero ready entries and spawn, but the coordinator collapses
	// the two flights into one round-trip
	sched.TopUp(4)
	sched.TopUp(4)
	wg.Wait()

	if n := src.callCount(4); n != 1 {
		t.Errorf("upstream calls = %d, want 1", n)
	}
}
