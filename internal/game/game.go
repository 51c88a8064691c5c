// Package game holds the round/answer policy around the scenario cache:
// grading guesses, advancing the streak and the hardcoded fallback round
// served when the scenario service is unreachable.
package game

import (
	"github.com/google/uuid"

	"github.com/equityguesser/gameserver/internal/poker"
	"github.com/equityguesser/gameserver/internal/quizcache"
)

// Guess is the player's pick of the stronger hand.
type Guess string

const (
	GuessHand1 Guess = "hand1"
	GuessHand2 Guess = "hand2"
)

func (g Guess) Valid() bool { return g == GuessHand1 || g == GuessHand2 }

// Round is one dealt question. The full round, equities included, lives in
// the player's session between /round and /answer; the response shown to
// the browser withholds the equities because they are the answer.
type Round struct {
	ID       string              `json:"id"`
	Streak   int                 `json:"streak"`
	Scenario *poker.Scenario     `json:"scenario"`
	Equity   *poker.EquityResult `json:"equity,omitempty"`
	Fallback bool                `json:"fallback,omitempty"`
}

// NewRound wraps a cache result into a playable round.
func NewRound(streak int, res *quizcache.Result) Round {
	return Round{
		ID:       uuid.NewString(),
		Streak:   streak,
		Scenario: res.Scenario,
		Equity:   res.Equity,
	}
}

// FallbackRound is served when both the cache and the synchronous fetch
// failed. It keeps the game playable; the next round tries the network
// again.
func FallbackRound(streak int) Round {
	sc := fallbackScenario()
	return Round{
		ID:       uuid.NewString(),
		Streak:   streak,
		Scenario: sc,
		Equity:   sc.EmbeddedEquity(),
		Fallback: true,
	}
}

// Grade reports whether the guess picked the higher-equity hand. A round
// with unknown or dead-even equities grades every guess as correct: the
// player shouldn't lose a streak to our missing data.
func (r *Round) Grade(g Guess) bool {
	switch r.Equity.Winner() {
	case 1:
		return g == GuessHand1
	case 2:
		return g == GuessHand2
	default:
		return true
	}
}

// Advance returns the next streak after an answer: one up when correct,
// back to zero otherwise.
func Advance(streak int, correct bool) int {
	if correct {
		return streak + 1
	}
	return 0
}

func fallbackScenario() *poker.Scenario {
	// Aces against king-queen suited, preflop. Equities precomputed with
	// the same engine the scenario database was built with.
	h1 := 0.8536
	h2 := 0.1464
	return &poker.Scenario{
		Hand1:       []poker.Card{poker.MustCard("Ah"), poker.MustCard("Ac")},
		Hand2:       []poker.Card{poker.MustCard("Kd"), poker.MustCard("Qd")},
		Community:   []poker.Card{},
		Stage:       poker.StagePreflop,
		Hand1Equity: &h1,
		Hand2Equity: &h2,
	}
}
