// Package poker holds the domain values exchanged with the remote scenario
// and equity services: cards, hand-pair scenarios and equity results.
package poker

import (
	"fmt"
	"strings"
)

// Card mirrors the wire shape used by the scenario API. Code is the compact
// two-character form ("Ah", "Td"); Rank is the display rank ("A", "10").
type Card struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
	Code string `json:"code"`
}

// CardFromCode builds a Card from its compact code. The "T" rank is shown
// as "10", matching what the scenario API sends.
func CardFromCode(code string) (Card, error) {
	if len(code) != 2 {
		return Card{}, fmt.Errorf("invalid card code %q", code)
	}
	rank := string(code[0])
	if rank == "T" {
		rank = "10"
	}
	return Card{Rank: rank, Suit: string(code[1]), Code: code}, nil
}

// MustCard is CardFromCode for hardcoded cards.
func MustCard(code string) Card {
	c, err := CardFromCode(code)
	if err != nil {
		panic(err)
	}
	return c
}

// Stage identifies how much of the board is dealt in a scenario.
type Stage string

const (
	StagePreflop Stage = "preflop"
	StageFlop    Stage = "flop"
	StageTurn    Stage = "turn"
)

func (s Stage) valid() bool {
	switch s {
	case StagePreflop, StageFlop, StageTurn:
		return true
	}
	return false
}

// boardLen is the number of community cards each stage deals.
func (s Stage) boardLen() int {
	switch s {
	case StageFlop:
		return 3
	case StageTurn:
		return 4
	default:
		return 0
	}
}

// Scenario is one quiz round as produced by the scenario API: two hole-card
// hands, the community cards dealt so far and, when the service has them
// precomputed, the exact equities of both hands. Immutable once fetched.
type Scenario struct {
	Hand1       []Card   `json:"hand1"`
	Hand2       []Card   `json:"hand2"`
	Community   []Card   `json:"community"`
	Stage       Stage    `json:"stage"`
	Hand1Equity *float64 `json:"hand1_equity,omitempty"`
	Hand2Equity *float64 `json:"hand2_equity,omitempty"`
}

// Validate rejects responses that don't describe a playable round.
func (s *Scenario) Validate() error {
	if len(s.Hand1) != 2 || len(s.Hand2) != 2 {
		return fmt.Errorf("scenario hands must have 2 cards, got %d and %d", len(s.Hand1), len(s.Hand2))
	}
	if !s.Stage.valid() {
		return fmt.Errorf("unknown scenario stage %q", s.Stage)
	}
	if got, want := len(s.Community), s.Stage.boardLen(); got != want {
		return fmt.Errorf("stage %s expects %d community cards, got %d", s.Stage, want, got)
	}
	for _, c := range append(append(append([]Card{}, s.Hand1...), s.Hand2...), s.Community...) {
		if len(c.Code) != 2 {
			return fmt.Errorf("invalid card code %q", c.Code)
		}
	}
	return nil
}

// HasEquities reports whether the scenario shipped with precomputed equities
// for both hands.
func (s *Scenario) HasEquities() bool {
	return s.Hand1Equity != nil && s.Hand2Equity != nil
}

// EmbeddedEquity converts precomputed scenario equities into an EquityResult,
// or nil when the scenario doesn't carry them. The stored values come from
// exhaustive enumeration, so the result is marked as enumerated.
func (s *Scenario) EmbeddedEquity() *EquityResult {
	if !s.HasEquities() {
		return nil
	}
	return &EquityResult{
		Equities:   []float64{*s.Hand1Equity, *s.Hand2Equity},
		Enumerated: true,
	}
}

// HandCode joins card codes into the compact form the equity API expects,
// e.g. "AhKh".
func HandCode(cards []Card) string {
	var b strings.Builder
	for _, c := range cards {
		b.WriteString(c.Code)
	}
	return b.String()
}

// BoardCode returns the community cards in compact form, empty preflop.
func (s *Scenario) BoardCode() string {
	return HandCode(s.Community)
}

// EquityResult is the outcome of an equity computation for the two hands of
// a scenario, either synthesized from precomputed scenario equities or
// returned by the equity API.
type EquityResult struct {
	Equities       []float64 `json:"equities"`
	Wins           []float64 `json:"wins,omitempty"`
	Ties           []float64 `json:"ties,omitempty"`
	HandsEvaluated uint64    `json:"hands_evaluated,omitempty"`
	Speed          float64   `json:"speed,omitempty"`
	Enumerated     bool      `json:"enumerated_all"`
}

// Winner returns 1 or 2 for the hand with higher equity, or 0 when the
// result is unusable or a dead tie.
func (r *EquityResult) Winner() int {
	if r == nil || len(r.Equities) < 2 {
		return 0
	}
	switch {
	case r.Equities[0] > r.Equities[1]:
		return 1
	case r.Equities[1] > r.Equities[0]:
		return 2
	default:
		return 0
	}
}
