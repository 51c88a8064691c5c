package routes

import (
	"context"
	"encoding/json"
	"net/http"

	scs "github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/equityguesser/gameserver/internal/config"
	"github.com/equityguesser/gameserver/internal/equity"
	"github.com/equityguesser/gameserver/internal/game"
	appmw "github.com/equityguesser/gameserver/internal/http/middleware"
	"github.com/equityguesser/gameserver/internal/poker"
	"github.com/equityguesser/gameserver/internal/quizcache"
)

// session keys
const (
	sessStreak = "streak"
	sessBest   = "best_streak"
	sessRound  = "round"
)

// Evaluator names made hands on the answer reveal. Optional.
type Evaluator interface {
	Evaluate(ctx context.Context, hand string) (*equity.Evaluation, error)
}

type Server struct {
	Router     *chi.Mux
	Sess       *scs.SessionManager
	Cache      *quizcache.Cache
	Evaluator  Evaluator
	Log        zerolog.Logger
	AdminToken string
}

type ServerOptions struct {
	Sess      *scs.SessionManager
	Cache     *quizcache.Cache
	Evaluator Evaluator
	Cfg       config.Config
	Log       zerolog.Logger
}

func New(opts ServerOptions) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	s := &Server{
		Router:     r,
		Sess:       opts.Sess,
		Cache:      opts.Cache,
		Evaluator:  opts.Evaluator,
		Log:        opts.Log,
		AdminToken: opts.Cfg.AdminToken,
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			s.Log.Error().Err(err).Msg("write health check response")
		}
	})

	r.Route("/api", func(api chi.Router) {
		api.Get("/round", s.handleRound)
		api.Post("/answer", s.handleAnswer)
		api.Post("/restart", s.handleRestart)

		api.Group(func(admin chi.Router) {
			admin.Use(appmw.RequireAdmin(s.AdminToken))
			admin.Get("/cache/stats", s.handleCacheStats)
			admin.Post("/cache/clear", s.handleCacheClear)
		})
	})

	return s
}

// roundResponse is what the browser sees for a new round. Equities are
// withheld here; they are the quiz answer and only come back on /answer.
type roundResponse struct {
	RoundID   string       `json:"round_id"`
	Streak    int          `json:"streak"`
	Hand1     []poker.Card `json:"hand1"`
	Hand2     []poker.Card `json:"hand2"`
	Community []poker.Card `json:"community"`
	Stage     poker.Stage  `json:"stage"`
	Fallback  bool         `json:"fallback,omitempty"`
}

func (s *Server) handleRound(w http.ResponseWriter, r *http.Request) {
	streak := s.Sess.GetInt(r.Context(), sessStreak)

	var round game.Round
	res, err := s.Cache.GetScenario(r.Context(), streak)
	if err != nil {
		// The cache surfaces a miss-with-failed-refill as an error and
		// leaves the fallback policy to us.
		s.Log.Error().Int("streak", streak).Err(err).Msg("scenario acquisition failed, serving fallback")
		round = game.FallbackRound(streak)
	} else {
		round = game.NewRound(streak, res)
	}

	buf, err := json.Marshal(round)
	if err != nil {
		s.Log.Error().Err(err).Msg("marshal round")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	s.Sess.Put(r.Context(), sessRound, string(buf))

	s.respondJSON(w, http.StatusOK, roundResponse{
		RoundID:   round.ID,
		Streak:    streak,
		Hand1:     round.Scenario.Hand1,
		Hand2:     round.Scenario.Hand2,
		Community: round.Scenario.Community,
		Stage:     round.Scenario.Stage,
		Fallback:  round.Fallback,
	})
}

type answerRequest struct {
	RoundID string     `json:"round_id"`
	Guess   game.Guess `json:"guess"`
}

type answerResponse struct {
	Correct       bool     `json:"correct"`
	Streak        int      `json:"streak"`
	BestStreak    int      `json:"best_streak"`
	Hand1Equity   *float64 `json:"hand1_equity,omitempty"`
	Hand2Equity   *float64 `json:"hand2_equity,omitempty"`
	Hand1Category string   `json:"hand1_category,omitempty"`
	Hand2Category string   `json:"hand2_category,omitempty"`
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}
	if !req.Guess.Valid() {
		http.Error(w, "guess must be hand1 or hand2", http.StatusBadRequest)
		return
	}

	raw := s.Sess.GetString(r.Context(), sessRound)
	if raw == "" {
		http.Error(w, "no round in progress", http.StatusConflict)
		return
	}
	var round game.Round
	if err := json.Unmarshal([]byte(raw), &round); err != nil {
		s.Log.Error().Err(err).Msg("unmarshal pending round")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if req.RoundID != round.ID {
		http.Error(w, "round mismatch", http.StatusConflict)
		return
	}

	correct := round.Grade(req.Guess)
	next := game.Advance(round.Streak, correct)

	best := s.Sess.GetInt(r.Context(), sessBest)
	if round.Streak+1 > best && correct {
		best = round.Streak + 1
		s.Sess.Put(r.Context(), sessBest, best)
	}
	s.Sess.Put(r.Context(), sessStreak, next)
	s.Sess.Remove(r.Context(), sessRound)

	// Warm the levels the player is heading into. A correct answer moves
	// one level up; a wrong one restarts at zero.
	s.Cache.PrefetchLevels(next, s.Cache.Lookahead())

	resp := answerResponse{
		Correct:    correct,
		Streak:     next,
		BestStreak: best,
	}
	if eq := round.Equity; eq != nil && len(eq.Equities) >= 2 {
		resp.Hand1Equity = &eq.Equities[0]
		resp.Hand2Equity = &eq.Equities[1]
	}
	resp.Hand1Category = s.categoryFor(r.Context(), round.Scenario, round.Scenario.Hand1)
	resp.Hand2Category = s.categoryFor(r.Context(), round.Scenario, round.Scenario.Hand2)

	s.respondJSON(w, http.StatusOK, resp)
}

// categoryFor names the hand currently made with the board, best effort.
func (s *Server) categoryFor(ctx context.Context, sc *poker.Scenario, hand []poker.Card) string {
	if s.Evaluator == nil || sc.Stage == poker.StagePreflop {
		return ""
	}
	ev, err := s.Evaluator.Evaluate(ctx, poker.HandCode(hand)+sc.BoardCode())
	if err != nil {
		s.Log.Debug().Err(err).Msg("hand evaluation failed")
		return ""
	}
	return ev.Category
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	s.Sess.Put(r.Context(), sessStreak, 0)
	s.Sess.Remove(r.Context(), sessRound)
	s.Cache.Clear()
	s.Cache.PrefetchLevels(0, s.Cache.Lookahead())

	s.respondJSON(w, http.StatusOK, map[string]any{"streak": 0})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.Cache.Stats())
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	s.Cache.Clear()
	s.respondJSON(w, http.StatusOK, map[string]any{"cleared": true})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Log.Error().Err(err).Msg("encode response")
	}
}
