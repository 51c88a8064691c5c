// cmd/api/main.go
package main

import (
	"log"
	"net/http"
	"os"
	"time"

	scs "github.com/alexedwards/scs/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/equityguesser/gameserver/internal/config"
	"github.com/equityguesser/gameserver/internal/equity"
	"github.com/equityguesser/gameserver/internal/http/routes"
	"github.com/equityguesser/gameserver/internal/quizcache"
	"github.com/equityguesser/gameserver/internal/scenario"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	log.Printf("starting game server on :%s", cfg.Port)

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	// Remote collaborators
	scenarios, err := scenario.New(cfg.ScenarioAPIURL, scenario.WithHTTPClient(httpClient))
	if err != nil {
		log.Fatalf("scenario client error: %v", err)
	}
	var equities *equity.Client
	if cfg.HasEquityAPI() {
		equities, err = equity.New(cfg.EquityAPIURL, equity.WithHTTPClient(httpClient))
		if err != nil {
			log.Fatalf("equity client error: %v", err)
		}
	}

	// Scenario acquisition cache
	opts := quizcache.Options{
		Scenarios:      scenarios,
		Logger:         logger,
		TTL:            cfg.Cache.TTL,
		TargetPerLevel: cfg.Cache.TargetPerLevel,
		Lookahead:      cfg.Cache.Lookahead,
	}
	if equities != nil {
		opts.Equities = equities
	}
	cache, err := quizcache.New(opts)
	if err != nil {
		log.Fatalf("cache error: %v", err)
	}
	defer cache.Close()

	// Warm the first levels while the player reads the instructions.
	cache.PrefetchLevels(0, cfg.Cache.Lookahead)

	// Sessions (per-player streak and pending round)
	sess := scs.New()
	sess.Lifetime = 12 * time.Hour
	sess.Cookie.HttpOnly = true
	sess.Cookie.SameSite = http.SameSiteLaxMode
	sess.Cookie.Secure = false

	// Router / server
	so := routes.ServerOptions{
		Sess:  sess,
		Cache: cache,
		Cfg:   cfg,
		Log:   logger,
	}
	if equities != nil {
		so.Evaluator = equities
	}
	s := routes.New(so)
	h := hlog.NewHandler(logger)(s.Router)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: sess.LoadAndSave(h)}
	log.Fatal(srv.ListenAndServe())
}
