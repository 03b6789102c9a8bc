package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/petralab/lithograph/internal/analysis"
	"github.com/petralab/lithograph/internal/catalog"
	"github.com/petralab/lithograph/internal/config"
	"github.com/petralab/lithograph/internal/history"
	"github.com/petralab/lithograph/internal/logging"
	"github.com/petralab/lithograph/internal/report"
	"github.com/petralab/lithograph/internal/server"
	"github.com/petralab/lithograph/internal/suggest"
)

func main() {
	rulesPath := flag.String("rules", "", "Path to a YAML recommendation rules file (overrides LITHOGRAPH_RULES_PATH)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Init(cfg.Security.SecurityMode)

	if *rulesPath != "" {
		cfg.Report.RulesPath = *rulesPath
	}

	store, err := catalog.NewStore(cfg.Storage.DataPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize catalog")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Pick up mineral folders edited on disk while running.
	if cfg.Storage.WatchEnabled {
		watcher, err := catalog.NewWatcher(store)
		if err != nil {
			log.Warn().Err(err).Msg("catalog watcher unavailable, folder edits require a restart")
		} else {
			go watcher.Run(ctx)
		}
	}

	runs, err := history.NewStore(cfg.Storage.HistoryPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open report history")
	}
	defer runs.Close()

	var rules []analysis.Rule
	if cfg.Report.RulesPath != "" {
		rules, err = analysis.LoadRules(cfg.Report.RulesPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Report.RulesPath).Msg("failed to load recommendation rules")
		}
		log.Info().Int("rules", len(rules)).Str("path", cfg.Report.RulesPath).Msg("loaded recommendation rules")
	}
	chain := analysis.NewChain(rules, cfg.Report.MaxRecommendations)

	builder := report.NewBuilder(cfg.Report.BuildCommand, cfg.Report.BuildArgs, cfg.Report.BuildTimeout)
	generator := report.NewService(chain, report.NewRenderer(), builder, store.MineralsRoot())

	suggester := suggest.NewClient(suggest.Config{
		APIKey:  cfg.LLM.OpenAIAPIKey,
		Model:   cfg.LLM.OpenAIModel,
		BaseURL: cfg.LLM.OpenAIURL,
	})
	if !suggester.Enabled() {
		log.Info().Msg("no OpenAI API key configured, suggestion and translation endpoints disabled")
	}

	addr, _, err := server.Start(ctx, cfg, server.Deps{
		Store:     store,
		Generator: generator,
		Suggester: suggester,
		Runs:      runs,
		RunLister: runs,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
	log.Info().Str("addr", addr).Msg("lithograph running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("shutting down")
	cancel()
	time.Sleep(1 * time.Second) // Give in-flight connections time to close.
}
