package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/avilchesko/betsheet/internal/ingest/conversation"
	"github.com/avilchesko/betsheet/internal/ingest/dedupe"
	"github.com/avilchesko/betsheet/internal/ingest/session"
	"github.com/avilchesko/betsheet/internal/ingest/sheets"
	"github.com/avilchesko/betsheet/internal/ingest/telegram"
	"github.com/avilchesko/betsheet/internal/pkg/config"
	healthhandlers "github.com/avilchesko/betsheet/internal/pkg/health/handlers"
	"github.com/avilchesko/betsheet/internal/pkg/logging"
	"github.com/avilchesko/betsheet/internal/pkg/storage"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "configs/example.yaml", "Path to config file (env vars override it)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.SetupLogger("telegram-bot", slog.LevelInfo)

	policy, err := conversation.ParsePolicy(cfg.Sheets.CommitPolicy)
	if err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// No dedupe store configured means dedupe disabled, not a startup error.
	var dedupeStore dedupe.Store
	if cfg.Dedupe.Enabled {
		redisStore, err := dedupe.NewRedisStore(cfg.Dedupe.Addr, cfg.Dedupe.Password, cfg.Dedupe.DB)
		if err != nil {
			log.Fatalf("Failed to connect to dedupe store: %v", err)
		}
		defer redisStore.Close()
		dedupeStore = redisStore
		logger.Info("dedupe enabled", "addr", cfg.Dedupe.Addr, "ttl_days", cfg.Dedupe.TTLDays)
	} else {
		logger.Info("dedupe disabled, duplicate submissions will not be detected")
	}
	gate := dedupe.NewGate(dedupeStore, cfg.Dedupe.Namespace, cfg.Dedupe.TTL())

	// The local audit journal is optional the same way.
	var journal conversation.Journal
	if cfg.Journal.DSN != "" {
		betJournal, err := storage.NewBetJournal(cfg.Journal.DSN)
		if err != nil {
			log.Fatalf("Failed to open bet journal: %v", err)
		}
		defer betJournal.Close()
		journal = betJournal
		logger.Info("bet journal enabled")
	}

	api, err := telegram.NewAPI(cfg.Telegram.Token)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}
	logger.Info("authorized", "account", api.Self.UserName)

	sessions := session.NewStore()
	controller := conversation.New(conversation.Options{
		Sheets:                sheets.NewWebAppClient(cfg.Sheets.WebAppURL, cfg.Sheets.Timeout.Std()),
		Gate:                  gate,
		Journal:               journal,
		Sessions:              sessions,
		Replier:               telegram.NewReplier(api, logger),
		Policy:                policy,
		DefaultStake:          cfg.Sheets.DefaultStake,
		SuggestCell:           cfg.Sheets.ReadCell,
		SuggestAllowedUserIDs: cfg.Sheets.SuggestAllowedUserIDs,
		Logger:                logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("received shutdown signal, stopping bot")
		cancel()
	}()

	go func() {
		logger.Info("health endpoints listening", "addr", cfg.Health.Addr)
		if err := http.ListenAndServe(cfg.Health.Addr, healthhandlers.NewMux(sessions)); err != nil {
			logger.Error("health server stopped", "error", err)
		}
	}()

	logger.Info("starting ingest bot", "commit_policy", string(policy))
	telegram.NewBot(api, controller, &cfg.Telegram, logger).Run(ctx)
}
