package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron"

	"github.com/TimurBerdyyev/seller-apis/config"
	"github.com/TimurBerdyyev/seller-apis/internal/core/engine"
	"github.com/TimurBerdyyev/seller-apis/internal/marketplaces/ozon"
	"github.com/TimurBerdyyev/seller-apis/internal/marketplaces/yandex"
	"github.com/TimurBerdyyev/seller-apis/internal/source/feed"
	"github.com/TimurBerdyyev/seller-apis/internal/state/pgstate"
	"github.com/TimurBerdyyev/seller-apis/pkg/dbconnect/postgres"
	"github.com/TimurBerdyyev/seller-apis/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to the application config")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config %s: %v", *configPath, err)
	}

	writer := os.Stdout
	appLog := logger.NewLogger(writer, "[app]")

	var store engine.BaselineStore
	if cfg.Postgres.Configured() {
		db, err := postgres.NewPgConnector(&cfg.Postgres).Connect()
		if err != nil {
			log.Fatalf("Failed to connect to Postgres: %v", err)
		}
		defer db.Close()

		repo := pgstate.NewBaselineRepository(db)
		if err := repo.Migrate(context.Background()); err != nil {
			log.Fatalf("Failed to migrate baseline schema: %v", err)
		}
		store = repo
	} else {
		appLog.Log("no baseline database configured, diffing against marketplace state only")
	}

	adapters := buildAdapters(cfg, store, writer)
	if len(adapters) == 0 {
		log.Fatal("No marketplace credentials configured")
	}

	source := feed.NewFetcher(cfg.Feed.URL, cfg.Feed.HeaderRows, writer)
	runner := engine.NewRunner(engine.Options{
		Differ: engine.Differ{
			PricePrecision:  cfg.Sync.PricePrecision,
			MissingSKUs:     engine.MissingSKUPolicy(cfg.Sync.MissingSKUPolicy),
			IncludeRemovals: cfg.Sync.IncludeRemovals,
		},
		Retry: engine.RetryPolicy{
			Attempts:          cfg.Sync.RetryAttempts,
			BackoffBase:       cfg.Sync.RetryBackoffBase.Std(),
			BackoffMultiplier: cfg.Sync.RetryBackoffMultiplier,
		},
		MaxBatchSize: cfg.Sync.MaxBatchSize,
	}, writer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Schedule == "" {
		os.Exit(runCycle(ctx, appLog, source, runner, adapters))
	}

	appLog.Log("running cycles on schedule %q", cfg.Schedule)
	scheduler := cron.New()
	if err := scheduler.AddFunc(cfg.Schedule, func() {
		runCycle(ctx, appLog, source, runner, adapters)
	}); err != nil {
		log.Fatalf("Invalid schedule %q: %v", cfg.Schedule, err)
	}
	scheduler.Start()
	<-ctx.Done()
	scheduler.Stop()
}

func buildAdapters(cfg *config.AppConfig, store engine.BaselineStore, writer *os.File) []engine.MarketplaceAdapter {
	var adapters []engine.MarketplaceAdapter
	if cfg.Ozon.ClientID != "" && cfg.Ozon.APIKey != "" {
		adapters = append(adapters, ozon.NewAdapter(ozon.Config{
			ClientID:             cfg.Ozon.ClientID,
			APIKey:               cfg.Ozon.APIKey,
			APIURL:               cfg.Ozon.APIURL,
			RequestIntervalFloor: cfg.Sync.RequestIntervalFloor.Std(),
		}, store, writer))
	}
	if cfg.YandexMarket.Token != "" && cfg.YandexMarket.CampaignID != "" {
		adapters = append(adapters, yandex.NewAdapter(yandex.Config{
			Token:                cfg.YandexMarket.Token,
			CampaignID:           cfg.YandexMarket.CampaignID,
			BusinessID:           cfg.YandexMarket.BusinessID,
			APIURL:               cfg.YandexMarket.APIURL,
			RequestIntervalFloor: cfg.Sync.RequestIntervalFloor.Std(),
		}, store, writer))
	}
	return adapters
}

// runCycle возвращает код завершения процесса: 0 только если все позиции
// успешно отправлены.
func runCycle(ctx context.Context, appLog logger.Logger, source engine.InventorySource, runner *engine.Runner, adapters []engine.MarketplaceAdapter) int {
	items, err := source.ListItems(ctx)
	if err != nil {
		appLog.Log("cycle aborted: %v", err)
		return 1
	}

	report, err := runner.RunCycle(ctx, items, adapters)
	if err != nil {
		appLog.Log("cycle aborted: %v", err)
		return 1
	}

	appLog.Log("run %s finished in %s: %d succeeded, %d failed, %d skipped",
		report.RunID,
		report.FinishedAt.Sub(report.StartedAt),
		report.Totals.Succeeded, report.Totals.Failed, report.Totals.Skipped)
	for marketplace, result := range report.PerMarketplace {
		if result.Err != nil {
			appLog.Log("%s finished with error: %v", marketplace, result.Err)
		}
	}

	if report.Clean() {
		return 0
	}
	return 1
}
