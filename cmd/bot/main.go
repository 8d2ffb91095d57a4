package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"FloorSentinel/api"
	"FloorSentinel/internal/analytics"
	"FloorSentinel/internal/config"
	"FloorSentinel/internal/executor"
	"FloorSentinel/internal/gas"
	"FloorSentinel/internal/market"
	"FloorSentinel/internal/notifier"
	"FloorSentinel/internal/recorder"
	"FloorSentinel/internal/scanner"
	"FloorSentinel/internal/scheduler"
	"FloorSentinel/internal/sweeper"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Logger setup
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Info().Msg("FloorSentinel starting")

	// Root context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}

	// Market data
	md := market.NewReservoirClient(cfg.Market.BaseURL, cfg.Market.APIKey, cfg.Proxy)
	log.Info().Str("source", md.Name()).Strs("collections", cfg.Scan.Collections).Msg("market data initialized")

	// Gas oracle (optional)
	var oracle gas.Oracle
	if cfg.Gas.EtherscanAPIKey != "" {
		oracle = gas.NewEtherscanOracle(cfg.Gas.EtherscanAPIKey, cfg.Proxy)
	} else {
		log.Warn().Msg("no etherscan api key, falling back to configured priority fee")
	}

	// Notifier
	var notif notifier.Notifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		notif = notifier.NewTelegramNotifier(ctx, cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		log.Info().Msg("telegram notifier initialized")
	} else {
		notif = notifier.NewLogNotifier()
	}

	// Recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Signer
	signer := executor.NewDryRunSigner(cfg.Wallet.Address)
	if !cfg.DryRun {
		log.Warn().Msg("live signing is not configured, transactions will be simulated")
	}

	// Core components
	engine := analytics.NewEngine(md)
	sc := scanner.New(md, engine, notif)
	ex := executor.New(md, oracle, signer, notif, rec)

	sw := sweeper.New(sc, ex, notif, rec, sweeper.Options{
		Collections:         cfg.Scan.Collections,
		DiscountThreshold:   cfg.Sweep.DiscountThreshold,
		MaxPricePerItem:     cfg.Sweep.MaxPricePerItem,
		MaxTotalSpend:       cfg.Sweep.MaxTotalSpend,
		CheckInterval:       cfg.Sweep.CheckInterval.Std(),
		IncludeRarity:       cfg.Scan.IncludeRarity,
		MaxItemsPerSweep:    cfg.Sweep.MaxItemsPerSweep,
		MinRarityPercentile: cfg.Sweep.MinRarityPercentile,
		MaxRiskScore:        cfg.Scan.MaxRiskScore,
		RiskWeights:         cfg.Scan.RiskWeights,
		ScanRequestsPerSec:  cfg.Scan.RequestsPerSec,
		Executor: executor.Options{
			GasMultiplier:   cfg.Sweep.GasMultiplier,
			MaxGasPriceGwei: cfg.Sweep.MaxGasPriceGwei,
			PriorityFeeGwei: cfg.Sweep.PriorityFeeGwei,
		},
	})

	if cfg.Sweep.Enabled {
		sw.Start(ctx)
		defer sw.Stop()
	} else {
		// One-shot scan so the bot reports opportunities even without
		// autonomous buying.
		go func() {
			result := sc.Scan(ctx, cfg.Scan.Collections, cfg.Scan.MinDiscount/100, scanner.Options{
				IncludeRarity:        cfg.Scan.IncludeRarity,
				MinDiscount:          cfg.Scan.MinDiscount,
				MaxResults:           cfg.Scan.MaxResults,
				MaxRiskScore:         cfg.Scan.MaxRiskScore,
				MaxRequestsPerSecond: cfg.Scan.RequestsPerSec,
				RiskWeights:          cfg.Scan.RiskWeights,
			})
			log.Info().Int("opportunities", len(result.Opportunities)).
				Int("skips", len(result.Skips)).Msg("initial scan complete")
		}()
	}

	// Cron digest
	sched := scheduler.NewScheduler(sw, notif, rec)
	if err := sched.RegisterAll(cfg.Schedule.DigestCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	// Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "FloorSentinel",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})
	api.SetupRoutes(app, sw)

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutdown signal received")
		if err := app.Shutdown(); err != nil {
			log.Error().Err(err).Msg("error during shutdown")
		}
	}()

	log.Info().Str("addr", cfg.API.ListenAddr).Msg("starting server")
	if err := app.Listen(cfg.API.ListenAddr); err != nil {
		log.Fatal().Err(err).Msg("server failed to start")
	}
	log.Info().Msg("FloorSentinel stopped")
}
