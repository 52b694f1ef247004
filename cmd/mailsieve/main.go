package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/midiakiasat/MAILSIEVE/internal/api"
	"github.com/midiakiasat/MAILSIEVE/internal/batch"
	"github.com/midiakiasat/MAILSIEVE/internal/config"
	"github.com/midiakiasat/MAILSIEVE/internal/discover"
	"github.com/midiakiasat/MAILSIEVE/internal/engine"
	"github.com/midiakiasat/MAILSIEVE/internal/evidence"
	"github.com/midiakiasat/MAILSIEVE/internal/extract"
	"github.com/midiakiasat/MAILSIEVE/internal/fetch"
	"github.com/midiakiasat/MAILSIEVE/internal/monitoring"
	"github.com/midiakiasat/MAILSIEVE/internal/mx"
	"github.com/midiakiasat/MAILSIEVE/internal/output"
)

func newLogger(cfg *config.Config) *zap.Logger {
	zcfg := zap.NewProductionConfig()
	if cfg.Verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if cfg.Quiet {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	}
	logger, _ := zcfg.Build()
	return logger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback, _ := zap.NewProduction()
		fallback.Fatal("could not load config", zap.Error(err))
	}

	logger := newLogger(cfg)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}

	queue, err := batch.LoadQueue(cfg.InputFile)
	if err != nil {
		logger.Fatal("could not read input list", zap.Error(err))
	}
	processed, err := output.LoadProcessed(cfg.OutputFile)
	if err != nil {
		logger.Fatal("could not read prior output", zap.Error(err))
	}
	writer, err := output.Open(cfg.OutputFile)
	if err != nil {
		logger.Fatal("could not open output", zap.Error(err))
	}

	metrics := monitoring.NewMetrics()

	// Pacer, robots rules and disk cache are shared across every domain job
	// so inputs resolving to the same host stay polite.
	pacer := fetch.NewHostPacer(cfg.RateInterval())
	robots := fetch.NewRobotsGate(&http.Client{Timeout: cfg.Timeout()}, logger)
	cache := fetch.NewDiskCache(cfg.CacheDir, logger)
	fetcher := fetch.NewPoliteFetcher(fetch.Options{
		Timeout:      cfg.Timeout(),
		Retries:      cfg.Retries,
		Backoff:      cfg.Backoff(),
		UserAgent:    cfg.UserAgent,
		ExtraHeaders: cfg.Headers(),
	}, robots, pacer, cache, metrics, logger)

	eng := &engine.Engine{
		Discovery: &discover.Discovery{
			Fetcher:    fetcher,
			MaxPages:   cfg.MaxPages,
			UseSitemap: cfg.UseSitemap,
			ExtraPaths: cfg.Paths(),
			Logger:     logger,
		},
		Pipeline: extract.NewPipeline(cfg.StrictBlocks),
		MX:       mx.NewResolver(logger),
		Evidence: evidence.NewLogger(cfg.EvidenceFile, cfg.HashEvidence, logger),
		Metrics:  metrics,
		Logger:   logger,
	}

	orch := &batch.Orchestrator{
		Processor:   eng,
		Writer:      writer,
		Concurrency: cfg.Concurrency,
		Logger:      logger,
	}

	var server *api.Server
	if cfg.MetricsAddr != "" {
		server = api.NewServer(cfg.MetricsAddr, orch, logger)
		go server.Start()
	}

	// A termination signal stops new domain launches; in-flight jobs finish.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-quit
		logger.Info("signal received, finishing in-flight domains", zap.String("signal", sig.String()))
		orch.Stop()
	}()

	if err := orch.Run(context.Background(), queue, processed); err != nil {
		logger.Fatal("batch failed", zap.Error(err))
	}

	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Warn("status server shutdown", zap.Error(err))
		}
	}
}
