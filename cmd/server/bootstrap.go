package main

import (
	"context"
	"time"

	appbilling "github.com/rentflow/backend/internal/application/billing"
	"github.com/rentflow/backend/internal/domain/billing"
	"github.com/rentflow/backend/internal/infrastructure/ai"
	"github.com/rentflow/backend/internal/infrastructure/config"
	"github.com/rentflow/backend/internal/infrastructure/logger"
	"github.com/rentflow/backend/internal/infrastructure/printing"
	"github.com/rentflow/backend/internal/infrastructure/storage"
	"github.com/rentflow/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// telemetryStack groups the observability pieces started at boot
type telemetryStack struct {
	log       *zap.Logger
	meter     metric.Meter
	providers *telemetry.Providers
	profiler  *telemetry.Profiler
}

func setupTelemetry(ctx context.Context, cfg *config.Config, log *zap.Logger) *telemetryStack {
	tc := cfg.Telemetry
	providers, err := telemetry.Start(ctx, telemetry.Config{
		ServiceName:     tc.ServiceName,
		Endpoint:        tc.CollectorEndpoint,
		Insecure:        tc.Insecure,
		Traces:          tc.Enabled,
		SamplingRatio:   tc.SamplingRatio,
		Metrics:         tc.Enabled && tc.MetricsEnabled,
		MetricsInterval: tc.MetricsInterval,
		Logs:            tc.Enabled && tc.LogsEnabled,
	}, log)
	if err != nil {
		log.Fatal("Failed to start telemetry", zap.Error(err))
	}

	t := &telemetryStack{log: log, providers: providers, meter: providers.Meter(tc.ServiceName)}
	if providers.LogsEnabled() {
		t.log = logger.Tee(log, providers.LogCore(logger.ParseLevel(cfg.Log.Level)))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Pyroscope.Enabled,
		ServerAddress:   cfg.Pyroscope.ServerAddress,
		ApplicationName: cfg.Pyroscope.ApplicationName,
		Environment:     cfg.App.Env,
	}, t.log)
	if err != nil {
		t.log.Warn("Continuous profiling unavailable", zap.Error(err))
		return t
	}
	t.profiler = profiler
	if cfg.Pyroscope.Enabled {
		providers.EnableSpanProfiles()
	}
	return t
}

func (t *telemetryStack) shutdown(log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if t.profiler != nil {
		if err := t.profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}
	if err := t.providers.Shutdown(ctx); err != nil {
		log.Error("Error shutting down telemetry", zap.Error(err))
	}
}

// newReceiptStorage falls back to the in-memory stub when object storage is off
func newReceiptStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) appbilling.ReceiptStorage {
	if !cfg.Storage.Enabled {
		log.Warn("Object storage disabled, receipts are kept in memory")
		return storage.NewStubReceiptStorage()
	}
	s3, err := storage.NewS3ReceiptStorage(ctx, &cfg.Storage,
		storage.WithLogger(log),
		storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
	)
	if err != nil {
		log.Fatal("Failed to initialize receipt storage", zap.Error(err))
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		log.Warn("Receipt bucket check failed", zap.String("bucket", s3.Bucket()), zap.Error(err))
	}
	log.Info("Receipt storage ready", zap.String("bucket", s3.Bucket()))
	return s3
}

func newReceiptJudge(cfg *config.Config, log *zap.Logger) billing.ReceiptJudge {
	if !cfg.AI.Enabled {
		log.Info("AI receipt verification disabled")
		return ai.DisabledReceiptJudge{}
	}
	log.Info("AI receipt verification enabled", zap.String("model", cfg.AI.Model))
	return ai.NewOpenAIReceiptJudge(cfg.AI, log)
}

// newStatementRenderer returns nil when printing is disabled
func newStatementRenderer(cfg *config.Config, log *zap.Logger) (appbilling.StatementRenderer, func()) {
	if !cfg.Printing.Enabled {
		log.Info("Statement printing disabled")
		return nil, func() {}
	}
	renderer := printing.NewChromedpRenderer(printing.ChromedpConfig{
		DefaultTimeout: cfg.Printing.Timeout,
		RemoteURL:      cfg.Printing.RemoteURL,
		NoSandbox:      cfg.Printing.NoSandbox,
		Logger:         log,
	})
	printer, err := printing.NewStatementPrinter(printing.NewTemplateEngine(), renderer)
	if err != nil {
		log.Fatal("Failed to load statement templates", zap.Error(err))
	}
	closeRenderer := func() {
		if err := renderer.Close(); err != nil {
			log.Error("Error closing PDF renderer", zap.Error(err))
		}
	}
	return printer, closeRenderer
}
