package bootstrap

import (
	"context"
	"log/slog"

	"github.com/insightlab/insight-reader/internal/config"
	"github.com/insightlab/insight-reader/internal/core/ports"
	"github.com/insightlab/insight-reader/internal/core/usecase"
	"github.com/insightlab/insight-reader/internal/infrastructure/docpipe"
	"github.com/insightlab/insight-reader/internal/infrastructure/llm/gemini"
	"github.com/insightlab/insight-reader/internal/infrastructure/resilience"
	"github.com/insightlab/insight-reader/internal/infrastructure/store/memstore"
	"github.com/insightlab/insight-reader/internal/infrastructure/vision"
	"github.com/insightlab/insight-reader/internal/observability/logging"
	"github.com/insightlab/insight-reader/internal/observability/metrics"
)

type App struct {
	Config config.Config

	IngestUC    ports.DocumentIngestor
	ReaderUC    ports.SessionReader
	NavigatorUC ports.SessionNavigator
	FormsUC     ports.FormAnalyzer
	MoneyUC     ports.MoneyAnalyzer
	SpeechUC    ports.SpeechService

	Store   *memstore.Store
	Metrics *metrics.HTTPServerMetrics
}

// New wires the infrastructure and use cases. The session sweeper is
// started here and stops when ctx is canceled.
func New(ctx context.Context, cfg config.Config, service string, logger *slog.Logger) *App {
	m := metrics.NewHTTPServerMetrics(service)

	store := memstore.New(memstore.Config{
		MaxSessions: cfg.MaxSessions,
		IdleTimeout: cfg.SessionIdleTimeout,
	}, logging.Component(logger, "memstore"))
	store.OnEvict(func(reason string) {
		m.RecordSessionEvicted(service, reason)
	})
	store.StartSweeper(ctx, cfg.SweepInterval)

	exec := resilience.NewExecutor(resilience.DefaultConfig())
	geminiClient := gemini.New(
		cfg.GeminiBaseURL,
		cfg.GeminiAPIKey,
		cfg.GeminiGenModel,
		cfg.GeminiVisionModel,
		cfg.GeminiTTSModel,
		exec,
		cfg.GeminiRequestsPerSecond,
	)
	synthesizer := gemini.NewSpeech(geminiClient)
	visionClient := vision.New(cfg.VisionServiceURL)

	pipeline := docpipe.New(logging.Component(logger, "docpipe"), cfg.RenderPageImages)
	analyzer := usecase.NewAnalysisUseCase(geminiClient, logging.Component(logger, "analysis"))

	return &App{
		Config: cfg,

		IngestUC:    usecase.NewIngestDocumentUseCase(pipeline, analyzer, store, logging.Component(logger, "ingest")),
		ReaderUC:    usecase.NewSessionQueryUseCase(store, analyzer),
		NavigatorUC: usecase.NewNavigateUseCase(store, analyzer, logging.Component(logger, "navigate")),
		FormsUC:     usecase.NewFormAnalysisUseCase(visionClient, visionClient, geminiClient, logging.Component(logger, "forms")),
		MoneyUC:     usecase.NewMoneyAnalysisUseCase(geminiClient, logging.Component(logger, "money")),
		SpeechUC:    usecase.NewSpeechUseCase(synthesizer),

		Store:   store,
		Metrics: m,
	}
}
