package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/insightlab/insight-reader/internal/adapters/http"
	"github.com/insightlab/insight-reader/internal/bootstrap"
	"github.com/insightlab/insight-reader/internal/config"
	"github.com/insightlab/insight-reader/internal/observability/logging"
)

const serviceName = "insight-reader-api"

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)
	app := bootstrap.New(ctx, cfg, serviceName, logger)

	router := httpadapter.NewRouter(
		app.IngestUC,
		app.ReaderUC,
		app.NavigatorUC,
		app.FormsUC,
		app.MoneyUC,
		app.SpeechUC,
		serviceName,
		cfg.DefaultLanguage,
		app.Metrics,
	).Handler()

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api_listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api_shutdown_error", "error", err)
	}
}
