// Command predictor serves the race-outcome prediction form and JSON API.
// The model, label encoder and circuit lookup are loaded once at startup;
// if any of them is missing or malformed the process exits non-zero.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	httpadapter "github.com/couchcryptid/f1-dataset-etl/internal/adapter/http"
	"github.com/couchcryptid/f1-dataset-etl/internal/config"
	"github.com/couchcryptid/f1-dataset-etl/internal/observability"
	"github.com/couchcryptid/f1-dataset-etl/internal/predict"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	predictor, err := predict.Load(predict.Paths{
		Model:    cfg.ModelPath,
		Labels:   cfg.LabelsPath,
		Circuits: cfg.CircuitsPath,
	})
	if err != nil {
		logger.Error("failed to load predictor artifacts", "error", err)
		os.Exit(1)
	}
	metrics.PredictorEnabled.Set(1)
	logger.Info("predictor loaded",
		"model", cfg.ModelPath,
		"labels", cfg.LabelsPath,
		"circuits", len(predictor.Circuits()),
	)

	srv := httpadapter.NewServer(cfg.HTTPAddr, predictor, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		logger.Error("http server error", "error", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
