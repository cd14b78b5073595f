// Command assetcored serves the asset lifecycle API over HTTP. Storage and
// archive backends are selected through ASSETCORE_* environment variables; a
// .env file in the working directory is honored when present.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"assetcore/internal/adapters/httpapi"
	"assetcore/internal/archive"
	"assetcore/internal/core"
	"assetcore/internal/infra/persistence/memory"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "assetcored:", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "", "listen address (overrides ASSETCORE_HTTP_ADDR)")
	flag.Parse()

	// A missing .env file is the normal production case.
	_ = godotenv.Load()

	logger := core.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	listen := *addr
	if listen == "" {
		listen = os.Getenv("ASSETCORE_HTTP_ADDR")
	}
	if listen == "" {
		listen = ":8080"
	}

	store, err := core.OpenStore(core.NewDefaultRulesEngine(),
		memory.WithLogger(logger),
		memory.WithAuditSink(core.NewLogAuditSink(logger)),
	)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	archiveStore, err := archive.Open(ctx)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}

	registry := prometheus.NewRegistry()
	metrics, err := core.NewPrometheusMetricsRecorder(registry)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	worker := core.NewWorker(store, core.NewLogNotifier(logger), core.NewArchiveRenderer(archiveStore),
		core.WithDispatchLogger(logger),
		core.WithDispatchMetrics(metrics),
	)
	worker.Start()

	svc := core.NewService(store,
		core.WithLogger(logger),
		core.WithMetricsRecorder(metrics),
		core.WithDispatcher(worker),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.Handle("/", httpapi.NewHandler(svc, httpapi.WithLogger(logger)).Router())

	srv := &http.Server{
		Addr:         listen,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("assetcored listening", "addr", listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	if err := worker.Stop(shutdownCtx); err != nil {
		logger.Error("dispatcher shutdown", "error", err)
	}
	return nil
}
