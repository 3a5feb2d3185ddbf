package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"media-index/internal/handlers"
	"media-index/internal/index"
	"media-index/internal/logging"
	"media-index/internal/memory"
	"media-index/internal/metrics"
	"media-index/internal/middleware"
	"media-index/internal/router"
	"media-index/internal/startup"
	"media-index/internal/vault"
	"media-index/internal/workers"
)

func main() {
	startTime := time.Now()

	config, err := startup.LoadConfig()
	if err != nil {
		logging.Fatal("Configuration error: %v", err)
	}

	memory.ConfigureFromEnv()
	metrics.InitializeMetrics()

	v, err := vault.New(config.VaultDir)
	if err != nil {
		logging.Fatal("Failed to open vault: %v", err)
	}

	ix := index.New(v, config.Extensions)
	collector := metrics.NewCollector(ix, 30*time.Second)
	collector.Start()

	// Initial scan before the watcher starts, so events observed during
	// the scan window settle through the idempotent router afterwards.
	startup.LogIndexInit()
	scanStart := time.Now()
	if err := ix.Initialize(); err != nil {
		logging.Fatal("Initial vault scan failed: %v", err)
	}
	startup.LogIndexReady(ix.Len(), len(ix.Tags()), time.Since(scanStart))

	watcher, err := vault.NewWatcher(v)
	if err != nil {
		logging.Fatal("Failed to create filesystem watcher: %v", err)
	}
	if err := watcher.Start(); err != nil {
		logging.Fatal("Failed to start filesystem watcher: %v", err)
	}
	startup.LogWatcherStarted()

	mutations := router.New(v, ix)
	go mutations.Run(watcher.Events())

	monitor := memory.NewMonitor(memory.DefaultConfig())
	monitor.Start()

	if config.SidecarWarmup {
		go ix.WarmUp(workers.ForCPU(0), monitor)
	}

	h := handlers.New(ix, v)
	r := mux.NewRouter()
	h.RegisterRoutes(r)
	startup.LogHTTPRoutes(r, config.LogHealthChecks)

	handler := middleware.Compression(
		middleware.Logger(config.LogHealthChecks)(
			middleware.Metrics(r)))

	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", h.MetricsHandler())
		metricsSrv = &http.Server{
			Addr:        ":" + config.MetricsPort,
			Handler:     metricsMux,
			ReadTimeout: 15 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	go handleShutdown(srv, metricsSrv, watcher, ix, collector, monitor)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logging.Fatal("Server error: %v", err)
	}
}

func handleShutdown(srv, metricsSrv *http.Server, watcher *vault.Watcher, ix *index.Index, collector *metrics.Collector, monitor *memory.Monitor) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Stopping filesystem watcher")
	watcher.Close()
	startup.LogShutdownStepComplete("Filesystem watcher stopped")

	collector.Stop()
	monitor.Stop()

	startup.LogShutdownStep("Closing index notifier")
	ix.Close()
	startup.LogShutdownStepComplete("Index notifier closed")

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		}
	}

	startup.LogShutdownComplete()
}
