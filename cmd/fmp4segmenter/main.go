package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/shapedtime/fmp4segmenter/internal/config"
	"github.com/shapedtime/fmp4segmenter/internal/httpapi"
	"github.com/shapedtime/fmp4segmenter/internal/ingest"
	"github.com/shapedtime/fmp4segmenter/internal/metrics"
	"github.com/shapedtime/fmp4segmenter/internal/publish"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	idleTimeout := flag.Duration("idle-timeout", 30*time.Second, "how long without input before the source is considered idle")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	slog.Info("starting fmp4segmenter", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	bufferListSize := cfg.Segmenter.BufferListSize
	session := publish.New(publish.Options{
		HLSBase:        cfg.Segmenter.HLSBase,
		HLSListSize:    cfg.Segmenter.HLSListSize,
		BufferListSize: bufferListSize,
	})

	ingestor := ingest.NewIngestor(session, *idleTimeout)

	var reg *prometheus.Registry
	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		m := metrics.New(reg)
		reg.MustRegister(metrics.NewSessionCollector(session))
		ingest.WireMetrics(session, m)
		ingestor.OnBytes = func(n int) { m.BytesIngestedTotal.Add(float64(n)) }
		metricsServer = metrics.NewServer(cfg.Metrics.Port, reg)

		go func() {
			if err := metricsServer.Start(); err != nil {
				slog.Error("metrics server error", "error", err)
			}
		}()
	}

	apiServer := httpapi.NewServer(session, cfg.Segmenter.HLSBase)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: apiServer.Handler(),
	}

	go func() {
		slog.Info("starting HTTP server", "port", cfg.Server.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	ingestor.Start()

	ingestCtx, cancelIngest := context.WithCancel(context.Background())
	ingestDone := make(chan struct{})
	go func() {
		defer close(ingestDone)
		slog.Info("reading fMP4 stream from stdin")
		if err := ingestor.Run(ingestCtx, os.Stdin); err != nil && err != context.Canceled {
			slog.Error("ingest stopped", "error", err)
		}
	}()

	slog.Info("fmp4segmenter is ready",
		"playlist_url", fmt.Sprintf("http://localhost:%d/%s.m3u8", cfg.Server.HTTPPort, cfg.Segmenter.HLSBase),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("received signal, shutting down", "signal", sig)
	case <-ingestDone:
		slog.Info("input stream ended, shutting down")
	}

	cancelIngest()
	ingestor.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			slog.Error("metrics server shutdown error", "error", err)
		}
	}

	slog.Info("fmp4segmenter stopped")
}
