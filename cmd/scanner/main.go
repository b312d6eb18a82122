// Package main is the entry point for the cross-exchange spot
// arbitrage scanner.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/matrix-911/Airbitrage/business/market"
	_ "github.com/matrix-911/Airbitrage/business/market/infra/venue/binance"
	_ "github.com/matrix-911/Airbitrage/business/market/infra/venue/bitget"
	_ "github.com/matrix-911/Airbitrage/business/market/infra/venue/coinbase"
	_ "github.com/matrix-911/Airbitrage/business/market/infra/venue/kraken"
	_ "github.com/matrix-911/Airbitrage/business/market/infra/venue/lbank"
	"github.com/matrix-911/Airbitrage/business/scanner"
	scannerdi "github.com/matrix-911/Airbitrage/business/scanner/di"
	"github.com/matrix-911/Airbitrage/internal/apm"
	"github.com/matrix-911/Airbitrage/internal/config"
	"github.com/matrix-911/Airbitrage/internal/health"
	"github.com/matrix-911/Airbitrage/internal/logger"
	"github.com/matrix-911/Airbitrage/internal/metrics"
	"github.com/matrix-911/Airbitrage/internal/monolith"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("scanner %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logLevel := logger.LevelInfo
	switch cfg.App.LogLevel {
	case "debug":
		logLevel = logger.LevelDebug
	case "warn":
		logLevel = logger.LevelWarn
	case "error":
		logLevel = logger.LevelError
	}

	log := logger.New(os.Stderr, logLevel, cfg.App.Name)
	log.Info(ctx, "starting arbitrage scanner",
		"version", version,
		"environment", cfg.App.Environment,
		"pairs", len(cfg.Scanner.Pairs),
		"venues", cfg.Venues.Enabled,
	)

	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		if cfg.Telemetry.ServiceName != "" {
			os.Setenv("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName)
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
		}

		traceProvider = apm.NewTraceProvider(log, apm.WithProvider(apm.ZipkinProvider, log))
		log.Info(ctx, "tracing initialized", "provider", "zipkin", "endpoint", cfg.Telemetry.OTLPEndpoint)

		metrics.NewMetricProvider(
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.ProviderCfg{
				Provider: metrics.PrometheusProvider,
			}),
		)

		port := cfg.Telemetry.PrometheusPort
		if port == 0 {
			port = 9090
		}
		go metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(port)))
		log.Info(ctx, "prometheus metrics server started", "port", port)
	}
	defer func() {
		if traceProvider != nil {
			traceProvider.Stop()
		}
	}()

	healthServer := health.NewServer(8081, version)
	healthServer.RegisterCheck("config", func(ctx context.Context) (bool, string) {
		return true, "loaded"
	})
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", 8081)
	}
	defer healthServer.Stop(ctx)

	mono, err := monolith.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	modules := []monolith.Module{
		&market.Module{},  // provides the shared quote table
		&scanner.Module{}, // depends on market for the quote table
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}

	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	healthServer.RegisterCheck("supervisor", func(ctx context.Context) (bool, string) {
		sup := scannerdi.GetSupervisor(mono.Services())
		if sup == nil {
			return false, "not started"
		}
		return true, "running"
	})

	log.Info(ctx, "all modules started, scanning for arbitrage")

	<-ctx.Done()

	log.Info(ctx, "shutting down")
	sup := scannerdi.GetSupervisor(mono.Services())
	sup.Stop()

	return nil
}
