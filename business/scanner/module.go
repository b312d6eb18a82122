// Package scanner implements the scanner bounded context: the
// arbitrage engine and the supervisor that drives venue connectors
// against it (spec.md §4.F, §4.G).
package scanner

import (
	"context"

	marketdi "github.com/matrix-911/Airbitrage/business/market/di"
	marketdomain "github.com/matrix-911/Airbitrage/business/market/domain"
	"github.com/matrix-911/Airbitrage/business/scanner/app"
	scannerdi "github.com/matrix-911/Airbitrage/business/scanner/di"
	"github.com/matrix-911/Airbitrage/internal/config"
	"github.com/matrix-911/Airbitrage/internal/di"
	"github.com/matrix-911/Airbitrage/internal/logger"
	"github.com/matrix-911/Airbitrage/internal/monolith"
	"github.com/shopspring/decimal"
)

// Module implements the scanner bounded context.
type Module struct{}

// RegisterServices registers the arbitrage engine and the supervisor.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, scannerdi.Engine, func(sr di.ServiceRegistry) *app.Engine {
		cfg := sr.Get("config").(*config.Config)
		table := marketdi.GetQuoteTable(sr)

		return app.NewEngine(table, app.EngineConfig{
			ThreshEnterFraction: cfg.Scanner.ThreshEnterFraction(),
			ThreshExitFraction:  cfg.Scanner.ThreshExitFraction(),
			MaxProfitPct:        decimal.NewFromFloat(cfg.Scanner.MaxProfitPct),
			LongMs:              cfg.Scanner.LongMs(),
			StaleMs:             cfg.Scanner.StaleMs(),
		}, nil)
	})

	di.RegisterToken(c, scannerdi.Supervisor, func(sr di.ServiceRegistry) *app.Supervisor {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		table := marketdi.GetQuoteTable(sr)
		engine := scannerdi.GetEngine(sr)

		return app.NewSupervisor(log, table, engine, cfg.Venues.Enabled, cfg.Venues.Options)
	})

	return nil
}

// Startup discovers and launches every configured venue against the
// configured pairs (spec.md §1's start(pairs) external entry point).
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()
	sup := scannerdi.GetSupervisor(mono.Services())

	desired := marketdomain.ParsePairs(cfg.Scanner.Pairs)
	if err := sup.Start(ctx, desired); err != nil {
		return err
	}

	log.Info(ctx, "scanner module started", "pairs", len(desired), "venues", len(cfg.Venues.Enabled))
	return nil
}
