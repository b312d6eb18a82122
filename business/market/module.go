// Package market implements the market bounded context: the quote
// table shared by every venue connector (spec.md §4.D). Connector
// construction itself is driven by the scanner supervisor, which
// resolves connectors from business/market/infra/venue's registry.
package market

import (
	"context"

	marketdi "github.com/matrix-911/Airbitrage/business/market/di"
	"github.com/matrix-911/Airbitrage/business/market/infra/quotetable"
	"github.com/matrix-911/Airbitrage/internal/di"
	"github.com/matrix-911/Airbitrage/internal/monolith"
)

// Module implements the market bounded context.
type Module struct{}

// RegisterServices registers the shared quote table.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, marketdi.QuoteTable, func(sr di.ServiceRegistry) *quotetable.Table {
		return quotetable.New()
	})
	return nil
}

// Startup has nothing to do: the quote table has no external resources,
// and connectors are started by the scanner module's supervisor once
// every module has registered its services.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Info(ctx, "market module started")
	return nil
}
