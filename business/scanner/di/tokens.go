// Package di contains dependency injection tokens for the scanner
// bounded context: the arbitrage engine and the supervisor orchestrating
// venue connectors against it.
package di

import (
	"github.com/matrix-911/Airbitrage/business/scanner/app"
	coredi "github.com/matrix-911/Airbitrage/internal/di"
)

// DI tokens for the scanner module.
const (
	Engine     = "scanner.Engine"
	Supervisor = "scanner.Supervisor"
)

// GetEngine resolves the arbitrage engine (spec.md §4.F).
func GetEngine(sr coredi.ServiceRegistry) *app.Engine {
	return coredi.Get[*app.Engine](sr, Engine)
}

// GetSupervisor resolves the supervisor (spec.md §4.G).
func GetSupervisor(sr coredi.ServiceRegistry) *app.Supervisor {
	return coredi.Get[*app.Supervisor](sr, Supervisor)
}
