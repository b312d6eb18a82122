// Package di contains dependency injection tokens for the market
// bounded context (the quote table shared between every venue
// connector and the scanner context's engine).
package di

import (
	"github.com/matrix-911/Airbitrage/business/market/infra/quotetable"
	coredi "github.com/matrix-911/Airbitrage/internal/di"
)

// DI tokens for the market module.
const (
	QuoteTable = "market.QuoteTable"
)

// GetQuoteTable resolves the process-wide quote table (spec.md §4.D).
func GetQuoteTable(sr coredi.ServiceRegistry) *quotetable.Table {
	return coredi.Get[*quotetable.Table](sr, QuoteTable)
}
