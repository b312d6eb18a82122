package binance

import (
	"github.com/matrix-911/Airbitrage/internal/httpclient"
)

// newHTTPClient builds the instrumented REST client Discover uses against
// Binance's public exchangeInfo endpoint.
func newHTTPClient(baseURL string) (httpclient.Client, error) {
	return httpclient.NewInstrumentedClient(
		httpclient.WithBaseURL(baseURL),
		httpclient.WithProviderName(venueName),
	)
}
