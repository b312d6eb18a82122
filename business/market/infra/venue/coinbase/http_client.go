package coinbase

import "github.com/matrix-911/Airbitrage/internal/httpclient"

// newHTTPClient builds the instrumented REST client Discover uses.
func newHTTPClient(baseURL string) (httpclient.Client, error) {
	return httpclient.NewInstrumentedClient(
		httpclient.WithBaseURL(baseURL),
		httpclient.WithProviderName(venueName),
	)
}
