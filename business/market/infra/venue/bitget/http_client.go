package bitget

import "github.com/matrix-911/Airbitrage/internal/httpclient"

// newHTTPClient builds the instrumented REST client Discover uses against
// Bitget's public spot symbols endpoint.
func newHTTPClient(baseURL string) (httpclient.Client, error) {
	return httpclient.NewInstrumentedClient(
		httpclient.WithBaseURL(baseURL),
		httpclient.WithProviderName(venueName),
	)
}
