package lbank

import "github.com/matrix-911/Airbitrage/internal/httpclient"

// newHTTPClient builds the instrumented REST client Discover uses. LBank
// discovery calls several full mirror URLs directly rather than paths
// relative to one base, so no base URL is configured here.
func newHTTPClient() (httpclient.Client, error) {
	return httpclient.NewInstrumentedClient(
		httpclient.WithProviderName(venueName),
	)
}
