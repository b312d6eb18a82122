package venue

import (
	"context"
	"fmt"

	"github.com/matrix-911/Airbitrage/internal/apperror"
	"github.com/matrix-911/Airbitrage/internal/circuitbreaker"
	"github.com/matrix-911/Airbitrage/internal/httpclient"
	"github.com/matrix-911/Airbitrage/internal/logger"
	"github.com/matrix-911/Airbitrage/internal/ratelimit"
	"github.com/sony/gobreaker/v2"
)

// DiscoveryGuard bundles the resilience primitives shared by every
// venue's one-shot instrument-discovery call: a rate limiter (spec.md
// §4.C treats discovery as a single REST call per Discover invocation,
// but a supervisor reconfigure can trigger many in a burst) and a
// circuit breaker that trips on repeated discovery failures. Neither
// applies to the websocket reconnect loop — that one is governed
// solely by ReconnectBackoff (spec.md §5).
type DiscoveryGuard struct {
	http    httpclient.Client
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.CircuitBreaker[struct{}]
}

// NewDiscoveryGuard builds a guard named after the venue it protects;
// the breaker's name shows up in its own trip/reset logging.
func NewDiscoveryGuard(hc httpclient.Client, log logger.LoggerInterface, venueName string, requestsPerMinute int) *DiscoveryGuard {
	cfg := circuitbreaker.DefaultConfig("discovery:" + venueName)
	cfg.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Info(context.Background(), "discovery circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
	}
	return &DiscoveryGuard{
		http:    hc,
		limiter: ratelimit.New(requestsPerMinute),
		breaker: circuitbreaker.New[struct{}](cfg),
	}
}

// FetchJSON performs a single rate-limited, circuit-breaker-guarded GET
// against url and unmarshals the response body into result. A non-2xx
// response and a transport error are both treated as a breaker failure;
// repeated failures trip the breaker and subsequent calls fail fast
// with CodeDiscoveryCircuitOpen until it recovers.
func (g *DiscoveryGuard) FetchJSON(ctx context.Context, url string, result interface{}) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return apperror.Internal(apperror.CodeDiscoveryHTTPFailed, "rate limiter wait: "+url, err)
	}

	_, err := g.breaker.Execute(func() (struct{}, error) {
		resp, err := g.http.NewRequest().SetResult(result).Get(ctx, url)
		if err != nil {
			return struct{}{}, err
		}
		if resp.IsError() {
			return struct{}{}, fmt.Errorf("discovery request failed with status %d", resp.StatusCode)
		}
		return struct{}{}, nil
	})
	if err != nil {
		if circuitbreaker.IsOpenStateError(err) {
			return apperror.External(apperror.CodeDiscoveryCircuitOpen, url, err)
		}
		return apperror.External(apperror.CodeDiscoveryHTTPFailed, url, err)
	}
	return nil
}
