package venue

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/matrix-911/Airbitrage/internal/httpclient"
	"github.com/matrix-911/Airbitrage/internal/logger"
)

type fakeResponder func(ctx context.Context, url string, result interface{}) (*httpclient.Response, error)

type fakeRequest struct {
	respond fakeResponder
	result  interface{}
}

func (r *fakeRequest) Get(ctx context.Context, url string) (*httpclient.Response, error) {
	return r.respond(ctx, url, r.result)
}
func (r *fakeRequest) Post(ctx context.Context, url string) (*httpclient.Response, error)   { return nil, nil }
func (r *fakeRequest) Put(ctx context.Context, url string) (*httpclient.Response, error)    { return nil, nil }
func (r *fakeRequest) Patch(ctx context.Context, url string) (*httpclient.Response, error)  { return nil, nil }
func (r *fakeRequest) Delete(ctx context.Context, url string) (*httpclient.Response, error) { return nil, nil }
func (r *fakeRequest) SetBody(body interface{}) httpclient.Request                          { return r }
func (r *fakeRequest) SetHeader(k, v string) httpclient.Request                              { return r }
func (r *fakeRequest) SetHeaders(h map[string]string) httpclient.Request                     { return r }
func (r *fakeRequest) SetQueryParam(k, v string) httpclient.Request                           { return r }
func (r *fakeRequest) SetQueryParams(p map[string]string) httpclient.Request                  { return r }
func (r *fakeRequest) SetResult(result interface{}) httpclient.Request {
	r.result = result
	return r
}

type fakeClient struct{ respond fakeResponder }

func (c *fakeClient) NewRequest() httpclient.Request { return &fakeRequest{respond: c.respond} }
func (c *fakeClient) NewRequestWithOptions(opts ...httpclient.RequestOption) httpclient.Request {
	return &fakeRequest{respond: c.respond}
}
func (c *fakeClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	return nil, nil
}

func newTestLogger() logger.LoggerInterface {
	return logger.New(&bytes.Buffer{}, logger.LevelDebug, "test")
}

func TestDiscoveryGuard_FetchJSON_Success(t *testing.T) {
	client := &fakeClient{respond: func(ctx context.Context, url string, result interface{}) (*httpclient.Response, error) {
		return &httpclient.Response{Response: &http.Response{StatusCode: 200}}, nil
	}}
	guard := NewDiscoveryGuard(client, newTestLogger(), "binance", 600)

	var out struct{}
	if err := guard.FetchJSON(context.Background(), "https://example.test/instruments", &out); err != nil {
		t.Fatalf("FetchJSON() error = %v, want nil", err)
	}
}

func TestDiscoveryGuard_FetchJSON_TransportErrorWraps(t *testing.T) {
	client := &fakeClient{respond: func(ctx context.Context, url string, result interface{}) (*httpclient.Response, error) {
		return nil, errors.New("dial tcp: refused")
	}}
	guard := NewDiscoveryGuard(client, newTestLogger(), "kraken", 600)

	var out struct{}
	if err := guard.FetchJSON(context.Background(), "https://example.test/instruments", &out); err == nil {
		t.Fatal("FetchJSON() error = nil, want non-nil on transport failure")
	}
}

func TestDiscoveryGuard_FetchJSON_RateLimiterRespectsContextCancellation(t *testing.T) {
	client := &fakeClient{respond: func(ctx context.Context, url string, result interface{}) (*httpclient.Response, error) {
		t.Fatal("HTTP call should not happen once context is already cancelled")
		return nil, nil
	}}
	guard := NewDiscoveryGuard(client, newTestLogger(), "bitget", 600)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out struct{}
	if err := guard.FetchJSON(ctx, "https://example.test/instruments", &out); err == nil {
		t.Fatal("FetchJSON() error = nil, want non-nil on a cancelled context")
	}
}
