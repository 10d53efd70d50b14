package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
	"github.com/utafrali/EcommerceGo/storefront/pkg/httpclient"
	"github.com/utafrali/EcommerceGo/storefront/pkg/logger"
)

type staticToken string

func (s staticToken) Load(context.Context) (string, error) { return string(s), nil }

func newTestClient(t *testing.T, router http.Handler, opts ...ClientOption) *Client {
	t.Helper()
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	cfg := httpclient.DefaultConfig()
	cfg.Timeout = 2 * time.Second
	cb := httpclient.NewCircuitBreakerClient(httpclient.New(cfg), httpclient.CircuitBreakerConfig{
		Name:         t.Name(),
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		FailureRatio: 1,
		MinRequests:  2,
	}, logger.Discard())
	return NewClient(server.URL+"/", cb, logger.Discard(), opts...)
}

func TestClient_QueryParams(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/product", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "shirt", req.URL.Query().Get("name"))
		assert.Equal(t, "2", req.URL.Query().Get("page"))
		assert.Empty(t, req.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":[],"totalPageNum":3}`))
	})
	c := newTestClient(t, r)

	resp, err := c.Request(context.Background(), http.MethodGet, "/product", nil, url.Values{"name": {"shirt"}, "page": {"2"}})

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `{"data":[],"totalPageNum":3}`, string(resp.Data))
}

func TestClient_JSONBodyAndBearer(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/cart", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "Bearer abc", req.Header.Get("Authorization"))
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
		var body map[string]any
		assert.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, "p1", body["productId"])
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`4`))
	})
	c := newTestClient(t, r, WithTokenSource(staticToken("abc")))

	resp, err := c.Request(context.Background(), http.MethodPost, "/cart", map[string]any{"productId": "p1"}, nil)

	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.Status)
	count, err := Decode[int](resp)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestClient_ClientErrorIsResponse(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/auth/login", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":"fail","error":"invalid password"}`))
	})
	c := newTestClient(t, r)

	resp, err := c.Request(context.Background(), http.MethodPost, "/auth/login", map[string]string{"email": "a@b.c"}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	_, err = Decode[map[string]any](resp)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrTransport))
	assert.Equal(t, "invalid password", apperrors.Message(err))
	assert.Equal(t, http.StatusBadRequest, apperrors.RemoteStatus(err))
}

func TestClient_ServerErrorIsResponse(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/cart", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"cart service down"}`))
	})
	c := newTestClient(t, r)

	resp, err := c.Request(context.Background(), http.MethodGet, "/cart", nil, nil)

	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.Equal(t, "cart service down", apperrors.Message(Check(resp)))
}

func TestClient_OpenBreakerIsTransportFailure(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/cart", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	c := newTestClient(t, r)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := c.Request(ctx, http.MethodGet, "/cart", nil, nil)
		require.NoError(t, err)
	}

	_, err := c.Request(ctx, http.MethodGet, "/cart", nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrTransport))
	assert.Equal(t, "service temporarily unavailable", apperrors.Message(err))
}

func TestClient_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	c := NewClient(addr, httpclient.New(httpclient.DefaultConfig()), logger.Discard())
	_, err := c.Request(context.Background(), http.MethodGet, "/user/me", nil, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrTransport))
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/cart/qty", func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(`{"qty":1}`))
	})
	c := newTestClient(t, r, WithRateLimit(0.001, 1))

	_, err := c.Request(context.Background(), http.MethodGet, "/cart/qty", nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Request(ctx, http.MethodGet, "/cart/qty", nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrTransport))
}

func TestDecode(t *testing.T) {
	type payload struct {
		Qty int `json:"qty"`
	}

	got, err := Decode[payload](&Response{Status: http.StatusOK, Data: []byte(`{"qty":3}`)})
	require.NoError(t, err)
	assert.Equal(t, 3, got.Qty)

	_, err = Decode[payload](&Response{Status: http.StatusOK, Data: []byte(`not json`)})
	require.Error(t, err)
	assert.Contains(t, apperrors.Message(err), "malformed response")

	_, err = Decode[payload](&Response{Status: http.StatusNoContent})
	require.Error(t, err, "204 is not a success status")

	_, err = Decode[payload](nil)
	require.Error(t, err)
}
