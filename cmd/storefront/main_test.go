package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeAPI(t *testing.T) {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/api/product", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "shirt", req.URL.Query().Get("name"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data":         []map[string]any{{"_id": "p1", "name": "Linen shirt", "price": "49.5"}},
			"totalPageNum": 1,
		})
	})
	r.Get("/api/product/{id}", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"product not found"}`))
	})
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	t.Setenv("STOREFRONT_API_URL", server.URL+"/api")
	t.Setenv("STOREFRONT_TOKEN_STORE", "memory")
	t.Setenv("LOG_LEVEL", "error")
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return executeWith(t, &cli{}, args...)
}

func executeWith(t *testing.T, rt *cli, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(rt)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := rt.execute(context.Background(), cmd)
	return stdout.String(), stderr.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}

func TestProductsList(t *testing.T) {
	fakeAPI(t)

	out, _, err := execute(t, "products", "list", "--name", "shirt")

	require.NoError(t, err)
	assert.Contains(t, out, `"totalPageNum": 1`)
	assert.Contains(t, out, `"Linen shirt"`)
}

func TestProductsShow_NotFound(t *testing.T) {
	fakeAPI(t)

	_, _, err := execute(t, "products", "show", "p404")

	require.Error(t, err)
	assert.Equal(t, "product not found", err.Error())
}

func TestFailingCommandClosesApp(t *testing.T) {
	fakeAPI(t)
	mr := miniredis.RunT(t)
	t.Setenv("STOREFRONT_TOKEN_STORE", "redis")
	t.Setenv("REDIS_HOST", mr.Host())
	t.Setenv("REDIS_PORT", mr.Port())
	rt := &cli{}

	_, _, err := executeWith(t, rt, "products", "show", "p404")

	require.Error(t, err)
	assert.Nil(t, rt.app)
	assert.Eventually(t, func() bool {
		return mr.CurrentConnectionCount() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestCartAdd_RequiresLogin(t *testing.T) {
	fakeAPI(t)

	_, _, err := execute(t, "cart", "add", "p1", "m")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "storefront auth login")
}

func TestCartAdd_RequiresSize(t *testing.T) {
	fakeAPI(t)

	_, _, err := execute(t, "cart", "add", "p1", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "please select a size")
}

func TestProductsCreate_InvalidPrice(t *testing.T) {
	fakeAPI(t)

	_, _, err := execute(t, "products", "create", "--name", "x", "--price", "cheap")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid price")
}

func TestAuthWhoami_SignedOut(t *testing.T) {
	fakeAPI(t)

	out, _, err := execute(t, "auth", "whoami")

	require.NoError(t, err)
	assert.Equal(t, "not signed in\n", out)
}

func TestHealth(t *testing.T) {
	fakeAPI(t)

	out, _, err := execute(t, "health")

	require.NoError(t, err)
	assert.Contains(t, out, `"status": "up"`)
	assert.Contains(t, out, `"api"`)
}
