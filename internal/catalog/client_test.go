package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/bafoyewv/SupplyChainLite-sub000/pkg/errors"
	"github.com/bafoyewv/SupplyChainLite-sub000/pkg/httpclient"
	"github.com/bafoyewv/SupplyChainLite-sub000/pkg/logger"
)

func productListJSON() string {
	return `{"data":{"products":[
		{"product_id":"prod-a","name":"Widget","sku":"WID-1","unit_price":"19.99","available_stock":10},
		{"product_id":"prod-b","name":"Gadget","sku":"GAD-1","unit_price":"5.00","available_stock":3}
	]}}`
}

func newTestClient(t *testing.T, upstream http.HandlerFunc, withCache bool) (*Client, *miniredis.Miniredis) {
	t.Helper()

	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	var redisClient *goredis.Client
	var mr *miniredis.Miniredis
	if withCache {
		mr = miniredis.RunT(t)
		redisClient = goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { redisClient.Close() })
	}

	httpClient := httpclient.New(httpclient.Config{
		Timeout:      5 * time.Second,
		MaxRetries:   0,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: time.Millisecond,
	})
	log := logger.New("catalog-test", "error")

	return NewClient(httpClient, redisClient, srv.URL, 30*time.Second, log), mr
}

func TestSnapshotFetch(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/products", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(productListJSON()))
	}, false)

	snap, err := client.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Len())

	p, ok := snap.Lookup("prod-a")
	require.True(t, ok)
	assert.Equal(t, "Widget", p.Name)
	assert.Equal(t, int64(1999), p.UnitPrice)
	assert.Equal(t, 10, p.AvailableStock)

	p, ok = snap.Lookup("prod-b")
	require.True(t, ok)
	assert.Equal(t, int64(500), p.UnitPrice)
}

func TestSnapshotUsesCache(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(productListJSON()))
	}, true)

	ctx := context.Background()
	_, err := client.Snapshot(ctx)
	require.NoError(t, err)
	_, err = client.Snapshot(ctx)
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load(), "second snapshot should come from cache")
}

func TestSnapshotCacheExpiry(t *testing.T) {
	var calls atomic.Int32
	client, mr := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(productListJSON()))
	}, true)

	ctx := context.Background()
	_, err := client.Snapshot(ctx)
	require.NoError(t, err)

	mr.FastForward(31 * time.Second)

	_, err = client.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load(), "expired cache entry should trigger a refetch")
}

func TestSnapshotCorruptCacheFallsThrough(t *testing.T) {
	client, mr := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(productListJSON()))
	}, true)

	require.NoError(t, mr.Set("catalog:snapshot", "{{garbage"))

	snap, err := client.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Len())
}

func TestSnapshotUpstreamError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": "SERVICE_UNAVAILABLE", "message": "down"},
		})
	}, false)

	snap, err := client.Snapshot(context.Background())
	assert.Nil(t, snap)
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
}

func TestSnapshotBadPrice(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"products":[{"product_id":"prod-x","name":"Odd","unit_price":"1.999"}]}}`))
	}, false)

	snap, err := client.Snapshot(context.Background())
	assert.Nil(t, snap)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prod-x")
}
