package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sharktrack/sharktrack-backend-go/internal/database"
	"github.com/sharktrack/sharktrack-backend-go/internal/repository"
	"github.com/sharktrack/sharktrack-backend-go/pkg/errs"
)

const body = `{"type":"FeatureCollection","features":[]}`

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hotspots.geojson")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	data, err := NewFileSource(path).Load(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, body, string(data))

	_, err = NewFileSource(filepath.Join(t.TempDir(), "missing.geojson")).Load(context.Background())
	assert.ErrorIs(t, err, errs.ErrSourceUnavailable)
}

func TestHTTPSourceCachesBody(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/geo+json")
		w.Write([]byte(body))
	}))
	defer srv.Close()

	src := NewHTTPSource(HTTPConfig{URL: srv.URL, Timeout: time.Second, CacheTTL: time.Minute}, srv.Client())

	for i := 0; i < 3; i++ {
		data, err := src.Load(context.Background())
		require.NoError(t, err)
		assert.JSONEq(t, body, string(data))
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	src.Invalidate()
	_, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestHTTPSourceWithoutCache(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(body))
	}))
	defer srv.Close()

	src := NewHTTPSource(HTTPConfig{URL: srv.URL, Timeout: time.Second}, nil)
	for i := 0; i < 2; i++ {
		_, err := src.Load(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestHTTPSourceRejectsOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	small := NewHTTPSource(HTTPConfig{URL: srv.URL, Timeout: time.Second, MaxBytes: int64(len(body) - 1)}, srv.Client())
	_, err := small.Load(context.Background())
	assert.ErrorIs(t, err, errs.ErrSourceUnavailable)
	assert.ErrorIs(t, err, errBodyTooLarge)
	assert.NotErrorIs(t, err, errs.ErrMalformedInput)

	exact := NewHTTPSource(HTTPConfig{URL: srv.URL, Timeout: time.Second, MaxBytes: int64(len(body))}, srv.Client())
	data, err := exact.Load(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, body, string(data))
}

func TestHTTPSourceIgnoresCanceledCallsForBreaker(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(body))
	}))
	defer srv.Close()

	src := NewHTTPSource(HTTPConfig{URL: srv.URL, Timeout: time.Second}, srv.Client())

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 5; i++ {
		_, err := src.Load(canceled)
		assert.ErrorIs(t, err, context.Canceled)
	}

	data, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, body, string(data))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestHTTPSourceTripsBreaker(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	src := NewHTTPSource(HTTPConfig{URL: srv.URL, Timeout: time.Second, CacheTTL: time.Minute}, srv.Client())

	for i := 0; i < 5; i++ {
		_, err := src.Load(context.Background())
		assert.ErrorIs(t, err, errs.ErrSourceUnavailable)
	}
	// the breaker opens after three consecutive failures
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestSQLiteSource(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, database.Config{Path: filepath.Join(t.TempDir(), "src.db")}, zap.NewNop())
	require.NoError(t, err)
	defer db.Close()
	repo := repository.NewFeatureRepository(db)

	stored := []json.RawMessage{
		json.RawMessage(`{"type":"Feature","geometry":{"type":"Point","coordinates":[-45,40]},"properties":{"foraging_prob":0.9}}`),
	}
	_, err = repo.ReplaceDataset(ctx, "hotspots", stored)
	require.NoError(t, err)

	data, err := NewSQLiteSource(repo, "hotspots").Load(ctx)
	require.NoError(t, err)

	decoded, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	require.Len(t, decoded.Features, 1)
	assert.Equal(t, orb.Point{-45, 40}, decoded.Features[0].Geometry)
	assert.Equal(t, 0.9, decoded.Features[0].Properties["foraging_prob"])

	_, err = NewSQLiteSource(repo, "missing").Load(ctx)
	assert.ErrorIs(t, err, errs.ErrSourceUnavailable)
	assert.ErrorIs(t, err, errs.ErrDatasetNotFound)
}
