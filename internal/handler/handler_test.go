package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sharktrack/sharktrack-backend-go/internal/config"
	"github.com/sharktrack/sharktrack-backend-go/internal/database"
	"github.com/sharktrack/sharktrack-backend-go/internal/heatmap"
	"github.com/sharktrack/sharktrack-backend-go/internal/hotspot"
	"github.com/sharktrack/sharktrack-backend-go/internal/ingest"
	"github.com/sharktrack/sharktrack-backend-go/internal/repository"
	"github.com/sharktrack/sharktrack-backend-go/internal/service"
	"github.com/sharktrack/sharktrack-backend-go/internal/source"
	"github.com/sharktrack/sharktrack-backend-go/internal/stats"
)

const collection = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [0, 0]}, "properties": {"foraging_prob": 0.95}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [0.0001, 0]}, "properties": {"foraging_prob": 0.92}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [10, 10]}, "properties": {"foraging_prob": 0.7}}
  ]
}`

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func testPipeline() *config.Pipeline {
	return &config.Pipeline{
		Mapping:  ingest.DefaultMapping(),
		Policy:   ingest.PolicyPassthrough,
		BinSpec:  stats.MustBinSpec(stats.DefaultBoundaries),
		Heatmap:  heatmap.DefaultConfig(),
		Hotspots: hotspot.DefaultConfig(),
	}
}

func newVizRouter(t *testing.T, path string) *gin.Engine {
	t.Helper()
	svc, err := service.NewPipelineService(source.NewFileSource(path), testPipeline(), nil, zap.NewNop())
	require.NoError(t, err)

	h := NewVisualizationHandler(svc, 4)
	r := gin.New()
	r.GET("/summary", h.GetSummary)
	r.GET("/histogram", h.GetHistogram)
	r.GET("/confidence", h.GetConfidence)
	r.GET("/heatmap", h.GetHeatmap)
	r.GET("/hotspots", h.GetHotspots)
	r.GET("/overview", h.GetOverview)
	return r
}

func writeCollection(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hotspots.geojson")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func get(t *testing.T, r http.Handler, target string) (int, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w.Code, env
}

func TestGetHistogram(t *testing.T) {
	r := newVizRouter(t, writeCollection(t, collection))

	code, env := get(t, r, "/histogram")
	require.Equal(t, http.StatusOK, code)

	var data struct {
		Bins []struct {
			Range string `json:"range"`
			Count int    `json:"count"`
		} `json:"bins"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 3, data.Total)
	require.Len(t, data.Bins, 5)
	assert.Equal(t, "0.6-0.8", data.Bins[3].Range)
	assert.Equal(t, 1, data.Bins[3].Count)
	assert.Equal(t, 2, data.Bins[4].Count)
}

func TestGetSummary(t *testing.T) {
	r := newVizRouter(t, writeCollection(t, collection))

	code, env := get(t, r, "/summary")
	require.Equal(t, http.StatusOK, code)

	var data struct {
		Count  int     `json:"count"`
		Min    float64 `json:"min"`
		Median float64 `json:"median"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 3, data.Count)
	assert.Equal(t, 0.7, data.Min)
	assert.Equal(t, 0.92, data.Median)
}

func TestGetConfidence(t *testing.T) {
	r := newVizRouter(t, writeCollection(t, collection))

	code, env := get(t, r, "/confidence")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"high":2,"medium":1,"low":0,"peak_bin_count":2,"total_valid":3}`, string(env.Data))
}

func TestGetHeatmap(t *testing.T) {
	r := newVizRouter(t, writeCollection(t, collection))

	code, env := get(t, r, "/heatmap")
	require.Equal(t, http.StatusOK, code)

	var data struct {
		Points    [][3]float64 `json:"points"`
		MaxWeight float64      `json:"max_weight"`
		Options   struct {
			Gradient map[string]string `json:"gradient"`
		} `json:"options"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Points, 3)
	assert.Equal(t, [3]float64{10, 10, 0.7}, data.Points[2])
	assert.Equal(t, 0.95, data.MaxWeight)
	assert.Equal(t, "red", data.Options.Gradient["1.0"])
}

func TestGetHotspots(t *testing.T) {
	r := newVizRouter(t, writeCollection(t, collection))

	code, env := get(t, r, "/hotspots")
	require.Equal(t, http.StatusOK, code)

	var data struct {
		ClusterCount int `json:"cluster_count"`
		HotspotCount int `json:"hotspot_count"`
		Zoom         int `json:"zoom"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 1, data.ClusterCount)
	assert.Equal(t, 2, data.HotspotCount)
	assert.Equal(t, 4, data.Zoom)

	code, env = get(t, r, "/hotspots?zoom=99&threshold=0.5")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 3, data.HotspotCount)
	assert.Equal(t, 20, data.Zoom)
}

func TestGetHotspotsBadQuery(t *testing.T) {
	r := newVizRouter(t, writeCollection(t, collection))

	for _, target := range []string{"/hotspots?zoom=abc", "/hotspots?threshold=NaN", "/overview?threshold=x"} {
		code, _ := get(t, r, target)
		assert.Equal(t, http.StatusBadRequest, code, target)
	}
}

func TestGetOverview(t *testing.T) {
	r := newVizRouter(t, writeCollection(t, collection))

	code, env := get(t, r, "/overview?zoom=2")
	require.Equal(t, http.StatusOK, code)

	var data struct {
		Ingested   int `json:"ingested"`
		Confidence struct {
			High int `json:"high"`
		} `json:"confidence"`
		Hotspots struct {
			Zoom int `json:"zoom"`
		} `json:"hotspots"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 3, data.Ingested)
	assert.Equal(t, 2, data.Confidence.High)
	assert.Equal(t, 2, data.Hotspots.Zoom)
}

func TestSourceErrors(t *testing.T) {
	r := newVizRouter(t, filepath.Join(t.TempDir(), "missing.geojson"))
	code, env := get(t, r, "/heatmap")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, http.StatusServiceUnavailable, env.Code)

	r = newVizRouter(t, writeCollection(t, `{"type":"Feature"}`))
	code, _ = get(t, r, "/histogram")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestDatasetHandler(t *testing.T) {
	db, err := database.Open(context.Background(), database.Config{Path: filepath.Join(t.TempDir(), "test.db")}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc, err := service.NewDatasetService(repository.NewFeatureRepository(db), testPipeline(), zap.NewNop())
	require.NoError(t, err)

	h := NewDatasetHandler(svc)
	r := gin.New()
	r.GET("/datasets", h.ListDatasets)
	r.POST("/datasets/:name", h.ImportDataset)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/datasets/survey", bytes.NewBufferString(collection)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"stored":3`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/datasets/survey", bytes.NewBufferString(`{"type":"Point"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	code, env := get(t, r, "/datasets")
	require.Equal(t, http.StatusOK, code)
	var data struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 1, data.Count)
}
