package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sharktrack/sharktrack-backend-go/internal/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r http.Handler, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoggerSetsRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(Logger(zap.New(core)))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := perform(r, http.MethodGet, "/ping?x=1", nil)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	w = perform(r, http.MethodGet, "/ping", http.Header{RequestIDHeader: {"abc"}})
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "/ping?x=1", entries[0].ContextMap()["path"])
	assert.Equal(t, "abc", entries[1].ContextMap()["request_id"])
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(2, time.Hour))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/", nil).Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, perform(r, http.MethodGet, "/", nil).Code)
}

func TestRateLimiterPerIP(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))
}

func TestAuth(t *testing.T) {
	const secret = "test-secret"
	r := gin.New()
	r.Use(Auth(secret))
	r.POST("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("subject")) })

	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodPost, "/", nil).Code)
	assert.Equal(t, http.StatusUnauthorized,
		perform(r, http.MethodPost, "/", http.Header{"Authorization": {"Bearer garbage"}}).Code)

	other, err := NewToken("other-secret", "ops", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized,
		perform(r, http.MethodPost, "/", http.Header{"Authorization": {"Bearer " + other}}).Code)

	expired, err := NewToken(secret, "ops", -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized,
		perform(r, http.MethodPost, "/", http.Header{"Authorization": {"Bearer " + expired}}).Code)

	token, err := NewToken(secret, "ops", time.Hour)
	require.NoError(t, err)
	w := perform(r, http.MethodPost, "/", http.Header{"Authorization": {"Bearer " + token}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ops", w.Body.String())
}

func TestAuthWithoutSecret(t *testing.T) {
	_, err := NewToken("", "ops", time.Hour)
	assert.ErrorIs(t, err, ErrAuthDisabled)

	_, err = ParseToken("", "anything")
	assert.ErrorIs(t, err, ErrAuthDisabled)
}

func TestMetrics(t *testing.T) {
	m := metrics.New()
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	perform(r, http.MethodGet, "/items/1", nil)
	perform(r, http.MethodGet, "/items/2", nil)
	perform(r, http.MethodGet, "/missing", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/items/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "unmatched", "404")))
}
