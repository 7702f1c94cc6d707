package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sony/gobreaker"

	"github.com/sharktrack/sharktrack-backend-go/pkg/errs"
)

const (
	cacheKey            = "collection"
	defaultMaxBodyBytes = 64 << 20
)

var (
	errUnexpectedStatus = errors.New("unexpected status code")
	errBodyTooLarge     = errors.New("response body too large")
)

// HTTPConfig configures a remote collection source
type HTTPConfig struct {
	URL      string
	Timeout  time.Duration
	CacheTTL time.Duration // 0 disables caching
	MaxBytes int64         // Body size limit, 0 means 64 MiB
}

// HTTPSource fetches the collection from a URL behind a circuit breaker.
// Successful bodies are cached for CacheTTL.
type HTTPSource struct {
	url     string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	cache   *cache.Cache
	ttl     time.Duration
	max     int64
}

// NewHTTPSource creates a new HTTP source
func NewHTTPSource(cfg HTTPConfig, client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "collection-source",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		// A caller giving up says nothing about the upstream
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	s := &HTTPSource{
		url:     cfg.URL,
		client:  client,
		circuit: cb,
		ttl:     cfg.CacheTTL,
		max:     cfg.MaxBytes,
	}
	if s.max <= 0 {
		s.max = defaultMaxBodyBytes
	}
	if cfg.CacheTTL > 0 {
		s.cache = cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	return s
}

// Name returns the source name
func (s *HTTPSource) Name() string {
	return "http:" + s.url
}

// Load fetches the collection, serving from cache when fresh
func (s *HTTPSource) Load(ctx context.Context) ([]byte, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(cacheKey); ok {
			return v.([]byte), nil
		}
	}

	result, err := s.circuit.Execute(func() (interface{}, error) {
		return s.fetch(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrSourceUnavailable, err)
	}

	body := result.([]byte)
	if s.cache != nil {
		s.cache.Set(cacheKey, body, s.ttl)
	}
	return body, nil
}

// Invalidate drops the cached body, so the next Load fetches again
func (s *HTTPSource) Invalidate() {
	if s.cache != nil {
		s.cache.Delete(cacheKey)
	}
}

func (s *HTTPSource) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %d", errUnexpectedStatus, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > s.max {
		return nil, fmt.Errorf("%w: over %d bytes", errBodyTooLarge, s.max)
	}
	return data, nil
}
