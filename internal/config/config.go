package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/sharktrack/sharktrack-backend-go/internal/heatmap"
	"github.com/sharktrack/sharktrack-backend-go/internal/hotspot"
	"github.com/sharktrack/sharktrack-backend-go/internal/ingest"
	"github.com/sharktrack/sharktrack-backend-go/internal/stats"
	"github.com/sharktrack/sharktrack-backend-go/pkg/errs"
)

// Source kinds
const (
	SourceFile   = "file"
	SourceHTTP   = "http"
	SourceSQLite = "sqlite"
)

// Config 应用配置
type Config struct {
	Port      string
	DBPath    string
	JWTSecret string

	Log struct {
		Level  string
		Format string
	}

	Source struct {
		Kind     string
		Path     string
		URL      string
		Dataset  string
		Timeout  time.Duration
		CacheTTL time.Duration
		MaxBytes int64
	}

	Ingest struct {
		ProbabilityKeys  []string
		IDKey            string
		CoordinatePolicy string
	}

	Histogram struct {
		Boundaries []float64
	}

	Heatmap struct {
		Radius   float64
		Blur     float64
		MaxZoom  int
		Gradient []string // "stop:color"
	}

	Hotspot struct {
		Threshold               float64
		ClusterRadiusPx         float64
		MaxZoom                 int
		DisableClusteringAtZoom int
		DefaultZoom             int
	}

	RateLimit struct {
		Requests int
		Window   time.Duration
	}
}

// Pipeline holds the validated component configurations
type Pipeline struct {
	Mapping  ingest.PropertyMapping
	Policy   ingest.CoordinatePolicy
	BinSpec  stats.BinSpec
	Heatmap  heatmap.Config
	Hotspots hotspot.Config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8080")
	v.SetDefault("database.path", "./data/sharktrack.db")
	v.SetDefault("auth.jwt_secret", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("source.kind", SourceFile)
	v.SetDefault("source.path", "./data/hotspots.geojson")
	v.SetDefault("source.url", "")
	v.SetDefault("source.dataset", "hotspots")
	v.SetDefault("source.timeout", 10*time.Second)
	v.SetDefault("source.cache_ttl", time.Minute)
	v.SetDefault("source.max_bytes", 64<<20)

	mapping := ingest.DefaultMapping()
	v.SetDefault("ingest.probability_keys", mapping.ProbabilityKeys)
	v.SetDefault("ingest.id_key", "")
	v.SetDefault("ingest.coordinate_policy", string(ingest.PolicyPassthrough))

	v.SetDefault("histogram.boundaries", stats.DefaultBoundaries)

	heat := heatmap.DefaultConfig()
	v.SetDefault("heatmap.radius", heat.Radius)
	v.SetDefault("heatmap.blur", heat.Blur)
	v.SetDefault("heatmap.max_zoom", heat.MaxZoom)
	v.SetDefault("heatmap.gradient", []string{"0.4:blue", "0.6:cyan", "0.8:yellow", "1.0:red"})

	hs := hotspot.DefaultConfig()
	v.SetDefault("hotspot.threshold", hs.Threshold)
	v.SetDefault("hotspot.cluster_radius_px", hs.ClusterRadiusPx)
	v.SetDefault("hotspot.max_zoom", hs.MaxZoom)
	v.SetDefault("hotspot.disable_clustering_at_zoom", hs.DisableClusteringAtZoom)
	v.SetDefault("hotspot.default_zoom", 4)

	v.SetDefault("ratelimit.requests", 120)
	v.SetDefault("ratelimit.window", time.Minute)
}

// Load 加载配置. configFile may be empty; values come from defaults, the
// optional YAML file, a .env file and the environment, in increasing priority.
func Load(configFile string) (*Config, error) {
	// A missing .env file is normal
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SHARKTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Environment names used before the SHARKTRACK_ prefix existed
	_ = v.BindEnv("server.port", "SHARKTRACK_SERVER_PORT", "PORT")
	_ = v.BindEnv("database.path", "SHARKTRACK_DATABASE_PATH", "DB_PATH")
	_ = v.BindEnv("auth.jwt_secret", "SHARKTRACK_AUTH_JWT_SECRET", "JWT_SECRET")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	cfg.Port = normalizePort(v.GetString("server.port"))
	cfg.DBPath = v.GetString("database.path")
	cfg.JWTSecret = v.GetString("auth.jwt_secret")

	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Format = v.GetString("log.format")

	cfg.Source.Kind = strings.ToLower(v.GetString("source.kind"))
	cfg.Source.Path = v.GetString("source.path")
	cfg.Source.URL = v.GetString("source.url")
	cfg.Source.Dataset = v.GetString("source.dataset")
	cfg.Source.Timeout = v.GetDuration("source.timeout")
	cfg.Source.CacheTTL = v.GetDuration("source.cache_ttl")
	cfg.Source.MaxBytes = v.GetInt64("source.max_bytes")

	cfg.Ingest.ProbabilityKeys = v.GetStringSlice("ingest.probability_keys")
	cfg.Ingest.IDKey = v.GetString("ingest.id_key")
	cfg.Ingest.CoordinatePolicy = v.GetString("ingest.coordinate_policy")

	boundaries, err := floatSlice(v.Get("histogram.boundaries"))
	if err != nil {
		return nil, err
	}
	cfg.Histogram.Boundaries = boundaries

	cfg.Heatmap.Radius = v.GetFloat64("heatmap.radius")
	cfg.Heatmap.Blur = v.GetFloat64("heatmap.blur")
	cfg.Heatmap.MaxZoom = v.GetInt("heatmap.max_zoom")
	cfg.Heatmap.Gradient = v.GetStringSlice("heatmap.gradient")

	cfg.Hotspot.Threshold = v.GetFloat64("hotspot.threshold")
	cfg.Hotspot.ClusterRadiusPx = v.GetFloat64("hotspot.cluster_radius_px")
	cfg.Hotspot.MaxZoom = v.GetInt("hotspot.max_zoom")
	cfg.Hotspot.DisableClusteringAtZoom = v.GetInt("hotspot.disable_clustering_at_zoom")
	cfg.Hotspot.DefaultZoom = v.GetInt("hotspot.default_zoom")

	cfg.RateLimit.Requests = v.GetInt("ratelimit.requests")
	cfg.RateLimit.Window = v.GetDuration("ratelimit.window")

	return cfg, nil
}

// Validate checks the source settings and builds every pipeline configuration,
// so a bad value fails at startup rather than on the first request
func (c *Config) Validate() (*Pipeline, error) {
	switch c.Source.Kind {
	case SourceFile:
		if c.Source.Path == "" {
			return nil, errs.NewConfigError("config", "source.path", "required for file sources")
		}
	case SourceHTTP:
		if c.Source.URL == "" {
			return nil, errs.NewConfigError("config", "source.url", "required for http sources")
		}
	case SourceSQLite:
		if c.Source.Dataset == "" {
			return nil, errs.NewConfigError("config", "source.dataset", "required for sqlite sources")
		}
	default:
		return nil, errs.NewConfigError("config", "source.kind", "unknown source kind %q", c.Source.Kind)
	}

	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return nil, errs.NewConfigError("config", "ratelimit", "requests and window must be positive")
	}

	p := &Pipeline{
		Mapping: ingest.PropertyMapping{
			ProbabilityKeys: c.Ingest.ProbabilityKeys,
			IDKey:           c.Ingest.IDKey,
		},
		Policy: ingest.CoordinatePolicy(c.Ingest.CoordinatePolicy),
	}
	if _, err := ingest.New(p.Mapping, p.Policy); err != nil {
		return nil, err
	}

	spec, err := stats.NewBinSpec(c.Histogram.Boundaries)
	if err != nil {
		return nil, err
	}
	p.BinSpec = spec

	gradient, err := heatmap.ParseGradient(c.Heatmap.Gradient)
	if err != nil {
		return nil, err
	}
	p.Heatmap = heatmap.Config{
		Radius:   c.Heatmap.Radius,
		Blur:     c.Heatmap.Blur,
		MaxZoom:  c.Heatmap.MaxZoom,
		Gradient: gradient,
	}
	if err := p.Heatmap.Validate(); err != nil {
		return nil, err
	}

	p.Hotspots = hotspot.Config{
		Threshold:               c.Hotspot.Threshold,
		ClusterRadiusPx:         c.Hotspot.ClusterRadiusPx,
		MaxZoom:                 c.Hotspot.MaxZoom,
		DisableClusteringAtZoom: c.Hotspot.DisableClusteringAtZoom,
	}
	if err := p.Hotspots.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

func normalizePort(port string) string {
	if port != "" && !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}

// floatSlice accepts a YAML list or a comma separated env string
func floatSlice(raw interface{}) ([]float64, error) {
	var parts []interface{}
	switch v := raw.(type) {
	case []float64:
		out := make([]float64, len(v))
		copy(out, v)
		return out, nil
	case []interface{}:
		parts = v
	case string:
		for _, s := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' }) {
			parts = append(parts, s)
		}
	default:
		return nil, errs.NewConfigError("config", "histogram.boundaries", "unsupported value %v", raw)
	}

	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := toFloat(p)
		if err != nil {
			return nil, errs.NewConfigError("config", "histogram.boundaries", "%v", err)
		}
		out = append(out, f)
	}
	return out, nil
}

var errNotNumeric = errors.New("not a number")

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", errNotNumeric, n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: %v", errNotNumeric, v)
	}
}
