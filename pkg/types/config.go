// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout bounds each upstream request.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// GeoConfig is the placeholder geo context attached to search prompts.
// No geocoder is wired in; the coordinate is a stand-in.
type GeoConfig struct {
	Locale    string  `json:"locale" yaml:"locale" mapstructure:"locale"`
	Latitude  float64 `json:"latitude" yaml:"latitude" mapstructure:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude" mapstructure:"longitude"`
}

// UpstreamConfig holds settings for the conversational business-search API.
type UpstreamConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the API root; the chat endpoint is appended.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// APIKey is the bearer credential. Usually loaded from .secrets/.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxRetries is the number of 429 retries. Zero means a single attempt.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// RequestsPerSecond throttles all outbound calls. Zero disables throttling.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second"`

	Geo GeoConfig `json:"geo" yaml:"geo" mapstructure:"geo"`
}

// RateLimitConfig holds the per-client admission window.
type RateLimitConfig struct {
	Window      time.Duration `json:"window" yaml:"window" mapstructure:"window"`
	MaxRequests int           `json:"max_requests" yaml:"max_requests" mapstructure:"max_requests"`

	// SweepInterval is how often stale windows are evicted.
	SweepInterval time.Duration `json:"sweep_interval" yaml:"sweep_interval" mapstructure:"sweep_interval"`

	// MaxClients caps the number of tracked client windows.
	MaxClients int `json:"max_clients" yaml:"max_clients" mapstructure:"max_clients"`
}

// ScoreWeights are the weights of the four Perfect Fit factors.
type ScoreWeights struct {
	MacroFit     float64 `json:"macro_fit" yaml:"macro_fit" mapstructure:"macro_fit"`
	Distance     float64 `json:"distance" yaml:"distance" mapstructure:"distance"`
	AIConfidence float64 `json:"ai_confidence" yaml:"ai_confidence" mapstructure:"ai_confidence"`
	MealType     float64 `json:"meal_type" yaml:"meal_type" mapstructure:"meal_type"`

	// CalorieShare is the share of the macro-fit factor given to calories;
	// protein gets the remainder.
	CalorieShare float64 `json:"calorie_share" yaml:"calorie_share" mapstructure:"calorie_share"`
}

// LabelThresholds are the inclusive lower bounds for each fit label.
type LabelThresholds struct {
	Perfect   int `json:"perfect" yaml:"perfect" mapstructure:"perfect"`
	Excellent int `json:"excellent" yaml:"excellent" mapstructure:"excellent"`
	Great     int `json:"great" yaml:"great" mapstructure:"great"`
	Good      int `json:"good" yaml:"good" mapstructure:"good"`
}

// ScoringConfig holds the Perfect Fit Score constants and candidate limits.
type ScoringConfig struct {
	Weights    ScoreWeights    `json:"weights" yaml:"weights" mapstructure:"weights"`
	Thresholds LabelThresholds `json:"thresholds" yaml:"thresholds" mapstructure:"thresholds"`

	// DefaultConfidence is used because the upstream exposes no real
	// confidence signal.
	DefaultConfidence float64 `json:"default_confidence" yaml:"default_confidence" mapstructure:"default_confidence"`

	// MaxCandidates caps businesses before per-candidate work.
	MaxCandidates int `json:"max_candidates" yaml:"max_candidates" mapstructure:"max_candidates"`
}

// StoreConfig selects the meal log database.
type StoreConfig struct {
	// Driver is "sqlite3" or "postgres".
	Driver string `json:"driver" yaml:"driver" mapstructure:"driver"`

	// DSN is a file path for sqlite3 or a connection string for postgres.
	DSN string `json:"dsn" yaml:"dsn" mapstructure:"dsn"`

	// MaxResults bounds log listings (default 50).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr            string        `json:"addr" yaml:"addr" mapstructure:"addr"`
	ReadTimeout     time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout" yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout" yaml:"idle_timeout" mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// Config groups all component configurations.
type Config struct {
	Server    ServerConfig    `json:"server" yaml:"server" mapstructure:"server"`
	Upstream  UpstreamConfig  `json:"upstream" yaml:"upstream" mapstructure:"upstream"`
	RateLimit RateLimitConfig `json:"rate_limit" yaml:"rate_limit" mapstructure:"rate_limit"`
	Scoring   ScoringConfig   `json:"scoring" yaml:"scoring" mapstructure:"scoring"`
	Store     StoreConfig     `json:"store" yaml:"store" mapstructure:"store"`
}

// DefaultScoringConfig returns the Perfect Fit Score constants.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		Weights: ScoreWeights{
			MacroFit:     0.4,
			Distance:     0.2,
			AIConfidence: 0.2,
			MealType:     0.2,
			CalorieShare: 0.7,
		},
		Thresholds: LabelThresholds{
			Perfect:   90,
			Excellent: 80,
			Great:     70,
			Good:      60,
		},
		DefaultConfidence: 0.6,
		MaxCandidates:     5,
	}
}

// DefaultConfig returns a Config with every default filled in.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    45 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Upstream: UpstreamConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: "feastfit/0.1",
			},
			BaseURL: "https://api.yelp.com",
			Geo: GeoConfig{
				Locale:    "en_US",
				Latitude:  37.7749,
				Longitude: -122.4194,
			},
		},
		RateLimit: RateLimitConfig{
			Window:        time.Minute,
			MaxRequests:   10,
			SweepInterval: 5 * time.Minute,
			MaxClients:    10000,
		},
		Scoring: DefaultScoringConfig(),
		Store: StoreConfig{
			Driver:     "sqlite3",
			DSN:        "data/feastfit.db",
			MaxResults: 50,
		},
	}
}
