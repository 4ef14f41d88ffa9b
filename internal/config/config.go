package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	MaxRequestBodySize int64

	// External model serving endpoints
	DetectorURL     string
	DetectorTimeout time.Duration
	EmbedderURL     string
	EmbedderTimeout time.Duration

	// Search provider credentials; an empty key disables that provider
	SerpAPIKey string
	ExaAPIKey  string

	// Gemini attribute extraction (optional)
	GeminiAPIKey string
	GeminiModel  string

	// Public crop hosting for reverse-image search (optional)
	AzureAccountName string
	AzureAccountKey  string
	AzureContainer   string

	ProviderTimeout time.Duration

	// Click resolution scoring. Empirically chosen defaults; tunable.
	ConfidenceWeight float64
	DistanceWeight   float64
	AreaWeight       float64
	AmbiguityMargin  float64
	BoundaryPx       float64
	ConfidenceFloor  float64

	// Similarity re-ranking
	DropThreshold     float64
	BoostThreshold    float64
	ThumbnailTimeout  time.Duration
	ThumbnailWorkers  int
	MaxThumbnailFetch int
	MaxResults        int

	// Retailer name to affiliate ID, e.g. "amazon=mytag-20,wayfair=ref123"
	AffiliateIDs map[string]string
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB

		DetectorURL:     getEnvOrDefault("DETECTOR_URL", "http://localhost:8091/detect"),
		DetectorTimeout: parseDurationOrDefault("DETECTOR_TIMEOUT", 10*time.Second),
		EmbedderURL:     getEnvOrDefault("EMBEDDER_URL", "http://localhost:8092"),
		EmbedderTimeout: parseDurationOrDefault("EMBEDDER_TIMEOUT", 10*time.Second),

		SerpAPIKey: os.Getenv("SERP_API_KEY"),
		ExaAPIKey:  os.Getenv("EXA_API_KEY"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),

		AzureAccountName: os.Getenv("AZURE_ACCOUNT_NAME"),
		AzureAccountKey:  os.Getenv("AZURE_ACCOUNT_KEY"),
		AzureContainer:   getEnvOrDefault("AZURE_CONTAINER", "crops"),

		ProviderTimeout: parseDurationOrDefault("PROVIDER_TIMEOUT", 12*time.Second),

		ConfidenceWeight: parseFloatOrDefault("SCORE_CONFIDENCE_WEIGHT", 0.55),
		DistanceWeight:   parseFloatOrDefault("SCORE_DISTANCE_WEIGHT", 0.35),
		AreaWeight:       parseFloatOrDefault("SCORE_AREA_WEIGHT", 0.10),
		AmbiguityMargin:  parseFloatOrDefault("AMBIGUITY_MARGIN", 0.08),
		BoundaryPx:       parseFloatOrDefault("BOUNDARY_THRESHOLD_PX", 10),
		ConfidenceFloor:  parseFloatOrDefault("CONFIDENCE_FLOOR", 0.25),

		DropThreshold:     parseFloatOrDefault("DROP_THRESHOLD", 0.70),
		BoostThreshold:    parseFloatOrDefault("BOOST_THRESHOLD", 0.85),
		ThumbnailTimeout:  parseDurationOrDefault("THUMBNAIL_TIMEOUT", 1500*time.Millisecond),
		ThumbnailWorkers:  int(parseIntOrDefault("THUMBNAIL_WORKERS", 8)),
		MaxThumbnailFetch: int(parseIntOrDefault("MAX_THUMBNAIL_FETCH", 10)),
		MaxResults:        int(parseIntOrDefault("MAX_RESULTS", 10)),

		AffiliateIDs: parseKeyValueList(os.Getenv("AFFILIATE_IDS")),
	}

	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.RequestTimeout <= 0 || cfg.DetectorTimeout <= 0 || cfg.EmbedderTimeout <= 0 || cfg.ProviderTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, detector=%s, embedder=%s, provider=%s)",
			cfg.RequestTimeout, cfg.DetectorTimeout, cfg.EmbedderTimeout, cfg.ProviderTimeout)
	}
	if cfg.DropThreshold < 0 || cfg.DropThreshold > 1 || cfg.BoostThreshold < 0 || cfg.BoostThreshold > 1 {
		return nil, fmt.Errorf("similarity thresholds must lie in [0,1] (drop=%.2f, boost=%.2f)",
			cfg.DropThreshold, cfg.BoostThreshold)
	}
	if cfg.ThumbnailWorkers <= 0 || cfg.MaxResults <= 0 {
		return nil, fmt.Errorf("THUMBNAIL_WORKERS and MAX_RESULTS must be > 0")
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseKeyValueList(value string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(value, ",") {
		key, val, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || key == "" || val == "" {
			continue
		}
		out[strings.ToLower(key)] = val
	}
	return out
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
