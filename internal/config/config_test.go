package config

import (
	"testing"
	"time"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("default port = %q", cfg.Port)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("default request timeout = %s", cfg.RequestTimeout)
	}
	if cfg.ConfidenceWeight != 0.55 || cfg.DistanceWeight != 0.35 || cfg.AreaWeight != 0.10 {
		t.Errorf("default score weights = %f/%f/%f", cfg.ConfidenceWeight, cfg.DistanceWeight, cfg.AreaWeight)
	}
	if cfg.DropThreshold != 0.70 || cfg.BoostThreshold != 0.85 {
		t.Errorf("default similarity thresholds = %f/%f", cfg.DropThreshold, cfg.BoostThreshold)
	}
	if cfg.ThumbnailWorkers != 8 || cfg.MaxThumbnailFetch != 10 {
		t.Errorf("default thumbnail settings = %d/%d", cfg.ThumbnailWorkers, cfg.MaxThumbnailFetch)
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("AMBIGUITY_MARGIN", "0.12")
	t.Setenv("PROVIDER_TIMEOUT", "5s")
	t.Setenv("AFFILIATE_IDS", "Amazon=mytag-20, wayfair=ref1")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9999" {
		t.Errorf("port override failed: %q", cfg.Port)
	}
	if cfg.AmbiguityMargin != 0.12 {
		t.Errorf("margin override failed: %f", cfg.AmbiguityMargin)
	}
	if cfg.ProviderTimeout != 5*time.Second {
		t.Errorf("timeout override failed: %s", cfg.ProviderTimeout)
	}
	if cfg.AffiliateIDs["amazon"] != "mytag-20" || cfg.AffiliateIDs["wayfair"] != "ref1" {
		t.Errorf("affiliate IDs not parsed: %v", cfg.AffiliateIDs)
	}
}

func TestLoadFromEnvRejectsBadPort(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("expected invalid port to fail")
	}
	t.Setenv("PORT", "70000")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("expected out-of-range port to fail")
	}
}

func TestLoadFromEnvRejectsBadThresholds(t *testing.T) {
	t.Setenv("DROP_THRESHOLD", "1.5")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("expected out-of-range threshold to fail")
	}
}

func TestServerAddress(t *testing.T) {
	cfg := &Config{Host: " 0.0.0.0 ", Port: " 8080 "}
	if got := cfg.ServerAddress(); got != "0.0.0.0:8080" {
		t.Errorf("ServerAddress() = %q", got)
	}
}

func TestParseKeyValueList(t *testing.T) {
	got := parseKeyValueList("a=1,b=2,malformed,=x,c=")
	if len(got) != 2 || got["a"] != "1" || got["b"] != "2" {
		t.Errorf("unexpected parse: %v", got)
	}
	if len(parseKeyValueList("")) != 0 {
		t.Error("empty input must parse to empty map")
	}
}
