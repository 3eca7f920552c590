package config

import (
	"testing"
	"time"
)

func TestDefault_EnvOverrides(t *testing.T) {
	t.Setenv("LASTANIME_HOMEPAGE_URL", "https://example.org")
	t.Setenv("LASTANIME_POLL_INTERVAL", "90s")
	t.Setenv("LASTANIME_MAX_RETRIES", "5")
	t.Setenv("LASTANIME_PROXIES", "1.2.3.4:8080, 5.6.7.8:3128:user:pass ,")
	t.Setenv("LASTANIME_AUTOSTART", "false")

	cfg := Default()
	if cfg.HomepageURL != "https://example.org" {
		t.Fatalf("HomepageURL: want %q, got %q", "https://example.org", cfg.HomepageURL)
	}
	if cfg.PollInterval != 90*time.Second {
		t.Fatalf("PollInterval: want %v, got %v", 90*time.Second, cfg.PollInterval)
	}
	if cfg.MaxRetries != 5 {
		t.Fatalf("MaxRetries: want %d, got %d", 5, cfg.MaxRetries)
	}
	if len(cfg.Proxies) != 2 || cfg.Proxies[0] != "1.2.3.4:8080" || cfg.Proxies[1] != "5.6.7.8:3128:user:pass" {
		t.Fatalf("Proxies: got %v", cfg.Proxies)
	}
	if cfg.Autostart {
		t.Fatalf("Autostart: want false")
	}
}

func TestDefault_InvalidEnvFallsBack(t *testing.T) {
	t.Setenv("LASTANIME_POLL_INTERVAL", "not-a-duration")
	t.Setenv("LASTANIME_MAX_RETRIES", "many")

	cfg := Default()
	if cfg.PollInterval != 5*time.Minute {
		t.Fatalf("PollInterval: want default %v, got %v", 5*time.Minute, cfg.PollInterval)
	}
	if cfg.MaxRetries != 3 {
		t.Fatalf("MaxRetries: want default %d, got %d", 3, cfg.MaxRetries)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate(default): %v", err)
	}

	bad := cfg
	bad.HomepageURL = "not a url"
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for invalid homepage url")
	}

	bad = cfg
	bad.HomepageURL = "ftp://example.org"
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for non-http scheme")
	}

	bad = cfg
	bad.LatestMax = 0
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for zero latest max")
	}
}
