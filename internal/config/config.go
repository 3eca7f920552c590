package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr   string
	DBPath string

	// HomepageURL est la page d'accueil du site source; les cartes d'épisodes
	// y sont découvertes à chaque cycle.
	HomepageURL string

	HTTPTimeout  time.Duration
	MaxRetries   int
	RetryDelay   time.Duration
	PollInterval time.Duration
	CardDelay    time.Duration

	LatestMax int

	// Proxies, chaque entrée au format host:port[:user:pass].
	Proxies []string

	// TMDBAPIKey vide désactive l'enrichissement.
	TMDBAPIKey string

	Autostart bool
}

func Default() Config {
	return Config{
		Addr:         envOr("LASTANIME_ADDR", "127.0.0.1:8080"),
		DBPath:       envOr("LASTANIME_DB_PATH", "lastanime.db"),
		HomepageURL:  envOr("LASTANIME_HOMEPAGE_URL", "https://animesalt.cc"),
		HTTPTimeout:  envDuration("LASTANIME_HTTP_TIMEOUT", 20*time.Second),
		MaxRetries:   envInt("LASTANIME_MAX_RETRIES", 3),
		RetryDelay:   envDuration("LASTANIME_RETRY_DELAY", 2*time.Second),
		PollInterval: envDuration("LASTANIME_POLL_INTERVAL", 5*time.Minute),
		CardDelay:    envDuration("LASTANIME_CARD_DELAY", 2*time.Second),
		LatestMax:    envInt("LASTANIME_LATEST_MAX", 30),
		Proxies:      envList("LASTANIME_PROXIES"),
		TMDBAPIKey:   envOr("LASTANIME_TMDB_API_KEY", ""),
		Autostart:    envBool("LASTANIME_AUTOSTART", true),
	}
}

// Validate vérifie le minimum vital au démarrage. Une homepage absente ou
// invalide est fatale (il n'y a rien à scraper sans elle).
func (c Config) Validate() error {
	u, err := url.Parse(strings.TrimSpace(c.HomepageURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid homepage url: %q", c.HomepageURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid homepage url scheme: %q", u.Scheme)
	}
	if c.LatestMax <= 0 {
		return fmt.Errorf("latest max must be positive, got %d", c.LatestMax)
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("max retries must be positive, got %d", c.MaxRetries)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envList(key string) []string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
