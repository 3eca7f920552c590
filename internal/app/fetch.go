package app

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"
)

// userAgents is the fixed identity pool; one entry is picked at random per
// attempt so consecutive retries do not present the same client.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:124.0) Gecko/20100101 Firefox/124.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Safari/605.1.15",
}

// Fetcher is the only component that performs network I/O. Every GET goes
// through the proxy pool (when configured) with a bounded timeout, and the
// whole call retries across an attempt budget of maxRetries × max(1, proxies).
type Fetcher struct {
	logger  zerolog.Logger
	pool    *ProxyPool
	referer string

	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
}

func NewFetcher(logger zerolog.Logger, pool *ProxyPool, referer string, timeout time.Duration, maxRetries int, retryDelay time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if maxRetries <= 0 {
		maxRetries = 1
	}
	return &Fetcher{
		logger:     logger,
		pool:       pool,
		referer:    referer,
		timeout:    timeout,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

// FetchHTML GETs rawURL and returns the body as text. First success wins; a
// failed attempt quarantines its proxy (if one was used) and waits the fixed
// retry delay. Budget exhaustion returns ErrFetchExhausted wrapping the last
// attempt error.
func (f *Fetcher) FetchHTML(ctx context.Context, rawURL string) (string, error) {
	attempts := f.maxRetries
	if n := f.pool.Size(); n > 1 {
		attempts = f.maxRetries * n
	}

	var body string
	err := retry.Do(
		func() error {
			proxy := f.pool.Next()
			b, err := f.attempt(ctx, rawURL, proxy)
			if err != nil {
				f.pool.MarkFailed(proxy)
				return err
			}
			body = b
			return nil
		},
		retry.Attempts(uint(attempts)),
		retry.Delay(f.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
	if err != nil {
		f.logger.Debug().Err(err).Str("url", rawURL).Int("attempts", attempts).Msg("fetch exhausted")
		return "", fmt.Errorf("%w: %s: %w", ErrFetchExhausted, rawURL, err)
	}
	return body, nil
}

func (f *Fetcher) attempt(ctx context.Context, rawURL string, proxy *Proxy) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,*/*;q=0.8")
	if f.referer != "" {
		req.Header.Set("Referer", f.referer)
	}

	resp, err := f.clientFor(proxy).Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("http status %s", resp.Status)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (f *Fetcher) clientFor(proxy *Proxy) *http.Client {
	transport := &http.Transport{}
	if proxy != nil {
		transport.Proxy = http.ProxyURL(proxy.URL())
	}
	return &http.Client{Timeout: f.timeout, Transport: transport}
}
