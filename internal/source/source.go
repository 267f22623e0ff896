// Package source gathers keyword candidates from search suggestions, web
// pages, competitor sites and built-in templates.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/cognicore/semplan/pkg/semplan/keyword"
)

// Source produces keyword candidates of one kind.
type Source interface {
	// Name identifies the source in reports, e.g. "competitor:rival".
	Name() string
	Kind() keyword.Source
	Fetch(ctx context.Context) ([]keyword.Candidate, error)
}

// HTTP configures the adapters that fetch over the network.
type HTTP struct {
	Client    *http.Client
	UserAgent string

	// Interval is the minimum gap between two requests of one adapter.
	Interval time.Duration
}

const (
	defaultHTTPTimeout = 15 * time.Second
	maxBodyBytes       = 4 << 20
	defaultUserAgent   = "Mozilla/5.0 (compatible; semplan/1.0)"
)

// fetcher issues rate-limited GET requests for a single adapter.
type fetcher struct {
	client    *http.Client
	userAgent string
	interval  time.Duration

	mu   sync.Mutex
	next time.Time
}

func newFetcher(h HTTP) *fetcher {
	f := &fetcher{client: h.Client, userAgent: h.UserAgent, interval: h.Interval}
	if f.client == nil {
		f.client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if f.userAgent == "" {
		f.userAgent = defaultUserAgent
	}
	return f
}

// wait reserves the next request slot and sleeps until it arrives.
func (f *fetcher) wait(ctx context.Context) error {
	f.mu.Lock()
	now := time.Now()
	at := f.next
	if at.Before(now) {
		at = now
	}
	f.next = at.Add(f.interval)
	f.mu.Unlock()

	d := time.Until(at)
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (f *fetcher) get(ctx context.Context, rawURL, accept string) ([]byte, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rawURL, err)
	}
	return body, nil
}
