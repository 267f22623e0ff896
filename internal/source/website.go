package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/cognicore/semplan/pkg/semplan/keyword"
	"github.com/cognicore/semplan/pkg/semplan/stoplist"
)

// DefaultWebsiteLimit caps the phrases taken from one site.
const DefaultWebsiteLimit = 30

// Website extracts keyword phrases from the advertiser's own site.
type Website struct {
	url    string
	limit  int
	fetch  *fetcher
	stops  *stoplist.Manager
	logger *zap.Logger
}

// NewWebsite creates a website adapter. A limit <= 0 uses
// DefaultWebsiteLimit.
func NewWebsite(siteURL string, limit int, h HTTP, stops *stoplist.Manager, logger *zap.Logger) *Website {
	if limit <= 0 {
		limit = DefaultWebsiteLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Website{url: siteURL, limit: limit, fetch: newFetcher(h), stops: stops, logger: logger}
}

func (w *Website) Name() string         { return "website" }
func (w *Website) Kind() keyword.Source { return keyword.SourceWebsite }

// Fetch extracts the site's phrases as WEBSITE_CONTENT candidates.
func (w *Website) Fetch(ctx context.Context) ([]keyword.Candidate, error) {
	phrases, err := w.Phrases(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]keyword.Candidate, 0, len(phrases))
	for _, p := range phrases {
		out = append(out, keyword.Candidate{Text: p.Text, Source: keyword.SourceWebsite, Catalog: p.Catalog})
	}
	return out, nil
}

// Phrases fetches the page, trying the www or bare-host variant when the
// first address fails, and extracts at most limit phrases.
func (w *Website) Phrases(ctx context.Context) ([]Phrase, error) {
	var errs []error
	for _, u := range urlVariants(w.url) {
		body, err := w.fetch.get(ctx, u, "text/html,application/xhtml+xml")
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			w.logger.Debug("site fetch failed", zap.String("url", u), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		phrases, err := ExtractPhrases(bytes.NewReader(body), w.stops)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", u, err)
		}
		if len(phrases) > w.limit {
			phrases = phrases[:w.limit]
		}
		w.logger.Debug("site extracted", zap.String("url", u), zap.Int("phrases", len(phrases)))
		return phrases, nil
	}
	return nil, fmt.Errorf("extract website keywords %s: %w", w.url, errors.Join(errs...))
}

// urlVariants returns rawURL followed by its www or bare-host twin. URLs
// without a scheme are treated as https.
func urlVariants(rawURL string) []string {
	rawURL = strings.TrimSpace(rawURL)
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return []string{rawURL}
	}

	alt := *u
	if host, ok := strings.CutPrefix(u.Host, "www."); ok {
		alt.Host = host
	} else if host := u.Hostname(); strings.Contains(host, ".") && net.ParseIP(host) == nil {
		alt.Host = "www." + u.Host
	} else {
		return []string{u.String()}
	}
	return []string{u.String(), alt.String()}
}
