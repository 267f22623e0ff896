package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cognicore/semplan/pkg/semplan/keyword"
)

// SuggestionCache stores suggestions per seed. store.Store implements it.
type SuggestionCache interface {
	GetSuggestions(ctx context.Context, seed string, maxAge time.Duration, now time.Time) ([]string, bool, error)
	PutSuggestions(ctx context.Context, seed string, suggestions []string, fetchedAt time.Time) error
}

// DefaultAutocompleteEndpoint returns ["query", ["s1", "s2", ...]]. The
// escaped query is appended to it.
const DefaultAutocompleteEndpoint = "https://suggestqueries.google.com/complete/search?client=firefox&q="

// AutocompleteConfig configures the suggestion adapter.
type AutocompleteConfig struct {
	Endpoint string
	Seeds    []string

	// Variations are fmt patterns applied to each seed ("best %s"). Empty
	// queries the seed alone.
	Variations []string

	MaxSuggestions int           // per seed; 0 means unlimited
	CacheTTL       time.Duration // 0 disables the cache
}

// Autocomplete collects search-engine suggestions for each seed.
type Autocomplete struct {
	cfg    AutocompleteConfig
	fetch  *fetcher
	cache  SuggestionCache
	now    func() time.Time
	logger *zap.Logger
}

// NewAutocomplete creates the suggestion adapter. cache may be nil.
func NewAutocomplete(cfg AutocompleteConfig, h HTTP, cache SuggestionCache, logger *zap.Logger) *Autocomplete {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultAutocompleteEndpoint
	}
	if len(cfg.Variations) == 0 {
		cfg.Variations = []string{"%s"}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Autocomplete{
		cfg:    cfg,
		fetch:  newFetcher(h),
		cache:  cache,
		now:    time.Now,
		logger: logger,
	}
}

func (a *Autocomplete) Name() string         { return "autocomplete" }
func (a *Autocomplete) Kind() keyword.Source { return keyword.SourceAutocomplete }

// Fetch returns the suggestions of every seed. It fails only when every
// seed failed.
func (a *Autocomplete) Fetch(ctx context.Context) ([]keyword.Candidate, error) {
	var out []keyword.Candidate
	var errs []error
	for _, seed := range a.cfg.Seeds {
		seed = strings.ToLower(strings.TrimSpace(seed))
		if seed == "" {
			continue
		}
		suggestions, err := a.Suggestions(ctx, seed)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			a.logger.Warn("autocomplete failed", zap.String("seed", seed), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		for _, s := range suggestions {
			out = append(out, keyword.Candidate{Text: s, Source: keyword.SourceAutocomplete})
		}
	}
	if len(errs) > 0 && len(errs) == countNonBlank(a.cfg.Seeds) {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// Suggestions returns the deduplicated multi-word suggestions for one seed,
// served from the cache while fresh.
func (a *Autocomplete) Suggestions(ctx context.Context, seed string) ([]string, error) {
	if a.cache != nil && a.cfg.CacheTTL > 0 {
		cached, ok, err := a.cache.GetSuggestions(ctx, seed, a.cfg.CacheTTL, a.now())
		if err != nil {
			a.logger.Warn("suggestion cache read failed", zap.String("seed", seed), zap.Error(err))
		} else if ok {
			a.logger.Debug("suggestion cache hit", zap.String("seed", seed), zap.Int("count", len(cached)))
			return cached, nil
		}
	}

	seen := make(map[string]bool)
	var out []string
	var failures int
	var lastErr error
	for _, pattern := range a.cfg.Variations {
		query := seed
		if strings.Contains(pattern, "%s") {
			query = fmt.Sprintf(pattern, seed)
		}
		raw, err := a.query(ctx, query)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failures++
			lastErr = err
			continue
		}
		for _, s := range raw {
			s = strings.ToLower(strings.TrimSpace(s))
			if len(s) <= 3 || s == seed || seen[s] || !strings.Contains(s, " ") {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	if failures == len(a.cfg.Variations) {
		return nil, fmt.Errorf("fetch autocomplete %q: %w", seed, lastErr)
	}
	if a.cfg.MaxSuggestions > 0 && len(out) > a.cfg.MaxSuggestions {
		out = out[:a.cfg.MaxSuggestions]
	}

	if a.cache != nil && a.cfg.CacheTTL > 0 {
		if err := a.cache.PutSuggestions(ctx, seed, out, a.now()); err != nil {
			a.logger.Warn("suggestion cache write failed", zap.String("seed", seed), zap.Error(err))
		}
	}
	return out, nil
}

func (a *Autocomplete) query(ctx context.Context, q string) ([]string, error) {
	body, err := a.fetch.get(ctx, a.cfg.Endpoint+url.QueryEscape(q), "application/json")
	if err != nil {
		return nil, err
	}
	return parseSuggestions(body)
}

// parseSuggestions decodes ["query", ["s1", ...], ...].
func parseSuggestions(body []byte) ([]string, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(body, &parts); err != nil {
		return nil, fmt.Errorf("decode suggestions: %w", err)
	}
	if len(parts) < 2 {
		return nil, nil
	}
	var suggestions []string
	if err := json.Unmarshal(parts[1], &suggestions); err != nil {
		return nil, fmt.Errorf("decode suggestions list: %w", err)
	}
	return suggestions, nil
}

func countNonBlank(ss []string) int {
	n := 0
	for _, s := range ss {
		if strings.TrimSpace(s) != "" {
			n++
		}
	}
	return n
}
