package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cognicore/semplan/internal/metrics"
	"github.com/cognicore/semplan/internal/source"
	"github.com/cognicore/semplan/pkg/semplan"
	"github.com/cognicore/semplan/pkg/semplan/config"
	"github.com/cognicore/semplan/pkg/semplan/store"
	"github.com/cognicore/semplan/pkg/semplan/store/sqlite"
)

// app bundles everything one command needs.
type app struct {
	cfg     *config.Config
	comp    *config.Components
	store   store.Store
	planner *semplan.Planner
	metrics *metrics.Metrics
}

// buildApp loads the configuration, opens the store and wires the planner.
// The returned cleanup closes the store.
func buildApp(ctx context.Context, cfgPath, dbPath string) (*app, func(), error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	comp, err := cfg.Components()
	if err != nil {
		return nil, nil, fmt.Errorf("build pipeline: %w", err)
	}
	st, err := sqlite.OpenSQLite(ctx, dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	a := &app{
		cfg:     cfg,
		comp:    comp,
		store:   st,
		planner: semplan.New(comp.Options(st)),
		metrics: metrics.New(),
	}
	cleanup := func() {
		if err := a.planner.Close(); err != nil && logger != nil {
			logger.Warn("close store", zap.Error(err))
		}
	}
	return a, cleanup, nil
}

// openStore opens the plan store without a configuration.
func openStore(ctx context.Context, dbPath string) (*semplan.Planner, func(), error) {
	st, err := sqlite.OpenSQLite(ctx, dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	p := semplan.New(semplan.Options{Store: st})
	return p, func() { _ = p.Close() }, nil
}

// buildSources creates one source per enabled research channel that has the
// input it needs. extraSeeds are added to the configured seed keywords.
func buildSources(cfg *config.Config, comp *config.Components, cache source.SuggestionCache, extraSeeds []string, log *zap.Logger) []source.Source {
	r := cfg.Research
	h := source.HTTP{UserAgent: r.UserAgent, Interval: r.RequestInterval}
	seeds := append(append([]string(nil), cfg.SeedKeywords...), extraSeeds...)

	var out []source.Source
	if r.Autocomplete && len(seeds) > 0 {
		out = append(out, source.NewAutocomplete(source.AutocompleteConfig{
			Endpoint:       r.AutocompleteEndpoint,
			Seeds:          seeds,
			Variations:     r.Variations,
			MaxSuggestions: r.MaxSuggestions,
			CacheTTL:       r.CacheTTL,
		}, h, cache, log))
	}
	if r.Website && cfg.Brand.WebsiteURL != "" {
		out = append(out, source.NewWebsite(cfg.Brand.WebsiteURL, source.DefaultWebsiteLimit, h, comp.Stoplist, log))
	}
	if r.Competitors {
		for _, c := range cfg.Competitors {
			out = append(out, source.NewCompetitor(c.Name, c.URL, h, comp.Stoplist, log))
		}
	}
	if r.Templates && cfg.Brand.Industry != "" {
		out = append(out, source.NewTemplates(cfg.Brand.Industry, cfg.Templates, source.DefaultTemplateLimit))
	}
	if r.Seeds && len(seeds) > 0 {
		out = append(out, source.NewSeeds(seeds))
	}
	return out
}
