package source

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cognicore/semplan/pkg/semplan/keyword"
)

// Report describes one source's contribution to a gathering run.
type Report struct {
	Source   string
	Kind     keyword.Source
	Count    int
	Err      error
	Duration time.Duration
}

// Observer is notified once per source after it finishes.
type Observer interface {
	ObserveSource(Report)
}

// Gatherer runs sources concurrently and merges their candidates.
type Gatherer struct {
	sources     []Source
	concurrency int
	timeout     time.Duration
	observer    Observer
	logger      *zap.Logger
}

// GathererConfig configures a Gatherer.
type GathererConfig struct {
	Concurrency int           // <= 0 runs every source at once
	Timeout     time.Duration // 0 means no deadline beyond ctx
	Observer    Observer
	Logger      *zap.Logger
}

// NewGatherer creates a gatherer over sources.
func NewGatherer(sources []Source, cfg GathererConfig) *Gatherer {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Gatherer{
		sources:     sources,
		concurrency: cfg.Concurrency,
		timeout:     cfg.Timeout,
		observer:    cfg.Observer,
		logger:      cfg.Logger,
	}
}

// Gather fetches every source. A failing source contributes no candidates
// and is recorded in its report; it never aborts the others. Candidates keep
// source order and the order each source returned them in.
func (g *Gatherer) Gather(ctx context.Context) ([]keyword.Candidate, []Report) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	results := make([][]keyword.Candidate, len(g.sources))
	reports := make([]Report, len(g.sources))

	eg, egCtx := errgroup.WithContext(ctx)
	if g.concurrency > 0 {
		eg.SetLimit(g.concurrency)
	}
	for i, src := range g.sources {
		i, src := i, src
		eg.Go(func() error {
			start := time.Now()
			cands, err := src.Fetch(egCtx)
			if err != nil {
				cands = nil
			}
			results[i] = cands
			reports[i] = Report{
				Source:   src.Name(),
				Kind:     src.Kind(),
				Count:    len(cands),
				Err:      err,
				Duration: time.Since(start),
			}
			return nil
		})
	}
	_ = eg.Wait()

	var out []keyword.Candidate
	for i, r := range reports {
		if r.Err != nil {
			g.logger.Warn("source failed", zap.String("source", r.Source), zap.Duration("took", r.Duration), zap.Error(r.Err))
		} else {
			g.logger.Info("source gathered", zap.String("source", r.Source), zap.Int("candidates", r.Count), zap.Duration("took", r.Duration))
		}
		if g.observer != nil {
			g.observer.ObserveSource(r)
		}
		out = append(out, results[i]...)
	}
	return out, reports
}
