package source

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/cognicore/semplan/pkg/semplan/keyword"
)

type stubSource struct {
	name  string
	kind  keyword.Source
	texts []string
	err   error
	delay time.Duration
	block bool

	running *atomic.Int32
	peak    *atomic.Int32
}

func (s *stubSource) Name() string         { return s.name }
func (s *stubSource) Kind() keyword.Source { return s.kind }

func (s *stubSource) Fetch(ctx context.Context) ([]keyword.Candidate, error) {
	if s.running != nil {
		n := s.running.Add(1)
		defer s.running.Add(-1)
		for {
			p := s.peak.Load()
			if n <= p || s.peak.CompareAndSwap(p, n) {
				break
			}
		}
	}
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if s.err != nil {
		return []keyword.Candidate{{Text: "discarded", Source: s.kind}}, s.err
	}
	out := make([]keyword.Candidate, len(s.texts))
	for i, t := range s.texts {
		out[i] = keyword.Candidate{Text: t, Source: s.kind}
	}
	return out, nil
}

type recordingObserver struct {
	mu      sync.Mutex
	reports []Report
}

func (o *recordingObserver) ObserveSource(r Report) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reports = append(o.reports, r)
}

func TestGatherKeepsSourceOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	obs := &recordingObserver{}
	g := NewGatherer([]Source{
		&stubSource{name: "slow", kind: keyword.SourceAutocomplete, texts: []string{"a1", "a2"}, delay: 30 * time.Millisecond},
		&stubSource{name: "broken", kind: keyword.SourceWebsite, err: errors.New("unreachable")},
		&stubSource{name: "fast", kind: keyword.SourceSeed, texts: []string{"s1"}},
	}, GathererConfig{Observer: obs})

	got, reports := g.Gather(context.Background())

	var texts []string
	for _, c := range got {
		texts = append(texts, c.Text)
	}
	assert.Equal(t, []string{"a1", "a2", "s1"}, texts, "failed sources contribute nothing")

	require.Len(t, reports, 3)
	assert.Equal(t, "slow", reports[0].Source)
	assert.Equal(t, 2, reports[0].Count)
	assert.NoError(t, reports[0].Err)
	assert.Equal(t, keyword.SourceWebsite, reports[1].Kind)
	assert.Equal(t, 0, reports[1].Count)
	assert.EqualError(t, reports[1].Err, "unreachable")
	assert.GreaterOrEqual(t, reports[0].Duration, 30*time.Millisecond)

	assert.Equal(t, reports, obs.reports)
}

func TestGatherConcurrencyLimit(t *testing.T) {
	defer goleak.VerifyNone(t)

	var running, peak atomic.Int32
	var sources []Source
	for i := 0; i < 6; i++ {
		sources = append(sources, &stubSource{
			name: "s", kind: keyword.SourceSeed, texts: []string{"x"},
			delay: 20 * time.Millisecond, running: &running, peak: &peak,
		})
	}

	got, _ := NewGatherer(sources, GathererConfig{Concurrency: 2}).Gather(context.Background())
	assert.Len(t, got, 6)
	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.Positive(t, peak.Load())
}

func TestGatherTimeout(t *testing.T) {
	defer goleak.VerifyNone(t)

	g := NewGatherer([]Source{
		&stubSource{name: "stuck", kind: keyword.SourceAutocomplete, block: true},
		&stubSource{name: "ok", kind: keyword.SourceSeed, texts: []string{"seed"}},
	}, GathererConfig{Timeout: 50 * time.Millisecond})

	got, reports := g.Gather(context.Background())
	require.Len(t, got, 1)
	assert.Equal(t, "seed", got[0].Text)
	assert.ErrorIs(t, reports[0].Err, context.DeadlineExceeded)
	assert.NoError(t, reports[1].Err)
}

func TestGatherNoSources(t *testing.T) {
	got, reports := NewGatherer(nil, GathererConfig{}).Gather(context.Background())
	assert.Empty(t, got)
	assert.Empty(t, reports)
}
