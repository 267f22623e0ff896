package rank

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/semplan/pkg/semplan/internalerr"
	"github.com/cognicore/semplan/pkg/semplan/keyword"
)

func TestScorerBasic(t *testing.T) {
	scorer := NewScorer(DefaultWeights(), 0, nil)

	rec := &keyword.Record{
		Volume:      5000,
		Intent:      keyword.IntentCommercial,
		Confidence:  1,
		Competition: 0.4,
	}
	// 0.4*0.5 + 0.35*1 + 0.25*0.6 = 0.70
	assert.Equal(t, 70, scorer.Score(rec))

	b := scorer.ScoreWithBreakdown(rec)
	assert.InDelta(t, 0.20, b.Volume, 1e-9)
	assert.InDelta(t, 0.35, b.Intent, 1e-9)
	assert.InDelta(t, 0.15, b.Competition, 1e-9)
	assert.InDelta(t, 0.70, b.Total, 1e-9)
}

func TestScorerBounds(t *testing.T) {
	scorer := NewScorer(Weights{Volume: 2, Intent: 2, Competition: 2}, 100, nil)

	hi := &keyword.Record{Volume: 1e9, Intent: keyword.IntentCommercial, Confidence: 1}
	assert.Equal(t, 100, scorer.Score(hi))

	lo := &keyword.Record{Volume: 0, Intent: keyword.IntentInformational, Confidence: 0, Competition: 1}
	assert.Equal(t, 0, scorer.Score(lo))

	odd := &keyword.Record{Volume: -5, Confidence: 7, Competition: -3}
	s := scorer.Score(odd)
	assert.GreaterOrEqual(t, s, 0)
	assert.LessOrEqual(t, s, 100)
}

func TestScorerMonotone(t *testing.T) {
	scorer := NewScorer(DefaultWeights(), 0, nil)
	base := keyword.Record{Volume: 1200, Intent: keyword.IntentNavigational, Confidence: 0.7, Competition: 0.5}

	t.Run("volume", func(t *testing.T) {
		prev := -1
		for _, v := range []int64{0, 10, 500, 1200, 9999, 10000, 50000} {
			rec := base
			rec.Volume = v
			s := scorer.Score(&rec)
			assert.GreaterOrEqual(t, s, prev, "volume %d", v)
			prev = s
		}
	})

	t.Run("competition", func(t *testing.T) {
		prev := 101
		for _, c := range []float64{0, 0.1, 0.3, 0.5, 0.8, 1} {
			rec := base
			rec.Competition = c
			s := scorer.Score(&rec)
			assert.LessOrEqual(t, s, prev, "competition %v", c)
			prev = s
		}
	})

	t.Run("intent", func(t *testing.T) {
		// INFORMATIONAL < NAVIGATIONAL < LOCAL < COMMERCIAL
		order := []keyword.Intent{
			keyword.IntentInformational, keyword.IntentNavigational,
			keyword.IntentLocal, keyword.IntentCommercial,
		}
		prev := -1
		for _, in := range order {
			rec := base
			rec.Intent = in
			s := scorer.Score(&rec)
			assert.GreaterOrEqual(t, s, prev, fmt.Sprint(in))
			prev = s
		}
	})
}

func TestApply(t *testing.T) {
	scorer := NewScorer(DefaultWeights(), 0, nil)
	records := []*keyword.Record{
		{Volume: 10000, Intent: keyword.IntentCommercial, Confidence: 1, Competition: 0},
		{Volume: 0, Intent: keyword.IntentInformational, Confidence: 0.2, Competition: 1},
	}
	scorer.Apply(records)
	assert.Equal(t, 100, records[0].Score)
	assert.Equal(t, 1, records[1].Score) // 0.35*0.2*0.2 = 0.014
}

func TestWeightsValidate(t *testing.T) {
	require.NoError(t, DefaultWeights().Validate())
	assert.ErrorIs(t, Weights{Volume: -0.1}.Validate(), internalerr.ErrInvalidConfig)
}
