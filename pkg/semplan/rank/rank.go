package rank

import (
	"fmt"
	"math"

	"github.com/cognicore/semplan/pkg/semplan/internalerr"
	"github.com/cognicore/semplan/pkg/semplan/keyword"
)

// Scorer calculates the 0-100 performance score of a keyword
type Scorer struct {
	weights      Weights
	volumeCap    float64
	intentValues map[keyword.Intent]float64
}

// Weights defines the scoring weights
type Weights struct {
	Volume      float64 `yaml:"volume"`      // capped search volume
	Intent      float64 `yaml:"intent"`      // intent value × confidence
	Competition float64 `yaml:"competition"` // 1 - competition
}

// DefaultWeights returns 40% volume, 35% intent, 25% competition.
func DefaultWeights() Weights {
	return Weights{Volume: 0.40, Intent: 0.35, Competition: 0.25}
}

// DefaultVolumeCap is the volume at which the volume component saturates.
const DefaultVolumeCap = 10000

// DefaultIntentValues ranks how valuable each intent is to an advertiser.
func DefaultIntentValues() map[keyword.Intent]float64 {
	return map[keyword.Intent]float64{
		keyword.IntentCommercial:    1.0,
		keyword.IntentLocal:         0.8,
		keyword.IntentNavigational:  0.5,
		keyword.IntentInformational: 0.2,
	}
}

// Validate rejects negative or non-finite weights.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{"volume": w.Volume, "intent": w.Intent, "competition": w.Competition} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("rank: %s weight %v: %w", name, v, internalerr.ErrInvalidConfig)
		}
	}
	return nil
}

// NewScorer creates a new scorer. A volumeCap <= 0 uses DefaultVolumeCap and
// nil intentValues use DefaultIntentValues.
func NewScorer(w Weights, volumeCap float64, intentValues map[keyword.Intent]float64) *Scorer {
	if volumeCap <= 0 {
		volumeCap = DefaultVolumeCap
	}
	if intentValues == nil {
		intentValues = DefaultIntentValues()
	}
	return &Scorer{weights: w, volumeCap: volumeCap, intentValues: intentValues}
}

// Score calculates the performance score of a record
//
// score = round(100 · (Wv·min(vol,cap)/cap + Wi·value(intent)·confidence + Wc·(1−competition)))
//
// clamped to [0,100].
func (s *Scorer) Score(rec *keyword.Record) int {
	return s.ScoreWithBreakdown(rec).Score
}

// Breakdown provides detailed scoring information
type Breakdown struct {
	Volume      float64
	Intent      float64
	Competition float64
	Total       float64
	Score       int
}

// ScoreWithBreakdown calculates score with detailed breakdown
func (s *Scorer) ScoreWithBreakdown(rec *keyword.Record) Breakdown {
	vol := clamp01(float64(rec.Volume) / s.volumeCap)
	intent := clamp01(s.intentValues[rec.Intent] * clamp01(rec.Confidence))
	comp := 1 - clamp01(rec.Competition)

	b := Breakdown{
		Volume:      s.weights.Volume * vol,
		Intent:      s.weights.Intent * intent,
		Competition: s.weights.Competition * comp,
	}
	b.Total = b.Volume + b.Intent + b.Competition

	score := math.Round(100 * b.Total)
	b.Score = int(math.Max(0, math.Min(100, score)))
	return b
}

// Apply scores every record in place.
func (s *Scorer) Apply(records []*keyword.Record) {
	for _, rec := range records {
		rec.Score = s.Score(rec)
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
