package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/semplan/pkg/semplan/internalerr"
	"github.com/cognicore/semplan/pkg/semplan/keyword"
)

func classify(c *Classifier, text string) (keyword.Intent, float64) {
	return c.Classify(&keyword.Record{Text: text})
}

func TestClassifyRunningShoes(t *testing.T) {
	c := NewClassifier(DefaultRules())

	in, conf := classify(c, "buy running shoes")
	assert.Equal(t, keyword.IntentCommercial, in)
	assert.Equal(t, 1.0, conf)

	in, conf = classify(c, "running shoes reviews")
	assert.Equal(t, keyword.IntentInformational, in)
	assert.Equal(t, 1.0, conf)
}

func TestClassifyFamilies(t *testing.T) {
	rules := DefaultRules()
	rules.BrandTerms = []string{"Acme Analytics", "acme"}
	c := NewClassifier(rules)

	tests := []struct {
		text string
		want keyword.Intent
	}{
		{"running shoes near me", keyword.IntentLocal},
		{"shoe repair nearby", keyword.IntentLocal},
		{"acme login", keyword.IntentNavigational},
		{"acme analytics", keyword.IntentNavigational},
		{"how to lace running shoes", keyword.IntentInformational},
		{"cheap flights", keyword.IntentCommercial},
		{"crm vs spreadsheet", keyword.IntentCommercial},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, conf := classify(c, tt.text)
			assert.Equal(t, tt.want, got)
			assert.Greater(t, conf, 0.0)
			assert.LessOrEqual(t, conf, 1.0)
		})
	}
}

func TestClassifyNormalizesMarkersAndBrandTerms(t *testing.T) {
	rules := DefaultRules()
	rules.BrandTerms = []string{"Acme.", "  ", "!!!"}
	rules.Families = append(rules.Families, Family{
		Name: "support", Intent: keyword.IntentNavigational, Weight: 1, Markers: []string{"Help-Desk!", "Contact  Us"},
	})
	c := NewClassifier(rules)

	for _, text := range []string{"acme shoes", "acme help-desk", "contact us"} {
		in, conf := classify(c, text)
		assert.Equal(t, keyword.IntentNavigational, in, text)
		assert.Equal(t, 1.0, conf, text)
	}
}

func TestClassifyPhraseMarkersNeedWholeTokens(t *testing.T) {
	c := NewClassifier(DefaultRules())

	// "nearmeadow" contains "near" but not the phrase "near me"; "buyer" is not "buy"
	in, conf := classify(c, "buyer nearmeadow")
	assert.Equal(t, keyword.IntentInformational, in)
	assert.Equal(t, 0.2, conf)

	in, _ = classify(c, "me near")
	assert.Equal(t, keyword.IntentInformational, in)
}

func TestClassifyTieBreak(t *testing.T) {
	rules := Rules{
		Families: []Family{
			{Name: "q", Intent: keyword.IntentInformational, Weight: 1, Markers: []string{"guide"}},
			{Name: "nav", Intent: keyword.IntentNavigational, Weight: 1, Markers: []string{"official"}},
			{Name: "t", Intent: keyword.IntentCommercial, Weight: 1, Markers: []string{"buy"}},
			{Name: "l", Intent: keyword.IntentLocal, Weight: 1, Markers: []string{"local"}},
		},
		DefaultConfidence: 0.1,
	}
	c := NewClassifier(rules)

	in, conf := classify(c, "official guide")
	assert.Equal(t, keyword.IntentNavigational, in)
	assert.Equal(t, 0.5, conf)

	in, _ = classify(c, "local official guide")
	assert.Equal(t, keyword.IntentLocal, in)

	in, conf = classify(c, "buy local official guide")
	assert.Equal(t, keyword.IntentCommercial, in)
	assert.Equal(t, 0.25, conf)
}

func TestClassifyWeightedVote(t *testing.T) {
	c := NewClassifier(DefaultRules())

	// local 1.2 beats transactional 1.0
	in, conf := classify(c, "cheap hotels near me")
	assert.Equal(t, keyword.IntentLocal, in)
	assert.InDelta(t, 1.2/2.2, conf, 1e-9)

	// two transactional markers beat one question marker
	in, _ = classify(c, "best price guide")
	assert.Equal(t, keyword.IntentCommercial, in)
}

func TestClassifyDefault(t *testing.T) {
	rules := DefaultRules()
	require.LessOrEqual(t, rules.DefaultConfidence, MaxDefaultConfidence)
	c := NewClassifier(rules)

	in, conf := classify(c, "running shoes")
	assert.Equal(t, keyword.IntentInformational, in)
	assert.LessOrEqual(t, conf, 0.3)
}

func TestApplyIsDeterministic(t *testing.T) {
	c := NewClassifier(DefaultRules())
	records := []*keyword.Record{
		{Text: "buy running shoes"},
		{Text: "running shoes reviews"},
		{Text: "best crm near me"},
	}
	c.Apply(records)
	first := make([]keyword.Intent, len(records))
	for i, r := range records {
		first[i] = r.Intent
	}
	for n := 0; n < 20; n++ {
		c.Apply(records)
		for i, r := range records {
			assert.Equal(t, first[i], r.Intent)
		}
	}
}

func TestIsMarker(t *testing.T) {
	c := NewClassifier(DefaultRules())
	assert.True(t, c.IsMarker("buy"))
	assert.True(t, c.IsMarker("near"))
	assert.False(t, c.IsMarker("shoes"))
}

func TestRulesValidate(t *testing.T) {
	require.NoError(t, DefaultRules().Validate())

	r := DefaultRules()
	r.DefaultConfidence = 0.5
	assert.ErrorIs(t, r.Validate(), internalerr.ErrInvalidConfig)

	r = DefaultRules()
	r.Families[0].Weight = 0
	assert.ErrorIs(t, r.Validate(), internalerr.ErrInvalidConfig)
}
