package keyword

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceSetUnion(t *testing.T) {
	a := NewSourceSet(SourceAutocomplete)
	b := NewSourceSet(SourceWebsite, SourceAutocomplete)

	u := a.Union(b)
	assert.Equal(t, 2, u.Len())
	assert.True(t, u.Has(SourceAutocomplete))
	assert.True(t, u.Has(SourceWebsite))
	assert.False(t, u.Has(SourceSeed))
	assert.Equal(t, []Source{SourceAutocomplete, SourceWebsite}, u.Sources())
}

func TestSourceSetIgnoresUnknown(t *testing.T) {
	set := NewSourceSet(Source(42))
	assert.True(t, set.Empty())
}

func TestSourceSetJSON(t *testing.T) {
	set := NewSourceSet(SourceSeed, SourceCompetitor)
	data, err := json.Marshal(set)
	require.NoError(t, err)
	assert.JSONEq(t, `["COMPETITOR","SEED"]`, string(data))

	var back SourceSet
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, set, back)
}

func TestParseSource(t *testing.T) {
	s, err := ParseSource("website_content")
	require.NoError(t, err)
	assert.Equal(t, SourceWebsite, s)

	_, err = ParseSource("newsletter")
	assert.Error(t, err)
}

func TestIntentPriority(t *testing.T) {
	order := Intents()
	for i := 1; i < len(order); i++ {
		assert.Greater(t, order[i-1].Priority(), order[i].Priority())
	}
}

func TestRecordJSONUsesNames(t *testing.T) {
	rec := Record{Text: "buy shoes", Sources: NewSourceSet(SourceSeed), Intent: IntentCommercial}
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "COMMERCIAL", raw["intent"])
	assert.Equal(t, []any{"SEED"}, raw["sources"])
}
