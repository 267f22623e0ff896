// Package storetest holds behaviour tests shared by every store.Store
// implementation.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/semplan/pkg/semplan/internalerr"
	"github.com/cognicore/semplan/pkg/semplan/store"
)

// Run exercises a fresh store returned by open.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	t.Run("PlanRoundTrip", func(t *testing.T) { testPlanRoundTrip(t, open(t)) })
	t.Run("PlanUpsert", func(t *testing.T) { testPlanUpsert(t, open(t)) })
	t.Run("PlanNotFound", func(t *testing.T) { testPlanNotFound(t, open(t)) })
	t.Run("ListPlans", func(t *testing.T) { testListPlans(t, open(t)) })
	t.Run("Suggestions", func(t *testing.T) { testSuggestions(t, open(t)) })
	t.Run("DeleteBefore", func(t *testing.T) { testDeleteBefore(t, open(t)) })
}

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testPlanRoundTrip(t *testing.T, st store.Store) {
	defer st.Close()
	ctx := context.Background()

	p := store.Plan{
		ID:        "01HZY",
		Name:      "spring launch",
		CreatedAt: base.Add(1500 * time.Millisecond),
		Keywords:  42,
		Budget:    10000,
		Body:      []byte(`{"id":"01HZY"}`),
	}
	require.NoError(t, st.SavePlan(ctx, p))

	got, err := st.GetPlan(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.Name, got.Name)
	assert.True(t, p.CreatedAt.Equal(got.CreatedAt), "created_at %v != %v", got.CreatedAt, p.CreatedAt)
	assert.Equal(t, p.Keywords, got.Keywords)
	assert.Equal(t, p.Budget, got.Budget)
	assert.JSONEq(t, string(p.Body), string(got.Body))

	err = st.SavePlan(ctx, store.Plan{})
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}

func testPlanUpsert(t *testing.T, st store.Store) {
	defer st.Close()
	ctx := context.Background()

	require.NoError(t, st.SavePlan(ctx, store.Plan{ID: "a", Name: "first", CreatedAt: base, Body: []byte(`{}`)}))
	require.NoError(t, st.SavePlan(ctx, store.Plan{ID: "a", Name: "second", CreatedAt: base, Body: []byte(`{"v":2}`)}))

	got, err := st.GetPlan(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Name)
	assert.JSONEq(t, `{"v":2}`, string(got.Body))

	all, err := st.ListPlans(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func testPlanNotFound(t *testing.T, st store.Store) {
	defer st.Close()
	_, err := st.GetPlan(context.Background(), "missing")
	assert.ErrorIs(t, err, internalerr.ErrNotFound)
}

func testListPlans(t *testing.T, st store.Store) {
	defer st.Close()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, st.SavePlan(ctx, store.Plan{
			ID:        fmt.Sprintf("plan-%d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			Keywords:  i,
			Body:      []byte(`{}`),
		}))
	}

	got, err := st.ListPlans(ctx, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "plan-4", got[0].ID)
	assert.Equal(t, "plan-3", got[1].ID)
	assert.Equal(t, "plan-2", got[2].ID)
	for _, p := range got {
		assert.Empty(t, p.Body)
	}
}

func testSuggestions(t *testing.T, st store.Store) {
	defer st.Close()
	ctx := context.Background()

	_, ok, err := st.GetSuggestions(ctx, "crm", time.Hour, base)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, st.PutSuggestions(ctx, "crm", []string{"crm software", "crm for small business"}, base))

	got, ok, err := st.GetSuggestions(ctx, "crm", time.Hour, base.Add(30*time.Minute))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"crm software", "crm for small business"}, got)

	_, ok, err = st.GetSuggestions(ctx, "crm", time.Hour, base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.False(t, ok, "expired entries are misses")

	require.NoError(t, st.PutSuggestions(ctx, "crm", nil, base.Add(2*time.Hour)))
	got, ok, err = st.GetSuggestions(ctx, "crm", time.Hour, base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)
}

func testDeleteBefore(t *testing.T, st store.Store) {
	defer st.Close()
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, st.SavePlan(ctx, store.Plan{ID: fmt.Sprintf("plan-%d", i), CreatedAt: at, Body: []byte(`{}`)}))
		require.NoError(t, st.PutSuggestions(ctx, fmt.Sprintf("seed-%d", i), []string{"x"}, at))
	}

	n, err := st.DeletePlansBefore(ctx, base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	left, err := st.ListPlans(ctx, 0)
	require.NoError(t, err)
	require.Len(t, left, 2)
	assert.Equal(t, "plan-3", left[0].ID)
	assert.Equal(t, "plan-2", left[1].ID)

	n, err = st.DeleteSuggestionsBefore(ctx, base.Add(90*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	_, ok, err := st.GetSuggestions(ctx, "seed-1", 24*time.Hour, base)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = st.GetSuggestions(ctx, "seed-2", 24*time.Hour, base.Add(3*time.Hour))
	require.NoError(t, err)
	assert.True(t, ok)

	n, err = st.DeletePlansBefore(ctx, base)
	require.NoError(t, err)
	assert.Zero(t, n)
}
