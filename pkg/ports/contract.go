package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/hsmgen/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// ContractDiagram returns a small but complete model used by cache contract tests.
func ContractDiagram(name string) *domain.Diagram {
	return &domain.Diagram{
		Name:   name,
		States: []string{"Idle", "Running"},
		StateParents: map[string]string{
			"Idle":    domain.RootState,
			"Running": "Idle",
		},
		StateChildren: map[string][]string{
			domain.RootState: {"Idle"},
			"Idle":           {"Running"},
			"Running":        {},
		},
		Depth:       map[int][]string{0: {"Idle"}, 1: {"Running"}},
		IsLeafState: map[string]bool{domain.RootState: false, "Idle": false, "Running": true},
		Inits:       map[string]string{domain.RootState: "Idle", "Idle": "Running"},
		Events: map[string][]domain.Transition{
			"Running": {
				{Source: "Running", Target: strPtr("Idle"), Event: "stop", Condition: strPtr("done"), Action: strPtr("flush")},
				{Source: "Running", Event: "tick", Action: strPtr("count")},
			},
		},
		StateActions: domain.StateActions{
			Entry: map[string][]string{"Running": {"start", "start"}},
			Exit:  map[string][]string{},
		},
		AllEvents:     []string{"stop", "tick"},
		AllActions:    []string{"count", "flush", "start"},
		AllConditions: []string{"done"},
	}
}

// RunModelCacheContract runs a suite of tests to verify that a ModelCache implementation
// adheres to the defined interface contract.
func RunModelCacheContract(t *testing.T, cache ModelCache) {
	ctx := context.Background()
	key := "contract-" + time.Now().Format("20060102150405")

	t.Run("Put and Get", func(t *testing.T) {
		want := []*domain.Diagram{ContractDiagram("first"), ContractDiagram("second")}

		require.NoError(t, cache.Put(ctx, key, want), "Put should not return error")

		got, err := cache.Get(ctx, key)
		require.NoError(t, err, "Get should not return error")
		assert.Equal(t, want, got)
	})

	t.Run("Get Is Isolated", func(t *testing.T) {
		require.NoError(t, cache.Put(ctx, key, []*domain.Diagram{ContractDiagram("iso")}))

		got, err := cache.Get(ctx, key)
		require.NoError(t, err)
		got[0].States[0] = "Mutated"
		got[0].Inits["Idle"] = "Mutated"

		again, err := cache.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, ContractDiagram("iso"), again[0])
	})

	t.Run("Empty Result Is Cached", func(t *testing.T) {
		emptyKey := key + "-empty"
		defer func() { _ = cache.Delete(ctx, emptyKey) }()

		require.NoError(t, cache.Put(ctx, emptyKey, []*domain.Diagram{}))
		got, err := cache.Get(ctx, emptyKey)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := cache.Get(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, cache.Put(ctx, key, []*domain.Diagram{ContractDiagram("gone")}))

		require.NoError(t, cache.Delete(ctx, key), "Delete should not return error")

		_, err := cache.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrCacheMiss, "Get after Delete should return ErrCacheMiss")

		assert.NoError(t, cache.Delete(ctx, key), "Deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		k1 := key + "-1"
		k2 := key + "-2"
		_ = cache.Put(ctx, k1, []*domain.Diagram{ContractDiagram("a")})
		_ = cache.Put(ctx, k2, []*domain.Diagram{ContractDiagram("b")})

		defer func() {
			_ = cache.Delete(ctx, k1)
			_ = cache.Delete(ctx, k2)
		}()

		keys, err := cache.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, k1)
		assert.Contains(t, keys, k2)
	})
}
