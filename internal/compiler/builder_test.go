package compiler

import (
	"testing"

	"github.com/aretw0/hsmgen/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_CloseAtRoot(t *testing.T) {
	b := newBuilder("m", DefaultOptions())
	assert.ErrorIs(t, b.close(), domain.ErrUnbalancedComposite)

	require.NoError(t, b.open("P"))
	assert.Equal(t, 1, b.openComposites())
	assert.Equal(t, "P", b.top())
	require.NoError(t, b.close())
	assert.Equal(t, domain.RootState, b.top())
}

func TestBuilder_NeverReparentsOntoDescendant(t *testing.T) {
	b := newBuilder("m", DefaultOptions())
	require.NoError(t, b.open("A"))
	require.NoError(t, b.open("B"))
	// A is an ancestor of the current context.
	require.NoError(t, b.registerState("A"))
	require.NoError(t, b.close())
	require.NoError(t, b.close())

	d := b.finalize()
	assert.Equal(t, domain.RootState, d.StateParents["A"])
	assert.Equal(t, "A", d.StateParents["B"])
	assert.Equal(t, map[int][]string{0: {"A"}, 1: {"B"}}, d.Depth)
	assert.Equal(t, []string{"B"}, d.StateChildren["A"])
}

func TestBuilder_StrictRootReferenceKeepsOwner(t *testing.T) {
	b := newBuilder("m", Options{Hierarchy: domain.HierarchyStrict})
	require.NoError(t, b.open("P"))
	require.NoError(t, b.registerState("X"))
	require.NoError(t, b.close())
	require.NoError(t, b.registerState("X"))

	d := b.finalize()
	assert.Equal(t, "P", d.StateParents["X"])
	assert.NotContains(t, d.StateChildren[domain.RootState], "X")
}

func TestBuilder_NilActionIsNotRecorded(t *testing.T) {
	b := newBuilder("m", DefaultOptions())
	require.NoError(t, b.addStateAction("S", domain.PhaseEntry, nil))

	d := b.finalize()
	assert.Equal(t, []string{"S"}, d.States)
	assert.Empty(t, d.StateActions.Entry)
	assert.Empty(t, d.AllActions)
}

func TestBuilder_FinalizeCopies(t *testing.T) {
	b := newBuilder("m", DefaultOptions())
	require.NoError(t, b.addTransition(domain.Transition{Source: "A", Target: ptr("B"), Event: "e"}))
	require.NoError(t, b.addStateAction("A", domain.PhaseExit, ptr("bye")))

	d := b.finalize()
	require.NoError(t, b.addTransition(domain.Transition{Source: "A", Target: ptr("C"), Event: "f"}))
	require.NoError(t, b.addStateAction("A", domain.PhaseExit, ptr("again")))

	assert.Len(t, d.Events["A"], 1)
	assert.Equal(t, []string{"bye"}, d.StateActions.Exit["A"])
	assert.Equal(t, []string{"A", "B"}, d.States)
}

func TestBuilder_NonNilCollections(t *testing.T) {
	d := newBuilder("empty", DefaultOptions()).finalize()

	assert.NotNil(t, d.States)
	assert.NotNil(t, d.StateParents)
	assert.NotNil(t, d.Depth)
	assert.NotNil(t, d.Inits)
	assert.NotNil(t, d.Events)
	assert.NotNil(t, d.StateActions.Entry)
	assert.NotNil(t, d.StateActions.Exit)
	assert.NotNil(t, d.AllEvents)
	assert.Equal(t, -1, d.MaxDepth())
}
