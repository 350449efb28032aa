package evo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReproduction(t *testing.T, point, nudge float64, maxStep int) *Reproduction {
	t.Helper()
	return NewReproduction(&MutationConfig{
		PointRate:    point,
		NudgeRate:    nudge,
		NudgeMaxStep: maxStep,
	}, newTestCodec(t))
}

func TestReproduceCrossoverOnly(t *testing.T) {
	r := newTestReproduction(t, 0, 0, 2)
	rng := newTestRand(3)

	a := Genome(strings.Repeat("0", 200))
	b := Genome(strings.Repeat("z", 200))
	for i := 0; i < 20; i++ {
		child, err := r.Reproduce(rng, a, b)
		require.NoError(t, err)
		require.Len(t, child, len(a))
		for j := 0; j < len(child); j++ {
			assert.Contains(t, []byte{a[j], b[j]}, child[j])
		}
	}

	assert.Equal(t, 20, r.Stats.Children)
	assert.Zero(t, r.Stats.PointMutations)
	assert.Zero(t, r.Stats.NudgeMutations)
	assert.Equal(t, 20*200, r.Stats.FromA+r.Stats.FromB)
	assert.InDelta(t, 0.5, float64(r.Stats.FromA)/float64(20*200), 0.05)
}

func TestReproduceIdenticalParents(t *testing.T) {
	r := newTestReproduction(t, 0, 0, 2)
	rng := newTestRand(4)

	a := Genome("hello0world9")
	child, err := r.Reproduce(rng, a, a)
	require.NoError(t, err)
	assert.Equal(t, a, child)
}

func TestReproducePointMutation(t *testing.T) {
	r := newTestReproduction(t, 1, 0, 2)
	rng := newTestRand(5)

	a := Genome(strings.Repeat("k", 300))
	child, err := r.Reproduce(rng, a, a)
	require.NoError(t, err)
	require.NoError(t, child.Validate())

	assert.NotEqual(t, a, child)
	assert.Equal(t, 300, r.Stats.PointMutations)
	assert.Zero(t, r.Stats.FromA+r.Stats.FromB)
}

func TestReproduceNudge(t *testing.T) {
	r := newTestReproduction(t, 0, 1, 2)
	rng := newTestRand(6)

	a := Genome(strings.Repeat("0", 100) + strings.Repeat("h", 100) + strings.Repeat("z", 100))
	b := Genome(strings.Repeat("5", 300))
	child, err := r.Reproduce(rng, a, b)
	require.NoError(t, err)

	da, err := a.Digits()
	require.NoError(t, err)
	dc, err := child.Digits()
	require.NoError(t, err)
	for i := range dc {
		// Nudges start from parent A, stay within the step and the alphabet.
		assert.LessOrEqual(t, dc[i]-da[i], 2)
		assert.GreaterOrEqual(t, dc[i]-da[i], -2)
	}
	assert.Equal(t, 300, r.Stats.NudgeMutations)
}

func TestReproduceLeavesParentsAlone(t *testing.T) {
	r := newTestReproduction(t, 0.5, 0.5, 3)
	rng := newTestRand(7)

	a := Genome("0123456789")
	b := Genome("abcdefghij")
	_, err := r.Reproduce(rng, a, b)
	require.NoError(t, err)
	assert.Equal(t, Genome("0123456789"), a)
	assert.Equal(t, Genome("abcdefghij"), b)
}

func TestReproduceLengthMismatch(t *testing.T) {
	r := newTestReproduction(t, 0, 0, 2)
	_, err := r.Reproduce(newTestRand(8), "abc", "ab")
	assert.ErrorIs(t, err, ErrGenomeLength)
}
