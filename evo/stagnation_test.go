package evo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistory(t *testing.T) {
	h := NewHistory(&StagnationConfig{MaxStagnation: 3})
	assert.False(t, h.Stagnant(0))
	assert.Zero(t, h.Mean())
	assert.Zero(t, h.StdDev())

	assert.False(t, h.Add(0, 0.2))
	assert.False(t, h.Add(1, 0.5))
	assert.False(t, h.Add(2, 0.4))
	assert.False(t, h.Add(3, 0.5)) // equal is not better
	assert.True(t, h.Add(4, 0.1))

	assert.Equal(t, 0.5, h.Best)
	assert.Equal(t, 1, h.LastImproved)
	assert.Equal(t, []float64{0.2, 0.5, 0.4, 0.5, 0.1}, h.Ratios)
	assert.InDelta(t, 0.34, h.Mean(), 1e-12)
	assert.Greater(t, h.StdDev(), 0.0)

	assert.False(t, h.Add(5, 0.9))
	assert.Equal(t, 5, h.LastImproved)
}

func TestHistoryAllExtinct(t *testing.T) {
	h := NewHistory(&StagnationConfig{MaxStagnation: 2})
	// A zero ratio still counts as the first best.
	assert.False(t, h.Add(0, 0))
	assert.False(t, h.Add(1, 0))
	assert.True(t, h.Add(2, 0))
}
