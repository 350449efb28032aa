package evo

import (
	"gonum.org/v1/gonum/stat"
)

// History records the survival ratio of every finished generation and
// detects when it stops improving.
type History struct {
	Config       *StagnationConfig
	Ratios       []float64 // survival ratio per generation, in order
	Best         float64   // best ratio seen so far
	LastImproved int       // generation that reached Best
}

// NewHistory creates an empty survival history.
func NewHistory(config *StagnationConfig) *History {
	return &History{Config: config, Best: -1, LastImproved: -1}
}

// Add records the ratio of the given generation and reports whether the run
// is stagnant after it.
func (h *History) Add(generation int, ratio float64) bool {
	h.Ratios = append(h.Ratios, ratio)
	if ratio > h.Best {
		h.Best = ratio
		h.LastImproved = generation
	}
	return h.Stagnant(generation)
}

// Stagnant reports whether MaxStagnation generations have passed without the
// best ratio improving.
func (h *History) Stagnant(generation int) bool {
	if h.LastImproved < 0 {
		return false
	}
	return generation-h.LastImproved >= h.Config.MaxStagnation
}

// Mean is the average survival ratio over all recorded generations.
func (h *History) Mean() float64 {
	if len(h.Ratios) == 0 {
		return 0
	}
	return stat.Mean(h.Ratios, nil)
}

// StdDev is the sample standard deviation of the recorded ratios.
func (h *History) StdDev() float64 {
	if len(h.Ratios) < 2 {
		return 0
	}
	return stat.StdDev(h.Ratios, nil)
}
