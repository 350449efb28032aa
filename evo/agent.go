package evo

import (
	"fmt"

	"github.com/baldhumanity/gridevo/evo/nn"
)

// Point is a grid cell, or a step between cells.
type Point struct {
	X, Y int
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// IsZero reports whether p is the zero vector.
func (p Point) IsZero() bool {
	return p.X == 0 && p.Y == 0
}

// Agent is one member of the population. Its brain's weights are exactly
// its decoded genome; the agent lives for a single generation.
type Agent struct {
	Brain  *nn.Network
	Genome Genome
	Pos    Point
	// Facing is the step attempted on the previous tick: one of the eight
	// unit directions, or zero.
	Facing Point
}

// NewAgent pairs a brain with a genome and writes the genome into the brain.
func NewAgent(brain *nn.Network, genome Genome, codec *Codec) (*Agent, error) {
	if err := codec.Apply(genome, brain); err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}
	return &Agent{Brain: brain, Genome: genome}, nil
}
