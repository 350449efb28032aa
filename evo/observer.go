package evo

import (
	"time"

	"github.com/baldhumanity/gridevo/evo/nn"
)

// Observer receives read-only snapshots from the generation loop. Snapshots
// are copies; observers never see the live population.
type Observer interface {
	OnTick(s *WorldSnapshot)
	OnGeneration(r *GenerationResult)
}

// AgentSnapshot is the observable state of one agent.
type AgentSnapshot struct {
	Pos    Point
	Facing Point
	Genome Genome
}

// WorldSnapshot is the observable state of the world after a tick.
type WorldSnapshot struct {
	Generation int
	Tick       int
	Width      int
	Height     int
	Agents     []AgentSnapshot
	Moves      MoveStats   // outcome of this tick
	Observed   int         // index of the agent whose brain is in Brain
	Brain      nn.Snapshot // network of the observed agent
}

// ParentPair names the two survivors a child was bred from, as indices into
// the population of the generation that produced them.
type ParentPair struct {
	A, B int
}

// GenerationResult summarizes one finished generation.
type GenerationResult struct {
	Generation      int
	PopSize         int
	Survivors       []int    // indices of the surviving agents
	SurvivorGenomes []Genome // genomes of Survivors, in the same order
	SurvivalRatio   float64
	Parents         []ParentPair // one per agent of the next generation; nil when none was bred
	Stagnant        bool
	Extinct         bool // no agent survived
	Reset           bool // extinction was answered with a fresh random population
	Moves           MoveStats
	Duration        time.Duration
}
