package evo

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	config := DefaultConfig()
	config.World = WorldConfig{Width: 16, Height: 16}
	config.Population.PopSize = 4
	config.Population.TicksPerGeneration = 1
	config.Population.Fitness = "always"
	config.Population.Seed = 42
	return config
}

func newTestPopulation(t *testing.T, config *Config) *Population {
	t.Helper()
	p, err := NewPopulation(config)
	require.NoError(t, err)
	p.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return p
}

type recorder struct {
	ticks       []*WorldSnapshot
	generations []*GenerationResult
}

func (r *recorder) OnTick(s *WorldSnapshot)          { r.ticks = append(r.ticks, s) }
func (r *recorder) OnGeneration(g *GenerationResult) { r.generations = append(r.generations, g) }

func TestNewPopulation(t *testing.T) {
	config := testConfig()
	p := newTestPopulation(t, config)

	require.Len(t, p.Agents(), 4)
	assert.Equal(t, int64(42), p.Seed)
	for _, g := range p.Genomes() {
		assert.Len(t, g, config.Network.EdgeCount())
		assert.NoError(t, g.Validate())
	}
	assertConsistent(t, p.World)

	config = testConfig()
	config.Population.PopSize = 0
	_, err := NewPopulation(config)
	assert.Error(t, err)
}

func TestRunGenerationAllSurvive(t *testing.T) {
	config := testConfig()
	config.Mutation = MutationConfig{} // crossover only
	p := newTestPopulation(t, config)
	before := p.Genomes()

	result, err := p.RunGeneration(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, result.Generation)
	assert.Equal(t, []int{0, 1, 2, 3}, result.Survivors)
	assert.Equal(t, before, result.SurvivorGenomes)
	assert.Equal(t, 1.0, result.SurvivalRatio)
	assert.False(t, result.Extinct)

	// Every survivor is parent A of the child in its own slot.
	require.Len(t, result.Parents, 4)
	children := p.Genomes()
	for i, pair := range result.Parents {
		assert.Equal(t, i, pair.A)
		a, b := before[pair.A], before[pair.B]
		for j := 0; j < len(children[i]); j++ {
			assert.Contains(t, []byte{a[j], b[j]}, children[i][j])
		}
	}

	assert.Equal(t, 1, p.Generation)
	assert.Zero(t, p.World.Tick)
	assert.Equal(t, []float64{1}, p.History.Ratios)
	assertConsistent(t, p.World)
}

func TestBreedRoundRobin(t *testing.T) {
	p := newTestPopulation(t, testConfig())
	genomes := p.Genomes()

	children, parents, err := p.breed([]int{1, 3}, []Genome{genomes[1], genomes[3]})
	require.NoError(t, err)
	require.Len(t, children, 4)

	var firstParents []int
	for _, pair := range parents {
		firstParents = append(firstParents, pair.A)
		assert.Contains(t, []int{1, 3}, pair.B)
	}
	assert.Equal(t, []int{1, 3, 1, 3}, firstParents)
}

func TestRunGenerationExtinct(t *testing.T) {
	config := testConfig()
	config.Population.Fitness = "never"
	p := newTestPopulation(t, config)
	rec := &recorder{}
	p.AddObserver(rec)

	result, err := p.RunGeneration(context.Background())
	require.ErrorIs(t, err, ErrExtinct)
	require.NotNil(t, result)
	assert.True(t, result.Extinct)
	assert.Empty(t, result.Survivors)
	assert.Zero(t, result.SurvivalRatio)
	assert.True(t, p.Extinct())
	assert.Len(t, rec.generations, 1)

	// The run stays extinct.
	result, err = p.RunGeneration(context.Background())
	assert.ErrorIs(t, err, ErrExtinct)
	assert.Nil(t, result)
	assert.Equal(t, []float64{0}, p.History.Ratios)
}

func TestRunGenerationResetOnExtinction(t *testing.T) {
	config := testConfig()
	config.Population.Fitness = "never"
	config.Population.ResetOnExtinction = true
	p := newTestPopulation(t, config)
	before := p.Genomes()

	last, err := p.Run(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, last.Extinct)
	assert.True(t, last.Reset)
	assert.Nil(t, last.Parents)
	assert.False(t, p.Extinct())
	assert.Equal(t, 3, p.Generation)
	assert.Len(t, p.Agents(), 4)
	assert.NotEqual(t, before, p.Genomes())
	assertConsistent(t, p.World)
}

func TestRunGenerationResumesAfterCancel(t *testing.T) {
	config := testConfig()
	config.Population.TicksPerGeneration = 5
	config.Pacing.StartPaused = true
	p := newTestPopulation(t, config)
	rec := &recorder{}
	p.AddObserver(rec)

	p.Pacer.Step()
	p.Pacer.Step()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	result, err := p.RunGeneration(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, result)
	assert.Equal(t, 2, p.World.Tick)
	assert.Equal(t, 0, p.Generation)

	p.Pacer.Resume()
	result, err = p.RunGeneration(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Generation)
	assert.Equal(t, 1, p.Generation)

	require.Len(t, rec.ticks, 5)
	for i, s := range rec.ticks {
		assert.Equal(t, i+1, s.Tick)
		assert.Equal(t, 0, s.Generation)
	}
	assert.Len(t, rec.generations, 1)
}

func TestRunIsReproducible(t *testing.T) {
	config := testConfig()
	config.Population.TicksPerGeneration = 10
	config.Population.Fitness = "center"
	config.Population.FitnessParam = 6
	config.Population.ResetOnExtinction = true

	a := newTestPopulation(t, config)
	b := newTestPopulation(t, config)
	_, err := a.Run(context.Background(), 4)
	require.NoError(t, err)
	_, err = b.Run(context.Background(), 4)
	require.NoError(t, err)

	assert.Equal(t, a.Genomes(), b.Genomes())
	assert.Equal(t, a.History.Ratios, b.History.Ratios)
	for i := range a.Agents() {
		assert.Equal(t, a.Agents()[i].Pos, b.Agents()[i].Pos)
	}
}

func TestSnapshot(t *testing.T) {
	config := testConfig()
	config.Population.ObserveAgent = 2
	p := newTestPopulation(t, config)

	s := p.Snapshot()
	assert.Equal(t, 16, s.Width)
	assert.Len(t, s.Agents, 4)
	assert.Equal(t, 2, s.Observed)
	assert.Equal(t, []int{5, 4, 4}, s.Brain.LayerSizes)
	assert.Equal(t, p.Agents()[2].Brain.Weights(), s.Brain.Weights)

	// Snapshots are copies.
	s.Agents[0].Pos = Point{-1, -1}
	assert.NotEqual(t, Point{-1, -1}, p.Agents()[0].Pos)
}
