package evo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	config := DefaultConfig()
	require.NoError(t, config.Validate())
	assert.Equal(t, 5*4+4*4, config.Network.EdgeCount())

	brain, err := config.Network.NewBrain()
	require.NoError(t, err)
	assert.Equal(t, config.Network.EdgeCount(), brain.CountEdges())
}

func TestLoadConfigINI(t *testing.T) {
	path := writeFile(t, "run-config", `
[World]
width  = 64
height = 32

[Population]
pop_size             = 20
ticks_per_generation = 40
fitness              = Left   ; case and comments are ignored
fitness_param        = 25
reset_on_extinction  = true
seed                 = 7

[Network]
layer_sizes = 2 3 2
sensors     = x y
motors      = move_x move_y

[Mutation]
point_rate = 0.01

[Pacing]
tick_interval = 16ms
start_paused  = true
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, WorldConfig{Width: 64, Height: 32}, config.World)
	assert.Equal(t, 20, config.Population.PopSize)
	assert.Equal(t, 40, config.Population.TicksPerGeneration)
	assert.Equal(t, "left", config.Population.Fitness)
	assert.Equal(t, 25.0, config.Population.FitnessParam)
	assert.True(t, config.Population.ResetOnExtinction)
	assert.Equal(t, int64(7), config.Population.Seed)
	assert.Equal(t, []int{2, 3, 2}, config.Network.LayerSizes)
	assert.Equal(t, []string{"x", "y"}, config.Network.Sensors)
	assert.Equal(t, []string{"move_x", "move_y"}, config.Network.Motors)
	assert.Equal(t, 0.01, config.Mutation.PointRate)
	assert.Equal(t, 16*time.Millisecond, config.Pacing.TickInterval)
	assert.True(t, config.Pacing.StartPaused)

	// Keys and sections left out keep their defaults.
	defaults := DefaultConfig()
	assert.Equal(t, defaults.Mutation.NudgeRate, config.Mutation.NudgeRate)
	assert.Equal(t, defaults.Genome, config.Genome)
	assert.Equal(t, defaults.Stagnation, config.Stagnation)
	assert.Equal(t, "tanh", config.Network.Activation)
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeFile(t, "run.yaml", `
world:
  width: 40
  height: 40
population:
  pop_size: 10
  fitness: center
  fitness_param: 5
network:
  layer_sizes: [5, 6, 4]
genome:
  weight_divisor: 36
  shape: uniform
pacing:
  generation_interval: 1s
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 40, config.World.Width)
	assert.Equal(t, 10, config.Population.PopSize)
	assert.Equal(t, 80, config.Population.TicksPerGeneration)
	assert.Equal(t, []int{5, 6, 4}, config.Network.LayerSizes)
	assert.Equal(t, 36, config.Genome.WeightDivisor)
	assert.Equal(t, "uniform", config.Genome.Shape)
	assert.Equal(t, time.Second, config.Pacing.GenerationInterval)
	assert.Len(t, config.Network.Sensors, 5)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope-config"))
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"zero width":          func(c *Config) { c.World.Width = 0 },
		"overfull world":      func(c *Config) { c.World = WorldConfig{Width: 5, Height: 5}; c.Population.PopSize = 26 },
		"no ticks":            func(c *Config) { c.Population.TicksPerGeneration = 0 },
		"unknown fitness":     func(c *Config) { c.Population.Fitness = "richest" },
		"negative param":      func(c *Config) { c.Population.FitnessParam = -1 },
		"observe outside":     func(c *Config) { c.Population.ObserveAgent = 100 },
		"single layer":        func(c *Config) { c.Network.LayerSizes = []int{5} },
		"empty layer":         func(c *Config) { c.Network.LayerSizes = []int{5, 0, 4} },
		"sensor arity":        func(c *Config) { c.Network.Sensors = []string{"x", "y"} },
		"motor arity":         func(c *Config) { c.Network.Motors = []string{"turn"} },
		"unknown sensor":      func(c *Config) { c.Network.Sensors[4] = "smell" },
		"unknown motor":       func(c *Config) { c.Network.Motors[0] = "jump" },
		"unknown activation":  func(c *Config) { c.Network.Activation = "relu" },
		"divisor":             func(c *Config) { c.Genome.WeightDivisor = 34 },
		"unknown shape":       func(c *Config) { c.Genome.Shape = "cosh" },
		"bad spread":          func(c *Config) { c.Genome.ShapeSpread = 0 },
		"point rate":          func(c *Config) { c.Mutation.PointRate = 1.5 },
		"nudge rate":          func(c *Config) { c.Mutation.NudgeRate = -0.1 },
		"nudge step":          func(c *Config) { c.Mutation.NudgeMaxStep = -1 },
		"negative interval":   func(c *Config) { c.Pacing.TickInterval = -time.Second },
		"zero max stagnation": func(c *Config) { c.Stagnation.MaxStagnation = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := DefaultConfig()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
