package evo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"github.com/baldhumanity/gridevo/evo/nn"
)

// Config stores the configuration parameters for a simulation run.
type Config struct {
	World      WorldConfig      `yaml:"world"`
	Population PopulationConfig `yaml:"population"`
	Network    NetworkConfig    `yaml:"network"`
	Genome     GenomeConfig     `yaml:"genome"`
	Mutation   MutationConfig   `yaml:"mutation"`
	Pacing     PacingConfig     `yaml:"pacing"`
	Stagnation StagnationConfig `yaml:"stagnation"`
}

// WorldConfig holds the grid dimensions.
type WorldConfig struct {
	Width  int `ini:"width" yaml:"width"`
	Height int `ini:"height" yaml:"height"`
}

// PopulationConfig holds parameters of the generation loop.
type PopulationConfig struct {
	PopSize            int     `ini:"pop_size" yaml:"pop_size"`
	TicksPerGeneration int     `ini:"ticks_per_generation" yaml:"ticks_per_generation"`
	Fitness            string  `ini:"fitness" yaml:"fitness"`             // name in FitnessFunctions
	FitnessParam       float64 `ini:"fitness_param" yaml:"fitness_param"` // meaning depends on Fitness
	ResetOnExtinction  bool    `ini:"reset_on_extinction" yaml:"reset_on_extinction"`
	ObserveAgent       int     `ini:"observe_agent" yaml:"observe_agent"` // agent whose brain is snapshotted
	Seed               int64   `ini:"seed" yaml:"seed"`                   // 0 picks a random seed
}

// NetworkConfig describes the brain topology and its sensory/motor interface.
type NetworkConfig struct {
	LayerSizes []int    `ini:"layer_sizes" delim:" " yaml:"layer_sizes"`
	Activation string   `ini:"activation" yaml:"activation"`
	Sensors    []string `ini:"sensors" delim:" " yaml:"sensors"`
	Motors     []string `ini:"motors" delim:" " yaml:"motors"`
}

// GenomeConfig holds parameters of the genome codec.
type GenomeConfig struct {
	WeightDivisor int     `ini:"weight_divisor" yaml:"weight_divisor"` // 35 or 36
	Shape         string  `ini:"shape" yaml:"shape"`                   // name in ShapeFunctions
	ShapeSpread   float64 `ini:"shape_spread" yaml:"shape_spread"`
}

// MutationConfig holds the reproduction rates.
type MutationConfig struct {
	PointRate    float64 `ini:"point_rate" yaml:"point_rate"`
	NudgeRate    float64 `ini:"nudge_rate" yaml:"nudge_rate"`
	NudgeMaxStep int     `ini:"nudge_max_step" yaml:"nudge_max_step"`
}

// PacingConfig holds the suspension intervals used between ticks and generations.
type PacingConfig struct {
	TickInterval       time.Duration `ini:"tick_interval" yaml:"tick_interval"`
	GenerationInterval time.Duration `ini:"generation_interval" yaml:"generation_interval"`
	StartPaused        bool          `ini:"start_paused" yaml:"start_paused"`
}

// StagnationConfig holds parameters of the survival history.
type StagnationConfig struct {
	MaxStagnation int `ini:"max_stagnation" yaml:"max_stagnation"`
}

// DefaultConfig returns the configuration used for keys a file leaves out.
func DefaultConfig() *Config {
	return &Config{
		World: WorldConfig{Width: 128, Height: 128},
		Population: PopulationConfig{
			PopSize:            100,
			TicksPerGeneration: 80,
			Fitness:            "center",
			FitnessParam:       10,
		},
		Network: NetworkConfig{
			LayerSizes: []int{5, 4, 4},
			Activation: nn.DefaultActivation,
			Sensors:    []string{"x", "y", "x_far", "y_far", "blocked"},
			Motors:     []string{"move_x", "move_y", "forward", "turn"},
		},
		Genome: GenomeConfig{
			WeightDivisor: 35,
			Shape:         "sinh",
			ShapeSpread:   2,
		},
		Mutation: MutationConfig{
			PointRate:    0.005,
			NudgeRate:    0.002,
			NudgeMaxStep: 2,
		},
		Stagnation: StagnationConfig{MaxStagnation: 15},
	}
}

// LoadConfig loads configuration parameters from an INI file, or from YAML
// when the file extension is .yaml or .yml. Keys missing from the file keep
// their DefaultConfig values.
func LoadConfig(filePath string) (*Config, error) {
	var (
		config *Config
		err    error
	)
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		config, err = loadYAML(filePath)
	default:
		config, err = loadINI(filePath)
	}
	if err != nil {
		return nil, err
	}

	config.normalize()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func loadINI(filePath string) (*Config, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		SpaceBeforeInlineComment: true, // "key = value ; comment" but keep "a;b"
	}, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}

	config := DefaultConfig()
	sections := []struct {
		name string
		dst  any
	}{
		{"World", &config.World},
		{"Population", &config.Population},
		{"Network", &config.Network},
		{"Genome", &config.Genome},
		{"Mutation", &config.Mutation},
		{"Pacing", &config.Pacing},
		{"Stagnation", &config.Stagnation},
	}
	for _, s := range sections {
		if !cfg.HasSection(s.name) {
			continue
		}
		if err := cfg.Section(s.name).MapTo(s.dst); err != nil {
			return nil, fmt.Errorf("failed to map [%s] section: %w", s.name, err)
		}
	}
	return config, nil
}

func loadYAML(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", filePath, err)
	}
	return config, nil
}

// normalize trims and lower-cases registry names.
func (c *Config) normalize() {
	c.Population.Fitness = cleanName(c.Population.Fitness)
	c.Network.Activation = cleanName(c.Network.Activation)
	c.Genome.Shape = cleanName(c.Genome.Shape)
	for i, s := range c.Network.Sensors {
		c.Network.Sensors[i] = cleanName(s)
	}
	for i, m := range c.Network.Motors {
		c.Network.Motors[i] = cleanName(m)
	}
}

func cleanName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Validate checks the configuration for values the simulation cannot run with.
func (c *Config) Validate() error {
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("config error: world size must be positive, got %dx%d", c.World.Width, c.World.Height)
	}

	pop := c.Population
	if pop.PopSize <= 0 {
		return fmt.Errorf("config error: pop_size must be positive")
	}
	if pop.PopSize > c.World.Width*c.World.Height {
		return fmt.Errorf("config error: pop_size %d does not fit a %dx%d world", pop.PopSize, c.World.Width, c.World.Height)
	}
	if pop.TicksPerGeneration <= 0 {
		return fmt.Errorf("config error: ticks_per_generation must be positive")
	}
	if _, err := GetFitness(pop.Fitness, pop.FitnessParam); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if pop.ObserveAgent < 0 || pop.ObserveAgent >= pop.PopSize {
		return fmt.Errorf("config error: observe_agent %d outside population of %d", pop.ObserveAgent, pop.PopSize)
	}

	net := c.Network
	if len(net.LayerSizes) < 2 {
		return fmt.Errorf("config error: layer_sizes needs at least 2 layers")
	}
	for i, size := range net.LayerSizes {
		if size <= 0 {
			return fmt.Errorf("config error: layer %d size must be positive", i)
		}
	}
	if _, err := nn.GetActivation(net.Activation); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if len(net.Sensors) != net.LayerSizes[0] {
		return fmt.Errorf("config error: %d sensors configured for an input layer of %d", len(net.Sensors), net.LayerSizes[0])
	}
	if len(net.Motors) != net.LayerSizes[len(net.LayerSizes)-1] {
		return fmt.Errorf("config error: %d motors configured for an output layer of %d", len(net.Motors), net.LayerSizes[len(net.LayerSizes)-1])
	}
	if _, err := resolveSensors(net.Sensors); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if _, err := resolveMotors(net.Motors); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.Genome.WeightDivisor != 35 && c.Genome.WeightDivisor != 36 {
		return fmt.Errorf("config error: weight_divisor must be 35 or 36, got %d", c.Genome.WeightDivisor)
	}
	if _, err := GetShape(c.Genome.Shape, c.Genome.ShapeSpread); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	mut := c.Mutation
	if mut.PointRate < 0 || mut.PointRate > 1 {
		return fmt.Errorf("config error: point_rate must be between 0 and 1")
	}
	if mut.NudgeRate < 0 || mut.NudgeRate > 1 {
		return fmt.Errorf("config error: nudge_rate must be between 0 and 1")
	}
	if mut.NudgeMaxStep < 0 {
		return fmt.Errorf("config error: nudge_max_step cannot be negative")
	}

	if c.Pacing.TickInterval < 0 || c.Pacing.GenerationInterval < 0 {
		return fmt.Errorf("config error: pacing intervals cannot be negative")
	}
	if c.Stagnation.MaxStagnation <= 0 {
		return fmt.Errorf("config error: max_stagnation must be positive")
	}
	return nil
}

// EdgeCount is the genome length implied by the configured layer sizes.
func (c *NetworkConfig) EdgeCount() int {
	count := 0
	for i := 0; i < len(c.LayerSizes)-1; i++ {
		count += c.LayerSizes[i] * c.LayerSizes[i+1]
	}
	return count
}

// NewBrain builds an untrained network with the configured topology.
func (c *NetworkConfig) NewBrain() (*nn.Network, error) {
	act, err := nn.GetActivation(c.Activation)
	if err != nil {
		return nil, err
	}
	return nn.NewWithActivation(act, c.LayerSizes...)
}
