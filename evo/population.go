package evo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
)

// ErrExtinct reports a generation that ended with no survivors.
var ErrExtinct = errors.New("population extinct")

// Population holds the state of the evolutionary process: the live world
// and agents of the current generation, the operators that breed the next
// one, and the history of past generations.
//
// A Population is driven from a single goroutine. Only its Pacer may be
// used concurrently.
type Population struct {
	Config       *Config
	World        *World
	Codec        *Codec
	Reproduction *Reproduction
	History      *History
	Pacer        *Pacer
	Logger       *slog.Logger
	Generation   int   // index of the generation currently running
	Seed         int64 // seed of the random source

	fitness      FitnessPredicate
	rng          *rand.Rand
	observers    []Observer
	extinct      bool
	genStart     time.Time
	movesAtStart MoveStats
}

// NewPopulation creates a new Population instance.
// It validates the config and seeds the first generation with random genomes.
func NewPopulation(config *Config) (*Population, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	fitness, err := GetFitness(config.Population.Fitness, config.Population.FitnessParam)
	if err != nil {
		return nil, err
	}
	codec, err := NewCodec(&config.Genome)
	if err != nil {
		return nil, fmt.Errorf("failed to create genome codec: %w", err)
	}
	sensors, err := resolveSensors(config.Network.Sensors)
	if err != nil {
		return nil, err
	}
	motors, err := resolveMotors(config.Network.Motors)
	if err != nil {
		return nil, err
	}

	seed := config.Population.Seed
	if seed == 0 {
		seed = rand.Int64()
	}
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))

	world, err := NewWorld(config.World.Width, config.World.Height, sensors, motors, rng)
	if err != nil {
		return nil, err
	}

	pacer := NewPacer(config.Pacing.TickInterval, config.Pacing.GenerationInterval)
	if config.Pacing.StartPaused {
		pacer.Pause()
	}

	p := &Population{
		Config:       config,
		World:        world,
		Codec:        codec,
		Reproduction: NewReproduction(&config.Mutation, codec),
		History:      NewHistory(&config.Stagnation),
		Pacer:        pacer,
		Logger:       slog.Default(),
		Seed:         seed,
		fitness:      fitness,
		rng:          rng,
	}
	if err := p.seedAgents(); err != nil {
		return nil, fmt.Errorf("failed to create initial population: %w", err)
	}
	return p, nil
}

// AddObserver registers an observer for tick and generation snapshots.
func (p *Population) AddObserver(o Observer) {
	p.observers = append(p.observers, o)
}

// Agents returns the live agents of the current generation.
func (p *Population) Agents() []*Agent {
	return p.World.Agents
}

// Genomes returns the genomes of the current generation, in agent order.
func (p *Population) Genomes() []Genome {
	genomes := make([]Genome, len(p.World.Agents))
	for i, a := range p.World.Agents {
		genomes[i] = a.Genome
	}
	return genomes
}

// Extinct reports whether a generation ended with no survivors and the
// population was not reset.
func (p *Population) Extinct() bool {
	return p.extinct
}

// Snapshot copies the observable state of the current generation.
func (p *Population) Snapshot() *WorldSnapshot {
	w := p.World
	s := &WorldSnapshot{
		Generation: p.Generation,
		Tick:       w.Tick,
		Width:      w.Width,
		Height:     w.Height,
		Agents:     make([]AgentSnapshot, len(w.Agents)),
		Moves:      w.LastMoves,
		Observed:   p.Config.Population.ObserveAgent,
	}
	for i, a := range w.Agents {
		s.Agents[i] = AgentSnapshot{Pos: a.Pos, Facing: a.Facing, Genome: a.Genome}
	}
	if s.Observed < len(w.Agents) {
		s.Brain = w.Agents[s.Observed].Brain.Snapshot()
	}
	return s
}

// RunGeneration runs the remaining ticks of the current generation, selects
// the survivors and breeds the next generation.
//
// It waits on the Pacer before every tick and before the transition. If ctx
// is cancelled during a wait, RunGeneration returns ctx.Err() and a later
// call continues with the same tick. When no agent survives it returns
// ErrExtinct, unless the config asks for a reset.
func (p *Population) RunGeneration(ctx context.Context) (*GenerationResult, error) {
	if p.extinct {
		return nil, fmt.Errorf("%w: no survivors in generation %d", ErrExtinct, p.Generation)
	}

	ticks := p.Config.Population.TicksPerGeneration
	for p.World.Tick < ticks {
		if err := p.Pacer.WaitTick(ctx); err != nil {
			return nil, err
		}
		if p.World.Tick == 0 {
			p.genStart = time.Now()
			p.movesAtStart = p.World.TotalMoves
		}
		if err := p.World.Step(); err != nil {
			return nil, fmt.Errorf("generation %d tick %d: %w", p.Generation, p.World.Tick, err)
		}
		p.logger().Debug("tick",
			"generation", p.Generation,
			"tick", p.World.Tick,
			"accepted", p.World.LastMoves.Accepted,
			"rejected", p.World.LastMoves.Rejected)
		if len(p.observers) > 0 {
			s := p.Snapshot()
			for _, o := range p.observers {
				o.OnTick(s)
			}
		}
	}

	if err := p.Pacer.WaitGeneration(ctx); err != nil {
		return nil, err
	}
	return p.endGeneration()
}

// Run executes generations until n have finished or one fails.
// It returns the result of the last generation that finished.
func (p *Population) Run(ctx context.Context, n int) (*GenerationResult, error) {
	var last *GenerationResult
	for i := 0; i < n; i++ {
		result, err := p.RunGeneration(ctx)
		if result != nil {
			last = result
		}
		if err != nil {
			return last, err
		}
	}
	return last, nil
}

// endGeneration applies the fitness predicate and replaces the population.
func (p *Population) endGeneration() (*GenerationResult, error) {
	agents := p.World.Agents
	result := &GenerationResult{
		Generation: p.Generation,
		PopSize:    len(agents),
		Moves: MoveStats{
			Accepted: p.World.TotalMoves.Accepted - p.movesAtStart.Accepted,
			Rejected: p.World.TotalMoves.Rejected - p.movesAtStart.Rejected,
		},
	}
	if !p.genStart.IsZero() {
		result.Duration = time.Since(p.genStart)
	}

	// Survivors hand over their genomes only; the agents themselves are
	// dropped with the old generation.
	for i, a := range agents {
		if p.fitness(a.Pos, p.World.Width, p.World.Height) {
			result.Survivors = append(result.Survivors, i)
			result.SurvivorGenomes = append(result.SurvivorGenomes, a.Genome)
		}
	}
	if len(agents) > 0 {
		result.SurvivalRatio = float64(len(result.Survivors)) / float64(len(agents))
	}

	var next []*Agent
	if len(result.Survivors) == 0 {
		result.Extinct = true
		if !p.Config.Population.ResetOnExtinction {
			p.extinct = true
			result.Stagnant = p.History.Add(p.Generation, 0)
			p.logger().Warn("population extinct", "generation", p.Generation)
			p.notifyGeneration(result)
			return result, fmt.Errorf("%w: no survivors in generation %d", ErrExtinct, p.Generation)
		}
		p.logger().Warn("population extinct, resetting with random genomes", "generation", p.Generation)
		fresh, err := p.randomAgents()
		if err != nil {
			return nil, err
		}
		next = fresh
		result.Reset = true
	} else {
		children, parents, err := p.breed(result.Survivors, result.SurvivorGenomes)
		if err != nil {
			return nil, fmt.Errorf("reproduction failed in generation %d: %w", p.Generation, err)
		}
		next = children
		result.Parents = parents
	}

	if err := p.World.Reset(next); err != nil {
		return nil, fmt.Errorf("failed to place generation %d: %w", p.Generation+1, err)
	}
	result.Stagnant = p.History.Add(p.Generation, result.SurvivalRatio)

	p.logger().Info("generation finished",
		"generation", p.Generation,
		"survivors", len(result.Survivors),
		"ratio", result.SurvivalRatio,
		"best_ratio", p.History.Best,
		"stagnant", result.Stagnant,
		"moves", result.Moves.Accepted,
		"blocked", result.Moves.Rejected,
		"duration", result.Duration)

	p.Generation++
	p.genStart = time.Time{}
	p.notifyGeneration(result)
	return result, nil
}

// breed fills a new generation. Slot i takes parent A round-robin from the
// survivors, so every survivor contributes at least once when there are
// fewer survivors than slots, and parent B uniformly at random.
func (p *Population) breed(survivors []int, genomes []Genome) ([]*Agent, []ParentPair, error) {
	n := p.Config.Population.PopSize
	agents := make([]*Agent, n)
	parents := make([]ParentPair, n)
	for i := 0; i < n; i++ {
		a := i % len(genomes)
		b := p.rng.IntN(len(genomes))
		child, err := p.Reproduction.Reproduce(p.rng, genomes[a], genomes[b])
		if err != nil {
			return nil, nil, err
		}
		agent, err := p.newAgent(child)
		if err != nil {
			return nil, nil, err
		}
		agents[i] = agent
		parents[i] = ParentPair{A: survivors[a], B: survivors[b]}
	}
	return agents, parents, nil
}

// seedAgents replaces the population with random genomes.
func (p *Population) seedAgents() error {
	agents, err := p.randomAgents()
	if err != nil {
		return err
	}
	return p.World.Reset(agents)
}

func (p *Population) randomAgents() ([]*Agent, error) {
	n := p.Config.Network.EdgeCount()
	agents := make([]*Agent, p.Config.Population.PopSize)
	for i := range agents {
		a, err := p.newAgent(p.Codec.RandomGenome(p.rng, n))
		if err != nil {
			return nil, err
		}
		agents[i] = a
	}
	return agents, nil
}

func (p *Population) newAgent(g Genome) (*Agent, error) {
	brain, err := p.Config.Network.NewBrain()
	if err != nil {
		return nil, err
	}
	return NewAgent(brain, g, p.Codec)
}

func (p *Population) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

func (p *Population) notifyGeneration(r *GenerationResult) {
	for _, o := range p.observers {
		o.OnGeneration(r)
	}
}
