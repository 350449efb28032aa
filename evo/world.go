package evo

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

// MoveStats counts move outcomes.
type MoveStats struct {
	Accepted int // agents that changed cell
	Rejected int // agents whose target was occupied or contested
}

// World is the shared grid the population acts in. At most one agent
// occupies a cell.
//
// Moves are resolved in batch: every agent senses and decides against the
// positions at the start of the tick, and all accepted moves are committed
// together, so a tick's outcome does not depend on agent order (only the
// random draws are consumed in order). A move is rejected when its target was
// occupied at the start of the tick or when another agent targets the same
// cell; rejected agents stay where they are.
type World struct {
	Width, Height int
	Agents        []*Agent
	Tick          int
	LastMoves     MoveStats // outcome of the most recent tick
	TotalMoves    MoveStats // outcome since the world was created

	sensors   []SensorFunc
	motors    []MotorFunc
	rng       *rand.Rand
	occupancy []int32 // row-major, agent index + 1, 0 when empty
	claims    []int32 // row-major count of agents targeting each cell this tick
	targets   []Point
}

// NewWorld creates an empty world.
func NewWorld(width, height int, sensors []SensorFunc, motors []MotorFunc, rng *rand.Rand) (*World, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("world size must be positive, got %dx%d", width, height)
	}
	return &World{
		Width:     width,
		Height:    height,
		sensors:   sensors,
		motors:    motors,
		rng:       rng,
		occupancy: make([]int32, width*height),
		claims:    make([]int32, width*height),
	}, nil
}

func (w *World) index(p Point) int { return p.Y*w.Width + p.X }

// InBounds reports whether p lies on the grid.
func (w *World) InBounds(p Point) bool {
	return p.X >= 0 && p.X < w.Width && p.Y >= 0 && p.Y < w.Height
}

// Occupied reports whether an agent stands on p. p must be in bounds.
func (w *World) Occupied(p Point) bool {
	return w.occupancy[w.index(p)] != 0
}

// clampPoint moves p onto the nearest cell of the grid.
func (w *World) clampPoint(p Point) Point {
	return Point{X: clampInt(p.X, 0, w.Width-1), Y: clampInt(p.Y, 0, w.Height-1)}
}

// Reset replaces the population, places every agent on a random free cell
// and rewinds the tick counter.
func (w *World) Reset(agents []*Agent) error {
	if len(agents) > w.Width*w.Height {
		return fmt.Errorf("%d agents do not fit a %dx%d world", len(agents), w.Width, w.Height)
	}
	clear(w.occupancy)
	w.Agents = agents
	w.Tick = 0
	w.LastMoves = MoveStats{}
	for i, a := range agents {
		p, err := w.RandomFreeCell()
		if err != nil {
			return err
		}
		a.Pos = p
		a.Facing = Point{}
		w.occupancy[w.index(p)] = int32(i + 1)
	}
	return nil
}

var errWorldFull = errors.New("no free cell left")

// RandomFreeCell returns a uniformly chosen unoccupied cell.
func (w *World) RandomFreeCell() (Point, error) {
	// Rejection sampling is quick while the grid is mostly empty.
	for try := 0; try < 64; try++ {
		p := Point{X: w.rng.IntN(w.Width), Y: w.rng.IntN(w.Height)}
		if !w.Occupied(p) {
			return p, nil
		}
	}
	free := 0
	for _, o := range w.occupancy {
		if o == 0 {
			free++
		}
	}
	if free == 0 {
		return Point{}, errWorldFull
	}
	pick := w.rng.IntN(free)
	for i, o := range w.occupancy {
		if o != 0 {
			continue
		}
		if pick == 0 {
			return Point{X: i % w.Width, Y: i / w.Width}, nil
		}
		pick--
	}
	return Point{}, errWorldFull
}

// Step advances every agent by one tick.
func (w *World) Step() error {
	if cap(w.targets) < len(w.Agents) {
		w.targets = make([]Point, len(w.Agents))
	}
	w.targets = w.targets[:len(w.Agents)]

	for i, a := range w.Agents {
		if err := w.sense(a); err != nil {
			return fmt.Errorf("agent %d: %w", i, err)
		}
		step, err := w.decide(a)
		if err != nil {
			return fmt.Errorf("agent %d: %w", i, err)
		}
		// Facing remembers the attempted step even if the move is rejected.
		a.Facing = step
		w.targets[i] = w.clampPoint(a.Pos.Add(step))
	}

	for i, a := range w.Agents {
		t := w.targets[i]
		if t != a.Pos && !w.Occupied(t) {
			w.claims[w.index(t)]++
		}
	}

	moves := MoveStats{}
	for i, a := range w.Agents {
		t := w.targets[i]
		if t == a.Pos {
			continue
		}
		if w.Occupied(t) || w.claims[w.index(t)] > 1 {
			moves.Rejected++
			w.targets[i] = a.Pos
			continue
		}
		moves.Accepted++
	}

	for i, a := range w.Agents {
		t := w.targets[i]
		w.claims[w.index(t)] = 0
		if t == a.Pos {
			continue
		}
		w.occupancy[w.index(a.Pos)] = 0
		w.occupancy[w.index(t)] = int32(i + 1)
		a.Pos = t
	}
	// Clear claims left on cells whose contenders were all rejected.
	if moves.Rejected > 0 {
		clear(w.claims)
	}

	w.Tick++
	w.LastMoves = moves
	w.TotalMoves.Accepted += moves.Accepted
	w.TotalMoves.Rejected += moves.Rejected
	return nil
}

// sense writes the sensory vector into the agent's input layer.
func (w *World) sense(a *Agent) error {
	inputs := a.Brain.Inputs()
	for i, in := range inputs {
		if i >= len(w.sensors) {
			return fmt.Errorf("%w: no sensor for input %d", ErrSensorMismatch, i)
		}
		in.SetValue(w.sensors[i](w, a))
	}
	if len(inputs) != len(w.sensors) {
		return fmt.Errorf("%w: %d sensors for %d inputs", ErrSensorMismatch, len(w.sensors), len(inputs))
	}
	return nil
}

// decide turns the brain's outputs into a step. Each channel fires with
// probability equal to its magnitude, in the direction of its sign.
func (w *World) decide(a *Agent) (Point, error) {
	out := a.Brain.Outputs()
	if len(out) != len(w.motors) {
		return Point{}, fmt.Errorf("%w: %d motors for %d outputs", ErrMotorMismatch, len(w.motors), len(out))
	}
	var d Drive
	for i, v := range out {
		if w.rng.Float64() < math.Abs(v) {
			w.motors[i](&d, a.Facing, sign(v))
		}
	}
	return d.Step(), nil
}
