package evo

import (
	"errors"
	"fmt"
)

var (
	// ErrSensorMismatch reports a brain whose input layer does not match the sensors.
	ErrSensorMismatch = errors.New("sensor channels do not match brain inputs")
	// ErrMotorMismatch reports a brain whose output layer does not match the motors.
	ErrMotorMismatch = errors.New("motor channels do not match brain outputs")
)

// SensorFunc reads one input channel for an agent. The result is clamped to
// [0, 1] by the brain.
type SensorFunc func(w *World, a *Agent) float64

// SensorFunctions maps configuration names to sensors.
var SensorFunctions = map[string]SensorFunc{
	"x":       SenseX,
	"y":       SenseY,
	"x_far":   SenseXFar,
	"y_far":   SenseYFar,
	"blocked": SenseBlocked,
}

// SenseX is the agent's column divided by the world width.
func SenseX(w *World, a *Agent) float64 {
	return float64(a.Pos.X) / float64(w.Width)
}

// SenseY is the agent's row divided by the world height.
func SenseY(w *World, a *Agent) float64 {
	return float64(a.Pos.Y) / float64(w.Height)
}

// SenseXFar is the normalized distance to the right edge.
func SenseXFar(w *World, a *Agent) float64 {
	return float64(w.Width-1-a.Pos.X) / float64(w.Width)
}

// SenseYFar is the normalized distance to the bottom edge.
func SenseYFar(w *World, a *Agent) float64 {
	return float64(w.Height-1-a.Pos.Y) / float64(w.Height)
}

// SenseBlocked is 1 when the cell the agent faces is off the grid or
// occupied, and 0 otherwise or when the agent has no facing.
func SenseBlocked(w *World, a *Agent) float64 {
	if a.Facing.IsZero() {
		return 0
	}
	ahead := a.Pos.Add(a.Facing)
	if !w.InBounds(ahead) || w.Occupied(ahead) {
		return 1
	}
	return 0
}

func resolveSensors(names []string) ([]SensorFunc, error) {
	sensors := make([]SensorFunc, len(names))
	for i, name := range names {
		fn, ok := SensorFunctions[name]
		if !ok {
			return nil, fmt.Errorf("unknown sensor: %s", name)
		}
		sensors[i] = fn
	}
	return sensors, nil
}

// Drive accumulates the effects of the motor channels that fired this tick.
type Drive struct {
	Delta Point
	Turn  int // eighth-turns, positive clockwise
}

// MotorFunc applies a fired motor channel. dir is the sign of the channel's
// output and facing is the agent's facing at the start of the tick.
type MotorFunc func(d *Drive, facing Point, dir int)

// MotorFunctions maps configuration names to motors.
var MotorFunctions = map[string]MotorFunc{
	"move_x":  MoveX,
	"move_y":  MoveY,
	"forward": Forward,
	"turn":    Turn,
}

// MoveX steps along the x axis in the direction of the signal.
func MoveX(d *Drive, _ Point, dir int) { d.Delta.X += dir }

// MoveY steps along the y axis in the direction of the signal.
func MoveY(d *Drive, _ Point, dir int) { d.Delta.Y += dir }

// Forward repeats the previous step, or reverses it for a negative signal.
func Forward(d *Drive, facing Point, dir int) {
	d.Delta.X += dir * facing.X
	d.Delta.Y += dir * facing.Y
}

// Turn rotates the combined step by 45 degrees, clockwise for a positive signal.
func Turn(d *Drive, _ Point, dir int) { d.Turn += dir }

// compass lists the unit steps clockwise on a grid whose y axis points down.
var compass = [8]Point{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}

// Step combines the drive into a single step of at most one cell per axis.
// A turn changes exactly one axis of a non-zero step by one.
func (d Drive) Step() Point {
	step := Point{X: clampInt(d.Delta.X, -1, 1), Y: clampInt(d.Delta.Y, -1, 1)}
	if step.IsZero() || d.Turn == 0 {
		return step
	}
	for i, c := range compass {
		if c == step {
			return compass[((i+d.Turn)%8+8)%8]
		}
	}
	return step
}

func resolveMotors(names []string) ([]MotorFunc, error) {
	motors := make([]MotorFunc, len(names))
	for i, name := range names {
		fn, ok := MotorFunctions[name]
		if !ok {
			return nil, fmt.Errorf("unknown motor: %s", name)
		}
		motors[i] = fn
	}
	return motors, nil
}
