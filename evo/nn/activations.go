package nn

import (
	"fmt"
	"math"
)

// ActivationType squashes the aggregated input of a non-input node.
type ActivationType func(x float64) float64

// ActivationFunctions maps configuration names to activation functions.
// Motor decoding reads both sign and magnitude of an output, so every entry
// must be able to produce values in [-1, 1].
var ActivationFunctions = map[string]ActivationType{
	"tanh":     Tanh,
	"clamped":  Clamped,
	"softsign": Softsign,
	"sigmoid":  SignedSigmoid,
}

// DefaultActivation is the activation used by New.
const DefaultActivation = "tanh"

// GetActivation retrieves an activation function by name.
func GetActivation(name string) (ActivationType, error) {
	if fn, ok := ActivationFunctions[name]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("unknown activation function: %s", name)
}

// Tanh activation function.
func Tanh(x float64) float64 {
	return math.Tanh(x)
}

// Clamped activation function (clamps output between -1 and 1).
func Clamped(x float64) float64 {
	return math.Max(-1, math.Min(x, 1))
}

// Softsign is x / (1 + |x|).
func Softsign(x float64) float64 {
	return x / (1 + math.Abs(x))
}

// SignedSigmoid is the logistic curve rescaled to (-1, 1).
func SignedSigmoid(x float64) float64 {
	// Same steepness as the usual NEAT sigmoid.
	k := 4.9
	return 2/(1+math.Exp(-k*x)) - 1
}
