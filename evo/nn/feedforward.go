package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Forward computes the network's output for the given inputs with a full
// layer-by-layer pass, without touching the network's live activations.
// Inputs are clamped to [0, 1] exactly as SetValue does, so at rest the
// incremental activations equal what Forward returns for the same inputs.
func (n *Network) Forward(inputs []float64) ([]float64, error) {
	if len(inputs) != n.sizes[0] {
		return nil, fmt.Errorf("%w: mismatch between input count (%d) and network input nodes (%d)", ErrInputIndex, len(inputs), n.sizes[0])
	}

	values := make([]float64, len(inputs))
	for i, v := range inputs {
		values[i] = math.Max(0, math.Min(v, 1))
	}

	// Reusable buffer for the contributions arriving at one node.
	var incoming []float64

	for j := 0; j < len(n.sizes)-1; j++ {
		next := make([]float64, n.sizes[j+1])
		if cap(incoming) < n.sizes[j] {
			incoming = make([]float64, n.sizes[j])
		}
		incoming = incoming[:n.sizes[j]]
		for l := range next {
			for k := range incoming {
				e := n.edges[n.offsets[j]+k*n.sizes[j+1]+l]
				incoming[k] = e.Weight * values[k]
			}
			next[l] = n.act(floats.Sum(incoming))
		}
		values = next
	}

	return values, nil
}
