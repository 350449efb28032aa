package evo

import (
	"fmt"
	"math/rand/v2"
)

// Reproduction builds child genomes from two parents by uniform crossover,
// point mutation, and digit nudging.
type Reproduction struct {
	Config *MutationConfig
	Codec  *Codec
	Stats  ReproductionStats
}

// ReproductionStats counts what Reproduce did per symbol.
type ReproductionStats struct {
	Children       int
	PointMutations int
	NudgeMutations int
	FromA          int
	FromB          int
}

// NewReproduction creates a new reproduction operator.
func NewReproduction(config *MutationConfig, codec *Codec) *Reproduction {
	return &Reproduction{Config: config, Codec: codec}
}

// Reproduce returns a child genome of the parents' length. For each position
// independently:
//
//   - with probability PointRate the symbol is replaced by a uniformly random one;
//   - otherwise, with probability NudgeRate, a's digit is moved by up to
//     NudgeMaxStep in either direction and clamped to the alphabet;
//   - otherwise the symbol is copied from a or b with equal probability.
//
// The parents are not modified.
func (r *Reproduction) Reproduce(rng *rand.Rand, a, b Genome) (Genome, error) {
	if len(a) != len(b) {
		return "", fmt.Errorf("%w: parents have %d and %d symbols", ErrGenomeLength, len(a), len(b))
	}

	child := make([]byte, len(a))
	for i := range child {
		if rng.Float64() < r.Config.PointRate {
			child[i] = Alphabet[rng.IntN(len(Alphabet))]
			r.Stats.PointMutations++
			continue
		}
		if rng.Float64() < r.Config.NudgeRate {
			d, err := digitOf(a[i])
			if err != nil {
				return "", fmt.Errorf("nudging position %d: %w", i, err)
			}
			step := rng.IntN(2*r.Config.NudgeMaxStep+1) - r.Config.NudgeMaxStep
			child[i] = r.Codec.Encode(d + step)
			r.Stats.NudgeMutations++
			continue
		}
		if rng.IntN(2) == 0 {
			child[i] = a[i]
			r.Stats.FromA++
		} else {
			child[i] = b[i]
			r.Stats.FromB++
		}
	}
	r.Stats.Children++
	return Genome(child), nil
}
