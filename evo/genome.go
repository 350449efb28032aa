package evo

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/baldhumanity/gridevo/evo/nn"
)

// Alphabet lists the genome symbols in digit order.
const Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// MaxDigit is the largest digit a genome symbol can encode.
const MaxDigit = len(Alphabet) - 1

var (
	// ErrInvalidSymbol reports a genome symbol that is not a base-36 digit.
	ErrInvalidSymbol = errors.New("invalid genome symbol")
	// ErrGenomeLength reports a genome paired with a brain of a different edge count.
	ErrGenomeLength = errors.New("genome length does not match edge count")
)

// Genome encodes every edge weight of a brain, one base-36 symbol per edge
// in the network's canonical edge order.
type Genome string

// Digits decodes every symbol to its digit value.
func (g Genome) Digits() ([]int, error) {
	digits := make([]int, len(g))
	for i := 0; i < len(g); i++ {
		d, err := digitOf(g[i])
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		digits[i] = d
	}
	return digits, nil
}

// Validate reports the first symbol that is not a base-36 digit.
func (g Genome) Validate() error {
	_, err := g.Digits()
	return err
}

func digitOf(symbol byte) (int, error) {
	d, err := strconv.ParseUint(string(symbol), 36, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}
	return int(d), nil
}

// Codec maps genome symbols to edge weights and draws random genomes.
// A digit d decodes to (d / Divisor) * 8 - 4.
type Codec struct {
	Divisor float64
	Shape   ShapeFunc
}

// NewCodec creates a codec from the genome configuration.
func NewCodec(config *GenomeConfig) (*Codec, error) {
	shape, err := GetShape(config.Shape, config.ShapeSpread)
	if err != nil {
		return nil, err
	}
	if config.WeightDivisor != 35 && config.WeightDivisor != 36 {
		return nil, fmt.Errorf("weight divisor must be 35 or 36, got %d", config.WeightDivisor)
	}
	return &Codec{Divisor: float64(config.WeightDivisor), Shape: shape}, nil
}

// Weight returns the edge weight encoded by digit d.
func (c *Codec) Weight(d int) float64 {
	return float64(d)/c.Divisor*8 - 4
}

// Decode returns the edge weight encoded by one symbol.
func (c *Codec) Decode(symbol byte) (float64, error) {
	d, err := digitOf(symbol)
	if err != nil {
		return 0, err
	}
	return c.Weight(d), nil
}

// Encode returns the symbol for digit d, clamped to [0, MaxDigit].
func (c *Codec) Encode(d int) byte {
	return Alphabet[clampInt(d, 0, MaxDigit)]
}

// Apply writes the genome into the network's edge weights. The whole genome
// is checked before any weight is written, so a failed Apply leaves the
// network untouched.
func (c *Codec) Apply(g Genome, net *nn.Network) error {
	if len(g) != net.CountEdges() {
		return fmt.Errorf("%w: genome has %d symbols, network has %d edges", ErrGenomeLength, len(g), net.CountEdges())
	}
	digits, err := g.Digits()
	if err != nil {
		return err
	}
	for i, d := range digits {
		if err := net.SetWeight(i, c.Weight(d)); err != nil {
			return err
		}
	}
	return nil
}

// RandomSymbol draws one symbol by passing a uniform sample through the
// codec's shape function and truncating it to a digit.
func (c *Codec) RandomSymbol(r *rand.Rand) byte {
	d := int(c.Shape(r.Float64()) * float64(len(Alphabet)))
	return c.Encode(d)
}

// RandomGenome draws n independent symbols.
func (c *Codec) RandomGenome(r *rand.Rand, n int) Genome {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = c.RandomSymbol(r)
	}
	return Genome(buf)
}
