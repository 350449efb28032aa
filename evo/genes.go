package evo

import (
	"fmt"
	"math"
)

// ShapeFunc maps a uniform sample in [0, 1) to [0, 1). It decides how the
// digits of a random genome, and so the initial weights, are distributed.
type ShapeFunc func(u float64) float64

// ShapeFunctions maps configuration names to shape constructors. The
// constructor receives GenomeConfig.ShapeSpread.
var ShapeFunctions = map[string]func(spread float64) (ShapeFunc, error){
	"sinh":    SinhShape,
	"uniform": func(float64) (ShapeFunc, error) { return UniformShape, nil },
}

// GetShape builds the named shape function.
func GetShape(name string, spread float64) (ShapeFunc, error) {
	ctor, ok := ShapeFunctions[name]
	if !ok {
		return nil, fmt.Errorf("unknown shape function: %s", name)
	}
	return ctor(spread)
}

// UniformShape leaves the sample unchanged: every digit is equally likely.
func UniformShape(u float64) float64 {
	return u
}

// SinhShape maps u to (sinh(spread*(2u-1))/sinh(spread) + 1) / 2.
//
// The curve is flattest in the middle, so central digits (weights near 0)
// are drawn more often than extreme ones. With spread 2 the middle third of
// the digit range receives about half of all samples.
func SinhShape(spread float64) (ShapeFunc, error) {
	if spread <= 0 || math.IsNaN(spread) || math.IsInf(spread, 0) {
		return nil, fmt.Errorf("sinh shape spread must be positive and finite, got %v", spread)
	}
	norm := math.Sinh(spread)
	return func(u float64) float64 {
		v := (math.Sinh(spread*(2*u-1))/norm + 1) / 2
		// Keep the result inside [0, 1) whatever rounding did.
		return clamp(v, 0, math.Nextafter(1, 0))
	}, nil
}
