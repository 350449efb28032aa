package evo

import "fmt"

// FitnessPredicate decides from an agent's final position whether it survives
// a generation in a world of the given size.
type FitnessPredicate func(pos Point, width, height int) bool

// FitnessFunctions maps configuration names to predicate constructors. The
// constructor receives PopulationConfig.FitnessParam.
var FitnessFunctions = map[string]func(param float64) FitnessPredicate{
	"center": CenterRegion,
	"left":   LeftRegion,
	"right":  RightRegion,
	"top":    TopRegion,
	"bottom": BottomRegion,
	"always": func(float64) FitnessPredicate { return Always },
	"never":  func(float64) FitnessPredicate { return Never },
}

// GetFitness builds the named fitness predicate.
func GetFitness(name string, param float64) (FitnessPredicate, error) {
	ctor, ok := FitnessFunctions[name]
	if !ok {
		return nil, fmt.Errorf("unknown fitness function: %s", name)
	}
	if param < 0 {
		return nil, fmt.Errorf("fitness param cannot be negative, got %v", param)
	}
	return ctor(param), nil
}

// CenterRegion accepts the square of half-size radius around the centre cell.
func CenterRegion(radius float64) FitnessPredicate {
	r := int(radius)
	return func(pos Point, width, height int) bool {
		cx, cy := width/2, height/2
		return pos.X >= cx-r && pos.X <= cx+r && pos.Y >= cy-r && pos.Y <= cy+r
	}
}

// LeftRegion accepts the leftmost percent of the columns.
func LeftRegion(percent float64) FitnessPredicate {
	return func(pos Point, width, _ int) bool {
		return float64(pos.X) < float64(width)*percent/100
	}
}

// RightRegion accepts the rightmost percent of the columns.
func RightRegion(percent float64) FitnessPredicate {
	return func(pos Point, width, _ int) bool {
		return float64(width-1-pos.X) < float64(width)*percent/100
	}
}

// TopRegion accepts the top percent of the rows.
func TopRegion(percent float64) FitnessPredicate {
	return func(pos Point, _, height int) bool {
		return float64(pos.Y) < float64(height)*percent/100
	}
}

// BottomRegion accepts the bottom percent of the rows.
func BottomRegion(percent float64) FitnessPredicate {
	return func(pos Point, _, height int) bool {
		return float64(height-1-pos.Y) < float64(height)*percent/100
	}
}

// Always lets every agent survive.
func Always(Point, int, int) bool { return true }

// Never lets no agent survive.
func Never(Point, int, int) bool { return false }
