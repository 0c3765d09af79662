package grid

import (
	"fmt"
	"math"
)

// WriteParameters fills the active blocks of params with the element
// values the grid was compiled from. params must have length
// ParameterCount.
func (g *Grid) WriteParameters(params []float64) error {
	if len(params) != g.parameterCount {
		return fmt.Errorf("parameter vector has length %d, want %d", len(params), g.parameterCount)
	}
	for i := range g.positions {
		if e := &g.positions[i]; e.Offset != NoOffset {
			params[e.Offset] = e.X
			params[e.Offset+1] = e.Y
		}
	}
	for i := range g.radii {
		if e := &g.radii[i]; e.Offset != NoOffset {
			params[e.Offset] = e.Value
		}
	}
	for i := range g.ellipticities {
		if e := &g.ellipticities[i]; e.Offset != NoOffset {
			params[e.Offset] = e.E1
			params[e.Offset+1] = e.E2
		}
	}
	return nil
}

// CheckBounds reports whether every active block of params satisfies
// its element's bounds.
func (g *Grid) CheckBounds(params []float64) bool {
	for i := range g.positions {
		if e := &g.positions[i]; e.Offset != NoOffset {
			if !e.PositionComponent.CheckBounds(params[e.Offset : e.Offset+2]) {
				return false
			}
		}
	}
	for i := range g.radii {
		if e := &g.radii[i]; e.Offset != NoOffset {
			if !e.RadiusComponent.CheckBounds(params[e.Offset : e.Offset+1]) {
				return false
			}
		}
	}
	for i := range g.ellipticities {
		if e := &g.ellipticities[i]; e.Offset != NoOffset {
			if !e.EllipticityComponent.CheckBounds(params[e.Offset : e.Offset+2]) {
				return false
			}
		}
	}
	return true
}

// ClipToBounds projects every active block of params onto its
// element's bounds in place, returning the total adjustment magnitude.
// A zero return means params was already feasible.
func (g *Grid) ClipToBounds(params []float64) float64 {
	total := 0.0
	for i := range g.positions {
		if e := &g.positions[i]; e.Offset != NoOffset {
			total += e.PositionComponent.ClipToBounds(params[e.Offset : e.Offset+2])
		}
	}
	for i := range g.radii {
		if e := &g.radii[i]; e.Offset != NoOffset {
			total += e.RadiusComponent.ClipToBounds(params[e.Offset : e.Offset+1])
		}
	}
	for i := range g.ellipticities {
		if e := &g.ellipticities[i]; e.Offset != NoOffset {
			total += e.EllipticityComponent.ClipToBounds(params[e.Offset : e.Offset+2])
		}
	}
	return total
}

// SumLogWeights returns the sum of the logs of every frame's pixel
// weights, the constant term linking weighted and unweighted
// likelihood normalizations. Non-positive weights contribute -Inf.
func (g *Grid) SumLogWeights() float64 {
	total := 0.0
	for i := range g.Frames {
		for _, w := range g.Frames[i].Weights {
			total += math.Log(w)
		}
	}
	return total
}
