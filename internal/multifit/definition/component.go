package definition

import (
	"math"
	"sync/atomic"
)

// SharedID identifies a parameter component across objects. Two
// components with the same SharedID are the same degree of freedom;
// the zero value is invalid and rejected at grid compile time.
type SharedID int64

var sharedIDCounter atomic.Int64

// NextSharedID returns a fresh, process-unique component identity.
func NextSharedID() SharedID {
	return SharedID(sharedIDCounter.Add(1))
}

// Fixed dimensionalities of the three parameter component kinds.
const (
	PositionDim    = 2
	RadiusDim      = 1
	EllipticityDim = 2
)

// PositionComponent is a source center in sky coordinates.
type PositionComponent struct {
	ID     SharedID
	X, Y   float64
	Active bool

	// MaxOffset bounds the center to a disc of this radius around the
	// initial (RefX, RefY) position; zero means unbounded.
	MaxOffset  float64
	RefX, RefY float64
}

// NewPosition creates an active or fixed position component with a
// fresh identity. The initial value doubles as the bounds reference.
func NewPosition(x, y float64, active bool) *PositionComponent {
	return &PositionComponent{ID: NextSharedID(), X: x, Y: y, Active: active, RefX: x, RefY: y}
}

// CheckBounds reports whether a candidate value block (length 2) is
// within this component's bounds.
func (c *PositionComponent) CheckBounds(block []float64) bool {
	if c.MaxOffset <= 0 {
		return true
	}
	return math.Hypot(block[0]-c.RefX, block[1]-c.RefY) <= c.MaxOffset
}

// ClipToBounds projects a candidate value block onto the bounds,
// returning the distance moved as a soft-constraint penalty.
func (c *PositionComponent) ClipToBounds(block []float64) float64 {
	if c.MaxOffset <= 0 {
		return 0
	}
	dx, dy := block[0]-c.RefX, block[1]-c.RefY
	d := math.Hypot(dx, dy)
	if d <= c.MaxOffset {
		return 0
	}
	scale := c.MaxOffset / d
	block[0] = c.RefX + dx*scale
	block[1] = c.RefY + dy*scale
	return d - c.MaxOffset
}

// RadiusComponent is a source scale radius.
type RadiusComponent struct {
	ID     SharedID
	Value  float64
	Active bool

	// Bounds: radius must stay in [Min, Max]; Max zero means unbounded
	// above. Min defaults to zero (radii are never negative).
	Min, Max float64
}

// NewRadius creates an active or fixed radius component with a fresh
// identity.
func NewRadius(value float64, active bool) *RadiusComponent {
	return &RadiusComponent{ID: NextSharedID(), Value: value, Active: active}
}

// CheckBounds reports whether a candidate value block (length 1) is
// within this component's bounds.
func (c *RadiusComponent) CheckBounds(block []float64) bool {
	if block[0] < c.Min {
		return false
	}
	if c.Max > 0 && block[0] > c.Max {
		return false
	}
	return true
}

// ClipToBounds clamps a candidate value block to the bounds, returning
// the total adjustment magnitude.
func (c *RadiusComponent) ClipToBounds(block []float64) float64 {
	if block[0] < c.Min {
		d := c.Min - block[0]
		block[0] = c.Min
		return d
	}
	if c.Max > 0 && block[0] > c.Max {
		d := block[0] - c.Max
		block[0] = c.Max
		return d
	}
	return 0
}

// EllipticityComponent is a source shape as a conformal shear vector.
type EllipticityComponent struct {
	ID     SharedID
	E1, E2 float64
	Active bool

	// MaxNorm bounds |eta|; zero means unbounded.
	MaxNorm float64
}

// NewEllipticity creates an active or fixed ellipticity component with
// a fresh identity.
func NewEllipticity(e1, e2 float64, active bool) *EllipticityComponent {
	return &EllipticityComponent{ID: NextSharedID(), E1: e1, E2: e2, Active: active}
}

// CheckBounds reports whether a candidate value block (length 2) is
// within this component's bounds.
func (c *EllipticityComponent) CheckBounds(block []float64) bool {
	if c.MaxNorm <= 0 {
		return true
	}
	return math.Hypot(block[0], block[1]) <= c.MaxNorm
}

// ClipToBounds rescales a candidate value block onto the bounds,
// returning the norm reduction as the penalty.
func (c *EllipticityComponent) ClipToBounds(block []float64) float64 {
	if c.MaxNorm <= 0 {
		return 0
	}
	n := math.Hypot(block[0], block[1])
	if n <= c.MaxNorm {
		return 0
	}
	scale := c.MaxNorm / n
	block[0] *= scale
	block[1] *= scale
	return n - c.MaxNorm
}
