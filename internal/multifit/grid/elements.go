package grid

import (
	"github.com/provingground-moe/meas-modelfit/internal/multifit/definition"
)

// NoOffset is the offset sentinel carried by inactive elements.
const NoOffset = -1

// PositionElement is a deduplicated position degree of freedom: the
// component snapshot plus its block offset in the packed parameter
// vector (NoOffset when inactive).
type PositionElement struct {
	definition.PositionComponent
	Offset int
}

// RadiusElement is a deduplicated radius degree of freedom.
type RadiusElement struct {
	definition.RadiusComponent
	Offset int
}

// EllipticityElement is a deduplicated ellipticity degree of freedom.
type EllipticityElement struct {
	definition.EllipticityComponent
	Offset int
}

// values reads the element's effective value: the packed vector block
// when the element is active and a vector is supplied, the stored
// component value otherwise.
func (e *PositionElement) values(params []float64) (x, y float64) {
	if params != nil && e.Offset != NoOffset {
		return params[e.Offset], params[e.Offset+1]
	}
	return e.X, e.Y
}

func (e *RadiusElement) value(params []float64) float64 {
	if params != nil && e.Offset != NoOffset {
		return params[e.Offset]
	}
	return e.Value
}

func (e *EllipticityElement) values(params []float64) (e1, e2 float64) {
	if params != nil && e.Offset != NoOffset {
		return params[e.Offset], params[e.Offset+1]
	}
	return e.E1, e.E2
}
