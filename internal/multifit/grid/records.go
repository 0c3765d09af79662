package grid

import (
	"github.com/provingground-moe/meas-modelfit/internal/multifit/definition"
	"github.com/provingground-moe/meas-modelfit/internal/multifit/geom"
	"github.com/provingground-moe/meas-modelfit/internal/multifit/shapelet"
)

// Frame is the compiled record for one exposure: the definition
// frame's footprint arrays plus the offsets and indices assigned
// during compilation.
type Frame struct {
	ID     int64
	Filter string

	PixelX  []float64
	PixelY  []float64
	Data    []float64
	Weights []float64

	Wcs geom.Wcs
	Psf shapelet.Psf

	// PixelOffset is the frame's start in the concatenated data
	// vector; FilterIndex is the dense first-seen filter index;
	// FrameIndex is the frame's position in compile order.
	PixelOffset int
	FilterIndex int
	FrameIndex  int
}

// PixelCount returns the number of footprint pixels.
func (f *Frame) PixelCount() int { return len(f.Data) }

// Object is the compiled record for one source: its coefficient block
// in the packed amplitude vector, handles to its deduplicated
// parameter elements, and the span of its per-frame Sources.
type Object struct {
	ID int64

	CoefficientOffset int
	CoefficientCount  int

	Position    *PositionElement
	Radius      *RadiusElement
	Ellipticity *EllipticityElement
	Basis       shapelet.Basis

	// Sources is this object's contiguous slice of the grid's source
	// slab, one entry per frame.
	Sources []Source
}

// MakeEllipse assembles the object's model ellipse from its elements,
// reading active components from params (the packed parameter vector)
// and inactive ones from their stored values. A nil params reads all
// stored values.
func (o *Object) MakeEllipse(params []float64) geom.Ellipse {
	var e geom.Ellipse
	e.Center.X, e.Center.Y = o.Position.values(params)
	if o.Radius != nil {
		e.Core.Radius = o.Radius.value(params)
	}
	if o.Ellipticity != nil {
		e.Core.E1, e.Core.E2 = o.Ellipticity.values(params)
	}
	return e
}

// Source is the per-(Frame, Object) projection: the transform from
// definition coordinates into the frame's pixel space, the frame's PSF
// localized at the object's center, and the basis as seen in that
// frame (convolved with the local PSF where both exist).
type Source struct {
	Frame  *Frame
	Object *Object

	Transform geom.Affine
	LocalPsf  *shapelet.LocalPsf
	Basis     shapelet.Basis
}

func newSource(frame *Frame, object *Object, wcs geom.Wcs) (Source, error) {
	s := Source{Frame: frame, Object: object, Transform: geom.Identity()}
	center := geom.Point{X: object.Position.X, Y: object.Position.Y}
	if wcs != nil {
		if frame.Wcs == nil {
			return Source{}, invalidDefinition("definition has a WCS but frame %d does not", frame.ID)
		}
		s.Transform = frame.Wcs.LinearizeSkyToPixel(center).Mul(wcs.LinearizePixelToSky(center))
	} else if frame.Wcs != nil {
		return Source{}, invalidDefinition("frame %d has a WCS but the definition does not", frame.ID)
	}
	if frame.Psf != nil {
		s.LocalPsf = frame.Psf.Localize(s.Transform.Apply(center))
	}
	switch {
	case object.Basis != nil && s.LocalPsf != nil:
		s.Basis = object.Basis.Convolve(s.LocalPsf)
	case object.Basis != nil:
		s.Basis = object.Basis
	case s.LocalPsf != nil:
		// Unresolved source: the frame's PSF is the model.
		s.Basis = shapelet.NewPsfBasis(s.LocalPsf)
	default:
		return Source{}, invalidDefinition(
			"object %d has no basis and frame %d has no PSF", object.ID, frame.ID)
	}
	return s, nil
}

// snapshotFrame copies a definition frame into a compiled record. The
// footprint slices are shared; the grid never mutates them.
func snapshotFrame(def *definition.Frame, pixelOffset, filterIndex, frameIndex int) Frame {
	return Frame{
		ID:          def.ID,
		Filter:      def.Filter,
		PixelX:      def.PixelX,
		PixelY:      def.PixelY,
		Data:        def.Data,
		Weights:     def.Weights,
		Wcs:         def.Wcs,
		Psf:         def.Psf,
		PixelOffset: pixelOffset,
		FilterIndex: filterIndex,
		FrameIndex:  frameIndex,
	}
}
