package definition

import (
	"fmt"
	"sort"

	"github.com/provingground-moe/meas-modelfit/internal/multifit/geom"
	"github.com/provingground-moe/meas-modelfit/internal/multifit/shapelet"
)

// Frame describes one exposure's contribution to the fit: the
// flattened footprint pixels (coordinates, data, inverse-sigma
// weights), the filter the exposure was taken in, and optionally a WCS
// and PSF.
type Frame struct {
	ID     int64
	Filter string

	// Flattened footprint arrays, all the same length.
	PixelX  []float64
	PixelY  []float64
	Data    []float64
	Weights []float64

	Wcs geom.Wcs     // nil when the definition carries no WCS
	Psf shapelet.Psf // nil when the exposure has no PSF model
}

// PixelCount returns the number of footprint pixels.
func (f *Frame) PixelCount() int { return len(f.Data) }

// Validate checks the frame's internal consistency.
func (f *Frame) Validate() error {
	n := len(f.Data)
	if len(f.PixelX) != n || len(f.PixelY) != n || len(f.Weights) != n {
		return fmt.Errorf("frame %d: footprint arrays disagree on length (x=%d y=%d data=%d weights=%d)",
			f.ID, len(f.PixelX), len(f.PixelY), n, len(f.Weights))
	}
	return nil
}

// Object describes one astrophysical source: its parameter components
// and an optional surface-brightness basis. A nil basis means the
// source is unresolved and will be modeled by each frame's PSF.
type Object struct {
	ID          int64
	Position    *PositionComponent
	Radius      *RadiusComponent
	Ellipticity *EllipticityComponent
	Basis       shapelet.Basis
}

// CoefficientCount returns the number of linear amplitudes this object
// contributes: the basis size, or one for an unresolved source.
func (o *Object) CoefficientCount() int {
	if o.Basis != nil {
		return o.Basis.Size()
	}
	return 1
}

// Validate checks that required components are present and carry valid
// identities.
func (o *Object) Validate() error {
	if o.Position == nil {
		return fmt.Errorf("object %d: position component is required", o.ID)
	}
	if o.Position.ID == 0 {
		return fmt.Errorf("object %d: position component has no identity", o.ID)
	}
	if o.Radius != nil && o.Radius.ID == 0 {
		return fmt.Errorf("object %d: radius component has no identity", o.ID)
	}
	if o.Ellipticity != nil && o.Ellipticity.ID == 0 {
		return fmt.Errorf("object %d: ellipticity component has no identity", o.ID)
	}
	return nil
}

// Definition is the user-level model: a WCS shared by the fit (or nil
// for a purely pixel-space fit), plus frame and object sets kept
// sorted by ID.
type Definition struct {
	Wcs     geom.Wcs
	Frames  []*Frame
	Objects []*Object
}

// New creates an empty Definition with an optional fit WCS.
func New(wcs geom.Wcs) *Definition {
	return &Definition{Wcs: wcs}
}

// AddFrame inserts a frame, keeping the set sorted by ID. Duplicate IDs
// are rejected.
func (d *Definition) AddFrame(f *Frame) error {
	if err := f.Validate(); err != nil {
		return err
	}
	i := sort.Search(len(d.Frames), func(i int) bool { return d.Frames[i].ID >= f.ID })
	if i < len(d.Frames) && d.Frames[i].ID == f.ID {
		return fmt.Errorf("duplicate frame ID %d", f.ID)
	}
	d.Frames = append(d.Frames, nil)
	copy(d.Frames[i+1:], d.Frames[i:])
	d.Frames[i] = f
	return nil
}

// AddObject inserts an object, keeping the set sorted by ID. Duplicate
// IDs are rejected.
func (d *Definition) AddObject(o *Object) error {
	if err := o.Validate(); err != nil {
		return err
	}
	i := sort.Search(len(d.Objects), func(i int) bool { return d.Objects[i].ID >= o.ID })
	if i < len(d.Objects) && d.Objects[i].ID == o.ID {
		return fmt.Errorf("duplicate object ID %d", o.ID)
	}
	d.Objects = append(d.Objects, nil)
	copy(d.Objects[i+1:], d.Objects[i:])
	d.Objects[i] = o
	return nil
}
