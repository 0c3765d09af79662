package shapelet

import (
	"fmt"
	"math"

	"github.com/provingground-moe/meas-modelfit/internal/multifit/geom"
	"gonum.org/v1/gonum/mat"
)

// Basis is a parametrized family of surface-brightness shape functions
// whose linear combination models a source. The basis is evaluated for
// a concrete ellipse by a MatrixBuilder; Convolve returns the basis as
// seen through a localized PSF.
//
// The set of implementations is closed within this package.
type Basis interface {
	// Size is the number of shape functions (model matrix columns).
	Size() int

	// Convolve returns a basis representing this one convolved with
	// the given local PSF.
	Convolve(psf *LocalPsf) Basis

	fill(dst *mat.Dense, x, y []float64, e geom.Ellipse) error
}

// GaussianBasis is a multi-Gaussian profile basis: each component is an
// elliptical Gaussian sharing the model ellipse's shear and center,
// with its radius scaled by a fixed per-component ratio. A single
// component with ratio 1 is a plain Gaussian profile; several ratios
// approximate extended profiles the way multi-Gaussian expansions do.
type GaussianBasis struct {
	ratios []float64
	psf    *geom.Quadrupole
}

// NewGaussianBasis builds a basis with one component per radius ratio.
func NewGaussianBasis(ratios ...float64) *GaussianBasis {
	if len(ratios) == 0 {
		ratios = []float64{1.0}
	}
	out := make([]float64, len(ratios))
	copy(out, ratios)
	return &GaussianBasis{ratios: out}
}

// Size implements Basis.
func (b *GaussianBasis) Size() int { return len(b.ratios) }

// Convolve implements Basis. The returned basis adds the PSF moments to
// every component at evaluation time.
func (b *GaussianBasis) Convolve(psf *LocalPsf) Basis {
	m := psf.Moments
	if b.psf != nil {
		m = m.Convolve(*b.psf)
	}
	return &GaussianBasis{ratios: b.ratios, psf: &m}
}

func (b *GaussianBasis) fill(dst *mat.Dense, x, y []float64, e geom.Ellipse) error {
	for j, ratio := range b.ratios {
		core := e.Core
		core.Radius *= ratio
		q := core.Quadrupole()
		if b.psf != nil {
			q = q.Convolve(*b.psf)
		}
		if err := fillGaussianColumn(dst, j, x, y, e.Center, q); err != nil {
			return fmt.Errorf("component %d: %w", j, err)
		}
	}
	return nil
}

// PsfBasis models an unresolved source: a delta function seen through
// the local PSF, so its single shape function is the PSF itself placed
// at the model ellipse's center. The ellipse core is ignored.
type PsfBasis struct {
	moments geom.Quadrupole
}

// NewPsfBasis builds the point-source basis for a localized PSF.
func NewPsfBasis(psf *LocalPsf) *PsfBasis {
	return &PsfBasis{moments: psf.Moments}
}

// Size implements Basis.
func (b *PsfBasis) Size() int { return 1 }

// Convolve implements Basis; a delta function convolved twice is the
// moment sum.
func (b *PsfBasis) Convolve(psf *LocalPsf) Basis {
	return &PsfBasis{moments: b.moments.Convolve(psf.Moments)}
}

func (b *PsfBasis) fill(dst *mat.Dense, x, y []float64, e geom.Ellipse) error {
	return fillGaussianColumn(dst, 0, x, y, e.Center, b.moments)
}

// fillGaussianColumn evaluates a unit-flux elliptical Gaussian with the
// given moments at every pixel, writing column j of dst.
func fillGaussianColumn(dst *mat.Dense, j int, x, y []float64, center geom.Point, q geom.Quadrupole) error {
	det := q.Det()
	if det <= 0 || math.IsNaN(det) {
		return fmt.Errorf("degenerate gaussian moments (det=%v)", det)
	}
	norm := 1.0 / (2 * math.Pi * math.Sqrt(det))
	for i := range x {
		ux := x[i] - center.X
		uy := y[i] - center.Y
		arg := (ux*ux*q.Iyy - 2*ux*uy*q.Ixy + uy*uy*q.Ixx) / det
		dst.Set(i, j, norm*math.Exp(-0.5*arg))
	}
	return nil
}
