package shapelet

import (
	"math"

	"github.com/provingground-moe/meas-modelfit/internal/multifit/geom"
)

// Psf is a frame-level point-spread function. The fitter only ever
// needs the PSF evaluated locally around a single source, so the full
// spatially varying model stays behind this capability.
type Psf interface {
	// Localize evaluates the PSF at the given frame-pixel position,
	// returning its local Gaussian-moment approximation.
	Localize(p geom.Point) *LocalPsf
}

// LocalPsf is a PSF localized at one position, reduced to second
// moments. Convolution with a Gaussian basis is then moment addition.
type LocalPsf struct {
	Point   geom.Point
	Moments geom.Quadrupole
}

// GaussianPsf is a spatially constant Gaussian PSF.
type GaussianPsf struct {
	Moments geom.Quadrupole
}

// NewGaussianPsf builds a circular Gaussian PSF from its full width at
// half maximum in pixels.
func NewGaussianPsf(fwhm float64) *GaussianPsf {
	sigma := fwhm / (2 * math.Sqrt(2*math.Ln2))
	return &GaussianPsf{Moments: geom.Quadrupole{Ixx: sigma * sigma, Iyy: sigma * sigma}}
}

// Localize implements Psf.
func (p *GaussianPsf) Localize(pt geom.Point) *LocalPsf {
	return &LocalPsf{Point: pt, Moments: p.Moments}
}
