// Package likelihood reduces a compiled grid plus pixel data to the
// amplitude-conditioned quadratic the sampler needs: at each nonlinear
// parameter point it builds the weighted model matrix over every
// (frame, object) projection and forms the normal equations against
// the weighted data vector.
package likelihood

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/provingground-moe/meas-modelfit/internal/multifit"
	"github.com/provingground-moe/meas-modelfit/internal/multifit/grid"
	"github.com/provingground-moe/meas-modelfit/internal/multifit/shapelet"
	"github.com/provingground-moe/meas-modelfit/internal/units"
)

// Config controls weighting and photometric scaling.
type Config struct {
	// UsePixelWeights applies each pixel's own inverse-sigma weight.
	// When false, every pixel in a frame gets the frame's geometric
	// mean weight instead, which keeps the per-frame chi-squared
	// normalization while flattening pixel-to-pixel variation.
	UsePixelWeights bool

	// FluxMag0 is the fit frame's photometric zero point; epoch model
	// columns are scaled by the ratio of this to the epoch zero point.
	FluxMag0 float64

	// EpochFluxMag0 maps frame IDs to their zero points. Frames absent
	// from the map use FluxMag0 (no rescaling).
	EpochFluxMag0 map[int64]float64
}

// DefaultConfig returns per-pixel weighting with a shared zero point.
func DefaultConfig() Config {
	return Config{UsePixelWeights: true, FluxMag0: units.FluxMag0}
}

// sourceTerm is one (frame, object) projection prepared for repeated
// evaluation: the builder over the frame's footprint and the constant
// scale folded into its model columns.
type sourceTerm struct {
	source  *grid.Source
	builder *shapelet.MatrixBuilder
	scale   float64
}

// Projected is an evaluable likelihood over a compiled grid. It is
// safe for concurrent Evaluate calls: per-call scratch is allocated
// per invocation and the prepared state is read-only.
type Projected struct {
	grid  *grid.Grid
	data  *mat.VecDense // weighted data, concatenated in frame order
	wts   []float64     // effective per-pixel weights
	terms []sourceTerm
}

// FromGrid prepares a likelihood over the grid's frames and objects.
func FromGrid(g *grid.Grid, cfg Config) (*Projected, error) {
	l := &Projected{
		grid: g,
		data: mat.NewVecDense(g.PixelCount(), nil),
		wts:  make([]float64, g.PixelCount()),
	}
	for i := range g.Frames {
		f := &g.Frames[i]
		if err := fillFrameWeights(l.wts[f.PixelOffset:f.PixelOffset+f.PixelCount()], f, cfg); err != nil {
			return nil, err
		}
		for j, d := range f.Data {
			l.data.SetVec(f.PixelOffset+j, d*l.wts[f.PixelOffset+j])
		}
	}
	for i := range g.Objects {
		obj := &g.Objects[i]
		for j := range obj.Sources {
			s := &obj.Sources[j]
			b, err := shapelet.NewMatrixBuilder(s.Basis, s.Frame.PixelX, s.Frame.PixelY)
			if err != nil {
				return nil, fmt.Errorf("object %d, frame %d: %w", obj.ID, s.Frame.ID, err)
			}
			scale := 1.0
			if cfg.FluxMag0 > 0 {
				epoch := cfg.FluxMag0
				if m, ok := cfg.EpochFluxMag0[s.Frame.ID]; ok {
					epoch = m
				}
				scale = units.FluxScaling(cfg.FluxMag0, epoch)
			}
			l.terms = append(l.terms, sourceTerm{source: s, builder: b, scale: scale})
		}
	}
	return l, nil
}

func fillFrameWeights(dst []float64, f *grid.Frame, cfg Config) error {
	for _, w := range f.Weights {
		if w <= 0 || math.IsNaN(w) {
			return fmt.Errorf("frame %d has non-positive pixel weight %v", f.ID, w)
		}
	}
	if cfg.UsePixelWeights {
		copy(dst, f.Weights)
		return nil
	}
	logSum := 0.0
	for _, w := range f.Weights {
		logSum += math.Log(w)
	}
	mean := math.Exp(logSum / float64(len(f.Weights)))
	for i := range dst {
		dst[i] = mean
	}
	return nil
}

// PixelCount returns the concatenated data vector length.
func (l *Projected) PixelCount() int { return l.grid.PixelCount() }

// CoefficientCount returns the amplitude dimension.
func (l *Projected) CoefficientCount() int { return l.grid.CoefficientCount() }

// ParameterCount returns the nonlinear parameter dimension.
func (l *Projected) ParameterCount() int { return l.grid.ParameterCount() }

// ComputeModelMatrix fills the weighted model matrix at a parameter
// point: rows are concatenated frame pixels, columns the packed
// amplitudes. dst must be PixelCount by CoefficientCount.
func (l *Projected) ComputeModelMatrix(dst *mat.Dense, params []float64) error {
	rows, cols := dst.Dims()
	if rows != l.PixelCount() || cols != l.CoefficientCount() {
		return fmt.Errorf("model matrix is %dx%d, want %dx%d", rows, cols, l.PixelCount(), l.CoefficientCount())
	}
	dst.Zero()
	for _, term := range l.terms {
		s := term.source
		e := s.Object.MakeEllipse(params).Transform(s.Transform)
		block := dst.Slice(
			s.Frame.PixelOffset, s.Frame.PixelOffset+s.Frame.PixelCount(),
			s.Object.CoefficientOffset, s.Object.CoefficientOffset+s.Object.CoefficientCount,
		).(*mat.Dense)
		if err := term.builder.Build(block, e); err != nil {
			return fmt.Errorf("object %d, frame %d: %w", s.Object.ID, s.Frame.ID, err)
		}
		if term.scale != 1.0 {
			block.Scale(term.scale, block)
		}
	}
	// Weight rows after all blocks are in place.
	for i, w := range l.wts {
		if w == 1.0 {
			continue
		}
		for j := 0; j < cols; j++ {
			dst.Set(i, j, dst.At(i, j)*w)
		}
	}
	return nil
}

// Evaluate reduces the weighted linear model at a parameter point to
// its quadratic in the amplitudes:
//
//	r = d'·d / 2,  g = -M'·d,  F = M'·M
//
// with d the weighted data and M the weighted model matrix.
func (l *Projected) Evaluate(params []float64) (multifit.LogGaussian, error) {
	if len(params) != l.ParameterCount() {
		return multifit.LogGaussian{}, fmt.Errorf("parameter vector has length %d, want %d", len(params), l.ParameterCount())
	}
	m := mat.NewDense(l.PixelCount(), l.CoefficientCount(), nil)
	if err := l.ComputeModelMatrix(m, params); err != nil {
		return multifit.LogGaussian{}, err
	}
	q := multifit.NewLogGaussian(l.CoefficientCount())
	q.R = 0.5 * mat.Dot(l.data, l.data)
	q.G.MulVec(m.T(), l.data)
	q.G.ScaleVec(-1, q.G)
	q.F.SymOuterK(1, m.T())
	return q, nil
}
