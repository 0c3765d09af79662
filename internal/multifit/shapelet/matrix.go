package shapelet

import (
	"fmt"

	"github.com/provingground-moe/meas-modelfit/internal/multifit/geom"
	"gonum.org/v1/gonum/mat"
)

// MatrixBuilder evaluates one basis over a fixed set of footprint
// pixels, producing design-matrix columns for a given ellipse. The
// pixel coordinates are bound at construction so repeated builds during
// sampling reuse them.
type MatrixBuilder struct {
	basis Basis
	x, y  []float64
}

// NewMatrixBuilder binds a basis to footprint pixel coordinates.
func NewMatrixBuilder(basis Basis, x, y []float64) (*MatrixBuilder, error) {
	if basis == nil {
		return nil, fmt.Errorf("matrix builder requires a basis")
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("pixel coordinate length mismatch: %d x vs %d y", len(x), len(y))
	}
	return &MatrixBuilder{basis: basis, x: x, y: y}, nil
}

// BasisSize returns the number of columns a build produces.
func (b *MatrixBuilder) BasisSize() int { return b.basis.Size() }

// PixelCount returns the number of rows a build produces.
func (b *MatrixBuilder) PixelCount() int { return len(b.x) }

// Build fills dst with the basis evaluated at the bound pixels for the
// given ellipse. dst must be PixelCount() by BasisSize().
func (b *MatrixBuilder) Build(dst *mat.Dense, e geom.Ellipse) error {
	r, c := dst.Dims()
	if r != len(b.x) || c != b.basis.Size() {
		return fmt.Errorf("model matrix block is %dx%d, want %dx%d", r, c, len(b.x), b.basis.Size())
	}
	return b.basis.fill(dst, b.x, b.y, e)
}
