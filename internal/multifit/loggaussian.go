package multifit

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// LogGaussian is the negative log likelihood as a function of the
// linear amplitude vector at a fixed point in parameter space:
//
//	q(a) = R + G·a + a'·F·a / 2
//
// R absorbs the data-only term, G is the gradient at a = 0 and F the
// constant curvature. Because the model is linear in the amplitudes, q
// is exactly quadratic and analytic amplitude marginalization is
// possible.
type LogGaussian struct {
	R float64
	G *mat.VecDense
	F *mat.SymDense
}

// NewLogGaussian allocates a zeroed quadratic of the given amplitude
// dimension.
func NewLogGaussian(dim int) LogGaussian {
	return LogGaussian{
		G: mat.NewVecDense(dim, nil),
		F: mat.NewSymDense(dim, nil),
	}
}

// Dim returns the amplitude dimension.
func (q *LogGaussian) Dim() int { return q.G.Len() }

// Eval evaluates the quadratic at an amplitude vector.
func (q *LogGaussian) Eval(a *mat.VecDense) (float64, error) {
	if a.Len() != q.Dim() {
		return 0, fmt.Errorf("amplitude vector has length %d, want %d", a.Len(), q.Dim())
	}
	var fa mat.VecDense
	fa.MulVec(q.F, a)
	return q.R + mat.Dot(q.G, a) + 0.5*mat.Dot(a, &fa), nil
}

// Minimum returns the amplitude vector minimizing the quadratic and
// the value there. F must be positive definite.
func (q *LogGaussian) Minimum() (*mat.VecDense, float64, error) {
	var chol mat.Cholesky
	if ok := chol.Factorize(q.F); !ok {
		return nil, 0, fmt.Errorf("amplitude curvature is not positive definite")
	}
	a := mat.NewVecDense(q.Dim(), nil)
	if err := chol.SolveVecTo(a, q.G); err != nil {
		return nil, 0, fmt.Errorf("solving for amplitude minimum: %w", err)
	}
	a.ScaleVec(-1, a)
	v, err := q.Eval(a)
	if err != nil {
		return nil, 0, err
	}
	return a, v, nil
}
