// Package sampler draws nonlinear parameter points from a proposal
// density, evaluates an objective at each, and fills a sample set with
// importance-weighted points.
package sampler

import (
	"context"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/provingground-moe/meas-modelfit/internal/monitoring"
	"github.com/provingground-moe/meas-modelfit/internal/multifit"
)

// Objective is anything that can evaluate the amplitude-conditioned
// likelihood at a parameter point.
type Objective interface {
	ParameterCount() int
	CoefficientCount() int
	Evaluate(params []float64) (multifit.LogGaussian, error)
}

// Bounds clips a parameter vector into its feasible region in place,
// returning the adjustment magnitude as a soft penalty.
type Bounds interface {
	ClipToBounds(params []float64) float64
}

// Config controls a sampling run.
type Config struct {
	// Samples is the number of importance draws.
	Samples int

	// Seed feeds the proposal's PCG generator; runs with the same seed
	// and proposal are reproducible.
	Seed uint64

	// PenaltyScale multiplies bound-clip distances before they are
	// added to the objective, softly discouraging the proposal from
	// leaning on the constraint surface.
	PenaltyScale float64
}

// DefaultConfig returns a run of 2000 draws with a fixed seed.
func DefaultConfig() Config {
	return Config{Samples: 2000, Seed: 1, PenaltyScale: 1.0}
}

// ImportanceSampler draws from a fixed multivariate normal proposal.
type ImportanceSampler struct {
	proposal *distmv.Normal
	bounds   Bounds
	cfg      Config
}

// NewImportanceSampler builds a sampler with a Gaussian proposal
// centered on mean with the given covariance. bounds may be nil when
// the parameters are unconstrained.
func NewImportanceSampler(mean []float64, cov *mat.SymDense, bounds Bounds, cfg Config) (*ImportanceSampler, error) {
	if cfg.Samples <= 0 {
		return nil, fmt.Errorf("sample count %d is not positive", cfg.Samples)
	}
	if cov.SymmetricDim() != len(mean) {
		return nil, fmt.Errorf("proposal covariance is %d square, want %d", cov.SymmetricDim(), len(mean))
	}
	src := rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)
	proposal, ok := distmv.NewNormal(mean, cov, src)
	if !ok {
		return nil, fmt.Errorf("proposal covariance is not positive definite")
	}
	return &ImportanceSampler{proposal: proposal, bounds: bounds, cfg: cfg}, nil
}

// Run draws the configured number of points, evaluates the objective
// at each, and adds them to the set. Clipped draws carry their scaled
// penalty in the joint's constant term. The context is checked between
// draws so long runs can be cancelled.
func (s *ImportanceSampler) Run(ctx context.Context, obj Objective, set *multifit.SampleSet) error {
	if dim := s.proposal.Dim(); dim != obj.ParameterCount() {
		return fmt.Errorf("proposal dimension %d does not match objective parameter count %d", dim, obj.ParameterCount())
	}
	if set.ParameterDim() != obj.ParameterCount() || set.CoefficientDim() != obj.CoefficientCount() {
		return fmt.Errorf("sample set dimensions (%d, %d) do not match objective (%d, %d)",
			set.ParameterDim(), set.CoefficientDim(), obj.ParameterCount(), obj.CoefficientCount())
	}
	set.Reserve(s.cfg.Samples)
	for i := 0; i < s.cfg.Samples; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		params := s.proposal.Rand(nil)
		penalty := 0.0
		if s.bounds != nil {
			penalty = s.bounds.ClipToBounds(params)
		}
		logq := s.proposal.LogProb(params)
		joint, err := obj.Evaluate(params)
		if err != nil {
			return fmt.Errorf("draw %d: %w", i, err)
		}
		joint.R += s.cfg.PenaltyScale * penalty
		if err := set.Add(multifit.SamplePoint{
			Parameters:  params,
			Joint:       joint,
			LogProposal: logq,
		}); err != nil {
			return fmt.Errorf("draw %d: %w", i, err)
		}
		if (i+1)%1000 == 0 {
			monitoring.Logf("sampler: %d/%d draws", i+1, s.cfg.Samples)
		}
	}
	return nil
}
