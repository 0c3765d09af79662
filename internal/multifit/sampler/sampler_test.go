package sampler

import (
	"context"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/provingground-moe/meas-modelfit/internal/multifit"
)

// gaussianObjective is a 1-D test target: a Gaussian over the single
// parameter with a trivial one-amplitude quadratic attached.
type gaussianObjective struct {
	mu, sigma float64
}

func (o gaussianObjective) ParameterCount() int   { return 1 }
func (o gaussianObjective) CoefficientCount() int { return 1 }

func (o gaussianObjective) Evaluate(params []float64) (multifit.LogGaussian, error) {
	q := multifit.NewLogGaussian(1)
	q.F.SetSym(0, 0, 1)
	d := (params[0] - o.mu) / o.sigma
	q.R = 0.5 * d * d
	return q, nil
}

func runSampler(t *testing.T, cfg Config, bounds Bounds) *multifit.SampleSet {
	t.Helper()
	obj := gaussianObjective{mu: 0.5, sigma: 0.3}
	cov := mat.NewSymDense(1, []float64{1})
	s, err := NewImportanceSampler([]float64{0}, cov, bounds, cfg)
	if err != nil {
		t.Fatalf("NewImportanceSampler: %v", err)
	}
	set := multifit.NewSampleSet(1, 1)
	if err := s.Run(context.Background(), obj, set); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := set.ApplyPrior(multifit.FlatPrior{}); err != nil {
		t.Fatalf("ApplyPrior: %v", err)
	}
	return set
}

func TestRecoversTargetMoments(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Samples = 4000
	set := runSampler(t, cfg, nil)
	if set.Len() != 4000 {
		t.Fatalf("set has %d points, want 4000", set.Len())
	}
	mean, err := set.ComputeMean(nil)
	if err != nil {
		t.Fatalf("ComputeMean: %v", err)
	}
	if math.Abs(mean.AtVec(0)-0.5) > 0.1 {
		t.Errorf("posterior mean = %v, want 0.5 within 0.1", mean.AtVec(0))
	}
	cov, err := set.ComputeCovariance(mean)
	if err != nil {
		t.Fatalf("ComputeCovariance: %v", err)
	}
	if got, want := cov.At(0, 0), 0.09; math.Abs(got-want) > 0.05 {
		t.Errorf("posterior variance = %v, want %v within 0.05", got, want)
	}
}

func TestSameSeedIsReproducible(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Samples = 50
	a := runSampler(t, cfg, nil)
	b := runSampler(t, cfg, nil)
	for i := range a.Points() {
		pa, pb := a.Points()[i], b.Points()[i]
		if pa.Parameters[0] != pb.Parameters[0] || pa.Weight != pb.Weight {
			t.Fatalf("draw %d differs between identical seeds", i)
		}
	}
}

type clampBounds struct{ lo, hi float64 }

func (b clampBounds) ClipToBounds(params []float64) float64 {
	p := params[0]
	switch {
	case p < b.lo:
		params[0] = b.lo
		return b.lo - p
	case p > b.hi:
		params[0] = b.hi
		return p - b.hi
	}
	return 0
}

func TestBoundsClipDraws(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Samples = 500
	set := runSampler(t, cfg, clampBounds{lo: -0.25, hi: 0.25})
	for i, p := range set.Points() {
		if p.Parameters[0] < -0.25 || p.Parameters[0] > 0.25 {
			t.Fatalf("draw %d escaped its bounds: %v", i, p.Parameters[0])
		}
	}
}

func TestRunChecksDimensions(t *testing.T) {
	cov := mat.NewSymDense(2, []float64{1, 0, 0, 1})
	s, err := NewImportanceSampler([]float64{0, 0}, cov, nil, DefaultConfig())
	if err != nil {
		t.Fatalf("NewImportanceSampler: %v", err)
	}
	set := multifit.NewSampleSet(2, 1)
	if err := s.Run(context.Background(), gaussianObjective{mu: 0, sigma: 1}, set); err == nil {
		t.Fatal("Run accepted a proposal/objective dimension mismatch")
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cov := mat.NewSymDense(1, []float64{1})
	s, err := NewImportanceSampler([]float64{0}, cov, nil, DefaultConfig())
	if err != nil {
		t.Fatalf("NewImportanceSampler: %v", err)
	}
	set := multifit.NewSampleSet(1, 1)
	if err := s.Run(ctx, gaussianObjective{mu: 0, sigma: 1}, set); err == nil {
		t.Fatal("Run ignored a cancelled context")
	}
}

func TestRejectsBadConfig(t *testing.T) {
	cov := mat.NewSymDense(1, []float64{1})
	if _, err := NewImportanceSampler([]float64{0}, cov, nil, Config{Samples: 0}); err == nil {
		t.Error("accepted zero samples")
	}
	bad := mat.NewSymDense(1, []float64{-1})
	if _, err := NewImportanceSampler([]float64{0}, bad, nil, Config{Samples: 10}); err == nil {
		t.Error("accepted an indefinite covariance")
	}
	if _, err := NewImportanceSampler([]float64{0, 0}, cov, nil, Config{Samples: 10}); err == nil {
		t.Error("accepted a mean/covariance size mismatch")
	}
}
