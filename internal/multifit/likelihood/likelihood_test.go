package likelihood

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/provingground-moe/meas-modelfit/internal/multifit/definition"
	"github.com/provingground-moe/meas-modelfit/internal/multifit/grid"
	"github.com/provingground-moe/meas-modelfit/internal/multifit/shapelet"
)

// buildScene compiles a one-frame, one-object grid whose data is an
// exact basis model with the given amplitude.
func buildScene(t *testing.T, amplitude float64, weights func(i int) float64) (*grid.Grid, []float64) {
	t.Helper()
	side := 15
	n := side * side
	f := &definition.Frame{
		ID:      1,
		Filter:  "r",
		PixelX:  make([]float64, n),
		PixelY:  make([]float64, n),
		Data:    make([]float64, n),
		Weights: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		f.PixelX[i] = float64(i % side)
		f.PixelY[i] = float64(i / side)
		f.Weights[i] = weights(i)
	}
	def := definition.New(nil)
	if err := def.AddFrame(f); err != nil {
		t.Fatalf("AddFrame: %v", err)
	}
	obj := &definition.Object{
		ID:       1,
		Position: definition.NewPosition(7, 7, true),
		Radius:   definition.NewRadius(2.0, false),
		Basis:    shapelet.NewGaussianBasis(1.0),
	}
	if err := def.AddObject(obj); err != nil {
		t.Fatalf("AddObject: %v", err)
	}
	g, err := grid.New(def)
	if err != nil {
		t.Fatalf("grid.New: %v", err)
	}

	params := make([]float64, g.ParameterCount())
	if err := g.WriteParameters(params); err != nil {
		t.Fatalf("WriteParameters: %v", err)
	}

	// Render the noiseless model into the frame data.
	b, err := shapelet.NewMatrixBuilder(g.Objects[0].Sources[0].Basis, f.PixelX, f.PixelY)
	if err != nil {
		t.Fatalf("NewMatrixBuilder: %v", err)
	}
	m := mat.NewDense(n, 1, nil)
	if err := b.Build(m, g.Objects[0].MakeEllipse(params)); err != nil {
		t.Fatalf("Build: %v", err)
	}
	for i := 0; i < n; i++ {
		f.Data[i] = amplitude * m.At(i, 0)
	}
	return g, params
}

func TestEvaluateRecoversAmplitude(t *testing.T) {
	const amplitude = 3.5
	g, params := buildScene(t, amplitude, func(int) float64 { return 1.0 })
	l, err := FromGrid(g, DefaultConfig())
	if err != nil {
		t.Fatalf("FromGrid: %v", err)
	}
	q, err := l.Evaluate(params)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	a, min, err := q.Minimum()
	if err != nil {
		t.Fatalf("Minimum: %v", err)
	}
	if math.Abs(a.AtVec(0)-amplitude) > 1e-9 {
		t.Errorf("best-fit amplitude = %v, want %v", a.AtVec(0), amplitude)
	}
	// Noiseless data: the residual at the minimum vanishes.
	if math.Abs(min) > 1e-9 {
		t.Errorf("minimum value = %v, want 0", min)
	}
}

func TestNonUniformWeightsStillRecoverAmplitude(t *testing.T) {
	const amplitude = 2.0
	g, params := buildScene(t, amplitude, func(i int) float64 { return 1.0 + 0.01*float64(i%7) })
	l, err := FromGrid(g, DefaultConfig())
	if err != nil {
		t.Fatalf("FromGrid: %v", err)
	}
	q, err := l.Evaluate(params)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	a, _, err := q.Minimum()
	if err != nil {
		t.Fatalf("Minimum: %v", err)
	}
	if math.Abs(a.AtVec(0)-amplitude) > 1e-9 {
		t.Errorf("best-fit amplitude = %v, want %v", a.AtVec(0), amplitude)
	}
}

func TestGeometricMeanWeightCollapse(t *testing.T) {
	g, params := buildScene(t, 1.0, func(i int) float64 {
		if i%2 == 0 {
			return 2.0
		}
		return 0.5
	})
	cfg := DefaultConfig()
	cfg.UsePixelWeights = false
	l, err := FromGrid(g, cfg)
	if err != nil {
		t.Fatalf("FromGrid: %v", err)
	}
	q, err := l.Evaluate(params)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	a, _, err := q.Minimum()
	if err != nil {
		t.Fatalf("Minimum: %v", err)
	}
	// Uniform weights cancel from the normal equations entirely.
	if math.Abs(a.AtVec(0)-1.0) > 1e-9 {
		t.Errorf("best-fit amplitude = %v, want 1", a.AtVec(0))
	}
}

func TestRejectsNonPositiveWeights(t *testing.T) {
	g, _ := buildScene(t, 1.0, func(i int) float64 {
		if i == 3 {
			return 0
		}
		return 1
	})
	if _, err := FromGrid(g, DefaultConfig()); err == nil {
		t.Fatal("FromGrid accepted a zero pixel weight")
	}
}

func TestFluxScalingScalesAmplitude(t *testing.T) {
	const amplitude = 1.0
	g, params := buildScene(t, amplitude, func(int) float64 { return 1.0 })
	cfg := DefaultConfig()
	cfg.EpochFluxMag0 = map[int64]float64{1: cfg.FluxMag0 * 2}
	l, err := FromGrid(g, cfg)
	if err != nil {
		t.Fatalf("FromGrid: %v", err)
	}
	q, err := l.Evaluate(params)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	a, _, err := q.Minimum()
	if err != nil {
		t.Fatalf("Minimum: %v", err)
	}
	// Columns were scaled by 1/2, so the fitted amplitude doubles.
	if math.Abs(a.AtVec(0)-2*amplitude) > 1e-9 {
		t.Errorf("best-fit amplitude = %v, want %v", a.AtVec(0), 2*amplitude)
	}
}

func TestEvaluateParameterLengthCheck(t *testing.T) {
	g, _ := buildScene(t, 1.0, func(int) float64 { return 1.0 })
	l, err := FromGrid(g, DefaultConfig())
	if err != nil {
		t.Fatalf("FromGrid: %v", err)
	}
	if _, err := l.Evaluate(make([]float64, 99)); err == nil {
		t.Fatal("Evaluate accepted a wrong-length parameter vector")
	}
}
