package monitor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/provingground-moe/meas-modelfit/internal/multifit"
)

func newTestSet(t *testing.T, n int) *multifit.SampleSet {
	t.Helper()
	set := multifit.NewSampleSet(2, 1)
	for i := 0; i < n; i++ {
		joint := multifit.NewLogGaussian(1)
		joint.F.SetSym(0, 0, 1)
		joint.R = 0.01 * float64(i%13)
		if err := set.Add(multifit.SamplePoint{
			Parameters: []float64{float64(i) * 0.1, float64(n-i) * 0.1},
			Joint:      joint,
		}); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if _, err := set.ApplyPrior(multifit.FlatPrior{}); err != nil {
		t.Fatalf("ApplyPrior: %v", err)
	}
	return set
}

func TestTracePlot(t *testing.T) {
	set := newTestSet(t, 40)
	path := filepath.Join(t.TempDir(), "trace.png")
	if err := TracePlot(set, 0, path); err != nil {
		t.Fatalf("TracePlot: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}
	if info.Size() == 0 {
		t.Error("trace plot is empty")
	}
	if err := TracePlot(set, 9, path); err == nil {
		t.Error("TracePlot accepted an out-of-range index")
	}
}

func TestWeightHistogram(t *testing.T) {
	set := newTestSet(t, 40)
	path := filepath.Join(t.TempDir(), "weights.png")
	if err := WeightHistogram(set, 0, path); err != nil {
		t.Fatalf("WeightHistogram: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}
	if info.Size() == 0 {
		t.Error("weight histogram is empty")
	}
}

func TestRenderSampleScatter(t *testing.T) {
	set := newTestSet(t, 40)
	path := filepath.Join(t.TempDir(), "scatter.html")
	if err := RenderSampleScatter(set, 0, 1, 0, path); err != nil {
		t.Fatalf("RenderSampleScatter: %v", err)
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(blob), "echarts") {
		t.Error("scatter output does not look like an echarts page")
	}
	if err := RenderSampleScatter(set, 0, 5, 0, path); err == nil {
		t.Error("RenderSampleScatter accepted an out-of-range index")
	}
}

func TestEmptySetRejected(t *testing.T) {
	set := multifit.NewSampleSet(2, 1)
	dir := t.TempDir()
	if err := TracePlot(set, 0, filepath.Join(dir, "t.png")); err == nil {
		t.Error("TracePlot accepted an empty set")
	}
	if err := WeightHistogram(set, 0, filepath.Join(dir, "w.png")); err == nil {
		t.Error("WeightHistogram accepted an empty set")
	}
	if err := RenderSampleScatter(set, 0, 1, 0, filepath.Join(dir, "s.html")); err == nil {
		t.Error("RenderSampleScatter accepted an empty set")
	}
}
