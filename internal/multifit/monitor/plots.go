// Package monitor renders diagnostics for fitting runs: static trace
// and weight plots for reports, and an interactive HTML scatter for
// poking at posteriors in a browser.
package monitor

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/provingground-moe/meas-modelfit/internal/multifit"
)

// TracePlot writes a PNG of one parameter's value across the sample
// sequence, a quick visual check that the proposal covered the
// posterior rather than wandering off it.
func TracePlot(set *multifit.SampleSet, paramIndex int, path string) error {
	if paramIndex < 0 || paramIndex >= set.ParameterDim() {
		return fmt.Errorf("parameter index %d out of range [0, %d)", paramIndex, set.ParameterDim())
	}
	if set.Len() == 0 {
		return fmt.Errorf("nothing to plot: sample set is empty")
	}
	pts := make(plotter.XYs, set.Len())
	for i := range set.Points() {
		pts[i] = plotter.XY{X: float64(i), Y: set.Points()[i].Parameters[paramIndex]}
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("parameter %d trace", paramIndex)
	p.X.Label.Text = "sample"
	p.Y.Label.Text = "value"
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("build trace line: %w", err)
	}
	p.Add(line)
	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save trace plot: %w", err)
	}
	return nil
}

// WeightHistogram writes a PNG of the normalized importance weights.
// A healthy run shows most of the mass spread over many samples; a
// spike at one weight means the proposal missed.
func WeightHistogram(set *multifit.SampleSet, bins int, path string) error {
	if set.Len() == 0 {
		return fmt.Errorf("nothing to plot: sample set is empty")
	}
	if bins <= 0 {
		bins = 32
	}
	weights := make(plotter.Values, set.Len())
	for i := range set.Points() {
		weights[i] = set.Points()[i].Weight
	}
	p := plot.New()
	p.Title.Text = "importance weights"
	p.X.Label.Text = "weight"
	p.Y.Label.Text = "count"
	hist, err := plotter.NewHist(weights, bins)
	if err != nil {
		return fmt.Errorf("build weight histogram: %w", err)
	}
	p.Add(hist)
	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save weight histogram: %w", err)
	}
	return nil
}
