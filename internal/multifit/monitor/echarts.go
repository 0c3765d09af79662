package monitor

import (
	"fmt"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/provingground-moe/meas-modelfit/internal/multifit"
)

// RenderSampleScatter writes an interactive HTML scatter of two
// parameter components, each point carrying its importance weight as
// the third value. Points are downsampled by stride when the set is
// larger than maxPoints; pass 0 for the default cap.
func RenderSampleScatter(set *multifit.SampleSet, xIndex, yIndex, maxPoints int, path string) error {
	dim := set.ParameterDim()
	if xIndex < 0 || xIndex >= dim || yIndex < 0 || yIndex >= dim {
		return fmt.Errorf("scatter indices (%d, %d) out of range [0, %d)", xIndex, yIndex, dim)
	}
	if set.Len() == 0 {
		return fmt.Errorf("nothing to plot: sample set is empty")
	}
	if maxPoints <= 0 {
		maxPoints = 8000
	}
	stride := 1
	if set.Len() > maxPoints {
		stride = int(math.Ceil(float64(set.Len()) / float64(maxPoints)))
	}

	points := set.Points()
	data := make([]opts.ScatterData, 0, set.Len()/stride+1)
	for i := 0; i < len(points); i += stride {
		p := &points[i]
		data = append(data, opts.ScatterData{
			Value: []interface{}{p.Parameters[xIndex], p.Parameters[yIndex], p.Weight},
		})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "posterior samples",
			Subtitle: fmt.Sprintf("parameter %d vs %d, %d of %d points", xIndex, yIndex, len(data), set.Len()),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: fmt.Sprintf("p%d", xIndex), NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: fmt.Sprintf("p%d", yIndex), NameLocation: "middle", NameGap: 30}),
	)
	scatter.AddSeries("samples", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create scatter output: %w", err)
	}
	defer f.Close()
	if err := scatter.Render(f); err != nil {
		return fmt.Errorf("render scatter: %w", err)
	}
	return nil
}
