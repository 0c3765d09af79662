package model

import (
	"testing"

	"github.com/provingground-moe/meas-modelfit/internal/multifit/definition"
	"github.com/provingground-moe/meas-modelfit/internal/multifit/geom"
	"github.com/provingground-moe/meas-modelfit/internal/multifit/grid"
	"github.com/provingground-moe/meas-modelfit/internal/multifit/shapelet"
)

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"point", "gaussian"} {
		m, err := r.Lookup(name)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", name, err)
		}
		if m.Name() != name {
			t.Errorf("Lookup(%q).Name() = %q", name, m.Name())
		}
	}
	if _, err := r.Lookup("sersic"); err == nil {
		t.Error("Lookup accepted an unregistered name")
	}
}

func TestModelsCompile(t *testing.T) {
	frame := &definition.Frame{
		ID:      1,
		Filter:  "r",
		PixelX:  []float64{0, 1, 2},
		PixelY:  []float64{0, 0, 0},
		Data:    []float64{1, 1, 1},
		Weights: []float64{1, 1, 1},
		Psf:     shapelet.NewGaussianPsf(2.0),
	}
	cases := []struct {
		model  Model
		wantNP int
		wantNC int
	}{
		{PointSource{}, 2, 1},
		{Gaussian{InitialRadius: 1.5}, 5, 1},
		{Gaussian{Ratios: []float64{0.5, 1, 2}, InitialRadius: 1.5}, 5, 3},
	}
	for _, tc := range cases {
		def := definition.New(nil)
		if err := def.AddFrame(frame); err != nil {
			t.Fatalf("%s: AddFrame: %v", tc.model.Name(), err)
		}
		obj := tc.model.MakeObject(1, geom.Point{X: 1, Y: 0})
		if err := def.AddObject(obj); err != nil {
			t.Fatalf("%s: AddObject: %v", tc.model.Name(), err)
		}
		g, err := grid.New(def)
		if err != nil {
			t.Fatalf("%s: grid.New: %v", tc.model.Name(), err)
		}
		if got := g.ParameterCount(); got != tc.wantNP {
			t.Errorf("%s: ParameterCount = %d, want %d", tc.model.Name(), got, tc.wantNP)
		}
		if got := tc.model.NonlinearDim(); got != tc.wantNP {
			t.Errorf("%s: NonlinearDim = %d, want %d", tc.model.Name(), got, tc.wantNP)
		}
		if got := g.CoefficientCount(); got != tc.wantNC {
			t.Errorf("%s: CoefficientCount = %d, want %d", tc.model.Name(), got, tc.wantNC)
		}
		if got := tc.model.LinearDim(); got != tc.wantNC {
			t.Errorf("%s: LinearDim = %d, want %d", tc.model.Name(), got, tc.wantNC)
		}
	}
}
