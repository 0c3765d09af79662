// Command multifit runs a demonstration fit: it synthesizes a
// two-epoch observation of a single source, compiles the model grid,
// draws importance samples against the projected likelihood, and
// reports the posterior moments. Results can optionally be persisted
// to sqlite and rendered as diagnostic plots.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"

	"github.com/provingground-moe/meas-modelfit/internal/config"
	"github.com/provingground-moe/meas-modelfit/internal/db"
	"github.com/provingground-moe/meas-modelfit/internal/multifit"
	"github.com/provingground-moe/meas-modelfit/internal/multifit/definition"
	"github.com/provingground-moe/meas-modelfit/internal/multifit/geom"
	"github.com/provingground-moe/meas-modelfit/internal/multifit/grid"
	"github.com/provingground-moe/meas-modelfit/internal/multifit/likelihood"
	"github.com/provingground-moe/meas-modelfit/internal/multifit/model"
	"github.com/provingground-moe/meas-modelfit/internal/multifit/monitor"
	"github.com/provingground-moe/meas-modelfit/internal/multifit/sampler"
	"github.com/provingground-moe/meas-modelfit/internal/multifit/shapelet"
	storage "github.com/provingground-moe/meas-modelfit/internal/multifit/storage/sqlite"
	"github.com/provingground-moe/meas-modelfit/internal/version"
)

func main() {
	var (
		configPath   = flag.String("config", "", "JSON config file supplying defaults for the other flags")
		showVersion  = flag.Bool("version", false, "print version and exit")
		modelName    = flag.String("model", "gaussian", "source model family (point, gaussian)")
		samples      = flag.Int("samples", 2000, "number of importance draws")
		seed         = flag.Uint64("seed", 1, "proposal random seed")
		noise        = flag.Float64("noise", 0.001, "per-pixel noise sigma for the synthetic data")
		amplitude    = flag.Float64("amplitude", 5.0, "true source amplitude")
		proposalStd  = flag.Float64("proposal-std", 0.5, "proposal standard deviation per parameter")
		pixelWeights = flag.Bool("pixel-weights", true, "use per-pixel inverse-sigma weights")
		dbPath       = flag.String("db", "", "sqlite path to persist the sample set (empty: skip)")
		setName      = flag.String("name", "demo", "persisted sample set name")
		plotDir      = flag.String("plot-dir", "", "directory for diagnostic plots (empty: skip)")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("multifit %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if *configPath != "" {
		cfg, err := config.LoadFitConfig(*configPath)
		if err != nil {
			log.Fatalf("multifit: %v", err)
		}
		// Explicit flags win over the config file.
		set := make(map[string]bool)
		flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
		if !set["model"] {
			*modelName = cfg.GetModel()
		}
		if !set["samples"] {
			*samples = cfg.GetSamples()
		}
		if !set["seed"] {
			*seed = cfg.GetSeed()
		}
		if !set["noise"] {
			*noise = cfg.GetNoiseSigma()
		}
		if !set["amplitude"] {
			*amplitude = cfg.GetAmplitude()
		}
		if !set["proposal-std"] {
			*proposalStd = cfg.GetProposalStd()
		}
		if !set["pixel-weights"] {
			*pixelWeights = cfg.GetUsePixelWeights()
		}
		if !set["db"] {
			*dbPath = cfg.GetDBPath()
		}
		if !set["name"] {
			*setName = cfg.GetSampleSetName()
		}
		if !set["plot-dir"] {
			*plotDir = cfg.GetPlotDir()
		}
	}

	if err := run(*modelName, *samples, *seed, *noise, *amplitude, *proposalStd,
		*pixelWeights, *dbPath, *setName, *plotDir); err != nil {
		log.Fatalf("multifit: %v", err)
	}
}

func run(modelName string, samples int, seed uint64, noise, amplitude, proposalStd float64,
	pixelWeights bool, dbPath, setName, plotDir string) error {

	registry := model.NewRegistry()
	family, err := registry.Lookup(modelName)
	if err != nil {
		return err
	}

	def, err := buildScene(family, amplitude, noise, seed)
	if err != nil {
		return fmt.Errorf("build scene: %w", err)
	}
	g, err := grid.New(def)
	if err != nil {
		return fmt.Errorf("compile grid: %w", err)
	}
	log.Printf("compiled grid: %d pixels, %d filters, %d parameters, %d coefficients",
		g.PixelCount(), g.FilterCount(), g.ParameterCount(), g.CoefficientCount())

	cfg := likelihood.DefaultConfig()
	cfg.UsePixelWeights = pixelWeights
	objective, err := likelihood.FromGrid(g, cfg)
	if err != nil {
		return fmt.Errorf("build likelihood: %w", err)
	}

	mean := make([]float64, g.ParameterCount())
	if err := g.WriteParameters(mean); err != nil {
		return err
	}
	cov := mat.NewSymDense(g.ParameterCount(), nil)
	for i := 0; i < g.ParameterCount(); i++ {
		cov.SetSym(i, i, proposalStd*proposalStd)
	}
	samplerCfg := sampler.DefaultConfig()
	samplerCfg.Samples = samples
	samplerCfg.Seed = seed
	s, err := sampler.NewImportanceSampler(mean, cov, g, samplerCfg)
	if err != nil {
		return fmt.Errorf("build sampler: %w", err)
	}

	set := multifit.NewSampleSet(g.ParameterCount(), g.CoefficientCount())
	if err := s.Run(context.Background(), objective, set); err != nil {
		return fmt.Errorf("sampling: %w", err)
	}
	logZ, err := set.ApplyPrior(multifit.FlatPrior{})
	if err != nil {
		return fmt.Errorf("apply prior: %w", err)
	}
	log.Printf("drew %d samples, log evidence %.4f", set.Len(), logZ)

	postMean, err := set.ComputeMean(nil)
	if err != nil {
		return err
	}
	postCov, err := set.ComputeCovariance(postMean)
	if err != nil {
		return err
	}
	for i := 0; i < postMean.Len(); i++ {
		log.Printf("parameter %d: %.5f +/- %.5f", i, postMean.AtVec(i), math.Sqrt(postCov.At(i, i)))
	}
	if amps, err := set.ComputeAmplitudeMean(); err == nil {
		for i := 0; i < amps.Len(); i++ {
			log.Printf("amplitude %d: %.5f", i, amps.AtVec(i))
		}
	}

	if dbPath != "" {
		database, err := db.Open(dbPath)
		if err != nil {
			return err
		}
		defer database.Close()
		if err := database.MigrateUp(); err != nil {
			return err
		}
		rec := &storage.SampleSetRecord{Name: setName}
		if err := storage.NewSampleSetStore(database.DB).Insert(rec, set); err != nil {
			return fmt.Errorf("persist sample set: %w", err)
		}
		log.Printf("persisted sample set %s (%s version %d)", rec.SampleSetID, rec.Name, rec.Version)
	}

	if plotDir != "" {
		if err := os.MkdirAll(plotDir, 0755); err != nil {
			return fmt.Errorf("create plot dir: %w", err)
		}
		if err := monitor.TracePlot(set, 0, filepath.Join(plotDir, "trace.png")); err != nil {
			return err
		}
		if err := monitor.WeightHistogram(set, 0, filepath.Join(plotDir, "weights.png")); err != nil {
			return err
		}
		if g.ParameterCount() >= 2 {
			if err := monitor.RenderSampleScatter(set, 0, 1, 0, filepath.Join(plotDir, "scatter.html")); err != nil {
				return err
			}
		}
		log.Printf("wrote diagnostics to %s", plotDir)
	}
	return nil
}

// buildScene synthesizes a two-epoch, two-filter observation of one
// source at the center of a small footprint, rendering the model into
// the data arrays and adding Gaussian noise.
func buildScene(family model.Model, amplitude, noise float64, seed uint64) (*definition.Definition, error) {
	def := definition.New(nil)
	obj := family.MakeObject(1, geom.Point{X: 10, Y: 10})
	if err := def.AddObject(obj); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(seed, seed+1))
	epochs := []struct {
		id     int64
		filter string
	}{{1, "g"}, {2, "r"}}
	for _, epoch := range epochs {
		f := makeFrame(epoch.id, epoch.filter, 21)
		if err := renderObject(f, obj, amplitude, noise, rng); err != nil {
			return nil, err
		}
		if err := def.AddFrame(f); err != nil {
			return nil, err
		}
	}
	return def, nil
}

func makeFrame(id int64, filter string, side int) *definition.Frame {
	n := side * side
	f := &definition.Frame{
		ID:      id,
		Filter:  filter,
		PixelX:  make([]float64, n),
		PixelY:  make([]float64, n),
		Data:    make([]float64, n),
		Weights: make([]float64, n),
		Psf:     shapelet.NewGaussianPsf(2.0),
	}
	for i := 0; i < n; i++ {
		f.PixelX[i] = float64(i % side)
		f.PixelY[i] = float64(i / side)
	}
	return f
}

func renderObject(f *definition.Frame, obj *definition.Object, amplitude, noise float64, rng *rand.Rand) error {
	basis := obj.Basis
	if basis == nil {
		basis = shapelet.NewPsfBasis(f.Psf.Localize(geom.Point{X: obj.Position.X, Y: obj.Position.Y}))
	} else {
		basis = basis.Convolve(f.Psf.Localize(geom.Point{X: obj.Position.X, Y: obj.Position.Y}))
	}
	builder, err := shapelet.NewMatrixBuilder(basis, f.PixelX, f.PixelY)
	if err != nil {
		return err
	}
	e := geom.Ellipse{Center: geom.Point{X: obj.Position.X, Y: obj.Position.Y}}
	if obj.Radius != nil {
		e.Core.Radius = obj.Radius.Value
	}
	if obj.Ellipticity != nil {
		e.Core.E1, e.Core.E2 = obj.Ellipticity.E1, obj.Ellipticity.E2
	}
	m := mat.NewDense(len(f.Data), basis.Size(), nil)
	if err := builder.Build(m, e); err != nil {
		return err
	}
	perCoeff := amplitude / float64(basis.Size())
	for i := range f.Data {
		v := 0.0
		for j := 0; j < basis.Size(); j++ {
			v += perCoeff * m.At(i, j)
		}
		f.Data[i] = v + rng.NormFloat64()*noise
		f.Weights[i] = 1.0 / noise
	}
	return nil
}
