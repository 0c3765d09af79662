package grid

import (
	"github.com/provingground-moe/meas-modelfit/internal/multifit/definition"
	"github.com/provingground-moe/meas-modelfit/internal/multifit/geom"
)

// Grid is the compiled, immutable form of a definition: flat record
// slabs, deduplicated parameter elements with assigned offsets, and
// the derived totals the objective function needs.
type Grid struct {
	Wcs geom.Wcs

	Frames  []Frame
	Objects []Object

	// sources is the backing slab; each Object holds its contiguous
	// sub-slice.
	sources []Source

	positions     []PositionElement
	radii         []RadiusElement
	ellipticities []EllipticityElement

	posIndex map[definition.SharedID]int
	radIndex map[definition.SharedID]int
	ellIndex map[definition.SharedID]int

	// Filters maps filter names to their dense first-seen indices.
	Filters map[string]int

	pixelCount       int
	coefficientCount int
	parameterCount   int
}

// PixelCount returns the total footprint length across all frames.
func (g *Grid) PixelCount() int { return g.pixelCount }

// CoefficientCount returns the total number of linear amplitudes.
func (g *Grid) CoefficientCount() int { return g.coefficientCount }

// ParameterCount returns the length of the packed nonlinear parameter
// vector.
func (g *Grid) ParameterCount() int { return g.parameterCount }

// FilterCount returns the number of distinct filters across frames.
func (g *Grid) FilterCount() int { return len(g.Filters) }

// Positions returns the deduplicated position elements in offset order.
func (g *Grid) Positions() []PositionElement { return g.positions }

// Radii returns the deduplicated radius elements in offset order.
func (g *Grid) Radii() []RadiusElement { return g.radii }

// Ellipticities returns the deduplicated ellipticity elements in
// offset order.
func (g *Grid) Ellipticities() []EllipticityElement { return g.ellipticities }

// New compiles a definition into a Grid. The definition is read but
// never retained or mutated; on error no partially built grid escapes.
func New(def *definition.Definition) (*Grid, error) {
	if len(def.Frames) == 0 {
		return nil, invalidDefinition("no frames")
	}
	if len(def.Objects) == 0 {
		return nil, invalidDefinition("no objects")
	}

	g := &Grid{
		Wcs:     def.Wcs,
		Frames:  make([]Frame, 0, len(def.Frames)),
		Objects: make([]Object, 0, len(def.Objects)),
		Filters: make(map[string]int),
	}

	for i, f := range def.Frames {
		if err := f.Validate(); err != nil {
			return nil, invalidDefinition("frame %d: %v", f.ID, err)
		}
		filterIndex, ok := g.Filters[f.Filter]
		if !ok {
			filterIndex = len(g.Filters)
			g.Filters[f.Filter] = filterIndex
		}
		g.Frames = append(g.Frames, snapshotFrame(f, g.pixelCount, filterIndex, i))
		g.pixelCount += f.PixelCount()
	}

	if err := g.buildElements(def.Objects); err != nil {
		return nil, err
	}
	if err := g.buildObjects(def.Objects); err != nil {
		return nil, err
	}

	g.sources = make([]Source, 0, len(g.Objects)*len(g.Frames))
	for i := range g.Objects {
		obj := &g.Objects[i]
		start := len(g.sources)
		for j := range g.Frames {
			s, err := newSource(&g.Frames[j], obj, g.Wcs)
			if err != nil {
				return nil, err
			}
			g.sources = append(g.sources, s)
		}
		obj.Sources = g.sources[start:len(g.sources):len(g.sources)]
	}
	return g, nil
}

// buildElements collects each distinct shared component identity into
// one element and assigns packed-vector offsets to the active ones.
// Element slabs are sized exactly before filling so the pointers the
// objects take never move.
func (g *Grid) buildElements(objects []*definition.Object) error {
	seenPos := make(map[definition.SharedID]bool)
	seenRad := make(map[definition.SharedID]bool)
	seenEll := make(map[definition.SharedID]bool)
	nPos, nRad, nEll := 0, 0, 0
	for _, o := range objects {
		if err := o.Validate(); err != nil {
			return invalidDefinition("object %d: %v", o.ID, err)
		}
		if !seenPos[o.Position.ID] {
			seenPos[o.Position.ID] = true
			nPos++
		}
		if o.Radius != nil && !seenRad[o.Radius.ID] {
			seenRad[o.Radius.ID] = true
			nRad++
		}
		if o.Ellipticity != nil && !seenEll[o.Ellipticity.ID] {
			seenEll[o.Ellipticity.ID] = true
			nEll++
		}
	}

	g.positions = make([]PositionElement, 0, nPos)
	g.radii = make([]RadiusElement, 0, nRad)
	g.ellipticities = make([]EllipticityElement, 0, nEll)

	posIndex := make(map[definition.SharedID]int, nPos)
	radIndex := make(map[definition.SharedID]int, nRad)
	ellIndex := make(map[definition.SharedID]int, nEll)
	for _, o := range objects {
		if _, ok := posIndex[o.Position.ID]; !ok {
			e := PositionElement{PositionComponent: *o.Position, Offset: NoOffset}
			if e.Active {
				e.Offset = g.parameterCount
				g.parameterCount += definition.PositionDim
			}
			posIndex[o.Position.ID] = len(g.positions)
			g.positions = append(g.positions, e)
		}
		if o.Radius != nil {
			if _, ok := radIndex[o.Radius.ID]; !ok {
				e := RadiusElement{RadiusComponent: *o.Radius, Offset: NoOffset}
				if e.Active {
					e.Offset = g.parameterCount
					g.parameterCount += definition.RadiusDim
				}
				radIndex[o.Radius.ID] = len(g.radii)
				g.radii = append(g.radii, e)
			}
		}
		if o.Ellipticity != nil {
			if _, ok := ellIndex[o.Ellipticity.ID]; !ok {
				e := EllipticityElement{EllipticityComponent: *o.Ellipticity, Offset: NoOffset}
				if e.Active {
					e.Offset = g.parameterCount
					g.parameterCount += definition.EllipticityDim
				}
				ellIndex[o.Ellipticity.ID] = len(g.ellipticities)
				g.ellipticities = append(g.ellipticities, e)
			}
		}
	}
	g.posIndex = posIndex
	g.radIndex = radIndex
	g.ellIndex = ellIndex
	return nil
}

// buildObjects fills the object slab, wiring each object to its shared
// elements and assigning coefficient offsets.
func (g *Grid) buildObjects(objects []*definition.Object) error {
	for _, o := range objects {
		obj := Object{
			ID:                o.ID,
			CoefficientOffset: g.coefficientCount,
			CoefficientCount:  o.CoefficientCount(),
			Position:          &g.positions[g.posIndex[o.Position.ID]],
			Basis:             o.Basis,
		}
		if o.Radius != nil {
			obj.Radius = &g.radii[g.radIndex[o.Radius.ID]]
		}
		if o.Ellipticity != nil {
			obj.Ellipticity = &g.ellipticities[g.ellIndex[o.Ellipticity.ID]]
		}
		// A basis needs a radius to set its scale; ellipticity is
		// optional (a circular source).
		if o.Basis != nil && o.Radius == nil {
			return invalidDefinition("object %d has a basis but no radius component", o.ID)
		}
		g.coefficientCount += obj.CoefficientCount
		g.Objects = append(g.Objects, obj)
	}
	return nil
}
