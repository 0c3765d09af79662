package grid

import (
	"github.com/provingground-moe/meas-modelfit/internal/multifit/definition"
)

// MakeDefinition reconstructs a definition from the grid, optionally
// overwriting component values with a packed parameter vector. Passing
// nil params reproduces the grid's compiled state. Components that
// shared an identity at compile time come back as the same component
// value, so compiling the result yields an equivalent grid.
func (g *Grid) MakeDefinition(params []float64) (*definition.Definition, error) {
	def := definition.New(g.Wcs)
	for i := range g.Frames {
		f := &g.Frames[i]
		if err := def.AddFrame(&definition.Frame{
			ID:      f.ID,
			Filter:  f.Filter,
			PixelX:  f.PixelX,
			PixelY:  f.PixelY,
			Data:    f.Data,
			Weights: f.Weights,
			Wcs:     f.Wcs,
			Psf:     f.Psf,
		}); err != nil {
			return nil, err
		}
	}

	positions := make(map[definition.SharedID]*definition.PositionComponent)
	radii := make(map[definition.SharedID]*definition.RadiusComponent)
	ellipticities := make(map[definition.SharedID]*definition.EllipticityComponent)

	for i := range g.Objects {
		obj := &g.Objects[i]
		o := &definition.Object{ID: obj.ID, Basis: obj.Basis}

		pos, ok := positions[obj.Position.ID]
		if !ok {
			c := obj.Position.PositionComponent
			c.X, c.Y = obj.Position.values(params)
			pos = &c
			positions[c.ID] = pos
		}
		o.Position = pos

		if obj.Radius != nil {
			rad, ok := radii[obj.Radius.ID]
			if !ok {
				c := obj.Radius.RadiusComponent
				c.Value = obj.Radius.value(params)
				rad = &c
				radii[c.ID] = rad
			}
			o.Radius = rad
		}
		if obj.Ellipticity != nil {
			ell, ok := ellipticities[obj.Ellipticity.ID]
			if !ok {
				c := obj.Ellipticity.EllipticityComponent
				c.E1, c.E2 = obj.Ellipticity.values(params)
				ell = &c
				ellipticities[c.ID] = ell
			}
			o.Ellipticity = ell
		}
		if err := def.AddObject(o); err != nil {
			return nil, err
		}
	}
	return def, nil
}
