package geom

// Wcs maps between a frame's pixel coordinates and a common sky
// coordinate system. Only local linearizations are needed by the
// fitter: the model works in the tangent plane around each source.
type Wcs interface {
	// LinearizePixelToSky returns the affine approximation of the
	// pixel-to-sky mapping around the given sky position.
	LinearizePixelToSky(sky Point) Affine

	// LinearizeSkyToPixel returns the affine approximation of the
	// sky-to-pixel mapping around the given sky position.
	LinearizeSkyToPixel(sky Point) Affine
}

// LocalTanWcs is a tangent-plane WCS that is already affine: pixel and
// sky coordinates are related by a fixed linear map plus offset. It is
// sufficient for the footprint-sized regions the fitter operates on.
type LocalTanWcs struct {
	// PixelToSky maps pixel coordinates into the sky tangent plane.
	PixelToSky Affine
}

// NewLocalTanWcs builds a LocalTanWcs from a pixel origin, the sky
// position that origin maps to, a pixel scale and a rotation angle in
// radians.
func NewLocalTanWcs(pixelOrigin, skyOrigin Point, scale, rotation float64) *LocalTanWcs {
	m := Translation(skyOrigin).
		Mul(Rotation(rotation)).
		Mul(Scaling(scale)).
		Mul(Translation(Point{X: -pixelOrigin.X, Y: -pixelOrigin.Y}))
	return &LocalTanWcs{PixelToSky: m}
}

// LinearizePixelToSky implements Wcs. The mapping is globally affine so
// the linearization is position independent.
func (w *LocalTanWcs) LinearizePixelToSky(Point) Affine {
	return w.PixelToSky
}

// LinearizeSkyToPixel implements Wcs.
func (w *LocalTanWcs) LinearizeSkyToPixel(Point) Affine {
	inv, err := w.PixelToSky.Invert()
	if err != nil {
		// A WCS with singular pixel scale is unusable; constructors
		// should never produce one. Returning identity keeps the
		// failure visible downstream without a panic in geometry code.
		return Identity()
	}
	return inv
}
