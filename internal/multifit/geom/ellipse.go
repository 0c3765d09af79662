package geom

import "math"

// EllipseCore is a separable description of an ellipse's shape: a
// conformal shear (E1, E2) and a trace radius. Conformal shear eta is
// defined by a/b = exp(2*|eta|) for semi-axes a >= b, so the zero
// vector is a circle and the parameterization is unbounded. The trace
// radius satisfies r^2 = (a^2 + b^2) / 2.
type EllipseCore struct {
	E1     float64
	E2     float64
	Radius float64
}

// Quadrupole is the second-moment description of the same shape:
// Ixx = <x^2>, Iyy = <y^2>, Ixy = <xy>.
type Quadrupole struct {
	Ixx float64
	Iyy float64
	Ixy float64
}

// Ellipse is an EllipseCore placed at a center position.
type Ellipse struct {
	Core   EllipseCore
	Center Point
}

// Quadrupole converts the separable core to second moments.
func (c EllipseCore) Quadrupole() Quadrupole {
	eta := math.Hypot(c.E1, c.E2)
	r2 := c.Radius * c.Radius
	if eta == 0 {
		return Quadrupole{Ixx: r2, Iyy: r2}
	}
	// a/b = exp(2*eta); a^2 + b^2 = 2*r^2
	e4 := math.Exp(4 * eta)
	b2 := 2 * r2 / (1 + e4)
	a2 := b2 * e4
	phi := 0.5 * math.Atan2(c.E2, c.E1)
	cp, sp := math.Cos(phi), math.Sin(phi)
	return Quadrupole{
		Ixx: a2*cp*cp + b2*sp*sp,
		Iyy: a2*sp*sp + b2*cp*cp,
		Ixy: (a2 - b2) * sp * cp,
	}
}

// CoreFromQuadrupole converts second moments back to the separable
// form. Degenerate (zero or negative) moments collapse to a circular
// core with the equivalent trace radius.
func CoreFromQuadrupole(q Quadrupole) EllipseCore {
	tr := q.Ixx + q.Iyy
	if tr <= 0 {
		return EllipseCore{}
	}
	radius := math.Sqrt(tr / 2)
	d := math.Hypot((q.Ixx-q.Iyy)/2, q.Ixy)
	a2 := tr/2 + d
	b2 := tr/2 - d
	if b2 <= 0 {
		// Fully degenerate along one axis; shear is formally infinite.
		// Clamp to a large but finite value so downstream math stays sane.
		b2 = a2 * 1e-12
	}
	eta := 0.25 * math.Log(a2/b2)
	phi := 0.5 * math.Atan2(2*q.Ixy, q.Ixx-q.Iyy)
	return EllipseCore{
		E1:     eta * math.Cos(2*phi),
		E2:     eta * math.Sin(2*phi),
		Radius: radius,
	}
}

// Transform applies the linear part of an affine transform to the
// moments: Q' = M Q M^T.
func (q Quadrupole) Transform(a Affine) Quadrupole {
	// M Q
	mxx := a.XX*q.Ixx + a.XY*q.Ixy
	mxy := a.XX*q.Ixy + a.XY*q.Iyy
	myx := a.YX*q.Ixx + a.YY*q.Ixy
	myy := a.YX*q.Ixy + a.YY*q.Iyy
	// (M Q) M^T
	return Quadrupole{
		Ixx: mxx*a.XX + mxy*a.XY,
		Iyy: myx*a.YX + myy*a.YY,
		Ixy: mxx*a.YX + mxy*a.YY,
	}
}

// Convolve adds the moments of another quadrupole, the second-moment
// form of convolving two Gaussians.
func (q Quadrupole) Convolve(other Quadrupole) Quadrupole {
	return Quadrupole{
		Ixx: q.Ixx + other.Ixx,
		Iyy: q.Iyy + other.Iyy,
		Ixy: q.Ixy + other.Ixy,
	}
}

// Det returns the determinant Ixx*Iyy - Ixy^2.
func (q Quadrupole) Det() float64 {
	return q.Ixx*q.Iyy - q.Ixy*q.Ixy
}

// Transform maps the ellipse through an affine transform: the center
// through the full transform, the core through the linear part.
func (e Ellipse) Transform(a Affine) Ellipse {
	return Ellipse{
		Core:   CoreFromQuadrupole(e.Core.Quadrupole().Transform(a)),
		Center: a.Apply(e.Center),
	}
}
