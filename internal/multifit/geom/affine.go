package geom

import (
	"fmt"
	"math"
)

// Point is a position in a 2-D coordinate system.
type Point struct {
	X float64
	Y float64
}

// Add returns the componentwise sum of two points.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns the componentwise difference of two points.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Affine is a 2-D affine transform y = M x + t with linear part
// [XX XY; YX YY] and translation (X, Y).
type Affine struct {
	XX, XY float64
	YX, YY float64
	X, Y   float64
}

// Identity returns the identity transform.
func Identity() Affine {
	return Affine{XX: 1, YY: 1}
}

// Scaling returns a uniform scaling transform.
func Scaling(s float64) Affine {
	return Affine{XX: s, YY: s}
}

// Translation returns a pure translation transform.
func Translation(t Point) Affine {
	return Affine{XX: 1, YY: 1, X: t.X, Y: t.Y}
}

// Rotation returns a rotation by theta radians about the origin.
func Rotation(theta float64) Affine {
	c, s := math.Cos(theta), math.Sin(theta)
	return Affine{XX: c, XY: -s, YX: s, YY: c}
}

// Apply maps a point through the transform.
func (a Affine) Apply(p Point) Point {
	return Point{
		X: a.XX*p.X + a.XY*p.Y + a.X,
		Y: a.YX*p.X + a.YY*p.Y + a.Y,
	}
}

// ApplyLinear maps a point through the linear part only, ignoring
// translation. Used for transforming direction vectors and moments.
func (a Affine) ApplyLinear(p Point) Point {
	return Point{
		X: a.XX*p.X + a.XY*p.Y,
		Y: a.YX*p.X + a.YY*p.Y,
	}
}

// Mul composes two transforms: (a.Mul(b)).Apply(p) == a.Apply(b.Apply(p)).
func (a Affine) Mul(b Affine) Affine {
	return Affine{
		XX: a.XX*b.XX + a.XY*b.YX,
		XY: a.XX*b.XY + a.XY*b.YY,
		YX: a.YX*b.XX + a.YY*b.YX,
		YY: a.YX*b.XY + a.YY*b.YY,
		X:  a.XX*b.X + a.XY*b.Y + a.X,
		Y:  a.YX*b.X + a.YY*b.Y + a.Y,
	}
}

// Det returns the determinant of the linear part.
func (a Affine) Det() float64 {
	return a.XX*a.YY - a.XY*a.YX
}

// Invert returns the inverse transform, or an error if the linear part
// is singular.
func (a Affine) Invert() (Affine, error) {
	det := a.Det()
	if det == 0 || math.IsNaN(det) {
		return Affine{}, fmt.Errorf("cannot invert singular affine transform (det=%v)", det)
	}
	inv := Affine{
		XX: a.YY / det,
		XY: -a.XY / det,
		YX: -a.YX / det,
		YY: a.XX / det,
	}
	inv.X = -(inv.XX*a.X + inv.XY*a.Y)
	inv.Y = -(inv.YX*a.X + inv.YY*a.Y)
	return inv, nil
}
