package geom

import (
	"math"
	"testing"
)

func pointsClose(a, b Point, tol float64) bool {
	return math.Abs(a.X-b.X) < tol && math.Abs(a.Y-b.Y) < tol
}

func TestAffineIdentity(t *testing.T) {
	p := Point{X: 3.5, Y: -2.25}
	if got := Identity().Apply(p); got != p {
		t.Fatalf("identity moved point: got %+v", got)
	}
}

func TestAffineMulMatchesSequentialApply(t *testing.T) {
	a := Rotation(0.3).Mul(Scaling(2.0))
	b := Translation(Point{X: 1, Y: -4})
	p := Point{X: 0.5, Y: 2}

	composed := a.Mul(b).Apply(p)
	sequential := a.Apply(b.Apply(p))
	if !pointsClose(composed, sequential, 1e-12) {
		t.Fatalf("composition mismatch: %+v vs %+v", composed, sequential)
	}
}

func TestAffineInvertRoundTrip(t *testing.T) {
	a := Translation(Point{X: 5, Y: -1}).Mul(Rotation(1.1)).Mul(Scaling(0.25))
	inv, err := a.Invert()
	if err != nil {
		t.Fatalf("invert failed: %v", err)
	}
	p := Point{X: -3, Y: 7}
	if got := inv.Apply(a.Apply(p)); !pointsClose(got, p, 1e-10) {
		t.Fatalf("round trip drifted: got %+v, want %+v", got, p)
	}
}

func TestAffineInvertSingular(t *testing.T) {
	singular := Affine{XX: 1, XY: 2, YX: 2, YY: 4}
	if _, err := singular.Invert(); err == nil {
		t.Fatal("expected error inverting singular transform")
	}
}

func TestRotationPreservesLength(t *testing.T) {
	p := Point{X: 3, Y: 4}
	q := Rotation(2.0).ApplyLinear(p)
	if math.Abs(math.Hypot(q.X, q.Y)-5.0) > 1e-12 {
		t.Fatalf("rotation changed length: %v", math.Hypot(q.X, q.Y))
	}
}
