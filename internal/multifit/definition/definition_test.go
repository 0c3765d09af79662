package definition

import (
	"testing"

	"github.com/provingground-moe/meas-modelfit/internal/multifit/shapelet"
)

func testFrame(id int64, filter string, npix int) *Frame {
	f := &Frame{ID: id, Filter: filter}
	for i := 0; i < npix; i++ {
		f.PixelX = append(f.PixelX, float64(i))
		f.PixelY = append(f.PixelY, 0)
		f.Data = append(f.Data, 1.0)
		f.Weights = append(f.Weights, 1.0)
	}
	return f
}

func TestAddFrameKeepsSortedOrder(t *testing.T) {
	d := New(nil)
	for _, id := range []int64{30, 10, 20} {
		if err := d.AddFrame(testFrame(id, "r", 4)); err != nil {
			t.Fatalf("AddFrame(%d): %v", id, err)
		}
	}
	for i, want := range []int64{10, 20, 30} {
		if d.Frames[i].ID != want {
			t.Fatalf("frame order %v, want sorted", []int64{d.Frames[0].ID, d.Frames[1].ID, d.Frames[2].ID})
		}
	}
}

func TestAddFrameDuplicateID(t *testing.T) {
	d := New(nil)
	if err := d.AddFrame(testFrame(1, "r", 2)); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := d.AddFrame(testFrame(1, "g", 2)); err == nil {
		t.Fatal("expected duplicate frame ID error")
	}
}

func TestFrameValidateLengthMismatch(t *testing.T) {
	f := testFrame(1, "r", 3)
	f.Weights = f.Weights[:2]
	if err := f.Validate(); err == nil {
		t.Fatal("expected length mismatch error")
	}
}

func TestAddObjectValidation(t *testing.T) {
	d := New(nil)
	if err := d.AddObject(&Object{ID: 1}); err == nil {
		t.Fatal("expected error for object without position")
	}
	if err := d.AddObject(&Object{ID: 1, Position: &PositionComponent{}}); err == nil {
		t.Fatal("expected error for zero-identity position")
	}
	if err := d.AddObject(&Object{ID: 1, Position: NewPosition(0, 0, true)}); err != nil {
		t.Fatalf("valid object rejected: %v", err)
	}
	if err := d.AddObject(&Object{ID: 1, Position: NewPosition(0, 0, true)}); err == nil {
		t.Fatal("expected duplicate object ID error")
	}
}

func TestObjectCoefficientCount(t *testing.T) {
	pointSource := &Object{ID: 1, Position: NewPosition(0, 0, true)}
	if got := pointSource.CoefficientCount(); got != 1 {
		t.Fatalf("point source coefficient count = %d, want 1", got)
	}
	extended := &Object{
		ID:       2,
		Position: NewPosition(0, 0, true),
		Basis:    shapelet.NewGaussianBasis(0.5, 1.0, 2.0),
	}
	if got := extended.CoefficientCount(); got != 3 {
		t.Fatalf("extended source coefficient count = %d, want 3", got)
	}
}
