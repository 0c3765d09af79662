package units

import (
	"math"
	"testing"
)

func TestConvertAngle(t *testing.T) {
	cases := []struct {
		name  string
		rad   float64
		units string
		want  float64
	}{
		{"radians passthrough", math.Pi, Radians, math.Pi},
		{"degrees", math.Pi, Degrees, 180.0},
		{"arcmin", math.Pi / 180.0, Arcmin, 60.0},
		{"arcsec", math.Pi / 180.0, Arcsec, 3600.0},
		{"unknown unit defaults to radians", 1.5, "furlongs", 1.5},
	}
	for _, tc := range cases {
		got := ConvertAngle(tc.rad, tc.units)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("%s: ConvertAngle(%v, %s) = %v, want %v", tc.name, tc.rad, tc.units, got, tc.want)
		}
	}
}

func TestIsValidAngleUnit(t *testing.T) {
	for _, u := range ValidAngleUnits {
		if !IsValidAngleUnit(u) {
			t.Errorf("expected %q to be valid", u)
		}
	}
	if IsValidAngleUnit("parsec") {
		t.Error("expected parsec to be invalid")
	}
}

func TestArcsecRoundTrip(t *testing.T) {
	rad := ArcsecToRadians(1.0)
	if math.Abs(ConvertAngle(rad, Arcsec)-1.0) > 1e-12 {
		t.Errorf("arcsec round trip drifted: %v", ConvertAngle(rad, Arcsec))
	}
}

func TestMagnitudeFluxRoundTrip(t *testing.T) {
	flux := MagnitudeToFlux(20.0, FluxMag0)
	mag := FluxToMagnitude(flux, FluxMag0)
	if math.Abs(mag-20.0) > 1e-9 {
		t.Errorf("magnitude round trip: got %v, want 20.0", mag)
	}
}

func TestFluxToMagnitudeDegenerate(t *testing.T) {
	if !math.IsInf(FluxToMagnitude(0, FluxMag0), 1) {
		t.Error("expected +Inf magnitude for zero flux")
	}
	if !math.IsInf(FluxToMagnitude(-1, FluxMag0), 1) {
		t.Error("expected +Inf magnitude for negative flux")
	}
}

func TestFluxScaling(t *testing.T) {
	if got := FluxScaling(2e12, 1e12); got != 2.0 {
		t.Errorf("FluxScaling = %v, want 2.0", got)
	}
	if got := FluxScaling(1e12, 0); got != 1.0 {
		t.Errorf("FluxScaling with zero epoch zero point = %v, want 1.0", got)
	}
}
