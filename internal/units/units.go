// Package units provides shared constants and conversions for angle and
// flux units used across the fitting pipeline.
package units

import "math"

// Unit constants
const (
	Radians = "rad"
	Degrees = "deg"
	Arcsec  = "arcsec"
	Arcmin  = "arcmin"
)

// ValidAngleUnits contains all valid angle unit values
var ValidAngleUnits = []string{Radians, Degrees, Arcsec, Arcmin}

// IsValidAngleUnit checks if the given unit is in the list of valid units
func IsValidAngleUnit(unit string) bool {
	for _, validUnit := range ValidAngleUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// ConvertAngle converts an angle from radians to the target units.
// Internal code stores all angles in radians.
func ConvertAngle(angleRad float64, targetUnits string) float64 {
	switch targetUnits {
	case Radians:
		return angleRad
	case Degrees:
		return angleRad * 180.0 / math.Pi
	case Arcmin:
		return angleRad * 180.0 * 60.0 / math.Pi
	case Arcsec:
		return angleRad * 180.0 * 3600.0 / math.Pi
	default:
		return angleRad
	}
}

// ArcsecToRadians converts an angle in arcseconds to radians.
func ArcsecToRadians(arcsec float64) float64 {
	return arcsec * math.Pi / (180.0 * 3600.0)
}

// DegreesToRadians converts an angle in degrees to radians.
func DegreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
