package units

import "math"

// FluxMag0 is the default flux corresponding to magnitude zero for
// uncalibrated exposures. Likelihood flux scaling divides per-epoch
// zero points by the fit frame's zero point, so any consistent value
// cancels out when all epochs share a calibration.
const FluxMag0 = 1e12

// MagnitudeToFlux converts an astronomical magnitude to linear flux
// given the flux at magnitude zero.
func MagnitudeToFlux(mag, fluxMag0 float64) float64 {
	return fluxMag0 * math.Pow(10.0, -0.4*mag)
}

// FluxToMagnitude converts a linear flux to an astronomical magnitude
// given the flux at magnitude zero. Returns +Inf for non-positive flux.
func FluxToMagnitude(flux, fluxMag0 float64) float64 {
	if flux <= 0 || fluxMag0 <= 0 {
		return math.Inf(1)
	}
	return -2.5 * math.Log10(flux/fluxMag0)
}

// FluxScaling returns the multiplicative factor that brings an epoch's
// fluxes onto the fit frame's photometric system.
func FluxScaling(fitFluxMag0, epochFluxMag0 float64) float64 {
	if epochFluxMag0 == 0 {
		return 1.0
	}
	return fitFluxMag0 / epochFluxMag0
}
