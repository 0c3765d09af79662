// Package multifit implements the Monte Carlo engine for Bayesian
// source model fitting: weighted sample sets over nonlinear shape
// parameters, analytic marginalization of the linear amplitudes, and
// expectation evaluation with Monte Carlo error estimates.
//
// A fit draws parameter points from a proposal density, evaluates the
// amplitude-conditioned likelihood at each point as a LogGaussian, and
// collects the points in a SampleSet. Applying a Prior marginalizes
// the amplitudes and turns the set into normalized importance weights
// plus a Bayesian evidence estimate; expectations of any functor over
// the parameters then follow as weighted sums.
package multifit
