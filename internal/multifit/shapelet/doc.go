// Package shapelet provides the basis-function machinery the fitter
// projects through: frame-level PSFs, their localization at a source
// position, multi-Gaussian surface-brightness bases, PSF convolution,
// and the matrix builder that evaluates a basis over footprint pixels
// into design-matrix columns.
package shapelet
