// Package geom owns the small geometric vocabulary of the fitter:
// 2-D points, affine transforms, ellipses in both separable
// (conformal shear + trace radius) and quadrupole form, and local
// linearizations of WCS mappings between pixel and sky coordinates.
//
// All angles are radians and all ellipse radii are in the coordinate
// units of the frame the ellipse lives in.
package geom
