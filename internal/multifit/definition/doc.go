// Package definition holds the user-facing description of a fit: a set
// of frames (one per exposure) and a set of objects (one per source),
// where objects reference parameter components (position, radius,
// ellipticity) that may be shared across objects.
//
// Sharing is expressed by component identity: every component carries a
// SharedID token assigned at construction, and two objects referencing
// components with the same SharedID collapse to a single degree of
// freedom when the definition is compiled into a grid. Components may
// be marked inactive, which holds them fixed and excludes them from the
// parameter vector entirely.
package definition
