// Package grid compiles a definition.Definition into a flattened,
// read-only arena: contiguous Frame, Object and Source records plus
// deduplicated parameter-element arrays with assigned offsets into a
// single packed parameter vector.
//
// Compilation assigns every distinct active shared component identity
// one contiguous block of the parameter vector; objects sharing an
// identity reference the same element, which is how tied parameters
// across objects collapse to one degree of freedom. Inactive
// components are carried with the sentinel offset -1 and contribute
// nothing to the parameter count.
//
// A Grid is immutable after construction. Parameter values are
// threaded through caller-owned vectors read at element offsets, so
// any number of goroutines may read one Grid against independent
// vectors concurrently.
package grid
