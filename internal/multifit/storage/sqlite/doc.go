// Package sqlite persists fitting results in the application's sqlite
// database. Sample sets are stored as named, versioned records whose
// points travel as a single compressed blob; metadata columns carry
// the dimensions and evidence so listings never decode payloads.
package sqlite
