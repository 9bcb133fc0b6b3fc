// Package globs computes the final include/exclude glob lists for a
// packaging unit.
//
// Merging is pure list concatenation: built-in excludes first, then
// service-level patterns, then function-level patterns. Order is preserved
// because the archiver evaluates patterns in sequence.
package globs
