// Package compare implements the record-level table comparison used to
// validate mirror pairs.
//
// Compare walks both tables in key order, the way a two-way merge does, and
// reports keys found on one side only and keys whose values differ. It
// returns a structured domain.Comparison rather than an exit status; only
// failures to read a table are returned as errors.
package compare
