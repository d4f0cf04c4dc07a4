// Package domain defines the mirror validation domain model.
//
// The types here are plain values without IO dependencies:
//
//   - Location: a table inside a database home ("<home>/table:<name>")
//   - MirrorPair: a base table and its mirror
//   - Comparison, Outcome: the result of comparing one pair
//   - Report: the aggregated result of a run and its exit status
//   - DomainError: coded errors shared across packages
package domain
