// Package output writes validation reports.
//
//   - text: one "Mirror mismatch" line per failed pair, then the summary
//   - json: the full report, indented
//   - yaml: the full report
//
// Reports go to stdout. Diagnostics belong in the logger, never here.
package output
