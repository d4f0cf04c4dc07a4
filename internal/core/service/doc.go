// Package service runs mirror validation.
//
//   - Checker: opens a database home read-only, discovers mirror pairs and
//     validates them, producing a domain.Report.
//   - Validator: compares each pair through a Comparer and records outcomes.
//
// Services hold no state between runs.
package service
