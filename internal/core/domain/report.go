package domain

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Process exit statuses.
const (
	ExitOK      = 0
	ExitFailure = 1
)

// Comparison is the result of comparing two tables record by record.
type Comparison struct {
	// Match is true when both tables hold the same keys and values.
	Match bool

	// Diagnostic describes the differences found. Empty on a match.
	Diagnostic string

	// BaseRows and MirrorRows count the records read on each side.
	BaseRows   int64
	MirrorRows int64

	// Differences counts differing keys, including those not listed in
	// Diagnostic.
	Differences int64

	// BaseFingerprint and MirrorFingerprint are content hashes of each side.
	BaseFingerprint   string
	MirrorFingerprint string
}

// Outcome is the validation result of one mirror pair.
type Outcome struct {
	Pair              MirrorPair    `json:"pair" yaml:"pair"`
	Match             bool          `json:"match" yaml:"match"`
	Diagnostic        string        `json:"diagnostic,omitempty" yaml:"diagnostic,omitempty"`
	BaseRows          int64         `json:"base_rows" yaml:"base_rows"`
	MirrorRows        int64         `json:"mirror_rows" yaml:"mirror_rows"`
	Differences       int64         `json:"differences" yaml:"differences"`
	BaseFingerprint   string        `json:"base_fingerprint,omitempty" yaml:"base_fingerprint,omitempty"`
	MirrorFingerprint string        `json:"mirror_fingerprint,omitempty" yaml:"mirror_fingerprint,omitempty"`
	Duration          time.Duration `json:"duration_ns" yaml:"duration"`
}

// NewOutcome builds the outcome of pair from a comparison. The diagnostic is
// kept only for mismatches.
func NewOutcome(pair MirrorPair, c *Comparison, elapsed time.Duration) Outcome {
	o := Outcome{
		Pair:              pair,
		Match:             c.Match,
		BaseRows:          c.BaseRows,
		MirrorRows:        c.MirrorRows,
		Differences:       c.Differences,
		BaseFingerprint:   c.BaseFingerprint,
		MirrorFingerprint: c.MirrorFingerprint,
		Duration:          elapsed,
	}
	if !c.Match {
		o.Diagnostic = c.Diagnostic
	}
	return o
}

// FailedOutcome records a pair whose comparison could not complete.
func FailedOutcome(pair MirrorPair, err error, elapsed time.Duration) Outcome {
	return Outcome{
		Pair:       pair,
		Match:      false,
		Diagnostic: err.Error(),
		Duration:   elapsed,
	}
}

// MismatchLine formats a failed outcome for the text report.
func (o Outcome) MismatchLine() string {
	return fmt.Sprintf("Mirror mismatch %s: %s", o.Pair, o.Diagnostic)
}

// Report aggregates the outcomes of one validation run.
type Report struct {
	RunID      string    `json:"run_id" yaml:"run_id"`
	Home       string    `json:"home" yaml:"home"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
	Total      int       `json:"total" yaml:"total"`
	Failures   int       `json:"failures" yaml:"failures"`
	Outcomes   []Outcome `json:"outcomes" yaml:"outcomes"`
}

// NewReport starts a report for home.
func NewReport(runID, home string) *Report {
	return &Report{
		RunID:     runID,
		Home:      home,
		StartedAt: time.Now().UTC(),
		Outcomes:  []Outcome{},
	}
}

// Record adds an outcome to the report.
func (r *Report) Record(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	r.Total++
	if !o.Match {
		r.Failures++
	}
}

// Finish stamps the report's completion time.
func (r *Report) Finish() {
	r.FinishedAt = time.Now().UTC()
}

// Failed returns the outcomes that did not match, in run order.
func (r *Report) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if !o.Match {
			failed = append(failed, o)
		}
	}
	return failed
}

// ExitCode maps the report to a process exit status.
func (r *Report) ExitCode() int {
	if r.Failures > 0 {
		return ExitFailure
	}
	return ExitOK
}

// Summary returns the one-line result of the run.
func (r *Report) Summary() string {
	if r.Failures == 0 {
		return fmt.Sprintf("Successfully validated %d table mirrors in database directory '%s'.",
			r.Total, r.Home)
	}
	return fmt.Sprintf("Mirrored table validation failed for %d of %d table mirrors in database directory '%s'.",
		r.Failures, r.Total, r.Home)
}

// NewRunID generates a lowercase ULID identifying a validation run.
func NewRunID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", fmt.Errorf("generate run id: %w", err)
	}
	return strings.ToLower(id.String()), nil
}
