package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/mirrorcheck-go/internal/core/domain"
	"github.com/yndnr/mirrorcheck-go/internal/storage"
	"github.com/yndnr/mirrorcheck-go/internal/telemetry/logger"
	"github.com/yndnr/mirrorcheck-go/internal/telemetry/metric"
)

const (
	plainConfig     = "key_format=S,value_format=S"
	mirrorConfigFmt = `key_format=S,value_format=S,app_metadata="workgen_dynamic_table=true,workgen_table_mirror=table:%s"`
)

type table struct {
	name   string
	mirror string
	rows   map[string]string
}

func buildHome(t *testing.T, tables ...table) string {
	t.Helper()

	home := t.TempDir()
	conn, err := storage.Open(home, storage.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	for _, tbl := range tables {
		config := plainConfig
		if tbl.mirror != "" {
			config = strings.Replace(mirrorConfigFmt, "%s", tbl.mirror, 1)
		}
		if err := conn.CreateTable(tbl.name, config); err != nil {
			t.Fatalf("CreateTable(%s) error = %v", tbl.name, err)
		}
		for k, v := range tbl.rows {
			if err := conn.Insert(tbl.name, k, v); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := conn.Close(); err != nil {
		t.Fatal(err)
	}
	return home
}

func newTestChecker() (*Checker, *metric.Registry) {
	reg := metric.NewRegistry()
	return NewChecker(DefaultCheckOptions(), reg, logger.Discard()), reg
}

func TestChecker_NoMirrors(t *testing.T) {
	home := buildHome(t,
		table{name: "plain", rows: map[string]string{"k": "v"}},
	)
	checker, reg := newTestChecker()

	report, err := checker.Check(context.Background(), home)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	want := "Successfully validated 0 table mirrors in database directory '" + home + "'."
	if report.Summary() != want {
		t.Errorf("Summary() = %q, want %q", report.Summary(), want)
	}
	if report.ExitCode() != domain.ExitOK {
		t.Errorf("ExitCode() = %d", report.ExitCode())
	}
	if report.RunID == "" || report.FinishedAt.IsZero() {
		t.Error("report should carry a run id and finish time")
	}
	if got := testutil.ToFloat64(reg.TablesScanned); got != 1 {
		t.Errorf("tables_scanned = %v, want 1", got)
	}
	if got := testutil.ToFloat64(reg.LastRunSuccess); got != 1 {
		t.Errorf("last_run_success = %v, want 1", got)
	}
}

func TestChecker_MatchingPairs(t *testing.T) {
	rows := map[string]string{"a": "1", "b": "2"}
	home := buildHome(t,
		table{name: "orders", mirror: "orders_m", rows: rows},
		table{name: "orders_m", rows: rows},
		table{name: "users", mirror: "users_m"},
		table{name: "users_m"},
	)
	checker, _ := newTestChecker()

	report, err := checker.Check(context.Background(), home)
	if err != nil {
		t.Fatal(err)
	}
	if report.Total != 2 || report.Failures != 0 {
		t.Errorf("Total/Failures = %d/%d, want 2/0", report.Total, report.Failures)
	}
	if report.Outcomes[0].Pair.Base.Table != "orders" {
		t.Errorf("first pair = %s, want orders first", report.Outcomes[0].Pair)
	}
}

func TestChecker_Mismatch(t *testing.T) {
	home := buildHome(t,
		table{name: "orders", mirror: "orders_m", rows: map[string]string{"a": "1", "b": "2"}},
		table{name: "orders_m", rows: map[string]string{"a": "1"}},
		table{name: "users", mirror: "users_m", rows: map[string]string{"x": "1"}},
		table{name: "users_m", rows: map[string]string{"x": "1"}},
	)
	checker, reg := newTestChecker()

	report, err := checker.Check(context.Background(), home)
	if err != nil {
		t.Fatal(err)
	}
	if report.ExitCode() != domain.ExitFailure {
		t.Errorf("ExitCode() = %d, want %d", report.ExitCode(), domain.ExitFailure)
	}
	want := "Mirrored table validation failed for 1 of 2 table mirrors in database directory '" + home + "'."
	if report.Summary() != want {
		t.Errorf("Summary() = %q, want %q", report.Summary(), want)
	}

	failed := report.Failed()
	if len(failed) != 1 {
		t.Fatalf("Failed() = %v", failed)
	}
	line := failed[0].MismatchLine()
	prefix := "Mirror mismatch [" + home + "/table:orders, " + home + "/table:orders_m]: "
	if !strings.HasPrefix(line, prefix) {
		t.Errorf("MismatchLine() = %q, want prefix %q", line, prefix)
	}
	if got := testutil.ToFloat64(reg.LastRunSuccess); got != 0 {
		t.Errorf("last_run_success = %v, want 0", got)
	}
}

func TestChecker_OrphanedMirrorReference(t *testing.T) {
	// The mirror was dropped; the base is not validated.
	home := buildHome(t,
		table{name: "orders", mirror: "ghost", rows: map[string]string{"a": "1"}},
	)
	checker, _ := newTestChecker()

	report, err := checker.Check(context.Background(), home)
	if err != nil {
		t.Fatal(err)
	}
	if report.Total != 0 || report.ExitCode() != domain.ExitOK {
		t.Errorf("Total = %d, ExitCode = %d, want 0/0", report.Total, report.ExitCode())
	}
}

func TestChecker_ReleasesDatabase(t *testing.T) {
	home := buildHome(t, table{name: "plain"})
	checker, _ := newTestChecker()

	if _, err := checker.Check(context.Background(), home); err != nil {
		t.Fatal(err)
	}

	// A writer can only open the home once the read-only connection is gone.
	conn, err := storage.Open(home, storage.DefaultOptions())
	if err != nil {
		t.Fatalf("reopen read-write: %v", err)
	}
	conn.Close()
}

func TestChecker_MissingHome(t *testing.T) {
	checker, _ := newTestChecker()

	_, err := checker.Check(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, domain.ErrOpenDatabase) {
		t.Errorf("expected ErrOpenDatabase, got %v", err)
	}
	if !errors.Is(err, storage.ErrHomeNotFound) {
		t.Errorf("expected cause ErrHomeNotFound, got %v", err)
	}
}

func TestChecker_Idempotent(t *testing.T) {
	home := buildHome(t,
		table{name: "orders", mirror: "orders_m", rows: map[string]string{"a": "1", "b": "2"}},
		table{name: "orders_m", rows: map[string]string{"a": "1", "b": "3"}},
		table{name: "users", mirror: "users_m", rows: map[string]string{"x": "1"}},
		table{name: "users_m", rows: map[string]string{"x": "1"}},
	)
	checker, _ := newTestChecker()

	first, err := checker.Check(context.Background(), home)
	if err != nil {
		t.Fatal(err)
	}
	second, err := checker.Check(context.Background(), home)
	if err != nil {
		t.Fatal(err)
	}

	if first.RunID == second.RunID {
		t.Error("each run should get its own run id")
	}
	if len(first.Outcomes) != len(second.Outcomes) {
		t.Fatalf("outcome counts differ: %d vs %d", len(first.Outcomes), len(second.Outcomes))
	}
	for i := range first.Outcomes {
		a, b := first.Outcomes[i], second.Outcomes[i]
		if a.Pair != b.Pair || a.Match != b.Match || a.Diagnostic != b.Diagnostic ||
			a.BaseFingerprint != b.BaseFingerprint || a.MirrorFingerprint != b.MirrorFingerprint {
			t.Errorf("outcome %d differs:\n%+v\n%+v", i, a, b)
		}
	}
}
