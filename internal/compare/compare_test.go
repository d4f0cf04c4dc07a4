package compare

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/yndnr/mirrorcheck-go/internal/core/domain"
	"github.com/yndnr/mirrorcheck-go/internal/storage"
	"github.com/yndnr/mirrorcheck-go/internal/telemetry/logger"
)

type rows map[string]string

// buildHome creates a database with the given tables and returns its home.
func buildHome(t *testing.T, tables map[string]rows) string {
	t.Helper()

	home := t.TempDir()
	conn, err := storage.Open(home, storage.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	for name, records := range tables {
		if err := conn.CreateTable(name, "key_format=S,value_format=S"); err != nil {
			t.Fatal(err)
		}
		for k, v := range records {
			if err := conn.Insert(name, k, v); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := conn.Close(); err != nil {
		t.Fatal(err)
	}
	return home
}

func newComparator(t *testing.T, home string, opts Options) *Comparator {
	t.Helper()

	sopts := storage.DefaultOptions()
	sopts.ReadOnly = true
	conn, err := storage.Open(home, sopts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return New(conn, opts, logger.Discard())
}

func orders() rows {
	return rows{"o1": "apple", "o2": "pear", "o3": "plum"}
}

func TestCompare_Match(t *testing.T) {
	home := buildHome(t, map[string]rows{"orders": orders(), "orders_mirror": orders()})
	c := newComparator(t, home, DefaultOptions())

	got, err := c.Compare(context.Background(),
		domain.NewLocation(home, "orders"), domain.NewLocation(home, "orders_mirror"))
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if !got.Match {
		t.Errorf("expected match, diagnostic %q", got.Diagnostic)
	}
	if got.BaseRows != 3 || got.MirrorRows != 3 {
		t.Errorf("rows = %d/%d, want 3/3", got.BaseRows, got.MirrorRows)
	}
	if got.Diagnostic != "" || got.Differences != 0 {
		t.Errorf("unexpected diagnostic %q (%d)", got.Diagnostic, got.Differences)
	}
	if got.BaseFingerprint == "" || got.BaseFingerprint != got.MirrorFingerprint {
		t.Errorf("fingerprints differ: %s vs %s", got.BaseFingerprint, got.MirrorFingerprint)
	}
}

func TestCompare_EmptyTables(t *testing.T) {
	home := buildHome(t, map[string]rows{"a": {}, "b": {}})
	c := newComparator(t, home, DefaultOptions())

	got, err := c.Compare(context.Background(), domain.NewLocation(home, "a"), domain.NewLocation(home, "b"))
	if err != nil {
		t.Fatal(err)
	}
	if !got.Match {
		t.Errorf("empty tables should match: %q", got.Diagnostic)
	}
}

func TestCompare_Mismatch(t *testing.T) {
	extra := orders()
	extra["o4"] = "fig"
	changed := orders()
	changed["o2"] = "peach"
	missing := rows{"o1": "apple", "o3": "plum"}

	tests := []struct {
		name     string
		mirror   rows
		diffs    int64
		contains []string
	}{
		{
			name:     "extra row in mirror",
			mirror:   extra,
			diffs:    1,
			contains: []string{`key "o4": only in `, "table:orders_mirror", "base rows 3, mirror rows 4"},
		},
		{
			name:     "value changed",
			mirror:   changed,
			diffs:    1,
			contains: []string{`key "o2": value mismatch (4 bytes in base, 5 bytes in mirror)`},
		},
		{
			name:     "row missing from mirror",
			mirror:   missing,
			diffs:    1,
			contains: []string{`key "o2": only in `, "base rows 3, mirror rows 2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := buildHome(t, map[string]rows{"orders": orders(), "orders_mirror": tt.mirror})
			c := newComparator(t, home, DefaultOptions())

			got, err := c.Compare(context.Background(),
				domain.NewLocation(home, "orders"), domain.NewLocation(home, "orders_mirror"))
			if err != nil {
				t.Fatalf("Compare() error = %v", err)
			}
			if got.Match {
				t.Fatal("expected mismatch")
			}
			if got.Differences != tt.diffs {
				t.Errorf("Differences = %d, want %d", got.Differences, tt.diffs)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got.Diagnostic, want) {
					t.Errorf("diagnostic %q does not contain %q", got.Diagnostic, want)
				}
			}
			if got.BaseFingerprint == got.MirrorFingerprint {
				t.Error("fingerprints of different tables should differ")
			}
		})
	}
}

func TestCompare_MaxDiffs(t *testing.T) {
	base := rows{}
	for i := 0; i < 25; i++ {
		base[fmt.Sprintf("k%02d", i)] = "v"
	}
	home := buildHome(t, map[string]rows{"a": base, "b": {}})

	opts := DefaultOptions()
	opts.MaxDiffs = 5
	c := newComparator(t, home, opts)

	got, err := c.Compare(context.Background(), domain.NewLocation(home, "a"), domain.NewLocation(home, "b"))
	if err != nil {
		t.Fatal(err)
	}
	if got.Differences != 25 {
		t.Errorf("Differences = %d, want 25", got.Differences)
	}
	if n := strings.Count(got.Diagnostic, "only in"); n != 5 {
		t.Errorf("listed %d differences, want 5", n)
	}
	if !strings.HasSuffix(got.Diagnostic, "; ... 20 more") {
		t.Errorf("diagnostic %q should end with the hidden count", got.Diagnostic)
	}
}

func TestCompare_MissingTable(t *testing.T) {
	home := buildHome(t, map[string]rows{"orders": orders()})
	c := newComparator(t, home, DefaultOptions())

	_, err := c.Compare(context.Background(),
		domain.NewLocation(home, "orders"), domain.NewLocation(home, "orders_mirror"))
	if !errors.Is(err, domain.ErrTableMissing) {
		t.Errorf("expected ErrTableMissing, got %v", err)
	}
}

func TestCompare_LocationOutsideHome(t *testing.T) {
	home := buildHome(t, map[string]rows{"orders": orders()})
	other := buildHome(t, map[string]rows{"orders": orders()})
	c := newComparator(t, home, DefaultOptions())

	tests := []struct {
		name         string
		base, mirror domain.Location
	}{
		{"mirror elsewhere", domain.NewLocation(home, "orders"), domain.NewLocation(other, "orders")},
		{"base elsewhere", domain.NewLocation(other, "orders"), domain.NewLocation(home, "orders")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Compare(context.Background(), tt.base, tt.mirror)
			if !errors.Is(err, domain.ErrInvalidLocation) {
				t.Errorf("expected ErrInvalidLocation, got %v", err)
			}
		})
	}

	// Equivalent spellings of the home are accepted.
	got, err := c.Compare(context.Background(),
		domain.NewLocation(home+"/", "orders"), domain.NewLocation(home, "orders"))
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if !got.Match {
		t.Errorf("table should match itself: %q", got.Diagnostic)
	}
}

func TestCompare_Throttled(t *testing.T) {
	home := buildHome(t, map[string]rows{"orders": orders(), "orders_mirror": orders()})
	opts := DefaultOptions()
	opts.MaxBytesPerSec = 1 << 30
	c := newComparator(t, home, opts)

	got, err := c.Compare(context.Background(),
		domain.NewLocation(home, "orders"), domain.NewLocation(home, "orders_mirror"))
	if err != nil {
		t.Fatal(err)
	}
	if !got.Match {
		t.Error("expected match")
	}
}

func TestCompare_Canceled(t *testing.T) {
	home := buildHome(t, map[string]rows{"orders": orders(), "orders_mirror": orders()})
	c := newComparator(t, home, DefaultOptions())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Compare(ctx, domain.NewLocation(home, "orders"), domain.NewLocation(home, "orders_mirror"))
	if !errors.Is(err, domain.ErrCompareFailed) || !errors.Is(err, context.Canceled) {
		t.Errorf("expected ErrCompareFailed wrapping context.Canceled, got %v", err)
	}
}
