package catalog

import (
	"testing"

	"github.com/yndnr/mirrorcheck-go/internal/storage"
)

const mirrorConfigFmt = `key_format=S,value_format=S,app_metadata="workgen_dynamic_table=true,workgen_table_mirror=table:%s"`

type testTable struct {
	name   string
	config string
}

// buildHome creates a database holding tables and returns its home.
func buildHome(t *testing.T, tables ...testTable) string {
	t.Helper()

	home := t.TempDir()
	conn, err := storage.Open(home, storage.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	for _, tbl := range tables {
		if err := conn.CreateTable(tbl.name, tbl.config); err != nil {
			t.Fatalf("CreateTable(%s) error = %v", tbl.name, err)
		}
	}
	if err := conn.Close(); err != nil {
		t.Fatal(err)
	}
	return home
}

func openReadOnly(t *testing.T, home string) *storage.Connection {
	t.Helper()

	opts := storage.DefaultOptions()
	opts.ReadOnly = true
	conn, err := storage.Open(home, opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}
