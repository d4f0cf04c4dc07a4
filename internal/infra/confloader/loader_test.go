package confloader

import (
	"os"
	"path/filepath"
	"testing"
)

type testConfig struct {
	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`
	Compare struct {
		MaxDiffs       int   `koanf:"max_diffs"`
		MaxBytesPerSec int64 `koanf:"max_bytes_per_sec"`
	} `koanf:"compare"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "mirrorcheck.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestNewLoader(t *testing.T) {
	l := NewLoader()
	if l.envPrefix != DefaultEnvPrefix {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, DefaultEnvPrefix)
	}

	l = NewLoader(WithConfigFile("/etc/x.yaml"))
	if l.filePath != "/etc/x.yaml" {
		t.Errorf("filePath = %q, want %q", l.filePath, "/etc/x.yaml")
	}
}

func TestLoader_EnvKey(t *testing.T) {
	l := NewLoader()

	tests := map[string]string{
		"MIRRORCHECK_LOG_LEVEL":                "log.level",
		"MIRRORCHECK_COMPARE_MAX_DIFFS":        "compare.max_diffs",
		"MIRRORCHECK_STORAGE_BLOCK_CACHE_SIZE": "storage.block_cache_size",
	}
	for in, want := range tests {
		if got := l.envKey(in); got != want {
			t.Errorf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoader_Priority(t *testing.T) {
	path := writeConfig(t, `
log:
  level: info
compare:
  max_diffs: 5
  max_bytes_per_sec: 1000
`)
	t.Setenv("MIRRORCHECK_COMPARE_MAX_DIFFS", "7")

	l := NewLoader(
		WithConfigFile(path),
		WithDefaults(map[string]any{
			"log.level":                 "warn",
			"compare.max_diffs":         10,
			"compare.max_bytes_per_sec": 0,
		}),
		WithOverrides(map[string]any{"log.level": "debug"}),
	)

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q, want override", cfg.Log.Level)
	}
	if cfg.Compare.MaxDiffs != 7 {
		t.Errorf("compare.max_diffs = %d, want env value 7", cfg.Compare.MaxDiffs)
	}
	if cfg.Compare.MaxBytesPerSec != 1000 {
		t.Errorf("compare.max_bytes_per_sec = %d, want file value 1000", cfg.Compare.MaxBytesPerSec)
	}
}

func TestLoader_DefaultsOnly(t *testing.T) {
	l := NewLoader(
		WithDefaults(map[string]any{"log.level": "warn", "compare.max_diffs": 10}),
	)

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Log.Level != "warn" || cfg.Compare.MaxDiffs != 10 {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoader_LoadFile_NotFound(t *testing.T) {
	l := NewLoader(WithConfigFile(filepath.Join(t.TempDir(), "missing.yaml")))

	var cfg testConfig
	if err := l.Load(&cfg); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoader_LoadFile_Invalid(t *testing.T) {
	path := writeConfig(t, "log: [unclosed")

	if err := NewLoader().LoadFile(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestMapProvider(t *testing.T) {
	p := mapProvider{"a": 1}
	if _, err := p.ReadBytes(); err != ErrReadBytesNotSupported {
		t.Errorf("ReadBytes() error = %v", err)
	}
	m, err := p.Read()
	if err != nil || m["a"] != 1 {
		t.Errorf("Read() = %v, %v", m, err)
	}
}
