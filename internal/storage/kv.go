// Package storage provides the storage-engine client used by mirrorcheck.
//
// This file defines the catalog layout, options and sentinel errors.
package storage

import (
	"errors"
	"log/slog"
	"strings"
)

// Catalog URIs and key prefixes.
const (
	// MetadataURI opens a cursor over the catalog.
	MetadataURI = "metadata:"

	// TablePrefix qualifies table names in URIs and catalog keys.
	TablePrefix = "table:"

	// FilePrefix qualifies backing files in catalog keys.
	FilePrefix = "file:"

	// FileSuffix is the extension of every backing file.
	FileSuffix = ".wt"

	// ReservedPrefix starts the name of every internal engine file.
	ReservedPrefix = "WiredTiger"
)

// Badger key layout.
const (
	metaKeyPrefix = "m:"
	rowKeyPrefix  = "r:"
	markerKey     = "s:catalog"
	catalogFormat = "mirrorcheck-catalog=1"
)

// systemFiles are registered in every new catalog.
var systemFiles = []string{
	ReservedPrefix + FileSuffix,
	ReservedPrefix + "HS" + FileSuffix,
}

// Common errors
var (
	ErrNotFound     = errors.New("storage: not found")
	ErrExists       = errors.New("storage: already exists")
	ErrClosed       = errors.New("storage: closed")
	ErrReadOnly     = errors.New("storage: connection is read-only")
	ErrNoCatalog    = errors.New("storage: metadata catalog missing")
	ErrHomeNotFound = errors.New("storage: home directory not found")
	ErrInvalidName  = errors.New("storage: invalid table name")
	ErrInvalidURI   = errors.New("storage: invalid cursor uri")
)

// Options configures a connection.
type Options struct {
	// ReadOnly opens the store without write access. The home directory must
	// already contain a catalog.
	ReadOnly bool

	// BlockCacheSize is the Badger block cache size in bytes.
	// Default: 64MB
	BlockCacheSize int64

	// IndexCacheSize is the Badger index cache size in bytes.
	// Default: 0 (indexes are kept in memory)
	IndexCacheSize int64

	// Logger receives engine logs. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns the default connection options.
func DefaultOptions() Options {
	return Options{
		BlockCacheSize: 64 << 20, // 64MB
	}
}

// TableURI returns the "table:<name>" catalog key and cursor URI for name.
func TableURI(name string) string {
	return TablePrefix + name
}

// FileKey returns the "file:<name>.wt" catalog key for name.
func FileKey(name string) string {
	return FilePrefix + name + FileSuffix
}

// validateName rejects names that cannot be stored as user tables.
func validateName(name string) error {
	switch {
	case name == "":
		return ErrInvalidName
	case strings.ContainsRune(name, 0), strings.Contains(name, "/"):
		return ErrInvalidName
	case strings.HasPrefix(name, ReservedPrefix):
		return ErrInvalidName
	}
	return nil
}

func metaKey(key string) []byte {
	return []byte(metaKeyPrefix + key)
}

func rowPrefix(table string) []byte {
	return []byte(rowKeyPrefix + table + "\x00")
}

func rowKey(table, key string) []byte {
	return append(rowPrefix(table), key...)
}
