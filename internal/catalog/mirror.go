package catalog

import (
	"errors"

	"github.com/yndnr/mirrorcheck-go/internal/core/domain"
	"github.com/yndnr/mirrorcheck-go/internal/storage"
)

// RecordSearcher looks up a catalog record by exact key.
// *storage.Cursor satisfies it.
type RecordSearcher interface {
	Search(key string) (string, error)
}

// MirrorOf returns the mirror name configured for the catalog entry
// tableKey ("table:<name>"). A missing entry or absent or malformed metadata
// yields ok == false with no error; the table may have been dropped since
// the catalog was listed.
func MirrorOf(meta RecordSearcher, tableKey string) (name string, ok bool, err error) {
	config, err := meta.Search(tableKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", false, nil
		}
		return "", false, domain.ErrMirrorLookup.WithDetails(tableKey).WithCause(err)
	}

	md, ok := ParseAppMetadata(config)
	if !ok {
		return "", false, nil
	}
	name, ok = md.Mirror()
	return name, ok, nil
}
