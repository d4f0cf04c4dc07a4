package catalog

import (
	"github.com/yndnr/mirrorcheck-go/internal/core/domain"
	"github.com/yndnr/mirrorcheck-go/internal/storage"
	"github.com/yndnr/mirrorcheck-go/internal/telemetry/logger"
)

// MirrorLookup resolves a bare table name to its mirror's bare name.
type MirrorLookup func(table string) (mirror string, ok bool, err error)

// CollectPairs resolves the mirrors of tables through conn's catalog and
// returns the resulting pairs rooted at conn.Home().
func CollectPairs(conn *storage.Connection, tables []string, log logger.Logger) ([]domain.MirrorPair, error) {
	sess, err := conn.OpenSession()
	if err != nil {
		return nil, domain.ErrCatalogScan.WithCause(err)
	}
	defer sess.Close()

	meta, err := sess.OpenCursor(storage.MetadataURI)
	if err != nil {
		return nil, domain.ErrCatalogScan.WithCause(err)
	}
	defer meta.Close()

	lookup := func(table string) (string, bool, error) {
		return MirrorOf(meta, storage.TableURI(table))
	}
	return Pair(conn.Home(), tables, lookup, log)
}

// Pair walks tables in order and pairs each unconsumed table with its
// mirror when the mirror is also unconsumed. Every name ends up in at most
// one pair. Tables whose mirror is missing or already paired are skipped.
func Pair(home string, tables []string, lookup MirrorLookup, log logger.Logger) ([]domain.MirrorPair, error) {
	remaining := make(map[string]struct{}, len(tables))
	for _, t := range tables {
		remaining[t] = struct{}{}
	}

	pairs := []domain.MirrorPair{}
	for _, table := range tables {
		if _, ok := remaining[table]; !ok {
			continue
		}
		delete(remaining, table)

		mirror, ok, err := lookup(table)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if _, ok := remaining[mirror]; !ok {
			// A drop in flight when the snapshot was taken leaves one side
			// of a pair behind.
			log.Debug("mirror not available",
				"table", table,
				"mirror", mirror)
			continue
		}
		delete(remaining, mirror)

		pairs = append(pairs, domain.NewMirrorPair(home, table, mirror))
		log.Debug("mirror pair found", "base", table, "mirror", mirror)
	}

	return pairs, nil
}
