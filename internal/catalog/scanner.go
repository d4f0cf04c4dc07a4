package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yndnr/mirrorcheck-go/internal/core/domain"
	"github.com/yndnr/mirrorcheck-go/internal/storage"
)

// ListTables returns the names of the user tables in conn's catalog, in
// catalog key order. Internal engine files are skipped.
func ListTables(conn *storage.Connection) ([]string, error) {
	sess, err := conn.OpenSession()
	if err != nil {
		return nil, domain.ErrCatalogScan.WithCause(err)
	}
	defer sess.Close()

	cur, err := sess.OpenCursor(storage.MetadataURI)
	if err != nil {
		return nil, domain.ErrCatalogScan.WithCause(err)
	}
	defer cur.Close()

	cur.SetKey(storage.FilePrefix)
	tables := []string{}
	if _, err := cur.SearchNear(); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return tables, nil
		}
		return nil, domain.ErrCatalogScan.WithCause(err)
	}

	for cur.Next() {
		key := cur.Key()
		if !strings.HasPrefix(key, storage.FilePrefix) {
			break
		}
		name := strings.TrimPrefix(key, storage.FilePrefix)
		if strings.HasPrefix(name, storage.ReservedPrefix) {
			continue
		}
		tables = append(tables, strings.TrimSuffix(name, storage.FileSuffix))
	}
	if err := cur.Err(); err != nil {
		return nil, domain.ErrCatalogScan.WithCause(fmt.Errorf("iterate catalog: %w", err))
	}

	return tables, nil
}
