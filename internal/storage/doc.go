// Package storage provides the storage-engine client used by mirrorcheck.
//
// A database home directory is a Badger store laid out as a catalog plus
// table records:
//
//   - Catalog: the "metadata:" namespace. Every table has a "table:<name>"
//     entry holding its configuration string and a "file:<name>.wt" entry
//     for its backing file. Internal engine files are registered under
//     "file:WiredTiger*".
//   - Records: one keyspace per table, ordered by key.
//
// The client surface follows the connection → session → cursor model:
//
//	conn, err := storage.Open(home, storage.Options{ReadOnly: true})
//	sess, err := conn.OpenSession()
//	cur, err := sess.OpenCursor(storage.MetadataURI)
//	cur.SetKey("file:")
//	_, err = cur.SearchNear()
//	for cur.Next() {
//		fmt.Println(cur.Key(), cur.Value())
//	}
//
// Sessions are read-only snapshots. Writes (CreateTable, Insert, Remove,
// DropTable) go through the connection and are rejected on read-only
// connections.
package storage
