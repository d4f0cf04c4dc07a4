// Command mirrorcheck validates that every mirrored table in a WiredTiger
// home directory holds the same records as its base table.
//
// Usage:
//
//	mirrorcheck [flags] database_dir
//	mirrorcheck -o json /data/db
//	mirrorcheck --metrics-file /var/lib/node_exporter/mirrorcheck.prom /data/db
//
// The exit status is 0 when every mirror matches and 1 otherwise.
package main
