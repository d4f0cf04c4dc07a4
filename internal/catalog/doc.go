// Package catalog discovers mirrored tables from a database catalog.
//
// Discovery runs in three steps:
//
//   - ListTables enumerates user tables from the "file:" catalog entries.
//   - MirrorOf reads a table's application metadata and returns the name of
//     its mirror, if one is configured.
//   - CollectPairs pairs each table with its mirror, consuming every table at
//     most once.
//
// The relationship is stored by the workload generator inside the table's
// configuration string, for example:
//
//	app_metadata="workgen_dynamic_table=true,workgen_table_mirror=table:orders_mirror"
//
// Missing catalog entries and malformed metadata mean "no mirror"; only
// storage failures are returned as errors.
package catalog
