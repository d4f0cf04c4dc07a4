// Package config defines the mirrorcheck configuration and loads it through
// confloader.
//
// Example file:
//
//	log:
//	  level: info
//	  format: json
//	output:
//	  format: yaml
//	compare:
//	  max_diffs: 20
//	  max_bytes_per_sec: 52428800
//	storage:
//	  block_cache_size: 67108864
//	metrics:
//	  textfile: /var/lib/node_exporter/mirrorcheck.prom
package config
