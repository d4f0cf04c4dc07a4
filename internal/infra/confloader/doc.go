// Package confloader layers configuration sources with koanf.
//
// Priority (highest to lowest):
//
//  1. Overrides (command-line flags)
//  2. Environment variables
//  3. Configuration file (YAML)
//  4. Default values
//
// Environment variables name a section and a key: MIRRORCHECK_COMPARE_MAX_DIFFS
// sets compare.max_diffs. Only the first underscore after the prefix
// separates levels, so keys may contain underscores.
package confloader
