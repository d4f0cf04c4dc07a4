package catalog

import (
	"regexp"
	"strings"
)

// Application metadata keys written by the workload generator.
const (
	KeyDynamicTable = "workgen_dynamic_table"
	KeyTableMirror  = "workgen_table_mirror"
)

var appMetadataPattern = regexp.MustCompile(`app_metadata="([^"]*)"`)

// AppMetadata is the key=value annotation map stored in a table's
// app_metadata configuration field.
type AppMetadata map[string]string

// ParseAppMetadata extracts and parses the app_metadata field of a catalog
// configuration string. It reports false when the field is absent or any
// element is not a single key=value pair.
func ParseAppMetadata(config string) (AppMetadata, bool) {
	m := appMetadataPattern.FindStringSubmatch(config)
	if m == nil {
		return nil, false
	}

	md := make(AppMetadata)
	for _, element := range strings.Split(m[1], ",") {
		key, value, ok := strings.Cut(element, "=")
		if !ok || strings.Contains(value, "=") {
			return nil, false
		}
		md[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return md, true
}

// Get returns the value stored under key and whether it is present.
func (md AppMetadata) Get(key string) (string, bool) {
	v, ok := md[key]
	return v, ok
}

// Mirror returns the bare name of the table's mirror. A mirror is configured
// only on dynamic tables that name one; the stored value is a qualified
// identifier such as "table:orders_mirror". The name is the segment between
// the first and second ":", so "table:a:b" names a.
func (md AppMetadata) Mirror() (string, bool) {
	if dynamic, _ := md.Get(KeyDynamicTable); dynamic != "true" {
		return "", false
	}
	qualified, ok := md.Get(KeyTableMirror)
	if !ok {
		return "", false
	}
	segments := strings.Split(qualified, ":")
	if len(segments) < 2 || segments[1] == "" {
		return "", false
	}
	return segments[1], true
}
