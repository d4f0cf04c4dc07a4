// Package metric provides Prometheus metrics for mirrorcheck.
//
// A validation run is a short-lived process, so metrics are not served over
// HTTP. They are gathered into a private registry and, when configured,
// written once at the end of the run to a node_exporter textfile.
package metric
