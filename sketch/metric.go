// SPDX-License-Identifier: GPL-3.0-or-later

// Package sketch provides the bounded approximate aggregators used by every
// bucket in the pipeline: [Counter], [Rate], [Cardinality] (HyperLogLog),
// [Quantile] (a capped streaming digest), and [TopN] (space-saving).
//
// Every sketch carries a schema-key path (e.g. ["wire_packets", "queries"])
// and help text, mirroring the teacher library's convention of self-describing
// primitives, so a bucket can walk its sketches and render them without a
// parallel table of names and descriptions.
package sketch

import "strings"

// Metric is the common base embedded by every sketch. It supplies the
// schema-key path and help text used by JSON, Prometheus, and OTel
// rendering (see package render).
type Metric struct {
	schemaKey []string
	help      string
}

// NewMetric returns a [Metric] with the given schema-key path and help text.
func NewMetric(schemaKey []string, help string) Metric {
	return Metric{schemaKey: append([]string(nil), schemaKey...), help: help}
}

// SchemaKey returns the metric's schema-key path, e.g. ["wire_packets", "queries"].
func (m Metric) SchemaKey() []string {
	return append([]string(nil), m.schemaKey...)
}

// Help returns the metric's help text.
func (m Metric) Help() string {
	return m.help
}

// PrometheusName returns the schema key joined by underscores, the
// Prometheus metric-name convention used throughout this module.
func (m Metric) PrometheusName() string {
	return strings.Join(m.schemaKey, "_")
}

// JSONPath returns the schema key, used as the nested-map path when
// rendering a bucket to JSON.
func (m Metric) JSONPath() []string {
	return m.SchemaKey()
}
