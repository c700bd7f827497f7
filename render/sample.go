// SPDX-License-Identifier: GPL-3.0-or-later

// Package render holds the shared JSON / Prometheus / OpenTelemetry
// rendering primitives used by every bucket and sketch (spec.md §2
// "Metric primitives ... Render to JSON/Prometheus/OTel; label
// composition"). It knows how to turn a flat list of [Sample] values into
// each wire form; it does not know which sketches exist on a given
// Data — each handler's own Render method walks its fields and produces
// the Sample list.
package render

// Sample is one rendered metric observation: a schema-key path (e.g.
// ["dns", "queries"]), help text, a set of labels beyond the ambient
// policy/instance ones [Prometheus] and [OTel] add automatically, and its
// value.
type Sample struct {
	SchemaKey []string
	Help      string
	Labels    map[string]string
	Value     float64
}

// PrometheusName returns the schema key joined by underscores, the
// Prometheus metric-name convention used throughout this module (spec.md
// §6: "each metric name is <schema_key>_<path_joined_by_underscore>").
func (s Sample) PrometheusName() string {
	name := ""
	for i, part := range s.SchemaKey {
		if i > 0 {
			name += "_"
		}
		name += part
	}
	return name
}
