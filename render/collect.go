// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"strconv"

	"github.com/netvisor/agent/sketch"
)

// mergeLabels returns a new map combining base with an optional extra
// key/value, never mutating base.
func mergeLabels(base map[string]string, extraKey, extraVal string) map[string]string {
	out := make(map[string]string, len(base)+1)
	for k, v := range base {
		out[k] = v
	}
	if extraKey != "" {
		out[extraKey] = extraVal
	}
	return out
}

// FromCounter renders a [*sketch.Counter] as a single Sample.
func FromCounter(c *sketch.Counter, labels map[string]string) Sample {
	return Sample{
		SchemaKey: c.SchemaKey(),
		Help:      c.Help(),
		Labels:    labels,
		Value:     float64(c.Value()),
	}
}

// FromRate renders a [*sketch.Rate] as a single Sample, at unix-second
// timestamp nowUnix. Callers should skip this on a historical (sealed)
// bucket — a rate is only meaningful for the live one (package bucket,
// package sketch's Rate doc comment).
func FromRate(r *sketch.Rate, nowUnix int64, labels map[string]string) Sample {
	return Sample{
		SchemaKey: r.SchemaKey(),
		Help:      r.Help(),
		Labels:    labels,
		Value:     r.Value(nowUnix),
	}
}

// FromCardinality renders a [*sketch.Cardinality] as a single Sample.
func FromCardinality(c *sketch.Cardinality, labels map[string]string) Sample {
	return Sample{
		SchemaKey: c.SchemaKey(),
		Help:      c.Help(),
		Labels:    labels,
		Value:     float64(c.Estimate()),
	}
}

// DefaultQuantilePercentiles are the percentiles [FromQuantile] renders
// when the caller doesn't specify its own set.
var DefaultQuantilePercentiles = []float64{0.5, 0.9, 0.99}

// FromQuantile renders a [*sketch.Quantile] as one Sample per requested
// percentile, each labeled "quantile" with its percentile string (e.g.
// "0.9"), per the Prometheus summary-type convention.
func FromQuantile(q *sketch.Quantile, percentiles []float64, labels map[string]string) []Sample {
	if percentiles == nil {
		percentiles = DefaultQuantilePercentiles
	}
	out := make([]Sample, 0, len(percentiles))
	for _, p := range percentiles {
		out = append(out, Sample{
			SchemaKey: q.SchemaKey(),
			Help:      q.Help(),
			Labels:    mergeLabels(labels, "quantile", strconv.FormatFloat(p, 'g', -1, 64)),
			Value:     q.GetQuantile(p),
		})
	}
	return out
}

// FromTopN renders a [*sketch.TopN] as one Sample per entry, each labeled
// labelName with the entry's label value (spec.md §6: "per-metric labels
// (device, device_interface, lat/lon for geo)" — labelName is the
// dimension this particular TopN breaks down, e.g. "qname" or "ip").
func FromTopN(t *sketch.TopN, labelName string, labels map[string]string) []Sample {
	entries := t.Entries()
	out := make([]Sample, 0, len(entries))
	for _, e := range entries {
		out = append(out, Sample{
			SchemaKey: t.SchemaKey(),
			Help:      t.Help(),
			Labels:    mergeLabels(labels, labelName, e.Label),
			Value:     float64(e.Count),
		})
	}
	return out
}
