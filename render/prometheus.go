// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"io"
	"sort"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// Prometheus writes samples as Prometheus text exposition format to w,
// grouping them by metric name (spec.md §6: "each metric name is
// <schema_key>_<path_joined_by_underscore>"). Every sample gets a
// "policy" label, plus "instance" if instance is non-empty, in addition
// to its own Labels — per spec.md §6: "Labels: policy, instance (if
// configured), plus per-metric labels". The aggregation math stays in
// package sketch; only the wire-format text encoding is delegated to
// prometheus/client_golang's expfmt, per SPEC_FULL.md §6.
func Prometheus(w io.Writer, policyName, instance string, samples []Sample) error {
	type family struct {
		help    string
		metrics []*dto.Metric
	}
	order := make([]string, 0)
	families := make(map[string]*family)

	for _, s := range samples {
		name := s.PrometheusName()
		f, ok := families[name]
		if !ok {
			f = &family{help: s.Help}
			families[name] = f
			order = append(order, name)
		}

		labels := make([]*dto.LabelPair, 0, len(s.Labels)+2)
		labels = append(labels, labelPair("policy", policyName))
		if instance != "" {
			labels = append(labels, labelPair("instance", instance))
		}
		keys := make([]string, 0, len(s.Labels))
		for k := range s.Labels {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			labels = append(labels, labelPair(k, s.Labels[k]))
		}

		value := s.Value
		f.metrics = append(f.metrics, &dto.Metric{
			Label: labels,
			Gauge: &dto.Gauge{Value: &value},
		})
	}

	gauge := dto.MetricType_GAUGE
	for _, name := range order {
		f := families[name]
		mf := &dto.MetricFamily{
			Name:   strPtr(name),
			Help:   strPtr(f.help),
			Type:   &gauge,
			Metric: f.metrics,
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func labelPair(name, value string) *dto.LabelPair {
	return &dto.LabelPair{Name: strPtr(name), Value: strPtr(value)}
}

func strPtr(s string) *string { return &s }
