// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/instrumentation"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func unixTime(sec int64) time.Time { return time.Unix(sec, 0) }

// OTel renders samples as one OpenTelemetry scope per policy (spec.md §6:
// "scope name pktvisor/<policy_name>"), attaching a "policy_name"
// attribute plus each sample's own labels to every data point. Values are
// exposed as instantaneous gauges: this module's sketches are reset per
// window rather than monotonic, so Gauge is the faithful OTel shape, not
// Sum.
func OTel(policyName string, now int64, samples []Sample) metricdata.ScopeMetrics {
	metrics := make([]metricdata.Metrics, 0, len(samples))
	for _, s := range samples {
		attrs := make([]attribute.KeyValue, 0, len(s.Labels)+1)
		attrs = append(attrs, attribute.String("policy_name", policyName))

		keys := make([]string, 0, len(s.Labels))
		for k := range s.Labels {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			attrs = append(attrs, attribute.String(k, s.Labels[k]))
		}

		metrics = append(metrics, metricdata.Metrics{
			Name:        s.PrometheusName(),
			Description: s.Help,
			Data: metricdata.Gauge[float64]{
				DataPoints: []metricdata.DataPoint[float64]{
					{
						Attributes: attribute.NewSet(attrs...),
						Time:       unixTime(now),
						Value:      s.Value,
					},
				},
			},
		})
	}

	return metricdata.ScopeMetrics{
		Scope: instrumentation.Scope{
			Name: "pktvisor/" + policyName,
		},
		Metrics: metrics,
	}
}

// ResourceMetrics wraps a set of per-policy scopes into a single
// [metricdata.ResourceMetrics], the unit an OTLP exporter pushes.
func ResourceMetrics(scopes []metricdata.ScopeMetrics) metricdata.ResourceMetrics {
	return metricdata.ResourceMetrics{ScopeMetrics: scopes}
}
