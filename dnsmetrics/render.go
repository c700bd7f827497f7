// SPDX-License-Identifier: GPL-3.0-or-later

package dnsmetrics

import "github.com/netvisor/agent/render"

// Render walks d's sketches into a flat sample list, attaching labels
// (typically device/interface identity, supplied by the caller) to every
// sample.
func (d *Data) Render(labels map[string]string) []render.Sample {
	samples := []render.Sample{
		render.FromCounter(d.Queries, labels),
		render.FromCounter(d.Replies, labels),
		render.FromCounter(d.Filtered, labels),
		render.FromCounter(d.FamilyV4, labels),
		render.FromCounter(d.FamilyV6, labels),
		render.FromCounter(d.L4TCP, labels),
		render.FromCounter(d.L4UDP, labels),
		render.FromCounter(d.XactTotal, labels),
		render.FromCounter(d.XactTimedOut, labels),
		render.FromCardinality(d.QnameCardinality, labels),
	}
	for _, c := range d.RcodeCtr {
		samples = append(samples, render.FromCounter(c, labels))
	}

	samples = append(samples, render.FromTopN(d.QnameDepth2, "qname", labels)...)
	samples = append(samples, render.FromTopN(d.QnameDepth3, "qname", labels)...)
	samples = append(samples, render.FromTopN(d.QtypeTop, "qtype", labels)...)
	samples = append(samples, render.FromTopN(d.RcodeTop, "rcode", labels)...)
	samples = append(samples, render.FromTopN(d.SourcePortTop, "port", labels)...)
	samples = append(samples, render.FromTopN(d.OrgIDTop, "org_id", labels)...)
	samples = append(samples, render.FromTopN(d.SlowXactOut, "qname", labels)...)
	samples = append(samples, render.FromTopN(d.SlowXactIn, "qname", labels)...)
	for rcode, top := range d.QnameByAdverseRcode {
		rcodeLabels := make(map[string]string, len(labels)+1)
		for k, v := range labels {
			rcodeLabels[k] = v
		}
		rcodeLabels["rcode"] = rcode
		samples = append(samples, render.FromTopN(top, "qname", rcodeLabels)...)
	}

	samples = append(samples, render.FromQuantile(d.XactOutQuantiles, nil, labels)...)
	samples = append(samples, render.FromQuantile(d.XactInQuantiles, nil, labels)...)

	return samples
}

// Render renders the live bucket.
func (h *Handler) Render() []render.Sample {
	var out []render.Sample
	h.mgr.Live().Read(func(d *Data) { out = d.Render(nil) })
	return out
}

// RenderBucket renders the n-th most recently closed bucket (n=0 is the
// most recent), or ok=false if fewer than n+1 closed buckets exist yet
// (spec.md §6: "425 Too Early if N exceeds available closed windows").
func (h *Handler) RenderBucket(n int) (out []render.Sample, ok bool) {
	b, ok := h.mgr.Bucket(n)
	if !ok {
		return nil, false
	}
	b.Read(func(d *Data) { out = d.Render(nil) })
	return out, true
}

// RenderWindow renders a merged view of the n most recently closed
// buckets (spec.md §6: "merged view of most recent N buckets").
func (h *Handler) RenderWindow(n int) (out []render.Sample, ok bool) {
	b, ok := h.mgr.MergeRange(0, n-1)
	if !ok {
		return nil, false
	}
	b.Read(func(d *Data) { out = d.Render(nil) })
	return out, true
}
