// SPDX-License-Identifier: GPL-3.0-or-later

package netmetrics

import "github.com/netvisor/agent/render"

// Render walks d's counters into a flat sample list, attaching labels
// (typically device/interface identity, supplied by the caller) to every
// sample.
func (d *Data) Render(labels map[string]string) []render.Sample {
	return []render.Sample{
		render.FromCounter(d.InBytes, labels),
		render.FromCounter(d.InPackets, labels),
		render.FromCounter(d.OutBytes, labels),
		render.FromCounter(d.OutPackets, labels),
		render.FromCounter(d.InBytesV4, labels),
		render.FromCounter(d.InBytesV6, labels),
		render.FromCounter(d.OutBytesV4, labels),
		render.FromCounter(d.OutBytesV6, labels),
		render.FromCounter(d.InPacketsTCP, labels),
		render.FromCounter(d.InPacketsUDP, labels),
		render.FromCounter(d.InPacketsOther, labels),
		render.FromCounter(d.OutPacketsTCP, labels),
		render.FromCounter(d.OutPacketsUDP, labels),
		render.FromCounter(d.OutPacketsOther, labels),
		render.FromCounter(d.Filtered, labels),
	}
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
