// SPDX-License-Identifier: GPL-3.0-or-later

package flow

import "github.com/netvisor/agent/render"

// Render walks d's counters and Top-N sketches into a flat sample list,
// attaching labels (typically device/interface identity, supplied by the
// caller) to every sample.
func (d *Data) Render(labels map[string]string) []render.Sample {
	samples := []render.Sample{
		render.FromCounter(d.Total, labels),
		render.FromCounter(d.Filtered, labels),
		render.FromCounter(d.InBytes, labels),
		render.FromCounter(d.InPackets, labels),
		render.FromCounter(d.OutBytes, labels),
		render.FromCounter(d.OutPackets, labels),
		render.FromCounter(d.InBytesTCP, labels),
		render.FromCounter(d.InBytesUDP, labels),
		render.FromCounter(d.InBytesV4, labels),
		render.FromCounter(d.InBytesV6, labels),
		render.FromCounter(d.OutBytesTCP, labels),
		render.FromCounter(d.OutBytesUDP, labels),
		render.FromCounter(d.OutBytesV4, labels),
		render.FromCounter(d.OutBytesV6, labels),
	}
	samples = append(samples, render.FromTopN(d.TopSrcIP, "ip", labels)...)
	samples = append(samples, render.FromTopN(d.TopDstIP, "ip", labels)...)
	samples = append(samples, render.FromTopN(d.TopSrcPort, "port", labels)...)
	samples = append(samples, render.FromTopN(d.TopDstPort, "port", labels)...)
	samples = append(samples, render.FromTopN(d.TopSrcIPPort, "ip_port", labels)...)
	samples = append(samples, render.FromTopN(d.TopDstIPPort, "ip_port", labels)...)
	samples = append(samples, render.FromTopN(d.TopDSCP, "dscp", labels)...)
	samples = append(samples, render.FromTopN(d.TopECN, "ecn", labels)...)
	samples = append(samples, render.FromTopN(d.TopConversation, "conversation", labels)...)
	samples = append(samples, render.FromTopN(d.TopGeoCity, "city", labels)...)
	samples = append(samples, render.FromTopN(d.TopASN, "asn", labels)...)
	return samples
}

// renderTree walks every known device/interface pair in tr and renders
// each one's Data, tagging every sample with "device" and
// "device_interface" labels (spec.md §6: "per-metric labels (device,
// device_interface, ...)").
func renderTree(tr *tree) []render.Sample {
	var out []render.Sample
	for _, deviceID := range tr.Devices() {
		for _, ifaceID := range tr.Interfaces(deviceID) {
			data, ok := tr.Interface(deviceID, ifaceID)
			if !ok {
				continue
			}
			labels := map[string]string{
				"device":           deviceID,
				"device_interface": ifaceID,
			}
			out = append(out, data.Render(labels)...)
		}
	}
	return out
}

// Render renders the live bucket's device/interface tree.
func (h *Handler) Render() []render.Sample {
	var out []render.Sample
	h.mgr.Live().Read(func(tr *tree) { out = renderTree(tr) })
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
	b.Read(func(tr *tree) { out = renderTree(tr) })
	return out, true
}

// RenderWindow renders a merged view of the n most recently closed
// buckets (spec.md §6: "merged view of most recent N buckets").
func (h *Handler) RenderWindow(n int) (out []render.Sample, ok bool) {
	b, ok := h.mgr.MergeRange(0, n-1)
	if !ok {
		return nil, false
	}
	b.Read(func(tr *tree) { out = renderTree(tr) })
	return out, true
}
