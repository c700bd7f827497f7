// SPDX-License-Identifier: GPL-3.0-or-later

// Package flow ingests NetFlow/sFlow-style flow records into a
// device→interface metric tree (spec.md §3, §4.4): per-interface byte and
// packet counters split by direction/protocol/family, plus deep-sample-only
// Top-N breakdowns for IP, port, conversation, DSCP/ECN, and (when
// enrichment is wired in) geo and ASN.
package flow

import "github.com/netvisor/agent/sketch"

// Data is the per-interface aggregator set, satisfying
// bucket.Aggregator[*Data] and held by every ifaceEntry in the device
// tree.
type Data struct {
	Total    *sketch.Counter
	Filtered *sketch.Counter

	InBytes    *sketch.Counter
	InPackets  *sketch.Counter
	OutBytes   *sketch.Counter
	OutPackets *sketch.Counter

	InBytesTCP  *sketch.Counter
	InBytesUDP  *sketch.Counter
	InBytesV4   *sketch.Counter
	InBytesV6   *sketch.Counter
	OutBytesTCP *sketch.Counter
	OutBytesUDP *sketch.Counter
	OutBytesV4  *sketch.Counter
	OutBytesV6  *sketch.Counter

	// Deep-sample only.
	TopSrcIP        *sketch.TopN
	TopDstIP        *sketch.TopN
	TopSrcPort      *sketch.TopN
	TopDstPort      *sketch.TopN
	TopSrcIPPort    *sketch.TopN
	TopDstIPPort    *sketch.TopN
	TopDSCP         *sketch.TopN
	TopECN          *sketch.TopN
	TopConversation *sketch.TopN
	TopGeoCity      *sketch.TopN
	TopASN          *sketch.TopN
}

// NewData constructs a zeroed aggregator set with schema keys under the
// "flow" namespace.
func NewData() *Data {
	return &Data{
		Total:    sketch.NewCounter([]string{"flow", "total"}, "total flow records observed"),
		Filtered: sketch.NewCounter([]string{"flow", "filtered"}, "flow records excluded by policy filter"),

		InBytes:    sketch.NewCounter([]string{"flow", "in", "bytes"}, "ingress octets"),
		InPackets:  sketch.NewCounter([]string{"flow", "in", "packets"}, "ingress packets"),
		OutBytes:   sketch.NewCounter([]string{"flow", "out", "bytes"}, "egress octets"),
		OutPackets: sketch.NewCounter([]string{"flow", "out", "packets"}, "egress packets"),

		InBytesTCP:  sketch.NewCounter([]string{"flow", "in", "tcp", "bytes"}, "ingress TCP octets"),
		InBytesUDP:  sketch.NewCounter([]string{"flow", "in", "udp", "bytes"}, "ingress UDP octets"),
		InBytesV4:   sketch.NewCounter([]string{"flow", "in", "ipv4", "bytes"}, "ingress IPv4 octets"),
		InBytesV6:   sketch.NewCounter([]string{"flow", "in", "ipv6", "bytes"}, "ingress IPv6 octets"),
		OutBytesTCP: sketch.NewCounter([]string{"flow", "out", "tcp", "bytes"}, "egress TCP octets"),
		OutBytesUDP: sketch.NewCounter([]string{"flow", "out", "udp", "bytes"}, "egress UDP octets"),
		OutBytesV4:  sketch.NewCounter([]string{"flow", "out", "ipv4", "bytes"}, "egress IPv4 octets"),
		OutBytesV6:  sketch.NewCounter([]string{"flow", "out", "ipv6", "bytes"}, "egress IPv6 octets"),

		TopSrcIP:        sketch.NewTopN([]string{"flow", "top_src_ip"}, "top source addresses", sketch.DefaultTopNCapacity, 0),
		TopDstIP:        sketch.NewTopN([]string{"flow", "top_dst_ip"}, "top destination addresses", sketch.DefaultTopNCapacity, 0),
		TopSrcPort:      sketch.NewTopN([]string{"flow", "top_src_port"}, "top source services", sketch.DefaultTopNCapacity, 0),
		TopDstPort:      sketch.NewTopN([]string{"flow", "top_dst_port"}, "top destination services", sketch.DefaultTopNCapacity, 0),
		TopSrcIPPort:    sketch.NewTopN([]string{"flow", "top_src_ip_port"}, "top source address+service", sketch.DefaultTopNCapacity, 0),
		TopDstIPPort:    sketch.NewTopN([]string{"flow", "top_dst_ip_port"}, "top destination address+service", sketch.DefaultTopNCapacity, 0),
		TopDSCP:         sketch.NewTopN([]string{"flow", "top_dscp"}, "top DSCP values", sketch.DefaultTopNCapacity, 0),
		TopECN:          sketch.NewTopN([]string{"flow", "top_ecn"}, "top ECN values", sketch.DefaultTopNCapacity, 0),
		TopConversation: sketch.NewTopN([]string{"flow", "top_conversation"}, "top canonicalized conversations", sketch.DefaultTopNCapacity, 0),
		TopGeoCity:      sketch.NewTopN([]string{"flow", "top_geo_city"}, "top enriched cities", sketch.DefaultTopNCapacity, 0),
		TopASN:          sketch.NewTopN([]string{"flow", "top_asn"}, "top enriched ASNs", sketch.DefaultTopNCapacity, 0),
	}
}

// Merge accumulates other's counters and Top-N state into d.
func (d *Data) Merge(other *Data) {
	d.Total.Merge(other.Total)
	d.Filtered.Merge(other.Filtered)

	d.InBytes.Merge(other.InBytes)
	d.InPackets.Merge(other.InPackets)
	d.OutBytes.Merge(other.OutBytes)
	d.OutPackets.Merge(other.OutPackets)

	d.InBytesTCP.Merge(other.InBytesTCP)
	d.InBytesUDP.Merge(other.InBytesUDP)
	d.InBytesV4.Merge(other.InBytesV4)
	d.InBytesV6.Merge(other.InBytesV6)
	d.OutBytesTCP.Merge(other.OutBytesTCP)
	d.OutBytesUDP.Merge(other.OutBytesUDP)
	d.OutBytesV4.Merge(other.OutBytesV4)
	d.OutBytesV6.Merge(other.OutBytesV6)

	d.TopSrcIP.Merge(other.TopSrcIP)
	d.TopDstIP.Merge(other.TopDstIP)
	d.TopSrcPort.Merge(other.TopSrcPort)
	d.TopDstPort.Merge(other.TopDstPort)
	d.TopSrcIPPort.Merge(other.TopSrcIPPort)
	d.TopDstIPPort.Merge(other.TopDstIPPort)
	d.TopDSCP.Merge(other.TopDSCP)
	d.TopECN.Merge(other.TopECN)
	d.TopConversation.Merge(other.TopConversation)
	d.TopGeoCity.Merge(other.TopGeoCity)
	d.TopASN.Merge(other.TopASN)
}
