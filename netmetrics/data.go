// SPDX-License-Identifier: GPL-3.0-or-later

// Package netmetrics is the NET handler: a small per-packet bucket of
// L3/L4 byte and packet counters, split by direction, IP family, and
// transport protocol (spec.md "NET handler | 4% | L3/L4 byte/packet/IP
// counters").
package netmetrics

import "github.com/netvisor/agent/sketch"

// Direction classifies a packet relative to the monitored host/interface.
type Direction int

const (
	In Direction = iota
	Out
)

// Family and Proto mirror dnsmetrics' packet-envelope labels; kept as a
// separate, smaller enum here rather than importing dnsmetrics; the NET
// handler has no DNS dependency.
type Family int

const (
	IPv4 Family = iota
	IPv6
)

type Proto int

const (
	TCP Proto = iota
	UDP
	OtherProto
)

// Data is the NET handler's per-period bucket.Aggregator.
type Data struct {
	InBytes   *sketch.Counter
	InPackets *sketch.Counter
	OutBytes  *sketch.Counter
	OutPackets *sketch.Counter

	InBytesV4    *sketch.Counter
	InBytesV6    *sketch.Counter
	OutBytesV4   *sketch.Counter
	OutBytesV6   *sketch.Counter
	InPacketsTCP *sketch.Counter
	InPacketsUDP *sketch.Counter
	InPacketsOther *sketch.Counter
	OutPacketsTCP  *sketch.Counter
	OutPacketsUDP  *sketch.Counter
	OutPacketsOther *sketch.Counter

	Filtered *sketch.Counter
}

// NewData constructs a zeroed Data with schema keys matching the
// "net" namespace.
func NewData() *Data {
	return &Data{
		InBytes:    sketch.NewCounter([]string{"net", "in", "bytes"}, "ingress octets"),
		InPackets:  sketch.NewCounter([]string{"net", "in", "packets"}, "ingress packets"),
		OutBytes:   sketch.NewCounter([]string{"net", "out", "bytes"}, "egress octets"),
		OutPackets: sketch.NewCounter([]string{"net", "out", "packets"}, "egress packets"),

		InBytesV4:  sketch.NewCounter([]string{"net", "in", "ipv4", "bytes"}, "ingress IPv4 octets"),
		InBytesV6:  sketch.NewCounter([]string{"net", "in", "ipv6", "bytes"}, "ingress IPv6 octets"),
		OutBytesV4: sketch.NewCounter([]string{"net", "out", "ipv4", "bytes"}, "egress IPv4 octets"),
		OutBytesV6: sketch.NewCounter([]string{"net", "out", "ipv6", "bytes"}, "egress IPv6 octets"),

		InPacketsTCP:    sketch.NewCounter([]string{"net", "in", "tcp", "packets"}, "ingress TCP packets"),
		InPacketsUDP:    sketch.NewCounter([]string{"net", "in", "udp", "packets"}, "ingress UDP packets"),
		InPacketsOther:  sketch.NewCounter([]string{"net", "in", "other", "packets"}, "ingress non-TCP/UDP packets"),
		OutPacketsTCP:   sketch.NewCounter([]string{"net", "out", "tcp", "packets"}, "egress TCP packets"),
		OutPacketsUDP:   sketch.NewCounter([]string{"net", "out", "udp", "packets"}, "egress UDP packets"),
		OutPacketsOther: sketch.NewCounter([]string{"net", "out", "other", "packets"}, "egress non-TCP/UDP packets"),

		Filtered: sketch.NewCounter([]string{"net", "filtered"}, "events excluded by policy filter"),
	}
}

// Merge accumulates other's counters into d.
func (d *Data) Merge(other *Data) {
	d.InBytes.Merge(other.InBytes)
	d.InPackets.Merge(other.InPackets)
	d.OutBytes.Merge(other.OutBytes)
	d.OutPackets.Merge(other.OutPackets)

	d.InBytesV4.Merge(other.InBytesV4)
	d.InBytesV6.Merge(other.InBytesV6)
	d.OutBytesV4.Merge(other.OutBytesV4)
	d.OutBytesV6.Merge(other.OutBytesV6)

	d.InPacketsTCP.Merge(other.InPacketsTCP)
	d.InPacketsUDP.Merge(other.InPacketsUDP)
	d.InPacketsOther.Merge(other.InPacketsOther)
	d.OutPacketsTCP.Merge(other.OutPacketsTCP)
	d.OutPacketsUDP.Merge(other.OutPacketsUDP)
	d.OutPacketsOther.Merge(other.OutPacketsOther)

	d.Filtered.Merge(other.Filtered)
}
