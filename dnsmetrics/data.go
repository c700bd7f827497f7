// SPDX-License-Identifier: GPL-3.0-or-later

// Package dnsmetrics is the per-packet DNS handler: it feeds decoded DNS
// layers into a sliding-window bucket of counters, cardinality, top-N,
// and quantile sketches, and hooks transaction completion into the
// slow-transaction top-N computed from each period's 90th percentile.
package dnsmetrics

import "github.com/netvisor/agent/sketch"

// Rcode labels, matching spec.md §4.3's enumerated set. SRVFAIL is the
// spec's own label for rcode 2 (conventionally "SERVFAIL"); kept as
// documented rather than "corrected", per the design notes' guidance not
// to guess at a spec-documented label.
const (
	RcodeNoError  = "NOERROR"
	RcodeNXDomain = "NXDOMAIN"
	RcodeRefused  = "REFUSED"
	RcodeSrvFail  = "SRVFAIL"
	RcodeOther    = "OTHER"
)

var adverseRcodes = []string{RcodeNXDomain, RcodeRefused, RcodeSrvFail}

// RcodeLabel maps a raw 4-bit DNS rcode to its metric label.
func RcodeLabel(rcode uint8) string {
	switch rcode {
	case 0:
		return RcodeNoError
	case 2:
		return RcodeSrvFail
	case 3:
		return RcodeNXDomain
	case 5:
		return RcodeRefused
	default:
		return RcodeOther
	}
}

// Data is the per-period aggregator set for the DNS handler, satisfying
// bucket.Aggregator[*Data].
type Data struct {
	Queries   *sketch.Counter
	Replies   *sketch.Counter
	Filtered  *sketch.Counter
	FamilyV4  *sketch.Counter
	FamilyV6  *sketch.Counter
	L4TCP     *sketch.Counter
	L4UDP     *sketch.Counter
	RcodeCtr  map[string]*sketch.Counter

	// Deep-sample only.
	QnameCardinality    *sketch.Cardinality
	QnameDepth2         *sketch.TopN
	QnameDepth3         *sketch.TopN
	QnameByAdverseRcode map[string]*sketch.TopN
	QtypeTop            *sketch.TopN
	RcodeTop             *sketch.TopN
	SourcePortTop        *sketch.TopN
	OrgIDTop             *sketch.TopN

	// Transaction completion.
	XactOutQuantiles *sketch.Quantile
	XactInQuantiles  *sketch.Quantile
	SlowXactOut      *sketch.TopN
	SlowXactIn       *sketch.TopN
	XactTotal        *sketch.Counter
	XactTimedOut     *sketch.Counter
}

// NewData constructs a zeroed aggregator set with schema keys matching
// spec.md §4.3's metric names.
func NewData() *Data {
	d := &Data{
		Queries:  sketch.NewCounter([]string{"wire_packets", "queries"}, "total DNS queries observed"),
		Replies:  sketch.NewCounter([]string{"wire_packets", "replies"}, "total DNS replies observed"),
		Filtered: sketch.NewCounter([]string{"wire_packets", "filtered"}, "events excluded by policy filter"),
		FamilyV4: sketch.NewCounter([]string{"wire_packets", "ipv4"}, "IPv4 DNS packets"),
		FamilyV6: sketch.NewCounter([]string{"wire_packets", "ipv6"}, "IPv6 DNS packets"),
		L4TCP:    sketch.NewCounter([]string{"wire_packets", "tcp"}, "DNS over TCP packets"),
		L4UDP:    sketch.NewCounter([]string{"wire_packets", "udp"}, "DNS over UDP packets"),
		RcodeCtr: map[string]*sketch.Counter{},

		QnameCardinality: sketch.NewCardinality([]string{"wire_packets", "cardinality", "qname"}, "distinct query names observed", sketch.DefaultPrecision),
		QnameDepth2:      sketch.NewTopN([]string{"wire_packets", "top_qname2"}, "top query names, last 2 labels", sketch.DefaultTopNCapacity, 0),
		QnameDepth3:      sketch.NewTopN([]string{"wire_packets", "top_qname3"}, "top query names, last 3 labels", sketch.DefaultTopNCapacity, 0),
		QnameByAdverseRcode: map[string]*sketch.TopN{},
		QtypeTop:      sketch.NewTopN([]string{"wire_packets", "top_qtype"}, "top query types", sketch.DefaultTopNCapacity, 0),
		RcodeTop:      sketch.NewTopN([]string{"wire_packets", "top_rcode"}, "top reply codes", sketch.DefaultTopNCapacity, 0),
		SourcePortTop: sketch.NewTopN([]string{"wire_packets", "top_srcport"}, "top non-DNS-side source ports", sketch.DefaultTopNCapacity, 0),
		OrgIDTop:      sketch.NewTopN([]string{"wire_packets", "top_orgid"}, "top resolved organization IDs", sketch.DefaultTopNCapacity, 0),

		XactOutQuantiles: sketch.NewQuantile([]string{"xact", "out", "quantiles_us"}, "from-host transaction latency, microseconds"),
		XactInQuantiles:  sketch.NewQuantile([]string{"xact", "in", "quantiles_us"}, "to-host transaction latency, microseconds"),
		SlowXactOut:      sketch.NewTopN([]string{"xact", "out", "top_slow"}, "slowest from-host query names", sketch.DefaultTopNCapacity, 0),
		SlowXactIn:       sketch.NewTopN([]string{"xact", "in", "top_slow"}, "slowest to-host query names", sketch.DefaultTopNCapacity, 0),
		XactTotal:        sketch.NewCounter([]string{"xact", "total"}, "total matched transactions"),
		XactTimedOut:     sketch.NewCounter([]string{"xact", "timed_out"}, "transactions purged without a matching reply"),
	}
	for _, rc := range []string{RcodeNoError, RcodeNXDomain, RcodeRefused, RcodeSrvFail, RcodeOther} {
		d.RcodeCtr[rc] = sketch.NewCounter([]string{"wire_packets", "rcode", rc}, "replies with rcode "+rc)
	}
	for _, rc := range adverseRcodes {
		d.QnameByAdverseRcode[rc] = sketch.NewTopN([]string{"wire_packets", "top_qname_by_rcode", rc}, "top query names with rcode "+rc, sketch.DefaultTopNCapacity, 0)
	}
	return d
}

// Merge accumulates other's state into d, associatively, per sketch.
func (d *Data) Merge(other *Data) {
	d.Queries.Merge(other.Queries)
	d.Replies.Merge(other.Replies)
	d.Filtered.Merge(other.Filtered)
	d.FamilyV4.Merge(other.FamilyV4)
	d.FamilyV6.Merge(other.FamilyV6)
	d.L4TCP.Merge(other.L4TCP)
	d.L4UDP.Merge(other.L4UDP)
	for k, c := range other.RcodeCtr {
		if existing, ok := d.RcodeCtr[k]; ok {
			existing.Merge(c)
		}
	}

	_ = d.QnameCardinality.Merge(other.QnameCardinality) // same precision by construction
	d.QnameDepth2.Merge(other.QnameDepth2)
	d.QnameDepth3.Merge(other.QnameDepth3)
	for k, t := range other.QnameByAdverseRcode {
		if existing, ok := d.QnameByAdverseRcode[k]; ok {
			existing.Merge(t)
		}
	}
	d.QtypeTop.Merge(other.QtypeTop)
	d.RcodeTop.Merge(other.RcodeTop)
	d.SourcePortTop.Merge(other.SourcePortTop)
	d.OrgIDTop.Merge(other.OrgIDTop)

	d.XactOutQuantiles.Merge(other.XactOutQuantiles)
	d.XactInQuantiles.Merge(other.XactInQuantiles)
	d.SlowXactOut.Merge(other.SlowXactOut)
	d.SlowXactIn.Merge(other.SlowXactIn)
	d.XactTotal.Merge(other.XactTotal)
	d.XactTimedOut.Merge(other.XactTimedOut)
}
