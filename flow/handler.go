// SPDX-License-Identifier: GPL-3.0-or-later

package flow

import (
	"context"
	"net/netip"
	"strconv"
	"time"

	netvisor "github.com/netvisor/agent"
	"github.com/netvisor/agent/bucket"
)

// Family and L4Proto mirror the other handlers' packet-envelope labels;
// flow keeps its own copy rather than importing netmetrics, since a
// FlowRecord is a distinct wire shape (NetFlow/sFlow), not a raw packet.
type Family int

const (
	IPv4 Family = iota
	IPv6
)

type L4Proto int

const (
	TCP L4Proto = iota
	UDP
	OtherProto
)

// FlowRecord is one decoded flow record within a FlowPacket (spec.md §3
// "Flow Packet ... vector of FlowData"): L3 family, L4 proto, addresses,
// ports, ingress/egress interface, ToS, and counts.
type FlowRecord struct {
	Family           Family
	Proto            L4Proto
	SrcIP, DstIP     netip.Addr
	SrcPort, DstPort uint16
	IngressIfIndex   string
	EgressIfIndex    string
	ToS              uint8
	Packets          uint64
	Octets           uint64
}

// FlowPacket is a bundle of flow records from one exporter observation
// (spec.md §3).
type FlowPacket struct {
	Timestamp time.Time
	DeviceID  string
	Records   []FlowRecord
}

// DSCP returns the upper 6 bits of the ToS byte.
func (r FlowRecord) DSCP() uint8 { return r.ToS >> 2 }

// ECN returns the lower 2 bits of the ToS byte.
func (r FlowRecord) ECN() uint8 { return r.ToS & 0x3 }

// Opt configures a Handler at construction.
type Opt func(*Handler)

// WithFilter replaces the default allow-all filter.
func WithFilter(f netvisor.Func[FlowRecord, bool]) Opt {
	return func(h *Handler) { h.filter = f }
}

// WithWindow overrides the bucket ring's window count and period.
func WithWindow(windowCount int, period time.Duration) Opt {
	return func(h *Handler) { h.windowCount, h.period = windowCount, period }
}

// WithDeepSampleFraction overrides the deep-sample throttle fraction.
func WithDeepSampleFraction(fraction float64) Opt {
	return func(h *Handler) { h.deepFraction = fraction }
}

// WithRecordedStream marks every bucket this handler produces as sourced
// from a recorded capture rather than a live tap.
func WithRecordedStream() Opt {
	return func(h *Handler) { h.recordedStream = true }
}

// WithSummarizer overrides the default (SummarizeNone) IP summarizer.
func WithSummarizer(s *Summarizer) Opt {
	return func(h *Handler) { h.summarizer = s }
}

// WithServiceCacheSize overrides the port→service-name LRU's capacity.
func WithServiceCacheSize(n int) Opt {
	return func(h *Handler) { h.serviceCacheSize = n }
}

// WithEnrichment wires geo/ASN enrichment collaborators.
func WithEnrichment(e Enrichment) Opt {
	return func(h *Handler) { h.enrich = e }
}

// WithName overrides the handler's name (default "flow"), used to key it
// within a policy's handler graph.
func WithName(name string) Opt {
	return func(h *Handler) { h.name = name }
}

// DefaultServiceCacheSize is the port→service-name LRU's default capacity.
const DefaultServiceCacheSize = 1024

// Handler is the flow metrics pipeline stage: it ingests FlowPackets into
// a device→interface tree, one tree per bucket period.
type Handler struct {
	name   string
	filter netvisor.Func[FlowRecord, bool]

	windowCount      int
	period           time.Duration
	deepFraction     float64
	recordedStream   bool
	serviceCacheSize int
	summarizer       *Summarizer
	enrich           Enrichment

	services *serviceResolver
	mgr      *bucket.Manager[*tree]
}

// NewHandler constructs a Handler with its bucket ring starting at start.
func NewHandler(start time.Time, opts ...Opt) *Handler {
	h := &Handler{
		name:             "flow",
		filter:           allowAll(),
		windowCount:      bucket.DefaultWindowCount,
		period:           bucket.DefaultPeriod,
		deepFraction:     bucket.DefaultDeepSampleFraction,
		serviceCacheSize: DefaultServiceCacheSize,
		summarizer:       NewSummarizer(SummarizeNone),
	}
	for _, o := range opts {
		o(h)
	}
	h.services = newServiceResolver(h.serviceCacheSize)
	h.mgr = bucket.NewManager(start, h.windowCount, h.period, h.deepFraction, h.recordedStream, newTree, nil)
	return h
}

// Manager exposes the underlying bucket manager for rendering and the
// HTTP scrape surface.
func (h *Handler) Manager() *bucket.Manager[*tree] { return h.mgr }

// Name returns the handler's configured name, satisfying policy.Handler.
func (h *Handler) Name() string { return h.name }

// Interface returns the Data for (deviceID, ifaceID) in the current live
// period, if any events have touched it yet.
func (h *Handler) Interface(deviceID, ifaceID string) (*Data, bool) {
	var out *Data
	var ok bool
	h.mgr.Live().Read(func(tr *tree) { out, ok = tr.Interface(deviceID, ifaceID) })
	return out, ok
}

// Process ingests one FlowPacket: every record is filtered, classified
// into the device/interface tree, and — on deep sample — folded into the
// Top-N breakdowns.
func (h *Handler) Process(ctx context.Context, pkt FlowPacket) error {
	for _, rec := range pkt.Records {
		if err := h.processRecord(ctx, pkt.Timestamp, pkt.DeviceID, rec); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) processRecord(ctx context.Context, ts time.Time, deviceID string, rec FlowRecord) error {
	allowed, err := h.filter.Call(ctx, rec)
	if err != nil {
		return err
	}

	h.mgr.ProcessEvent(ts, func(tr *tree, deep bool) {
		if !allowed {
			if rec.IngressIfIndex != "" {
				tr.getOrCreateInterface(deviceID, rec.IngressIfIndex).Filtered.Inc()
			}
			if rec.EgressIfIndex != "" {
				tr.getOrCreateInterface(deviceID, rec.EgressIfIndex).Filtered.Inc()
			}
			return
		}

		if rec.IngressIfIndex != "" {
			d := tr.getOrCreateInterface(deviceID, rec.IngressIfIndex)
			d.Total.Inc()
			d.InBytes.Add(int64(rec.Octets))
			d.InPackets.Add(int64(rec.Packets))
			h.addProtoFamily(d, rec, true)
			if deep {
				h.addDeepSample(d, rec)
			}
		}
		if rec.EgressIfIndex != "" {
			d := tr.getOrCreateInterface(deviceID, rec.EgressIfIndex)
			d.Total.Inc()
			d.OutBytes.Add(int64(rec.Octets))
			d.OutPackets.Add(int64(rec.Packets))
			h.addProtoFamily(d, rec, false)
			if deep {
				h.addDeepSample(d, rec)
			}
		}
	})
	return nil
}

func (h *Handler) addProtoFamily(d *Data, rec FlowRecord, ingress bool) {
	octets := int64(rec.Octets)
	if ingress {
		switch rec.Proto {
		case TCP:
			d.InBytesTCP.Add(octets)
		case UDP:
			d.InBytesUDP.Add(octets)
		}
		switch rec.Family {
		case IPv4:
			d.InBytesV4.Add(octets)
		case IPv6:
			d.InBytesV6.Add(octets)
		}
		return
	}
	switch rec.Proto {
	case TCP:
		d.OutBytesTCP.Add(octets)
	case UDP:
		d.OutBytesUDP.Add(octets)
	}
	switch rec.Family {
	case IPv4:
		d.OutBytesV4.Add(octets)
	case IPv6:
		d.OutBytesV6.Add(octets)
	}
}

func (h *Handler) addDeepSample(d *Data, rec FlowRecord) {
	srcLabel := h.summarizer.Label(rec.SrcIP)
	dstLabel := h.summarizer.Label(rec.DstIP)
	srcSvc := h.services.Resolve(rec.SrcPort)
	dstSvc := h.services.Resolve(rec.DstPort)

	d.TopSrcIP.Add(srcLabel)
	d.TopDstIP.Add(dstLabel)
	d.TopSrcPort.Add(srcSvc)
	d.TopDstPort.Add(dstSvc)
	d.TopSrcIPPort.Add(srcLabel + ":" + srcSvc)
	d.TopDstIPPort.Add(dstLabel + ":" + dstSvc)
	d.TopDSCP.Add(strconv.Itoa(int(rec.DSCP())))
	d.TopECN.Add(strconv.Itoa(int(rec.ECN())))
	d.TopConversation.Add(canonicalConversation(srcLabel, srcSvc, dstLabel, dstSvc))

	if h.enrich.Geo != nil {
		if g, ok := h.enrich.Geo.LookupCity(rec.SrcIP); ok {
			d.TopGeoCity.Add(g.City)
		}
	}
	if h.enrich.ASN != nil {
		if asn, ok := h.enrich.ASN.LookupASN(rec.SrcIP); ok {
			d.TopASN.Add(asn)
		}
	}
}

// canonicalConversation renders the unordered pair of ip:port endpoints
// as min(a,b)/max(a,b), per spec.md §4.4, so a conversation is counted
// once regardless of which side is src in a given record.
func canonicalConversation(srcIP, srcSvc, dstIP, dstSvc string) string {
	a := srcIP + ":" + srcSvc
	b := dstIP + ":" + dstSvc
	if a <= b {
		return a + "/" + b
	}
	return b + "/" + a
}

func allowAll() netvisor.Func[FlowRecord, bool] {
	return netvisor.FuncAdapter[FlowRecord, bool](func(_ context.Context, _ FlowRecord) (bool, error) {
		return true, nil
	})
}
