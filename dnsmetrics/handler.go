// SPDX-License-Identifier: GPL-3.0-or-later

package dnsmetrics

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	netvisor "github.com/netvisor/agent"
	"github.com/netvisor/agent/bucket"
	"github.com/netvisor/agent/dns"
	"github.com/netvisor/agent/dnsxact"
)

// Family and L4Proto are the packet-level labels a collaborator (the flow
// or capture ingestion path) is responsible for classifying before
// calling Process — this handler only aggregates, it never touches raw
// IP/TCP/UDP framing.
type Family int

const (
	IPv4 Family = iota
	IPv6
)

type L4Proto int

const (
	UDP L4Proto = iota
	TCP
)

// PacketEvent is one decoded DNS message plus the envelope fields the
// handler needs that are not present in the DNS layer itself.
type PacketEvent struct {
	Timestamp time.Time
	Layer     *dns.Layer
	FlowKey   string
	Family    Family
	L4        L4Proto
	// SourcePort is the non-DNS-side port of the conversation (spec.md
	// §4.3 "Top-N ... source port (non-DNS side)").
	SourcePort uint16
	// Direction classifies which side of the flow this packet's
	// transaction latency should be attributed to once matched: FromHost
	// for a query/reply pair initiated by the monitored host, ToHost for
	// one initiated elsewhere and answered by the monitored host.
	Direction dnsxact.Direction
	OrgID     uint64
	OrgIDKnown bool
}

// Opt configures a Handler at construction.
type Opt func(*Handler)

// WithFilter replaces the default allow-all filter, e.g. [OnlyRcode].
func WithFilter(f netvisor.Func[*dns.Layer, bool]) Opt {
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

// WithTransactionTable overrides the default dnsxact.Manager sizing.
func WithTransactionTable(maxOpen int, maxAge time.Duration) Opt {
	return func(h *Handler) { h.xactMaxOpen, h.xactMaxAge = maxOpen, maxAge }
}

// WithRecordedStream marks every bucket this handler produces as sourced
// from a recorded capture rather than a live tap.
func WithRecordedStream() Opt {
	return func(h *Handler) { h.recordedStream = true }
}

// WithName overrides the handler's name (default "dns"), used to key it
// within a policy's handler graph when a policy runs more than one DNS
// handler instance.
func WithName(name string) Opt {
	return func(h *Handler) { h.name = name }
}

// Handler is the DNS metrics pipeline stage: it classifies each decoded
// DNS packet, matches query/reply transactions, and feeds the current
// period's Data aggregator set.
type Handler struct {
	name    string
	portSet *dns.PortSet
	xacts   *dnsxact.Manager
	filter  netvisor.Func[*dns.Layer, bool]

	windowCount    int
	period         time.Duration
	deepFraction   float64
	recordedStream bool
	xactMaxOpen    int
	xactMaxAge     time.Duration

	mgr *bucket.Manager[*Data]

	cutoffMu    sync.RWMutex
	outCutoffUs float64
	inCutoffUs  float64
}

// NewHandler constructs a Handler with its bucket ring starting at start.
func NewHandler(start time.Time, portSet *dns.PortSet, opts ...Opt) *Handler {
	h := &Handler{
		name:         "dns",
		portSet:      portSet,
		filter:       allowAll(),
		windowCount:  bucket.DefaultWindowCount,
		period:       bucket.DefaultPeriod,
		deepFraction: bucket.DefaultDeepSampleFraction,
		xactMaxOpen:  dnsxact.DefaultMaxOpen,
		xactMaxAge:   dnsxact.DefaultMaxAge,
	}
	for _, o := range opts {
		o(h)
	}
	h.xacts = dnsxact.NewManager(h.xactMaxOpen, h.xactMaxAge)
	h.mgr = bucket.NewManager(start, h.windowCount, h.period, h.deepFraction, h.recordedStream, NewData, h.onPeriodShift)
	return h
}

// Manager exposes the underlying bucket manager for rendering and the
// HTTP scrape surface.
func (h *Handler) Manager() *bucket.Manager[*Data] { return h.mgr }

// Name returns the handler's configured name, satisfying policy.Handler.
func (h *Handler) Name() string { return h.name }

// IsDNSPort reports whether p is one of this handler's configured DNS
// ports — the capture/flow ingestion path consults this before deciding
// whether to decode a packet as DNS at all.
func (h *Handler) IsDNSPort(p uint16) bool { return h.portSet.IsDNSPort(p) }

// onPeriodShift purges timed-out transactions (crediting the count into
// the new live bucket, since the just-closed one is sealed) and
// recomputes the slow-transaction percentile cutoffs from the just-closed
// bucket's quantile digests — see bucket.OnPeriodShift's doc comment for
// why this callback receives both buckets instead of calling back into
// the manager.
func (h *Handler) onPeriodShift(at time.Time, closed, live *bucket.Bucket[*Data]) {
	if purged := h.xacts.PurgeOld(at); purged > 0 {
		live.Mutate(false, func(d *Data) { d.XactTimedOut.Add(int64(purged)) })
	}

	var outP90, inP90 float64
	closed.Read(func(d *Data) {
		outP90 = d.XactOutQuantiles.GetQuantile(0.9)
		inP90 = d.XactInQuantiles.GetQuantile(0.9)
	})
	h.cutoffMu.Lock()
	h.outCutoffUs = outP90
	h.inCutoffUs = inP90
	h.cutoffMu.Unlock()
}

// Process classifies and aggregates one decoded DNS packet. ctx is only
// used to satisfy the Func[*dns.Layer,bool] filter contract; no I/O
// happens here.
func (h *Handler) Process(ctx context.Context, evt PacketEvent) error {
	l := evt.Layer

	allowed, err := h.filter.Call(ctx, l)
	if err != nil {
		return err
	}
	if !allowed {
		h.mgr.ProcessEvent(evt.Timestamp, func(d *Data, _ bool) { d.Filtered.Inc() })
		return nil
	}

	var elapsed time.Duration
	var xactDir dnsxact.Direction
	var matched bool
	if !l.QR() {
		h.xacts.StartTransaction(evt.FlowKey, l.ID(), evt.Timestamp, evt.Direction)
	} else {
		elapsed, _, matched = h.xacts.MaybeEndTransaction(evt.FlowKey, l.ID(), evt.Timestamp)
		xactDir = evt.Direction
	}

	qname := ""
	if q, ok := l.First(dns.Question); ok {
		qname = q.Name
	}
	rcodeLbl := RcodeLabel(l.Rcode())

	h.cutoffMu.RLock()
	outCutoff, inCutoff := h.outCutoffUs, h.inCutoffUs
	h.cutoffMu.RUnlock()

	h.mgr.ProcessEvent(evt.Timestamp, func(d *Data, deep bool) {
		if l.QR() {
			d.Replies.Inc()
			if c, ok := d.RcodeCtr[rcodeLbl]; ok {
				c.Inc()
			}
		} else {
			d.Queries.Inc()
		}
		switch evt.Family {
		case IPv4:
			d.FamilyV4.Inc()
		case IPv6:
			d.FamilyV6.Inc()
		}
		switch evt.L4 {
		case TCP:
			d.L4TCP.Inc()
		case UDP:
			d.L4UDP.Inc()
		}

		if deep && qname != "" {
			d.QnameCardinality.AddString(qname)
			d.QnameDepth2.Add(qnameAtDepth(qname, 2))
			d.QnameDepth3.Add(qnameAtDepth(qname, 3))
			if l.QR() {
				if top, ok := d.QnameByAdverseRcode[rcodeLbl]; ok {
					top.Add(qname)
				}
				d.RcodeTop.Add(rcodeLbl)
			}
			if q, ok := l.First(dns.Question); ok {
				d.QtypeTop.Add(strconv.Itoa(int(q.Type)))
			}
			d.SourcePortTop.Add(strconv.Itoa(int(evt.SourcePort)))
			if evt.OrgIDKnown {
				d.OrgIDTop.Add(strconv.FormatUint(evt.OrgID, 10))
			}
		}

		if matched {
			d.XactTotal.Inc()
			us := uint64(elapsed.Microseconds())
			switch xactDir {
			case dnsxact.FromHost:
				d.XactOutQuantiles.Update(us)
				if outCutoff > 0 && float64(us) >= outCutoff && qname != "" {
					d.SlowXactOut.Add(qname)
				}
			case dnsxact.ToHost:
				d.XactInQuantiles.Update(us)
				if inCutoff > 0 && float64(us) >= inCutoff && qname != "" {
					d.SlowXactIn.Add(qname)
				}
			}
		}
	})

	return nil
}

// qnameAtDepth joins the last n labels of a dotted name, or the whole
// name if it has fewer than n labels.
func qnameAtDepth(name string, n int) string {
	labels := strings.Split(strings.TrimSuffix(name, "."), ".")
	if len(labels) <= n {
		return strings.Join(labels, ".")
	}
	return strings.Join(labels[len(labels)-n:], ".")
}
