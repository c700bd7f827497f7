// SPDX-License-Identifier: GPL-3.0-or-later

package netmetrics

import (
	"context"
	"time"

	netvisor "github.com/netvisor/agent"
	"github.com/netvisor/agent/bucket"
)

// PacketEvent is one decoded packet's L3/L4 envelope, as classified by the
// capture or flow ingestion path.
type PacketEvent struct {
	Timestamp time.Time
	Direction Direction
	Family    Family
	Proto     Proto
	Bytes     uint64
}

// Opt configures a Handler at construction.
type Opt func(*Handler)

// WithFilter replaces the default allow-all filter.
func WithFilter(f netvisor.Func[PacketEvent, bool]) Opt {
	return func(h *Handler) { h.filter = f }
}

// WithWindow overrides the bucket ring's window count and period.
func WithWindow(windowCount int, period time.Duration) Opt {
	return func(h *Handler) { h.windowCount, h.period = windowCount, period }
}

// WithDeepSampleFraction overrides the deep-sample throttle fraction. The
// NET handler currently has no deep-sample-only aggregation, but the
// fraction is still threaded through bucket.Manager for forward
// compatibility with a future per-conversation breakdown.
func WithDeepSampleFraction(fraction float64) Opt {
	return func(h *Handler) { h.deepFraction = fraction }
}

// WithRecordedStream marks every bucket this handler produces as sourced
// from a recorded capture rather than a live tap.
func WithRecordedStream() Opt {
	return func(h *Handler) { h.recordedStream = true }
}

// WithName overrides the handler's name (default "net"), used to key it
// within a policy's handler graph.
func WithName(name string) Opt {
	return func(h *Handler) { h.name = name }
}

// Handler is the NET metrics pipeline stage.
type Handler struct {
	name   string
	filter netvisor.Func[PacketEvent, bool]

	windowCount    int
	period         time.Duration
	deepFraction   float64
	recordedStream bool

	mgr *bucket.Manager[*Data]
}

// NewHandler constructs a Handler with its bucket ring starting at start.
func NewHandler(start time.Time, opts ...Opt) *Handler {
	h := &Handler{
		name:         "net",
		filter:       allowAll(),
		windowCount:  bucket.DefaultWindowCount,
		period:       bucket.DefaultPeriod,
		deepFraction: bucket.DefaultDeepSampleFraction,
	}
	for _, o := range opts {
		o(h)
	}
	h.mgr = bucket.NewManager(start, h.windowCount, h.period, h.deepFraction, h.recordedStream, NewData, nil)
	return h
}

// Manager exposes the underlying bucket manager for rendering and the
// HTTP scrape surface.
func (h *Handler) Manager() *bucket.Manager[*Data] { return h.mgr }

// Name returns the handler's configured name, satisfying policy.Handler.
func (h *Handler) Name() string { return h.name }

// Process classifies and aggregates one decoded packet.
func (h *Handler) Process(ctx context.Context, evt PacketEvent) error {
	allowed, err := h.filter.Call(ctx, evt)
	if err != nil {
		return err
	}
	if !allowed {
		h.mgr.ProcessEvent(evt.Timestamp, func(d *Data, _ bool) { d.Filtered.Inc() })
		return nil
	}

	h.mgr.ProcessEvent(evt.Timestamp, func(d *Data, _ bool) {
		switch evt.Direction {
		case In:
			d.InBytes.Add(int64(evt.Bytes))
			d.InPackets.Inc()
			switch evt.Family {
			case IPv4:
				d.InBytesV4.Add(int64(evt.Bytes))
			case IPv6:
				d.InBytesV6.Add(int64(evt.Bytes))
			}
			switch evt.Proto {
			case TCP:
				d.InPacketsTCP.Inc()
			case UDP:
				d.InPacketsUDP.Inc()
			default:
				d.InPacketsOther.Inc()
			}
		case Out:
			d.OutBytes.Add(int64(evt.Bytes))
			d.OutPackets.Inc()
			switch evt.Family {
			case IPv4:
				d.OutBytesV4.Add(int64(evt.Bytes))
			case IPv6:
				d.OutBytesV6.Add(int64(evt.Bytes))
			}
			switch evt.Proto {
			case TCP:
				d.OutPacketsTCP.Inc()
			case UDP:
				d.OutPacketsUDP.Inc()
			default:
				d.OutPacketsOther.Inc()
			}
		}
	})
	return nil
}

func allowAll() netvisor.Func[PacketEvent, bool] {
	return netvisor.FuncAdapter[PacketEvent, bool](func(_ context.Context, _ PacketEvent) (bool, error) {
		return true, nil
	})
}
