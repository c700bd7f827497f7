// SPDX-License-Identifier: GPL-3.0-or-later

// Package pipeline is the registry mapping the agent's three built-in
// handler kinds ("dns", "net", "flow") to their concrete, generically
// typed tap and handler constructors. Both the HTTP control plane
// (package httpapi) and the config-driven startup path (cmd/netvisor-agent)
// build their taps and policy/handler bindings through this one registry,
// so the two ways of standing up a pipeline never drift apart.
package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/netvisor/agent/dns"
	"github.com/netvisor/agent/dnsmetrics"
	"github.com/netvisor/agent/flow"
	"github.com/netvisor/agent/netmetrics"
	"github.com/netvisor/agent/policy"
)

// Kind names one of the three built-in handler/tap pipelines. The agent
// ships a fixed set of pipelines rather than an open plugin system, so
// this registry is a closed switch, not an extensible map.
type Kind string

const (
	DNS  Kind = "dns"
	Net  Kind = "net"
	Flow Kind = "flow"
)

// ErrUnknownKind is returned by [NewTap] and [AttachHandler] for any Kind
// outside the closed set above.
var ErrUnknownKind = errors.New("pipeline: unknown handler kind")

// ErrKindMismatch is returned by [AttachHandler] when the supplied tap's
// concrete type doesn't match kind (e.g. a "net" binding naming a tap
// that was created as "dns").
var ErrKindMismatch = errors.New("pipeline: tap kind does not match handler kind")

// Valid reports whether k is one of the closed set of known kinds.
func Valid(k Kind) bool {
	switch k {
	case DNS, Net, Flow:
		return true
	default:
		return false
	}
}

// NewTap constructs the concrete, generically-typed tap for kind, named
// name, returning it as a [policy.TapHandle] — the same duck-typed
// handle [policy.Manager] stores regardless of the tap's event type.
func NewTap(kind Kind, name string) (policy.TapHandle, error) {
	switch kind {
	case DNS:
		return policy.NewTap[dnsmetrics.PacketEvent](name), nil
	case Net:
		return policy.NewTap[netmetrics.PacketEvent](name), nil
	case Flow:
		return policy.NewTap[flow.FlowPacket](name), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// AttachHandler constructs a new handler instance of kind, registers it
// on p, and subscribes it to tap — which must be the matching concrete
// *policy.Tap[T] for kind, else [ErrKindMismatch].
func AttachHandler(p *policy.Policy, tap policy.TapHandle, kind Kind, handlerName string, now time.Time) error {
	switch kind {
	case DNS:
		t, ok := tap.(*policy.Tap[dnsmetrics.PacketEvent])
		if !ok {
			return ErrKindMismatch
		}
		h := dnsmetrics.NewHandler(now, dns.NewPortSet(), dnsmetrics.WithName(handlerName))
		p.RegisterHandler(h)
		policy.Attach(p, t, handlerName, h.Process)
		return nil
	case Net:
		t, ok := tap.(*policy.Tap[netmetrics.PacketEvent])
		if !ok {
			return ErrKindMismatch
		}
		h := netmetrics.NewHandler(now, netmetrics.WithName(handlerName))
		p.RegisterHandler(h)
		policy.Attach(p, t, handlerName, h.Process)
		return nil
	case Flow:
		t, ok := tap.(*policy.Tap[flow.FlowPacket])
		if !ok {
			return ErrKindMismatch
		}
		h := flow.NewHandler(now, flow.WithName(handlerName))
		p.RegisterHandler(h)
		policy.Attach(p, t, handlerName, h.Process)
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}
