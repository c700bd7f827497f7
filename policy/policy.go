// SPDX-License-Identifier: GPL-3.0-or-later

package policy

import (
	"context"
	"sync"
)

// Handler is the minimal surface a wrapped metrics handler (dnsmetrics,
// netmetrics, flow) exposes to a Policy for rendering and lifecycle —
// each concrete handler keeps its own typed Process/Manager methods;
// Policy only needs a name to key it by.
type Handler interface {
	Name() string
}

// TapHandle is the minimal surface a [*Tap] exposes to the [Manager]
// registry, independent of its event type parameter.
type TapHandle interface {
	Name() string
}

type attachment struct {
	tapName string
	sub     Subscription
}

// Policy is a named handler graph (spec.md §2 "Policy/Handler manager |
// Named handler graphs; locked access; lifecycle"): a set of metrics
// handlers, each attached to zero or more taps via a subscription.
type Policy struct {
	name string

	mu          sync.Mutex
	handlers    map[string]Handler
	attachments []attachment
	stopped     bool
}

// NewPolicy constructs an empty, running Policy.
func NewPolicy(name string) *Policy {
	return &Policy{
		name:     name,
		handlers: make(map[string]Handler),
	}
}

// Name returns the policy's configured name.
func (p *Policy) Name() string { return p.name }

// RegisterHandler records h under its own name so it is discoverable via
// [Policy.Handler] for rendering — it does not itself attach h to a tap.
func (p *Policy) RegisterHandler(h Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[h.Name()] = h
}

// Handler returns the named handler registered on this policy, if any.
func (p *Policy) Handler(name string) (Handler, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	h, ok := p.handlers[name]
	return h, ok
}

// Handlers returns every handler registered on this policy, in no
// particular order.
func (p *Policy) Handlers() []Handler {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Handler, 0, len(p.handlers))
	for _, h := range p.handlers {
		out = append(out, h)
	}
	return out
}

// Stopped reports whether [Policy.Stop] has been called.
func (p *Policy) Stopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped
}

// Stop disconnects every subscription this policy holds across every tap
// it was attached to, then marks the policy stopped (spec.md §5:
// "Stopping a policy stops its handlers then drops references"). Safe to
// call more than once.
func (p *Policy) Stop() {
	p.mu.Lock()
	attachments := p.attachments
	p.attachments = nil
	p.stopped = true
	p.mu.Unlock()

	for _, a := range attachments {
		a.sub.Close()
	}
}

func (p *Policy) addAttachment(tapName string, sub Subscription) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.attachments = append(p.attachments, attachment{tapName: tapName, sub: sub})
}

// detachTap closes every subscription this policy holds against tapName,
// under the policy's own lock — called by [Manager.RemoveTap] for each
// referencing policy before the tap itself is dropped (spec.md §5).
func (p *Policy) detachTap(tapName string) {
	p.mu.Lock()
	var kept []attachment
	var toClose []Subscription
	for _, a := range p.attachments {
		if a.tapName == tapName {
			toClose = append(toClose, a.sub)
		} else {
			kept = append(kept, a)
		}
	}
	p.attachments = kept
	p.mu.Unlock()

	for _, sub := range toClose {
		sub.Close()
	}
}

// Attach subscribes handlerName's process function to tap under this
// policy, tracking the resulting [Subscription] so [Policy.Stop] and
// [Manager.RemoveTap] can release it. A free function rather than a
// method because Go methods cannot carry their own type parameter.
func Attach[T any](p *Policy, tap *Tap[T], handlerName string, fn func(context.Context, T) error) {
	sub := tap.Subscribe(handlerName, fn)
	p.addAttachment(tap.Name(), sub)
}
