// SPDX-License-Identifier: GPL-3.0-or-later

package policy

import (
	"context"
	"sync"

	netvisor "github.com/netvisor/agent"
)

// Tap is a named input source driving one decoded-event type T (e.g. a
// dnsmetrics.PacketEvent, netmetrics.PacketEvent, or flow.FlowPacket tap).
// Packet capture, sFlow/NetFlow decode, and the reassembler that produces
// T are external collaborators (spec.md §1); Tap only owns fan-out from a
// decoded event to every handler subscribed to it.
type Tap[T any] struct {
	name       string
	logger     netvisor.SLogger
	classifier netvisor.ErrClassifier

	mu   sync.Mutex
	subs []namedFunc[T]
}

type namedFunc[T any] struct {
	name string
	fn   func(context.Context, T) error
}

// TapOpt configures a Tap at construction.
type TapOpt[T any] func(*Tap[T])

// WithTapLogger overrides the default no-op [netvisor.SLogger].
func WithTapLogger[T any](logger netvisor.SLogger) TapOpt[T] {
	return func(t *Tap[T]) { t.logger = logger }
}

// WithTapErrClassifier overrides the default no-op [netvisor.ErrClassifier].
func WithTapErrClassifier[T any](c netvisor.ErrClassifier) TapOpt[T] {
	return func(t *Tap[T]) { t.classifier = c }
}

// NewTap constructs a named Tap for event type T.
func NewTap[T any](name string, opts ...TapOpt[T]) *Tap[T] {
	t := &Tap[T]{
		name:       name,
		logger:     netvisor.DefaultSLogger(),
		classifier: netvisor.DefaultErrClassifier,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Name returns the tap's configured name.
func (t *Tap[T]) Name() string { return t.name }

// Subscribe registers handlerName's process function against this tap,
// replacing any prior registration under the same name. The returned
// [Subscription] deregisters it on Close.
func (t *Tap[T]) Subscribe(handlerName string, fn func(context.Context, T) error) Subscription {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, s := range t.subs {
		if s.name == handlerName {
			t.subs[i].fn = fn
			return newSubscription(func() { t.unsubscribe(handlerName) })
		}
	}
	t.subs = append(t.subs, namedFunc[T]{name: handlerName, fn: fn})
	return newSubscription(func() { t.unsubscribe(handlerName) })
}

func (t *Tap[T]) unsubscribe(handlerName string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, s := range t.subs {
		if s.name == handlerName {
			t.subs = append(t.subs[:i], t.subs[i+1:]...)
			return
		}
	}
}

// Dispatch feeds evt to every currently subscribed handler, in
// registration order, sequentially within the caller's own goroutine
// (spec.md §5: "Each tap drives its registered handlers sequentially
// within the tap's thread"). The subscriber list is copied out under the
// lock and then invoked lock-free, so a concurrent Close of one
// subscription never aborts an event already handed to Dispatch — it
// only prevents the *next* Dispatch from reaching that handler (spec.md
// §5 "in-flight events already dispatched complete").
//
// A handler's error is classified and logged; it never aborts dispatch
// to the remaining handlers, since handler failures (e.g. a malformed
// wire-format bug) are per-handler concerns, not tap-wide ones.
func (t *Tap[T]) Dispatch(ctx context.Context, evt T) {
	t.mu.Lock()
	fns := make([]namedFunc[T], len(t.subs))
	copy(fns, t.subs)
	t.mu.Unlock()

	for _, s := range fns {
		if err := s.fn(ctx, evt); err != nil {
			t.logger.Info("handler process failed",
				"tap", t.name, "handler", s.name, "err_class", t.classifier.Classify(err))
		}
	}
}
