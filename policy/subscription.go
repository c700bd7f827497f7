// SPDX-License-Identifier: GPL-3.0-or-later

package policy

import "sync"

// Subscription is a scoped registration released via [Subscription.Close],
// per the "callback wiring as typed channel/observer with scoped
// registration" design (REDESIGN FLAGS). It is a small pointer-backed
// value — safe to copy, store in a slice, and pass around. Close is
// idempotent and safe to call from any goroutine; a second call is a
// no-op.
type Subscription struct {
	state *subscriptionState
}

type subscriptionState struct {
	once  sync.Once
	close func()
}

func newSubscription(close func()) Subscription {
	return Subscription{state: &subscriptionState{close: close}}
}

// Close deregisters the subscription. Safe to call more than once.
func (s Subscription) Close() error {
	s.state.once.Do(s.state.close)
	return nil
}
