// SPDX-License-Identifier: GPL-3.0-or-later

// Package policy implements the named handler graph and tap registry
// (spec.md §2 "Policy/Handler manager"): a [Manager] holding the live set
// of policies and taps behind a membership lock, with scoped read-locked
// lookup handles that block deletion for their duration (spec.md §5).
package policy

import "sync"

// Manager is the top-level policy/tap registry. The zero value is not
// usable; construct with [NewManager].
type Manager struct {
	mu       sync.RWMutex
	policies map[string]*Policy
	taps     map[string]TapHandle
}

// NewManager constructs an empty Manager.
func NewManager() *Manager {
	return &Manager{
		policies: make(map[string]*Policy),
		taps:     make(map[string]TapHandle),
	}
}

// AddPolicy registers p under its name. Returns [ErrAlreadyExists] if the
// name is taken (spec.md §6: "409 if name exists").
func (m *Manager) AddPolicy(p *Policy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.policies[p.Name()]; ok {
		return ErrAlreadyExists
	}
	m.policies[p.Name()] = p
	return nil
}

// RemovePolicy stops and unregisters the named policy. Returns
// [ErrNotFound] if no such policy exists (spec.md §6: "404 on missing").
func (m *Manager) RemovePolicy(name string) error {
	m.mu.Lock()
	p, ok := m.policies[name]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	delete(m.policies, name)
	m.mu.Unlock()

	p.Stop()
	return nil
}

// PolicyHandle is a scoped lookup result that holds the manager's read
// lock until [PolicyHandle.Close] is called, blocking any concurrent
// [Manager.RemovePolicy] for the handle's lifetime (spec.md §5: "lookups
// return a scoped handle that holds a shared lock for the duration of
// its use, blocking deletion"). Always Close it, typically via defer.
type PolicyHandle struct {
	policy  *Policy
	release func()
}

// Policy returns the looked-up policy.
func (h *PolicyHandle) Policy() *Policy { return h.policy }

// Close releases the manager's read lock. Idempotent.
func (h *PolicyHandle) Close() error {
	h.release()
	return nil
}

// LookupPolicy returns a scoped handle for the named policy, or
// [ErrNotFound]. The caller must Close the handle when done with it.
func (m *Manager) LookupPolicy(name string) (*PolicyHandle, error) {
	m.mu.RLock()
	p, ok := m.policies[name]
	if !ok {
		m.mu.RUnlock()
		return nil, ErrNotFound
	}
	var once sync.Once
	return &PolicyHandle{policy: p, release: func() { once.Do(m.mu.RUnlock) }}, nil
}

// Policies returns the name of every currently registered policy.
func (m *Manager) Policies() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.policies))
	for name := range m.policies {
		out = append(out, name)
	}
	return out
}

// AddTap registers tap under its name. Returns [ErrAlreadyExists] if the
// name is taken.
func (m *Manager) AddTap(tap TapHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.taps[tap.Name()]; ok {
		return ErrAlreadyExists
	}
	m.taps[tap.Name()] = tap
	return nil
}

// RemoveTap unregisters the named tap, first detaching every policy's
// subscriptions to it — each under that policy's own lock — before
// dropping the tap itself (spec.md §5: "Removing a tap iterates all
// policies referencing it and removes the reference under each policy's
// lock before dropping"). Returns [ErrNotFound] if no such tap exists.
func (m *Manager) RemoveTap(name string) error {
	m.mu.Lock()
	if _, ok := m.taps[name]; !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	delete(m.taps, name)
	policies := make([]*Policy, 0, len(m.policies))
	for _, p := range m.policies {
		policies = append(policies, p)
	}
	m.mu.Unlock()

	for _, p := range policies {
		p.detachTap(name)
	}
	return nil
}

// Tap returns the named tap handle, or [ErrNotFound].
func (m *Manager) Tap(name string) (TapHandle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.taps[name]
	if !ok {
		return nil, ErrNotFound
	}
	return t, nil
}

// Taps returns the name of every currently registered tap.
func (m *Manager) Taps() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.taps))
	for name := range m.taps {
		out = append(out, name)
	}
	return out
}
