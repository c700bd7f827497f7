// SPDX-License-Identifier: GPL-3.0-or-later

package bucket

import (
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// DefaultWindowCount and DefaultPeriod match spec.md §3: a ring of 5
// buckets, each 60 seconds, by default.
const (
	DefaultWindowCount = 5
	DefaultPeriod      = 60 * time.Second
	// DefaultDeepSampleFraction samples every event (100%) unless the
	// caller configures a lower fraction for high-volume taps.
	DefaultDeepSampleFraction = 1.0
)

// OnPeriodShift is invoked exactly once per rotation, with the timestamp
// the rotation occurred at, the bucket that was just sealed (the
// previous live bucket, now historical), and the newly installed live
// bucket — e.g. the DNS handler uses this to purge aged-out transactions
// (counting the purge into the new live bucket, which is still
// mutable) and recompute the slow-transaction percentile cutoff from the
// just-closed bucket's quantile digest. The callback runs while the
// manager holds its rotation lock, so it must not call back into the
// Manager that invoked it, to avoid relocking a non-reentrant mutex; both
// buckets are passed in so it has no need to.
type OnPeriodShift[T Aggregator[T]] func(at time.Time, closed, live *Bucket[T])

// Manager owns the ring of window buckets for one handler: exactly one
// live bucket, exposed for mutation, plus windowCount-1 closed buckets
// exposed for read. Rotation holds an internal lock only across the
// rotation itself; the live-bucket pointer swap is atomic from a
// reader's viewpoint — a reader that already has the old live bucket
// keeps rendering it safely via the bucket's own rwlock even after
// it has been sealed and a new live bucket installed.
type Manager[T Aggregator[T]] struct {
	windowCount  int
	period       time.Duration
	deepFraction float64
	newData      func() T
	onShift      OnPeriodShift[T]
	recorded     bool

	rotMu sync.Mutex
	live  *Bucket[T]
	// ring[0] is always the same pointer as live; ring[1:] are closed
	// buckets, most recent first.
	ring []*Bucket[T]
}

// NewManager constructs a Manager with an initial live bucket starting
// at `start`. windowCount <= 0 and period <= 0 fall back to the spec
// defaults; deepFraction <= 0 falls back to sampling every event.
func NewManager[T Aggregator[T]](start time.Time, windowCount int, period time.Duration, deepFraction float64, recordedStream bool, newData func() T, onShift OnPeriodShift[T]) *Manager[T] {
	if windowCount <= 0 {
		windowCount = DefaultWindowCount
	}
	if period <= 0 {
		period = DefaultPeriod
	}
	if deepFraction <= 0 {
		deepFraction = DefaultDeepSampleFraction
	}
	live := newBucket(start, period, newData(), recordedStream)
	return &Manager[T]{
		windowCount:  windowCount,
		period:       period,
		deepFraction: deepFraction,
		newData:      newData,
		onShift:      onShift,
		recorded:     recordedStream,
		live:         live,
		ring:         []*Bucket[T]{live},
	}
}

// Live returns the current live bucket. The returned pointer remains
// valid and safely readable/mutable-until-sealed even if a concurrent
// rotation swaps it out from under the manager immediately afterwards.
func (m *Manager[T]) Live() *Bucket[T] {
	m.rotMu.Lock()
	defer m.rotMu.Unlock()
	return m.live
}

// ProcessEvent rotates the ring if the live bucket's period has elapsed,
// decides deep-sampling for this event, and applies fn to the (possibly
// newly-rotated) live bucket's data.
func (m *Manager[T]) ProcessEvent(now time.Time, fn func(data T, deepSample bool)) {
	live := m.maybeRotate(now)
	sampled := m.deepSample(now)
	live.Mutate(sampled, func(data T) { fn(data, sampled) })
}

// deepSample decides, by a deterministic hash of the event timestamp,
// whether this event is chosen for expensive per-field aggregation.
// Hashing the timestamp (rather than e.g. a running counter) keeps the
// decision reproducible for a recorded stream without needing shared
// state beyond the configured fraction.
func (m *Manager[T]) deepSample(now time.Time) bool {
	if m.deepFraction >= 1.0 {
		return true
	}
	if m.deepFraction <= 0.0 {
		return false
	}
	h := xxhash.Sum64(fmt.Appendf(nil, "%d", now.UnixNano()))
	return float64(h%1_000_000)/1_000_000.0 < m.deepFraction
}

func (m *Manager[T]) maybeRotate(now time.Time) *Bucket[T] {
	m.rotMu.Lock()
	defer m.rotMu.Unlock()

	if now.Before(m.live.endTS) {
		return m.live
	}

	closed := m.live
	closed.seal()

	next := newBucket(now, m.period, m.newData(), m.recorded)
	m.live = next
	m.ring = append([]*Bucket[T]{next}, m.ring...)
	if len(m.ring) > m.windowCount {
		m.ring = m.ring[:m.windowCount]
	}

	if m.onShift != nil {
		m.onShift(now, closed, next)
	}
	return next
}

// ClosedCount returns the number of currently available closed buckets.
func (m *Manager[T]) ClosedCount() int {
	m.rotMu.Lock()
	defer m.rotMu.Unlock()
	return len(m.ring) - 1
}

// Bucket returns the i-th most recently closed bucket (i=0 is the most
// recent), or ok=false if fewer than i+1 closed buckets exist yet (the
// HTTP surface turns this into a 425 Too Early).
func (m *Manager[T]) Bucket(i int) (*Bucket[T], bool) {
	m.rotMu.Lock()
	defer m.rotMu.Unlock()
	idx := i + 1 // ring[0] is live
	if idx < 0 || idx >= len(m.ring) {
		return nil, false
	}
	return m.ring[idx], true
}

// MergeRange produces a transient bucket summing the closed buckets from
// index `from` through `to` inclusive (0 = most recently closed),
// without mutating the ring — used by the JSON "window" endpoint. ok is
// false if the range reaches further back than the available closed
// buckets.
func (m *Manager[T]) MergeRange(from, to int) (*Bucket[T], bool) {
	m.rotMu.Lock()
	ringCopy := make([]*Bucket[T], len(m.ring))
	copy(ringCopy, m.ring)
	period := m.period
	recorded := m.recorded
	newData := m.newData
	m.rotMu.Unlock()

	if from < 0 || to < from {
		return nil, false
	}
	lastIdx := to + 1
	if lastIdx >= len(ringCopy) {
		return nil, false
	}

	merged := newBucket(ringCopy[from+1].startTS, period, newData(), recorded)
	for i := from; i <= to; i++ {
		merged.Merge(ringCopy[i+1])
	}
	return merged, true
}
