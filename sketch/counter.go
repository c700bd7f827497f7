// SPDX-License-Identifier: GPL-3.0-or-later

package sketch

import "sync/atomic"

// Counter is an integer with an associative Add, grounded on the teacher
// corpus's preference for atomic counters over mutex-guarded integers on
// the hot path (see etalazz-vsa/internal/ratelimiter/core/metrics.go).
//
// The bucket's own read-write lock still serializes Counter access relative
// to sketch merges and rendering (see package bucket); the atomic here
// protects against concurrent Add calls within a single writer's critical
// section being cheap to reason about.
type Counter struct {
	Metric
	value atomic.Int64
}

// NewCounter returns a zero-valued [*Counter] with the given schema key and help text.
func NewCounter(schemaKey []string, help string) *Counter {
	return &Counter{Metric: NewMetric(schemaKey, help)}
}

// Add increments the counter by delta (delta may be negative, though no
// caller in this module does that).
func (c *Counter) Add(delta int64) {
	c.value.Add(delta)
}

// Inc increments the counter by one.
func (c *Counter) Inc() {
	c.value.Add(1)
}

// Value returns the current count.
func (c *Counter) Value() int64 {
	return c.value.Load()
}

// Merge adds other's value into c. Associative: merging A then B then C
// yields the same total regardless of grouping.
func (c *Counter) Merge(other *Counter) {
	c.value.Add(other.Value())
}

// Reset zeroes the counter. Only legal before a bucket is sealed read-only.
func (c *Counter) Reset() {
	c.value.Store(0)
}
