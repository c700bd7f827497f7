// SPDX-License-Identifier: GPL-3.0-or-later

// Package bucket implements the sliding-window period manager: a ring of
// time-bounded buckets, each holding a handler-specific aggregator set,
// rotated atomically from the reader's perspective as periods elapse.
package bucket

import (
	"fmt"
	"sync"
	"time"
)

// Aggregator is the contract a handler's per-period payload must satisfy
// to live inside a Bucket: an associative in-place merge of another
// instance's state into the receiver, used both for historical-window
// compaction and for the transient "last N periods" view.
type Aggregator[T any] interface {
	Merge(other T)
}

// Bucket is a time-bounded container for one period's aggregated state.
// Once ReadOnly is set (at period end), no mutator may alter it — only
// merges into a different, mutable bucket are permitted.
type Bucket[T Aggregator[T]] struct {
	mu sync.RWMutex

	startTS        time.Time
	endTS          time.Time
	readOnly       bool
	recordedStream bool

	events      uint64
	deepSamples uint64

	data T
}

func newBucket[T Aggregator[T]](start time.Time, period time.Duration, data T, recordedStream bool) *Bucket[T] {
	return &Bucket[T]{
		startTS:        start,
		endTS:          start.Add(period),
		data:           data,
		recordedStream: recordedStream,
	}
}

// StartTS and EndTS report the period this bucket covers.
func (b *Bucket[T]) StartTS() time.Time { return b.startTS }
func (b *Bucket[T]) EndTS() time.Time   { return b.endTS }

// ReadOnly reports whether the window has closed.
func (b *Bucket[T]) ReadOnly() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.readOnly
}

// RecordedStream reports whether this bucket was populated from a
// recorded capture rather than a live tap, disabling live-rate rendering
// for it.
func (b *Bucket[T]) RecordedStream() bool { return b.recordedStream }

// Events and DeepSamples report this period's event and deep-sample
// counts.
func (b *Bucket[T]) Events() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.events
}

func (b *Bucket[T]) DeepSamples() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.deepSamples
}

// Mutate applies fn to the bucket's aggregator data under the write
// lock, counting one event (and, if deepSample, one deep sample). It
// panics if called on a read-only (sealed) bucket — a caller reaching a
// sealed live bucket is a period-manager invariant violation, not a
// recoverable error (spec.md §7: "the period manager never retries — a
// failed rotation would be a fatal invariant violation and should
// abort").
func (b *Bucket[T]) Mutate(deepSample bool, fn func(data T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.readOnly {
		panic(fmt.Sprintf("bucket: mutate called on read-only bucket [%s,%s)", b.startTS, b.endTS))
	}
	fn(b.data)
	b.events++
	if deepSample {
		b.deepSamples++
	}
}

// Read applies fn to the bucket's aggregator data under the read lock —
// used by JSON/Prometheus/OTel rendering and by Merge's source side.
func (b *Bucket[T]) Read(fn func(data T)) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	fn(b.data)
}

// Merge accumulates other's counters and aggregator state into the
// receiver. The receiver must not be a bucket a reader currently holds
// (it is typically a transient bucket built only to be merged into), or
// must itself be locked appropriately by the caller.
func (b *Bucket[T]) Merge(other *Bucket[T]) {
	other.mu.RLock()
	events := other.events
	deepSamples := other.deepSamples
	data := other.data
	other.mu.RUnlock()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.events += events
	b.deepSamples += deepSamples
	b.data.Merge(data)
}

func (b *Bucket[T]) seal() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.readOnly = true
}
