// SPDX-License-Identifier: GPL-3.0-or-later

package sketch

import "sync"

// Rate computes a derivative over a fixed 1-second sub-window within the
// live bucket and renders as an instantaneous value on read, per the
// specification's Rate sketch. A rate sketch is meaningless on a historical
// (sealed) bucket, so renderers should check the owning bucket's
// RecordedStream/ReadOnly flags before emitting it (see package bucket).
type Rate struct {
	Metric

	mu           sync.Mutex
	windowStart  int64 // unix seconds of the current 1s sub-window
	windowCount  int64 // events counted in the current sub-window
	lastRate     float64
	haveLastRate bool
}

// NewRate returns a zero-valued [*Rate] with the given schema key and help text.
func NewRate(schemaKey []string, help string) *Rate {
	return &Rate{Metric: NewMetric(schemaKey, help)}
}

// Update records n events at unix-second timestamp nowUnix, rotating the
// 1s sub-window and recomputing the instantaneous rate when nowUnix moves
// into a new second.
func (r *Rate) Update(nowUnix int64, n int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.windowStart == 0 {
		r.windowStart = nowUnix
	}
	if nowUnix > r.windowStart {
		elapsed := nowUnix - r.windowStart
		if elapsed <= 0 {
			elapsed = 1
		}
		r.lastRate = float64(r.windowCount) / float64(elapsed)
		r.haveLastRate = true
		r.windowStart = nowUnix
		r.windowCount = 0
	}
	r.windowCount += n
}

// Value returns the most recently computed instantaneous rate. Before the
// first sub-window boundary is crossed, it reports the partial rate over
// the elapsed portion of the current second (at least 1s of denominator).
func (r *Rate) Value(nowUnix int64) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.haveLastRate {
		return r.lastRate
	}
	elapsed := nowUnix - r.windowStart
	if elapsed <= 0 {
		elapsed = 1
	}
	return float64(r.windowCount) / float64(elapsed)
}

// Merge is a best-effort combination for historical rendering: it sums the
// live counts and keeps the larger of the two last-computed rates. Rate has
// no true associative merge law since it is a point-in-time derivative;
// callers rendering a merged window should prefer the Counter totals over
// a merged Rate.
func (r *Rate) Merge(other *Rate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	other.mu.Lock()
	defer other.mu.Unlock()
	r.windowCount += other.windowCount
	if other.lastRate > r.lastRate {
		r.lastRate = other.lastRate
		r.haveLastRate = r.haveLastRate || other.haveLastRate
	}
}
