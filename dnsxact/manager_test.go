// SPDX-License-Identifier: GPL-3.0-or-later

package dnsxact

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionMatching(t *testing.T) {
	base := time.Unix(1000, 0)

	t.Run("start then end returns elapsed", func(t *testing.T) {
		m := NewManager(0, 0)
		m.StartTransaction("flow-a", 42, base, FromHost)

		elapsed, dir, ok := m.MaybeEndTransaction("flow-a", 42, base.Add(3*time.Millisecond))
		require.True(t, ok)
		assert.Equal(t, 3*time.Millisecond, elapsed)
		assert.Equal(t, FromHost, dir)
	})

	t.Run("end on a different flow does not match", func(t *testing.T) {
		m := NewManager(0, 0)
		m.StartTransaction("flow-a", 42, base, FromHost)

		_, _, ok := m.MaybeEndTransaction("flow-b", 42, base.Add(time.Millisecond))
		assert.False(t, ok, "same xid on a different flow must not collide")
	})

	t.Run("duplicate start replaces idempotently", func(t *testing.T) {
		m := NewManager(0, 0)
		m.StartTransaction("flow-a", 1, base, FromHost)
		m.StartTransaction("flow-a", 1, base.Add(time.Second), ToHost)
		assert.Equal(t, 1, m.Len())

		elapsed, dir, ok := m.MaybeEndTransaction("flow-a", 1, base.Add(2*time.Second))
		require.True(t, ok)
		assert.Equal(t, time.Second, elapsed)
		assert.Equal(t, ToHost, dir)
	})

	t.Run("purge after max_age removes two and returns 2", func(t *testing.T) {
		m := NewManager(0, 5*time.Second)
		m.StartTransaction("flow-a", 1, base, FromHost)
		m.StartTransaction("flow-b", 2, base, FromHost)

		removed := m.PurgeOld(base.Add(6 * time.Second))
		assert.Equal(t, 2, removed)
		assert.Equal(t, 0, m.Len())
	})

	t.Run("purge leaves unexpired entries", func(t *testing.T) {
		m := NewManager(0, 5*time.Second)
		m.StartTransaction("flow-a", 1, base, FromHost)
		m.StartTransaction("flow-b", 2, base.Add(4*time.Second), FromHost)

		removed := m.PurgeOld(base.Add(6 * time.Second))
		assert.Equal(t, 1, removed)
		assert.Equal(t, 1, m.Len())
	})

	t.Run("eviction of oldest once over capacity", func(t *testing.T) {
		m := NewManager(2, 0)
		m.StartTransaction("flow-a", 1, base, FromHost)
		m.StartTransaction("flow-b", 2, base, FromHost)
		m.StartTransaction("flow-c", 3, base, FromHost)

		assert.Equal(t, 2, m.Len())
		_, _, ok := m.MaybeEndTransaction("flow-a", 1, base)
		assert.False(t, ok, "oldest transaction should have been evicted")
		_, _, ok = m.MaybeEndTransaction("flow-c", 3, base)
		assert.True(t, ok)
	})
}
