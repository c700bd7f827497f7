// SPDX-License-Identifier: GPL-3.0-or-later

package sketch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCounter(t *testing.T) {
	t.Run("add and value", func(t *testing.T) {
		c := NewCounter([]string{"wire_packets", "queries"}, "total queries")
		c.Inc()
		c.Add(4)
		assert.Equal(t, int64(5), c.Value())
		assert.Equal(t, []string{"wire_packets", "queries"}, c.SchemaKey())
		assert.Equal(t, "wire_packets_queries", c.PrometheusName())
	})

	t.Run("merge is associative", func(t *testing.T) {
		a := NewCounter(nil, "")
		b := NewCounter(nil, "")
		c := NewCounter(nil, "")
		a.Add(3)
		b.Add(5)
		c.Add(7)

		ab := NewCounter(nil, "")
		ab.Merge(a)
		ab.Merge(b)
		ab.Merge(c)

		bc := NewCounter(nil, "")
		bc.Merge(b)
		bc.Merge(c)
		aThenBC := NewCounter(nil, "")
		aThenBC.Merge(a)
		aThenBC.Merge(bc)

		assert.Equal(t, ab.Value(), aThenBC.Value())
		assert.Equal(t, int64(15), ab.Value())
	})

	t.Run("reset", func(t *testing.T) {
		c := NewCounter(nil, "")
		c.Add(10)
		c.Reset()
		assert.Equal(t, int64(0), c.Value())
	})
}
