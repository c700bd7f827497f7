// SPDX-License-Identifier: GPL-3.0-or-later

package flow

import "container/list"

// lru is a small bounded key→value cache used for port→service-name
// resolution (spec.md §4.4 "resolved to service name via LRU of
// configured size"). It is hand-rolled rather than pulled from a
// dependency: no pack example ships a generic LRU small enough to justify
// a new module for this one call site (see DESIGN.md), so it follows the
// bounded-map-plus-doubly-linked-eviction-list shape the corpus uses
// elsewhere for ownership-tracked collections (dnsxact.Manager's
// container/list-backed table).
type lru[K comparable, V any] struct {
	capacity int
	order    *list.List // front = most recently used
	index    map[K]*list.Element
}

type lruEntry[K comparable, V any] struct {
	key   K
	value V
}

func newLRU[K comparable, V any](capacity int) *lru[K, V] {
	if capacity <= 0 {
		capacity = 1
	}
	return &lru[K, V]{
		capacity: capacity,
		order:    list.New(),
		index:    make(map[K]*list.Element, capacity),
	}
}

// GetOrCompute returns the cached value for key, computing and inserting
// it via compute if absent.
func (c *lru[K, V]) GetOrCompute(key K, compute func() V) V {
	if el, ok := c.index[key]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*lruEntry[K, V]).value
	}
	v := compute()
	el := c.order.PushFront(&lruEntry[K, V]{key: key, value: v})
	c.index[key] = el
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.index, oldest.Value.(*lruEntry[K, V]).key)
	}
	return v
}

// Len reports the number of cached entries.
func (c *lru[K, V]) Len() int { return c.order.Len() }
