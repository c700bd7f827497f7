// SPDX-License-Identifier: GPL-3.0-or-later

package flow

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/dgryski/go-rendezvous"
)

// shardCount is the number of independent locks guarding the device tree.
// Rendezvous hashing (rather than modulo hashing) keeps a device pinned to
// the same shard even if shardCount is reconfigured, which matters less
// here than it does for the teacher's consistent-hashing router, but the
// same primitive is reused rather than writing a second hashing scheme
// for one call site.
const shardCount = 16

// tree is the device→interface metric tree (spec.md §3 "Flow Metric
// Tree"), sharded across shardCount locks by device ID via rendezvous
// hashing, grounded on the pack's sharded-store pattern
// (etalazz-vsa/internal/ratelimiter/core) reusing
// github.com/dgryski/go-rendezvous instead of a from-scratch modulo
// shard picker — a device's shard stays stable as other devices are
// added or removed, unlike `hash(device) % N`.
type tree struct {
	rendezvous *rendezvous.Rendezvous
	shardIdx   map[string]int
	shards     []*shard
}

type shard struct {
	mu      sync.RWMutex
	devices map[string]*deviceEntry
}

// deviceEntry holds one device's interfaces.
type deviceEntry struct {
	interfaces map[string]*ifaceEntry
}

// ifaceEntry is the per-interface aggregate, holding that interface's
// *Data (see data.go), which is what satisfies bucket.Aggregator.
type ifaceEntry struct {
	data *Data
}

func newTree() *tree {
	names := make([]string, shardCount)
	shards := make([]*shard, shardCount)
	shardIdx := make(map[string]int, shardCount)
	for i := range shards {
		label := shardLabel(i)
		names[i] = label
		shardIdx[label] = i
		shards[i] = &shard{devices: make(map[string]*deviceEntry)}
	}
	return &tree{
		rendezvous: rendezvous.New(names, func(s string) uint64 { return xxhash.Sum64String(s) }),
		shardIdx:   shardIdx,
		shards:     shards,
	}
}

// shardFor returns the shard owning deviceID.
func (t *tree) shardFor(deviceID string) *shard {
	name := t.rendezvous.Lookup(deviceID)
	return t.shards[t.shardIdx[name]]
}

// getOrCreateInterface returns the Data for (deviceID, ifaceID), creating
// both the device and interface entries on first use.
func (t *tree) getOrCreateInterface(deviceID, ifaceID string) *Data {
	s := t.shardFor(deviceID)
	s.mu.Lock()
	defer s.mu.Unlock()

	dev, ok := s.devices[deviceID]
	if !ok {
		dev = &deviceEntry{interfaces: make(map[string]*ifaceEntry)}
		s.devices[deviceID] = dev
	}
	iface, ok := dev.interfaces[ifaceID]
	if !ok {
		iface = &ifaceEntry{data: NewData()}
		dev.interfaces[ifaceID] = iface
	}
	return iface.data
}

// Interface returns the Data for (deviceID, ifaceID) if it exists, for
// rendering.
func (t *tree) Interface(deviceID, ifaceID string) (*Data, bool) {
	s := t.shardFor(deviceID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	dev, ok := s.devices[deviceID]
	if !ok {
		return nil, false
	}
	iface, ok := dev.interfaces[ifaceID]
	if !ok {
		return nil, false
	}
	return iface.data, true
}

// Devices returns every currently known device ID, across all shards.
func (t *tree) Devices() []string {
	var out []string
	for _, s := range t.shards {
		s.mu.RLock()
		for id := range s.devices {
			out = append(out, id)
		}
		s.mu.RUnlock()
	}
	return out
}

// Interfaces returns every interface ID known for deviceID.
func (t *tree) Interfaces(deviceID string) []string {
	s := t.shardFor(deviceID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	dev, ok := s.devices[deviceID]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(dev.interfaces))
	for id := range dev.interfaces {
		out = append(out, id)
	}
	return out
}

// Merge accumulates other's devices/interfaces into t, creating
// destination entries as needed — the bucket.Aggregator contract for
// *tree, used both by historical window compaction and the "last N
// periods" render path.
func (t *tree) Merge(other *tree) {
	for _, s := range other.shards {
		s.mu.RLock()
		for deviceID, dev := range s.devices {
			for ifaceID, iface := range dev.interfaces {
				dst := t.getOrCreateInterface(deviceID, ifaceID)
				dst.Merge(iface.data)
			}
		}
		s.mu.RUnlock()
	}
}

func shardLabel(i int) string {
	const hex = "0123456789abcdef"
	return "shard-" + string(hex[i%len(hex)])
}
