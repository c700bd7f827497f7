// SPDX-License-Identifier: GPL-3.0-or-later

package dns

// Resource is one decoded question/answer/authority/additional record.
// Resources live in a single arena slice owned by Layer (Layer.resources)
// rather than a linked list of heap nodes: Section is the membership tag,
// and offset/size record where in the buffer this record's bytes live so
// RemoveResource can splice them back out. Questions carry no TTL or
// RDATA; TTL is zero and RData is nil for them.
type Resource struct {
	Section Section
	Name    string
	Type    uint16
	Class   uint16
	TTL     uint32
	RData   []byte

	offset int // start of this record's encoded bytes in the buffer
	size   int // total encoded byte length of this record
}

// Handle identifies a previously added or parsed Resource for removal. It
// is the resource's index within Layer's arena at the time it was
// returned; RemoveResource re-validates it against the current arena.
type Handle int
