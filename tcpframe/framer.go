// SPDX-License-Identifier: GPL-3.0-or-later

// Package tcpframe reconstructs DNS message boundaries from a TCP byte
// stream using the 2-byte length prefix RFC 1035 §4.2.2 defines, handing
// each framed message to the dns package as its own copy, so the parser
// never holds on to the reassembly buffer.
package tcpframe

import "encoding/binary"

// MinMessageLen and MaxMessageLen bound the declared length prefix; a
// chunk outside this range is treated as a desynced stream per spec.md
// §4.8 and halts further processing for that direction.
const (
	MinMessageLen = 17
	MaxMessageLen = 512
)

// Framer accumulates bytes for one direction of one TCP flow and slices
// off complete, length-prefixed DNS messages as they arrive. It never
// reallocates beyond what is currently buffered plus one chunk: once
// desynced, it stops accepting further bytes until Reset.
type Framer struct {
	buf      []byte
	desynced bool
}

// New returns an empty Framer for one direction of a tracked flow.
func New() *Framer {
	return &Framer{}
}

// Desynced reports whether this direction has seen an out-of-range
// declared length and stopped processing.
func (f *Framer) Desynced() bool { return f.desynced }

// Reset clears buffered bytes and the desync state, e.g. when a flow
// direction is re-registered after a connection restart.
func (f *Framer) Reset() {
	f.buf = f.buf[:0]
	f.desynced = false
}

// Feed appends chunk to the direction's buffer and returns every complete
// DNS message payload (length-prefix bytes excluded) that can be sliced
// off as a result, in order. Each returned slice is a fresh copy of the
// payload, independent of the Framer's internal buffer, so it stays valid
// across later Feed calls; the dns package's ParseBorrowed reads it
// without taking ownership.
func (f *Framer) Feed(chunk []byte) [][]byte {
	if f.desynced {
		return nil
	}
	f.buf = append(f.buf, chunk...)

	var out [][]byte
	for {
		if len(f.buf) < 2 {
			break
		}
		declared := int(binary.BigEndian.Uint16(f.buf[0:2]))
		if declared < MinMessageLen || declared > MaxMessageLen {
			f.desynced = true
			f.buf = f.buf[:0]
			return out
		}
		if len(f.buf) < 2+declared {
			break
		}
		msg := make([]byte, declared)
		copy(msg, f.buf[2:2+declared])
		out = append(out, msg)
		f.buf = f.buf[2+declared:]
	}
	return out
}
