// SPDX-License-Identifier: GPL-3.0-or-later

package dns

import "encoding/binary"

// AddResource appends a new resource to section, growing the underlying
// buffer and updating the header's section count. Ordering is preserved:
// the new record is inserted after any existing records of the same
// section and before the first record of a later section, so the arena
// stays ordered questions < answers < authority < additional regardless
// of call order (property 2). Question-section resources carry no TTL or
// RDATA on the wire; ttl and rdata are ignored when section is Question.
func (l *Layer) AddResource(section Section, name string, typ, class uint16, ttl uint32, rdata []byte) (Handle, error) {
	if l.borrowed {
		return 0, ErrBorrowed
	}
	if err := l.ensureParsed(); err != nil {
		return 0, err
	}

	nameBytes, ok := encodeName(name)
	if !ok {
		return 0, ErrMalformed
	}

	var rec []byte
	if section == Question {
		rec = make([]byte, 0, len(nameBytes)+4)
		rec = append(rec, nameBytes...)
		rec = binary.BigEndian.AppendUint16(rec, typ)
		rec = binary.BigEndian.AppendUint16(rec, class)
	} else {
		rec = make([]byte, 0, len(nameBytes)+10+len(rdata))
		rec = append(rec, nameBytes...)
		rec = binary.BigEndian.AppendUint16(rec, typ)
		rec = binary.BigEndian.AppendUint16(rec, class)
		rec = binary.BigEndian.AppendUint32(rec, ttl)
		rec = binary.BigEndian.AppendUint16(rec, uint16(len(rdata)))
		rec = append(rec, rdata...)
	}

	insertAt, arenaIdx := l.insertionPoint(section)

	l.buf = spliceInsert(l.buf, insertAt, rec)
	for i := range l.resources {
		if l.resources[i].offset >= insertAt {
			l.resources[i].offset += len(rec)
		}
	}

	newRes := Resource{
		Section: section,
		Name:    name,
		Type:    typ,
		Class:   class,
		offset:  insertAt,
		size:    len(rec),
	}
	if section != Question {
		newRes.TTL = ttl
		if rdata != nil {
			newRes.RData = append([]byte(nil), rdata...)
		}
	}

	l.resources = append(l.resources, Resource{})
	copy(l.resources[arenaIdx+1:], l.resources[arenaIdx:])
	l.resources[arenaIdx] = newRes

	l.header.setCountFor(section, l.header.countFor(section)+1)
	l.header.encode(l.buf[:headerSize])

	return Handle(arenaIdx), nil
}

// insertionPoint returns the byte offset to splice a new section-S record
// into, and the arena index that record will occupy. It is the offset
// just past the last existing section-S record, or — if none — just
// before the first record of a later section, or the end of the buffer.
func (l *Layer) insertionPoint(section Section) (byteOffset, arenaIndex int) {
	lastSameSection := -1
	firstLaterSection := -1
	for i, r := range l.resources {
		if r.Section == section {
			lastSameSection = i
		} else if r.Section > section && firstLaterSection == -1 {
			firstLaterSection = i
		}
	}
	switch {
	case lastSameSection >= 0:
		r := l.resources[lastSameSection]
		return r.offset + r.size, lastSameSection + 1
	case firstLaterSection >= 0:
		return l.resources[firstLaterSection].offset, firstLaterSection
	default:
		return len(l.buf), len(l.resources)
	}
}

// RemoveResource deletes the resource identified by handle, shrinking the
// buffer, re-linking the arena, and decrementing the section's header
// count.
func (l *Layer) RemoveResource(handle Handle) error {
	if l.borrowed {
		return ErrBorrowed
	}
	idx := int(handle)
	if idx < 0 || idx >= len(l.resources) {
		return ErrNotFound
	}
	r := l.resources[idx]

	l.buf = spliceRemove(l.buf, r.offset, r.size)
	for i := range l.resources {
		if l.resources[i].offset > r.offset {
			l.resources[i].offset -= r.size
		}
	}
	l.resources = append(l.resources[:idx], l.resources[idx+1:]...)

	l.header.setCountFor(r.Section, l.header.countFor(r.Section)-1)
	l.header.encode(l.buf[:headerSize])
	return nil
}

func spliceInsert(buf []byte, at int, rec []byte) []byte {
	out := make([]byte, 0, len(buf)+len(rec))
	out = append(out, buf[:at]...)
	out = append(out, rec...)
	out = append(out, buf[at:]...)
	return out
}

func spliceRemove(buf []byte, at, size int) []byte {
	out := make([]byte, 0, len(buf)-size)
	out = append(out, buf[:at]...)
	out = append(out, buf[at+size:]...)
	return out
}
