// SPDX-License-Identifier: GPL-3.0-or-later

package dns

import "encoding/binary"

// ParseOptions controls how much of the message ParseResources decodes.
// QueryOnly stops after the question section; AdditionalOnly still walks
// (but does not store) the question/answer/authority sections to reach
// the additional section, storing only that one. Both unset parses every
// section. Force re-parses even if a prior call already produced a
// result, including a sticky failure.
type ParseOptions struct {
	QueryOnly      bool
	AdditionalOnly bool
	Force          bool
}

// ParseResources decodes the question/answer/authority/additional
// sections into Layer's resource arena. Once parsed, subsequent calls are
// no-ops unless Force is set — including when the prior parse failed: a
// malformed message stays malformed until the caller explicitly forces a
// re-parse, per the sticky parse_failed contract.
func (l *Layer) ParseResources(opts ParseOptions) error {
	if l.parsed && !opts.Force {
		if l.parseFailed {
			return ErrMalformed
		}
		return nil
	}

	resources, ok := l.decodeResources(opts)
	l.parsed = true
	if !ok {
		l.parseFailed = true
		l.resources = nil
		return ErrMalformed
	}
	l.parseFailed = false
	l.resources = resources
	return nil
}

func (l *Layer) decodeResources(opts ParseOptions) ([]Resource, bool) {
	var out []Resource
	pos := headerSize

	pos, qs, ok := parseSection(l.buf, pos, Question, l.header.QDCount, true)
	if !ok {
		return nil, false
	}
	out = append(out, qs...)
	if opts.QueryOnly {
		return out, true
	}

	pos, ans, ok := parseSection(l.buf, pos, Answer, l.header.ANCount, false)
	if !ok {
		return nil, false
	}
	pos, auth, ok := parseSection(l.buf, pos, Authority, l.header.NSCount, false)
	if !ok {
		return nil, false
	}
	_, add, ok := parseSection(l.buf, pos, Additional, l.header.ARCount, false)
	if !ok {
		return nil, false
	}

	if opts.AdditionalOnly {
		return add, true
	}
	out = append(out, ans...)
	out = append(out, auth...)
	out = append(out, add...)
	return out, true
}

// parseSection decodes count consecutive records of one section starting
// at pos, returning the offset just past the section and the decoded
// resources. isQuestion selects the question record shape (name+type+
// class, no TTL/RDATA).
func parseSection(buf []byte, pos int, section Section, count uint16, isQuestion bool) (int, []Resource, bool) {
	out := make([]Resource, 0, count)
	for i := uint16(0); i < count; i++ {
		start := pos
		name, next, ok := parseName(buf, pos)
		if !ok {
			return 0, nil, false
		}
		pos = next

		if isQuestion {
			if pos+4 > len(buf) {
				return 0, nil, false
			}
			qtype := binary.BigEndian.Uint16(buf[pos : pos+2])
			qclass := binary.BigEndian.Uint16(buf[pos+2 : pos+4])
			pos += 4
			out = append(out, Resource{
				Section: section,
				Name:    name,
				Type:    qtype,
				Class:   qclass,
				offset:  start,
				size:    pos - start,
			})
			continue
		}

		if pos+10 > len(buf) {
			return 0, nil, false
		}
		rtype := binary.BigEndian.Uint16(buf[pos : pos+2])
		rclass := binary.BigEndian.Uint16(buf[pos+2 : pos+4])
		ttl := binary.BigEndian.Uint32(buf[pos+4 : pos+8])
		rdlen := binary.BigEndian.Uint16(buf[pos+8 : pos+10])
		pos += 10
		if pos+int(rdlen) > len(buf) {
			return 0, nil, false
		}
		rdata := buf[pos : pos+int(rdlen)]
		pos += int(rdlen)

		out = append(out, Resource{
			Section: section,
			Name:    name,
			Type:    rtype,
			Class:   rclass,
			TTL:     ttl,
			RData:   rdata,
			offset:  start,
			size:    pos - start,
		})
	}
	return pos, out, true
}
