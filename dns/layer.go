// SPDX-License-Identifier: GPL-3.0-or-later

package dns

// Layer is a view over a DNS message buffer plus its lazily-decoded
// resources, stored in a single arena (Layer.resources) tagged by Section
// instead of a linked list per section — the REDESIGN FLAG arena+index
// pattern from the design notes.
type Layer struct {
	buf      []byte
	borrowed bool

	header Header

	resources   []Resource
	parsed      bool
	parseFailed bool
}

// Parse decodes the 12-byte header of buf and returns a Layer that owns
// buf: AddResource/RemoveResource may grow or shrink it. The caller must
// hand over a buffer it does not mutate concurrently.
func Parse(buf []byte) (*Layer, error) {
	return newLayer(buf, false)
}

// ParseBorrowed decodes buf without taking ownership of it: the returned
// Layer never mutates buf, and AddResource/RemoveResource return
// ErrBorrowed. This is the TCP-framing entry point (design notes: "packet
// wrapping hack" replaced by an explicit borrowing variant) — the framer
// hands over a slice of its own reassembly buffer without transferring
// ownership.
func ParseBorrowed(buf []byte) (*Layer, error) {
	return newLayer(buf, true)
}

func newLayer(buf []byte, borrowed bool) (*Layer, error) {
	h, ok := parseHeader(buf)
	if !ok {
		return nil, ErrMalformed
	}
	return &Layer{buf: buf, borrowed: borrowed, header: h}, nil
}

// ID returns the 16-bit transaction ID.
func (l *Layer) ID() uint16 { return l.header.ID }

// QR reports whether the message is a response.
func (l *Layer) QR() bool { return l.header.QR() }

// Opcode returns the 4-bit opcode.
func (l *Layer) Opcode() uint8 { return l.header.Opcode() }

// Rcode returns the 4-bit response code.
func (l *Layer) Rcode() uint8 { return l.header.Rcode() }

// QdCount, AnCount, NsCount, ArCount expose the raw header counts
// directly, without requiring resource parsing — the bound check against
// these (sum > 100 ⇒ malformed) happens in parseHeader before any
// resource is ever touched.
func (l *Layer) QdCount() uint16 { return l.header.QDCount }
func (l *Layer) AnCount() uint16 { return l.header.ANCount }
func (l *Layer) NsCount() uint16 { return l.header.NSCount }
func (l *Layer) ArCount() uint16 { return l.header.ARCount }

// ParseFailed reports whether a prior ParseResources call hit the sticky
// malformed state.
func (l *Layer) ParseFailed() bool { return l.parseFailed }

// First returns the first resource in the given section, if any. Resource
// parsing is performed on demand with default options if it has not run
// yet.
func (l *Layer) First(section Section) (Resource, bool) {
	if err := l.ensureParsed(); err != nil {
		return Resource{}, false
	}
	for _, r := range l.resources {
		if r.Section == section {
			return r, true
		}
	}
	return Resource{}, false
}

// GetByName scans a section for a resource whose name matches. exact does
// a case-sensitive equality match; otherwise it is a case-sensitive
// substring match — the design notes flag this case-sensitivity as a
// documented, deliberately preserved behavior rather than an oversight.
func (l *Layer) GetByName(section Section, name string, exact bool) (Resource, bool) {
	if err := l.ensureParsed(); err != nil {
		return Resource{}, false
	}
	for _, r := range l.resources {
		if r.Section != section {
			continue
		}
		if exact {
			if r.Name == name {
				return r, true
			}
			continue
		}
		if containsSubstring(r.Name, name) {
			return r, true
		}
	}
	return Resource{}, false
}

// Resources returns every parsed resource in the given section, in wire
// order.
func (l *Layer) Resources(section Section) []Resource {
	if err := l.ensureParsed(); err != nil {
		return nil
	}
	var out []Resource
	for _, r := range l.resources {
		if r.Section == section {
			out = append(out, r)
		}
	}
	return out
}

func (l *Layer) ensureParsed() error {
	if l.parsed {
		if l.parseFailed {
			return ErrMalformed
		}
		return nil
	}
	return l.ParseResources(ParseOptions{})
}

func containsSubstring(haystack, needle string) bool {
	if len(needle) == 0 {
		return true
	}
	if len(needle) > len(haystack) {
		return false
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
