// SPDX-License-Identifier: GPL-3.0-or-later

package tcpframe

import "github.com/netvisor/agent/dns"

// Direction distinguishes the two independently-framed sides of a TCP
// flow.
type Direction int

const (
	Inbound Direction = iota
	Outbound
)

// Session owns the two per-direction Framers for one tracked TCP flow,
// registered and deregistered by a reassembler's connection start/end
// callbacks. Only flows where one side's port is a configured DNS port
// are tracked; that decision is the caller's (it owns the dns.PortSet).
type Session struct {
	inbound  *Framer
	outbound *Framer
}

// NewSession returns an empty Session for a newly-registered flow.
func NewSession() *Session {
	return &Session{inbound: New(), outbound: New()}
}

// Consume feeds chunk into the given direction's framer and parses every
// complete DNS message it yields, via dns.ParseBorrowed so the parser
// never copies or takes ownership of the framer's reassembly buffer.
// Malformed individual messages are skipped (counted by the caller as
// filtered), not propagated as session-ending errors — only a framing
// desync (MinMessageLen/MaxMessageLen violation) halts the direction.
func (s *Session) Consume(dir Direction, chunk []byte) []*dns.Layer {
	f := s.framer(dir)
	msgs := f.Feed(chunk)
	if len(msgs) == 0 {
		return nil
	}
	layers := make([]*dns.Layer, 0, len(msgs))
	for _, m := range msgs {
		layer, err := dns.ParseBorrowed(m)
		if err != nil {
			continue
		}
		layers = append(layers, layer)
	}
	return layers
}

// Desynced reports whether the given direction has stopped accepting
// bytes after a framing violation.
func (s *Session) Desynced(dir Direction) bool {
	return s.framer(dir).Desynced()
}

func (s *Session) framer(dir Direction) *Framer {
	if dir == Inbound {
		return s.inbound
	}
	return s.outbound
}
