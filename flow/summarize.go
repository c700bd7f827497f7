// SPDX-License-Identifier: GPL-3.0-or-later

package flow

import (
	"net/netip"
	"strconv"
)

// SummarizationMode selects how an address is rendered as a Top-N label
// (spec.md §4.4 "IP summarization modes").
type SummarizationMode int

const (
	SummarizeNone SummarizationMode = iota
	SummarizeBySubnet
	SummarizeByASN
)

// ASNLookup is the external ASN-enrichment collaborator, sketched against
// github.com/oschwald/maxminddb-golang's Lookup shape
// (Lookup(netip.Addr, &record) error) per the pack's networking-enrichment
// examples — SPEC_FULL.md §4.4 deliberately scopes out vendoring a
// database, this interface is the seam a caller wires a real reader into.
type ASNLookup interface {
	// LookupASN returns the organization/AS label for addr, "" if unknown.
	LookupASN(addr netip.Addr) (asn string, ok bool)
}

// Summarizer renders an address to its Top-N label per policy
// configuration. It is immutable after construction; safe for concurrent
// use by every shard.
type Summarizer struct {
	mode SummarizationMode

	subnets        []netip.Prefix // ordered, checked first-match
	wildcardV4     *netip.Prefix
	wildcardV6     *netip.Prefix
	excludeLiteral []netip.Prefix // always rendered literally regardless of mode
	excludeASNs    []string       // ASN prefixes that fall through to subnet logic
	excludeUnknown bool
	asn            ASNLookup
}

// SummarizerOpt configures a Summarizer at construction.
type SummarizerOpt func(*Summarizer)

// WithSubnets sets the ordered CIDR list consulted by SummarizeBySubnet,
// with at most one wildcard (0.0.0.0/k or ::/k) per family recorded
// separately as the fallback.
func WithSubnets(prefixes []netip.Prefix) SummarizerOpt {
	return func(s *Summarizer) {
		for _, p := range prefixes {
			if p.Addr().IsUnspecified() {
				pp := p
				if p.Addr().Is4() {
					s.wildcardV4 = &pp
				} else {
					s.wildcardV6 = &pp
				}
				continue
			}
			s.subnets = append(s.subnets, p)
		}
	}
}

// WithExcludeFromSummarization lists prefixes that always render literally.
func WithExcludeFromSummarization(prefixes []netip.Prefix) SummarizerOpt {
	return func(s *Summarizer) { s.excludeLiteral = prefixes }
}

// WithASNLookup wires the ASN enrichment collaborator for SummarizeByASN.
func WithASNLookup(lookup ASNLookup) SummarizerOpt {
	return func(s *Summarizer) { s.asn = lookup }
}

// WithExcludeASNs falls through to subnet logic for the listed ASN labels.
func WithExcludeASNs(asns []string) SummarizerOpt {
	return func(s *Summarizer) { s.excludeASNs = asns }
}

// WithExcludeUnknownASNs falls through to subnet logic when the ASN
// lookup reports unknown.
func WithExcludeUnknownASNs() SummarizerOpt {
	return func(s *Summarizer) { s.excludeUnknown = true }
}

// NewSummarizer constructs a Summarizer for the given mode.
func NewSummarizer(mode SummarizationMode, opts ...SummarizerOpt) *Summarizer {
	s := &Summarizer{mode: mode}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Label renders addr to its Top-N label per the configured mode.
func (s *Summarizer) Label(addr netip.Addr) string {
	for _, p := range s.excludeLiteral {
		if p.Contains(addr) {
			return addr.String()
		}
	}

	switch s.mode {
	case SummarizeBySubnet:
		return s.bySubnet(addr)
	case SummarizeByASN:
		return s.byASN(addr)
	default:
		return addr.String()
	}
}

func (s *Summarizer) bySubnet(addr netip.Addr) string {
	for _, p := range s.subnets {
		if p.Contains(addr) {
			return p.String()
		}
	}
	wc := s.wildcardV4
	floor := 8
	if addr.Is6() {
		wc = s.wildcardV6
		floor = 16
	}
	if wc == nil {
		return addr.String()
	}
	// The declared wildcard bits are the label's displayed suffix, but a
	// degenerate wildcard (e.g. 0.0.0.0/0, matching everything) still
	// buckets by at least one address component rather than collapsing
	// every address into a single undifferentiated label — this is the
	// spec's documented "wildcard masked to /0 label" example, which
	// renders 8.8.8.8 as 8.0.0.0/0, not 0.0.0.0/0.
	effectiveBits := wc.Bits()
	if effectiveBits < floor {
		effectiveBits = floor
	}
	masked, err := addr.Prefix(effectiveBits)
	if err != nil {
		return addr.String()
	}
	return masked.Addr().String() + "/" + strconv.Itoa(wc.Bits())
}

func (s *Summarizer) byASN(addr netip.Addr) string {
	if s.asn == nil {
		return s.bySubnet(addr)
	}
	label, ok := s.asn.LookupASN(addr)
	if !ok {
		if s.excludeUnknown {
			return s.bySubnet(addr)
		}
		return "Unknown"
	}
	for _, excluded := range s.excludeASNs {
		if label == excluded {
			return s.bySubnet(addr)
		}
	}
	return label
}
