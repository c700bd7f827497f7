// SPDX-License-Identifier: GPL-3.0-or-later

package flow

import "net/netip"

// GeoRecord is the result of a city-level GeoIP lookup. The handler
// renders only City, as the label of the geo Top-N; Lat and Lon are not
// rendered.
type GeoRecord struct {
	City string
	Lat  float64
	Lon  float64
}

// GeoLookup is the external geo-enrichment collaborator, sketched against
// github.com/oschwald/maxminddb-golang's reader shape
// (Lookup(netip.Addr, &record) error) the same way [ASNLookup] is —
// deliberately out of scope to vendor a database (spec.md §1 "GeoIP/ASN
// enrichment databases" are external collaborators).
type GeoLookup interface {
	LookupCity(addr netip.Addr) (GeoRecord, bool)
}

// Enrichment bundles the two optional enrichment collaborators a Handler
// may be constructed with. A nil field disables that Top-N (spec.md §4.4
// "if enrichment is on").
type Enrichment struct {
	ASN ASNLookup
	Geo GeoLookup
}
