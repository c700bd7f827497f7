// SPDX-License-Identifier: GPL-3.0-or-later

package flow

import "strconv"

// wellKnownServices is a small, deliberately partial port→name table for
// the most common services a flow tap observes; an unlisted port resolves
// to its decimal string. The standard library has no portable /etc/services
// lookup, so this is a hand-rolled stdlib-adjacent table rather than a
// dependency — justified in DESIGN.md.
var wellKnownServices = map[uint16]string{
	20:   "ftp-data",
	21:   "ftp",
	22:   "ssh",
	23:   "telnet",
	25:   "smtp",
	53:   "domain",
	67:   "dhcp",
	68:   "dhcp",
	80:   "http",
	110:  "pop3",
	123:  "ntp",
	143:  "imap",
	161:  "snmp",
	443:  "https",
	445:  "microsoft-ds",
	465:  "smtps",
	514:  "syslog",
	587:  "submission",
	853:  "dns-over-tls",
	993:  "imaps",
	995:  "pop3s",
	3306: "mysql",
	3389: "ms-wbt-server",
	5432: "postgresql",
	6379: "redis",
	8080: "http-alt",
	8443: "https-alt",
}

// serviceResolver resolves a port to a service name through a bounded LRU
// cache, per spec.md §4.4's "resolved to service name via LRU of
// configured size".
type serviceResolver struct {
	cache *lru[uint16, string]
}

func newServiceResolver(capacity int) *serviceResolver {
	return &serviceResolver{cache: newLRU[uint16, string](capacity)}
}

func (r *serviceResolver) Resolve(port uint16) string {
	return r.cache.GetOrCompute(port, func() string {
		if name, ok := wellKnownServices[port]; ok {
			return name
		}
		return strconv.Itoa(int(port))
	})
}
