// SPDX-License-Identifier: GPL-3.0-or-later

// Package orgid resolves a DNS zone to an organization ID via longest-
// suffix lookup over an embedded ordered key-value store (bbolt), using
// the reverse-label key encoding documented in spec.md §3.
package orgid

import "strings"

// dataPrefix tags a key as a domain→org-id entry; the store may also
// hold meta keys under a different prefix byte that lookup must ignore.
const dataPrefix = 0x01

// buildKey encodes name (a dotted domain name, e.g. "www.example.com" or
// "WWW.EXAMPLE.COM.") into the lookup key format: a data-prefix byte
// followed by each label in reverse order, individually NUL-terminated.
// "www.example.com" becomes 0x01 'c''o''m' 0x00 'e''x''a''m''p''l''e' 0x00
// 'w''w''w' 0x00. Returns ok=false for an empty or root name, which has
// no zone to look up.
func buildKey(name string) ([]byte, bool) {
	name = strings.ToLower(strings.TrimSuffix(name, "."))
	if name == "" {
		return nil, false
	}
	labels := strings.Split(name, ".")

	size := 1
	for _, l := range labels {
		size += len(l) + 1
	}
	key := make([]byte, 0, size)
	key = append(key, dataPrefix)
	for i := len(labels) - 1; i >= 0; i-- {
		key = append(key, labels[i]...)
		key = append(key, 0)
	}
	return key, true
}

// labelAlignedCommonPrefixLen returns the largest i such that a[0:i] ==
// b[0:i] and the cut falls on a label boundary — i.e. a[i-1] is a NUL
// terminator (or i == 0). Because keys store labels in reverse order,
// a byte-wise common prefix here corresponds to a common domain-name
// *suffix*, which is exactly the longest-suffix match the lookup needs.
func labelAlignedCommonPrefixLen(a, b []byte) int {
	max := len(a)
	if len(b) < max {
		max = len(b)
	}
	common := 0
	for common < max && a[common] == b[common] {
		common++
	}
	for i := common; i > 0; i-- {
		if a[i-1] == 0 {
			return i
		}
	}
	return 0
}
