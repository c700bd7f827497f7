// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"sort"
	"strings"
)

// JSON assembles samples into a nested map keyed by each sample's
// schema-key path, suitable for json.Marshal. A sample with no extra
// labels becomes a bare numeric leaf; a sample with labels becomes an
// object keyed by its sorted label values joined with "/" (e.g. a TopN
// entry's label, or a device/interface pair).
func JSON(samples []Sample) map[string]any {
	root := map[string]any{}
	for _, s := range samples {
		node := root
		for i, key := range s.SchemaKey {
			last := i == len(s.SchemaKey)-1
			if !last {
				child, ok := node[key].(map[string]any)
				if !ok {
					child = map[string]any{}
					node[key] = child
				}
				node = child
				continue
			}
			if len(s.Labels) == 0 {
				node[key] = s.Value
				continue
			}
			child, ok := node[key].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[key] = child
			}
			child[labelKey(s.Labels)] = s.Value
		}
	}
	return root
}

// labelKey renders labels as a stable, order-independent string: its
// keys sorted, values joined with "/".
func labelKey(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, labels[k])
	}
	return strings.Join(parts, "/")
}
