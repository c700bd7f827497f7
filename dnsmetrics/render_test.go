// SPDX-License-Identifier: GPL-3.0-or-later

package dnsmetrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDataRenderIncludesLabelsOnEverySample(t *testing.T) {
	d := NewData()
	d.Queries.Add(10)
	d.QnameDepth2.Add("example.com")

	samples := d.Render(map[string]string{"device": "eth0"})
	assert.NotEmpty(t, samples)
	for _, s := range samples {
		assert.Equal(t, "eth0", s.Labels["device"])
	}
}

func TestDataRenderTagsAdverseRcodeBreakdownWithRcodeLabel(t *testing.T) {
	d := NewData()
	d.QnameByAdverseRcode[RcodeNXDomain].Add("nope.example.com")

	samples := d.Render(nil)
	found := false
	for _, s := range samples {
		if s.Labels["rcode"] == RcodeNXDomain {
			found = true
		}
	}
	assert.True(t, found)
}
