// SPDX-License-Identifier: GPL-3.0-or-later

package netmetrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDataRenderIncludesLabelsOnEverySample(t *testing.T) {
	d := NewData()
	d.InBytes.Add(100)

	samples := d.Render(map[string]string{"device": "eth0"})
	assert.NotEmpty(t, samples)
	for _, s := range samples {
		assert.Equal(t, "eth0", s.Labels["device"])
	}
}
