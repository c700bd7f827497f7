// SPDX-License-Identifier: GPL-3.0-or-later

package flow

import (
	"context"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerRenderTagsDeviceAndInterface(t *testing.T) {
	base := time.Unix(0, 0)
	h := NewHandler(base)
	ctx := context.Background()

	require.NoError(t, h.Process(ctx, FlowPacket{
		Timestamp: base,
		DeviceID:  "10.0.0.1",
		Records: []FlowRecord{
			{
				Family:         IPv4,
				Proto:          TCP,
				SrcIP:          netip.MustParseAddr("10.1.2.3"),
				DstIP:          netip.MustParseAddr("10.1.2.4"),
				IngressIfIndex: "5",
				Packets:        10,
				Octets:         1000,
			},
		},
	}))

	samples := h.Render()
	assert.NotEmpty(t, samples)
	for _, s := range samples {
		assert.Equal(t, "10.0.0.1", s.Labels["device"])
		assert.Equal(t, "5", s.Labels["device_interface"])
	}
}
