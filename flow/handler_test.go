// SPDX-License-Identifier: GPL-3.0-or-later

package flow

import (
	"context"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	netvisor "github.com/netvisor/agent"
)

func TestHandlerEndToEndNetFlowIngress(t *testing.T) {
	base := time.Unix(1000, 0)
	h := NewHandler(base, WithWindow(5, 60*time.Second))

	pkt := FlowPacket{
		Timestamp: base,
		DeviceID:  "10.0.0.1",
		Records: []FlowRecord{
			{Family: IPv4, Proto: TCP, SrcIP: netip.MustParseAddr("192.0.2.1"), DstIP: netip.MustParseAddr("192.0.2.2"),
				SrcPort: 443, DstPort: 51000, IngressIfIndex: "5", Packets: 100, Octets: 10000},
			{Family: IPv4, Proto: TCP, SrcIP: netip.MustParseAddr("192.0.2.1"), DstIP: netip.MustParseAddr("192.0.2.2"),
				SrcPort: 443, DstPort: 51001, IngressIfIndex: "5", Packets: 100, Octets: 10000},
			{Family: IPv4, Proto: UDP, SrcIP: netip.MustParseAddr("192.0.2.3"), DstIP: netip.MustParseAddr("192.0.2.4"),
				SrcPort: 53, DstPort: 51002, IngressIfIndex: "5", Packets: 100, Octets: 10000},
		},
	}

	require.NoError(t, h.Process(context.Background(), pkt))

	d, ok := h.Interface("10.0.0.1", "5")
	require.True(t, ok)
	assert.Equal(t, int64(300), d.InPackets.Value())
	assert.Equal(t, int64(30000), d.InBytes.Value())
	assert.Equal(t, int64(3), d.Total.Value())
	assert.Equal(t, int64(20000), d.InBytesTCP.Value())
	assert.Equal(t, int64(10000), d.InBytesUDP.Value())
}

func TestHandlerSubnetSummarization(t *testing.T) {
	summarizer := NewSummarizer(SummarizeBySubnet, WithSubnets([]netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("0.0.0.0/0"),
	}))

	assert.Equal(t, "10.0.0.0/8", summarizer.Label(netip.MustParseAddr("10.1.2.3")))
	assert.Equal(t, "8.0.0.0/0", summarizer.Label(netip.MustParseAddr("8.8.8.8")))
}

func TestHandlerFilterCountsIntoFiltered(t *testing.T) {
	base := time.Unix(1000, 0)
	blockAll := netvisor.FuncAdapter[FlowRecord, bool](func(_ context.Context, _ FlowRecord) (bool, error) {
		return false, nil
	})
	h := NewHandler(base, WithFilter(blockAll))

	pkt := FlowPacket{
		Timestamp: base,
		DeviceID:  "10.0.0.1",
		Records: []FlowRecord{
			{Family: IPv4, Proto: TCP, SrcIP: netip.MustParseAddr("192.0.2.1"), DstIP: netip.MustParseAddr("192.0.2.2"),
				IngressIfIndex: "5", Packets: 10, Octets: 1000},
		},
	}
	require.NoError(t, h.Process(context.Background(), pkt))

	d, ok := h.Interface("10.0.0.1", "5")
	require.True(t, ok)
	assert.Equal(t, int64(1), d.Filtered.Value())
	assert.Equal(t, int64(0), d.InPackets.Value())
}

func TestCanonicalConversationOrderIndependent(t *testing.T) {
	a := canonicalConversation("10.0.0.1", "443", "10.0.0.2", "51000")
	b := canonicalConversation("10.0.0.2", "51000", "10.0.0.1", "443")
	assert.Equal(t, a, b)
}
