// SPDX-License-Identifier: GPL-3.0-or-later

package dns

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildMessage assembles a minimal DNS message: header, one question
// (example.com A IN), and optionally one answer (example.com A IN,
// rdata 1.2.3.4) when withAnswer is true.
func buildMessage(t *testing.T, id uint16, withAnswer bool) []byte {
	t.Helper()
	qdCount := uint16(1)
	anCount := uint16(0)
	if withAnswer {
		anCount = 1
	}

	buf := make([]byte, headerSize)
	binary.BigEndian.PutUint16(buf[0:2], id)
	binary.BigEndian.PutUint16(buf[2:4], 0x8180) // QR=1, RA=1, RCODE=0
	binary.BigEndian.PutUint16(buf[4:6], qdCount)
	binary.BigEndian.PutUint16(buf[6:8], anCount)

	name, ok := encodeName("example.com")
	require.True(t, ok)
	buf = append(buf, name...)
	buf = binary.BigEndian.AppendUint16(buf, 1) // QTYPE A
	buf = binary.BigEndian.AppendUint16(buf, 1) // QCLASS IN

	if withAnswer {
		buf = append(buf, name...)
		buf = binary.BigEndian.AppendUint16(buf, 1)         // TYPE A
		buf = binary.BigEndian.AppendUint16(buf, 1)         // CLASS IN
		buf = binary.BigEndian.AppendUint32(buf, 300)       // TTL
		buf = binary.BigEndian.AppendUint16(buf, 4)         // RDLENGTH
		buf = append(buf, []byte{1, 2, 3, 4}...)            // RDATA
	}

	return buf
}

func TestParseAndFirst(t *testing.T) {
	buf := buildMessage(t, 0x1234, true)
	layer, err := Parse(buf)
	require.NoError(t, err)

	assert.Equal(t, uint16(0x1234), layer.ID())
	assert.True(t, layer.QR())
	assert.Equal(t, uint8(0), layer.Rcode())
	assert.Equal(t, uint16(1), layer.QdCount())
	assert.Equal(t, uint16(1), layer.AnCount())

	q, ok := layer.First(Question)
	require.True(t, ok)
	assert.Equal(t, "example.com", q.Name)

	a, ok := layer.First(Answer)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3, 4}, a.RData)
	assert.Equal(t, uint32(300), a.TTL)
}

func TestGetByName(t *testing.T) {
	buf := buildMessage(t, 1, false)
	layer, err := Parse(buf)
	require.NoError(t, err)

	_, ok := layer.GetByName(Question, "example.com", true)
	assert.True(t, ok)
	_, ok = layer.GetByName(Question, "EXAMPLE.COM", true)
	assert.False(t, ok, "exact match is case-sensitive per documented behavior")

	_, ok = layer.GetByName(Question, "example", false)
	assert.True(t, ok, "substring match should find a prefix")
}

// Property 1: oversized section counts never leave a partially linked
// resource arena.
func TestParseSoundness_OversizedCounts(t *testing.T) {
	buf := make([]byte, headerSize)
	binary.BigEndian.PutUint16(buf[4:6], 60)
	binary.BigEndian.PutUint16(buf[6:8], 60) // 60+60 > 100
	_, err := Parse(buf)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParseSoundness_TruncatedResource(t *testing.T) {
	buf := make([]byte, headerSize)
	binary.BigEndian.PutUint16(buf[4:6], 1)
	// declares one question but buffer ends right after the header
	layer, err := Parse(buf)
	require.NoError(t, err) // header-level bound is fine; failure surfaces on resource parse

	err = layer.ParseResources(ParseOptions{})
	assert.ErrorIs(t, err, ErrMalformed)
	assert.True(t, layer.ParseFailed())
	assert.Empty(t, layer.Resources(Question))
}

func TestParseResources_StickyFailureWithoutForce(t *testing.T) {
	buf := make([]byte, headerSize)
	binary.BigEndian.PutUint16(buf[4:6], 1)
	layer, err := Parse(buf)
	require.NoError(t, err)

	require.ErrorIs(t, layer.ParseResources(ParseOptions{}), ErrMalformed)
	// second call without Force must not re-attempt the parse; same result.
	require.ErrorIs(t, layer.ParseResources(ParseOptions{}), ErrMalformed)
}
