// SPDX-License-Identifier: GPL-3.0-or-later

package dns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Property 3: add then remove restores the original bytes, including the
// header's section count.
func TestAddRemoveRoundTrip(t *testing.T) {
	buf := buildMessage(t, 7, false)
	original := append([]byte(nil), buf...)

	layer, err := Parse(buf)
	require.NoError(t, err)

	handle, err := layer.AddResource(Answer, "example.com", 1, 1, 300, []byte{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, uint16(1), layer.AnCount())
	assert.NotEqual(t, original, layer.buf)

	require.NoError(t, layer.RemoveResource(handle))
	assert.Equal(t, uint16(0), layer.AnCount())
	assert.Equal(t, original, layer.buf)
}

// Property 2: after any sequence of AddResource calls, the arena stays
// ordered questions < answers < authority < additional, and header
// counts match arena counts per section.
func TestSectionOrderingInvariant(t *testing.T) {
	buf := buildMessage(t, 9, false)
	layer, err := Parse(buf)
	require.NoError(t, err)

	_, err = layer.AddResource(Additional, "extra.example.com", 1, 1, 60, []byte{9, 9, 9, 9})
	require.NoError(t, err)
	_, err = layer.AddResource(Answer, "a1.example.com", 1, 1, 60, []byte{1, 1, 1, 1})
	require.NoError(t, err)
	_, err = layer.AddResource(Authority, "ns.example.com", 2, 1, 60, nil)
	require.NoError(t, err)
	_, err = layer.AddResource(Answer, "a2.example.com", 1, 1, 60, []byte{2, 2, 2, 2})
	require.NoError(t, err)

	var lastSection Section = Question
	counts := map[Section]int{}
	for _, r := range layer.resources {
		assert.GreaterOrEqual(t, r.Section, lastSection, "section order must be non-decreasing")
		lastSection = r.Section
		counts[r.Section]++
	}

	assert.Equal(t, counts[Question], int(layer.QdCount()))
	assert.Equal(t, counts[Answer], int(layer.AnCount()))
	assert.Equal(t, counts[Authority], int(layer.NsCount()))
	assert.Equal(t, counts[Additional], int(layer.ArCount()))

	answers := layer.Resources(Answer)
	require.Len(t, answers, 2)
	assert.Equal(t, "a1.example.com", answers[0].Name)
	assert.Equal(t, "a2.example.com", answers[1].Name)
}

func TestBorrowedLayerRejectsMutation(t *testing.T) {
	buf := buildMessage(t, 1, false)
	layer, err := ParseBorrowed(buf)
	require.NoError(t, err)

	_, err = layer.AddResource(Answer, "x.example.com", 1, 1, 1, nil)
	assert.ErrorIs(t, err, ErrBorrowed)

	err = layer.RemoveResource(0)
	assert.ErrorIs(t, err, ErrBorrowed)
}

func TestRemoveResource_NotFound(t *testing.T) {
	buf := buildMessage(t, 1, false)
	layer, err := Parse(buf)
	require.NoError(t, err)
	assert.ErrorIs(t, layer.RemoveResource(999), ErrNotFound)
}
