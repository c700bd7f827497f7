// SPDX-License-Identifier: GPL-3.0-or-later

package tcpframe

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func framed(payload []byte) []byte {
	out := make([]byte, 2+len(payload))
	binary.BigEndian.PutUint16(out[0:2], uint16(len(payload)))
	copy(out[2:], payload)
	return out
}

func TestFramer(t *testing.T) {
	msg1 := make([]byte, 20)
	for i := range msg1 {
		msg1[i] = byte(i)
	}
	msg2 := make([]byte, 30)
	for i := range msg2 {
		msg2[i] = byte(i + 1)
	}

	t.Run("whole stream in one chunk", func(t *testing.T) {
		f := New()
		stream := append(framed(msg1), framed(msg2)...)
		got := f.Feed(stream)
		require.Len(t, got, 2)
		assert.Equal(t, msg1, got[0])
		assert.Equal(t, msg2, got[1])
		assert.False(t, f.Desynced())
	})

	t.Run("byte-at-a-time interleaving", func(t *testing.T) {
		f := New()
		stream := append(framed(msg1), framed(msg2)...)
		var all [][]byte
		for _, b := range stream {
			all = append(all, f.Feed([]byte{b})...)
		}
		require.Len(t, all, 2)
		assert.Equal(t, msg1, all[0])
		assert.Equal(t, msg2, all[1])
	})

	t.Run("declared length 16 aborts without emitting", func(t *testing.T) {
		f := New()
		bad := make([]byte, 2)
		binary.BigEndian.PutUint16(bad, 16)
		got := f.Feed(bad)
		assert.Empty(t, got)
		assert.True(t, f.Desynced())
	})

	t.Run("declared length 513 aborts without emitting", func(t *testing.T) {
		f := New()
		bad := make([]byte, 2)
		binary.BigEndian.PutUint16(bad, 513)
		got := f.Feed(bad)
		assert.Empty(t, got)
		assert.True(t, f.Desynced())
	})

	t.Run("boundary lengths 17 and 512 are accepted", func(t *testing.T) {
		f := New()
		got := f.Feed(framed(make([]byte, MinMessageLen)))
		require.Len(t, got, 1)
		assert.Len(t, got[0], MinMessageLen)

		f2 := New()
		got2 := f2.Feed(framed(make([]byte, MaxMessageLen)))
		require.Len(t, got2, 1)
		assert.Len(t, got2[0], MaxMessageLen)
	})

	t.Run("valid message then desync emits only the valid one", func(t *testing.T) {
		f := New()
		bad := make([]byte, 2)
		binary.BigEndian.PutUint16(bad, 16)
		stream := append(framed(msg1), bad...)
		got := f.Feed(stream)
		require.Len(t, got, 1)
		assert.Equal(t, msg1, got[0])
		assert.True(t, f.Desynced())
	})

	t.Run("desynced framer ignores further feeds", func(t *testing.T) {
		f := New()
		bad := make([]byte, 2)
		binary.BigEndian.PutUint16(bad, 16)
		f.Feed(bad)
		got := f.Feed(framed(msg1))
		assert.Empty(t, got, "desynced direction must not resume on its own")
	})
}
