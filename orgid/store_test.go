// SPDX-License-Identifier: GPL-3.0-or-later

package orgid

import (
	"encoding/binary"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
)

// fixtureEntry mirrors one row of the original's LMDB fixture
// (ns1dns/tests/test_orgid_db.cpp): a zone dotted-name and its org ID.
type fixtureEntry struct {
	zone string
	id   uint64
}

func buildFixture(t *testing.T, entries []fixtureEntry) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orgid.db")

	db, err := bbolt.Open(path, 0o644, &bbolt.Options{Timeout: time.Second})
	require.NoError(t, err)
	err = db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(BucketName)
		if err != nil {
			return err
		}
		// A meta key under a different prefix, which lookup must ignore.
		if err := b.Put([]byte{0x02, 'm', 'e', 't', 'a'}, []byte("{}")); err != nil {
			return err
		}
		for _, e := range entries {
			key, ok := buildKey(e.zone)
			require.True(t, ok)
			val := make([]byte, 8)
			binary.BigEndian.PutUint64(val, e.id)
			if err := b.Put(key, val); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// Property 6 / end-to-end scenario: reproduces the exact fixture and
// expectations from the original pktvisor orgid test suite.
func TestLookup(t *testing.T) {
	fixture := []fixtureEntry{
		{"com", 1},
		{"example.com", 2},
		{"foo.example.com", 3},
		{"www.example.com", 4},
		{"test", 5},
		{"tld", 6},
		{"1.8.b.d.0.1.0.0.2.ip6.arpa", 7},
		{"2.8.b.d.0.1.0.0.2.ip6.arpa", 8},
	}

	s := buildFixture(t, fixture)

	tail := "8.b.d.0.1.0.0.2.ip6.arpa"
	zeros19 := strings.Repeat("0.", 19)
	queryA := "e.f.a.c." + zeros19 + "1." + tail // -> zone "1."+tail, id 7
	queryB := "e.f.a.c." + zeros19 + "2." + tail // -> zone "2."+tail, id 8
	queryC := "e.f.a.c." + zeros19 + "3." + tail // -> no matching zone

	cases := []struct {
		name   string
		expect uint64
		found  bool
	}{
		{"example.com", 2, true},
		{"sub.example.com", 2, true},
		{"wwa.example.com", 2, true},
		{"www.example.com", 4, true},
		{"wwz.example.com", 2, true},
		{"wwww.example.com", 2, true},
		{"a.ww.example.com", 2, true},
		{"foo.example.com", 3, true},
		{"www.test", 5, true},
		{"test", 5, true},
		{"tes", 0, false},
		{"testa", 0, false},
		{"www.a", 0, false},
		{"www.z", 0, false},
		{"unknown.invalid", 0, false},
		{queryA, 7, true},
		{queryB, 8, true},
		{queryC, 0, false},
		// case- and trailing-dot normalization.
		{"WWW.EXAMPLE.COM.", 4, true},
		{"FOO.EXAMPLE.COM", 3, true},
		{"", 0, false},
	}

	for _, tc := range cases {
		got, found, err := s.Lookup(tc.name)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.found, found, tc.name)
		if tc.found {
			assert.Equal(t, tc.expect, got, tc.name)
		}
	}
}

func TestBuildKey(t *testing.T) {
	key, ok := buildKey("www.example.com")
	require.True(t, ok)
	assert.Equal(t, []byte{
		dataPrefix,
		'c', 'o', 'm', 0,
		'e', 'x', 'a', 'm', 'p', 'l', 'e', 0,
		'w', 'w', 'w', 0,
	}, key)

	_, ok = buildKey("")
	assert.False(t, ok)

	_, ok = buildKey(".")
	assert.False(t, ok)
}
