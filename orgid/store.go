// SPDX-License-Identifier: GPL-3.0-or-later

package orgid

import (
	"encoding/binary"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

// BucketName is the bbolt bucket holding domain→org-id entries (and any
// meta keys under a different prefix byte).
var BucketName = []byte("orgid")

// Store resolves domain names to organization IDs via longest-suffix
// lookup over a bbolt database, opened read-only: the lookup path never
// writes.
type Store struct {
	db *bbolt.DB
}

// Open opens the bbolt database at path read-only for lookups.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o444, &bbolt.Options{
		ReadOnly: true,
		Timeout:  time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("orgid: open %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Lookup resolves name to its organization ID by walking up the zone
// hierarchy (spec.md §4.7): exact match first, then the longest stored
// ancestor zone. ok is false if no entry in the store covers name.
func (s *Store) Lookup(name string) (orgID uint64, ok bool, err error) {
	search, valid := buildKey(name)
	if !valid {
		return 0, false, nil
	}

	err = s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(BucketName)
		if b == nil {
			return nil
		}
		c := b.Cursor()

		for {
			k, v := c.Seek(search)
			if k != nil && bytesEqual(k, search) {
				orgID = binary.BigEndian.Uint64(v)
				ok = true
				return nil
			}

			var candK, candV []byte
			if k == nil {
				candK, candV = c.Last()
			} else {
				candK, candV = c.Prev()
			}
			if candK == nil || candK[0] != dataPrefix {
				return nil
			}

			suffixLen := labelAlignedCommonPrefixLen(search, candK)
			if suffixLen == 0 {
				return nil
			}
			if suffixLen == len(candK) {
				orgID = binary.BigEndian.Uint64(candV)
				ok = true
				return nil
			}
			search = search[:suffixLen]
		}
	})
	return orgID, ok, err
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
