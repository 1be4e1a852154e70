// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"github.com/syndtr/goleveldb/leveldb"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"
)

// Snapshot - immutable, consistent read view of the entire store at a
// point in time
//
// safe for concurrent use by any number of readers
type Snapshot struct {
	snap *leveldb.Snapshot
}

// Get - read a key; found is false when the key is not present
func (s *Snapshot) Get(key []byte) ([]byte, bool, error) {
	value, err := s.snap.Get(key, nil)
	if leveldb.ErrNotFound == err {
		return nil, false, nil
	} else if nil != err {
		return nil, false, err
	}
	return value, true, nil
}

// Has - check if a key exists
func (s *Snapshot) Has(key []byte) (bool, error) {
	return s.snap.Has(key, nil)
}

// NewIterator - forward iteration over [start, limit)
//
// a nil limit iterates to the end of the store
func (s *Snapshot) NewIterator(start []byte, limit []byte) Iterator {
	r := &ldb_util.Range{
		Start: start,
		Limit: limit,
	}
	return s.snap.NewIterator(r, nil)
}

// Release - free the snapshot resources
func (s *Snapshot) Release() {
	s.snap.Release()
}
