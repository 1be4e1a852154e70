// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

// Access - common read operations provided by Snapshot and Fork
//
// Get returns found == false when the key is not present; an absent
// key is not an error
type Access interface {
	Get(key []byte) ([]byte, bool, error)
	Has(key []byte) (bool, error)
	NewIterator(start []byte, limit []byte) Iterator
}

// Iterator - ordered forward iteration over a key range
//
// contents of Key and Value are only valid until the next call to
// Next - copy them if they must be preserved
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Release()
	Error() error
}
