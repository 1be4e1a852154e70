// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"

	"github.com/proofbase/merkledb/fault"
)

// View - a namespaced logical sub-store carved out of the backing
// store by prefixing every key with the address prefix
//
// read-only when backed by a Snapshot; use NewRWView over a Fork for
// a writable view
type View struct {
	access  Access
	address Address
	prefix  []byte
}

// NewView - create a read view of a namespace over a snapshot or fork
func NewView(access Access, address Address) *View {
	return &View{
		access:  access,
		address: address,
		prefix:  address.Prefix(),
	}
}

// Address - the address this view is scoped to
func (v *View) Address() Address {
	return v.address
}

// prepend the namespace prefix onto the key
func (v *View) prefixKey(key []byte) []byte {
	prefixedKey := make([]byte, len(v.prefix), len(v.prefix)+len(key))
	copy(prefixedKey, v.prefix)
	return append(prefixedKey, key...)
}

// Get - read a value for a given key
//
// nil means the key is not present
func (v *View) Get(key []byte) ([]byte, error) {
	value, found, err := v.access.Get(v.prefixKey(key))
	if nil != err {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return value, nil
}

// GetN - read a record and decode first 8 bytes as big endian uint64
//
// second result is false if the record was not found
func (v *View) GetN(key []byte) (uint64, bool, error) {
	buffer, err := v.Get(key)
	if nil != err {
		return 0, false, err
	}
	if nil == buffer {
		return 0, false, nil
	}
	if 8 != len(buffer) {
		return 0, false, fault.ErrCorruptedRecord
	}
	return binary.BigEndian.Uint64(buffer), true, nil
}

// Has - check if a key exists
func (v *View) Has(key []byte) (bool, error) {
	return v.access.Has(v.prefixKey(key))
}

// NewIterator - lazy ordered iteration over the namespace
//
// starts at the first local key >= start (nil starts at the beginning)
// and is bounded by the namespace; keys are returned with the prefix
// stripped; re-iterating re-opens from the store
func (v *View) NewIterator(start []byte) *ViewIterator {
	return &ViewIterator{
		iter:      v.access.NewIterator(v.prefixKey(start), upperBound(v.prefix)),
		prefixLen: len(v.prefix),
	}
}

// ViewIterator - iteration over one namespace with prefixes stripped
type ViewIterator struct {
	iter      Iterator
	prefixLen int
	key       []byte
	value     []byte
}

// Next - advance; false when the namespace is exhausted
func (it *ViewIterator) Next() bool {
	if !it.iter.Next() {
		return false
	}

	key := it.iter.Key()
	value := it.iter.Value()

	dataKey := make([]byte, len(key)-it.prefixLen) // strip the prefix
	copy(dataKey, key[it.prefixLen:])              // ...

	dataValue := make([]byte, len(value))
	copy(dataValue, value)

	it.key = dataKey
	it.value = dataValue
	return true
}

// Key - local key of the current element
func (it *ViewIterator) Key() []byte {
	return it.key
}

// Value - value of the current element
func (it *ViewIterator) Value() []byte {
	return it.value
}

// Release - must be called when finished with the iterator
func (it *ViewIterator) Release() {
	it.iter.Release()
}

// Error - any error accumulated during iteration
func (it *ViewIterator) Error() error {
	return it.iter.Error()
}

// RWView - writable view over a fork
type RWView struct {
	View
	fork *Fork
}

// NewRWView - create a writable view of a namespace over a fork
func NewRWView(fork *Fork, address Address) *RWView {
	return &RWView{
		View: View{
			access:  fork,
			address: address,
			prefix:  address.Prefix(),
		},
		fork: fork,
	}
}

// Put - store a key/value pair in the fork overlay
func (v *RWView) Put(key []byte, value []byte) error {
	return v.fork.Put(v.prefixKey(key), value)
}

// PutN - store a big endian uint64 record
func (v *RWView) PutN(key []byte, n uint64) error {
	buffer := make([]byte, 8)
	binary.BigEndian.PutUint64(buffer, n)
	return v.fork.Put(v.prefixKey(key), buffer)
}

// Delete - record an explicit delete in the fork overlay
func (v *RWView) Delete(key []byte) error {
	return v.fork.Delete(v.prefixKey(key))
}

// exclusive upper bound of all keys carrying the prefix
//
// nil when the prefix is all 0xff bytes (iterate to end of store)
func upperBound(prefix []byte) []byte {
	for i := len(prefix) - 1; i >= 0; i -= 1 {
		if 0xff != prefix[i] {
			limit := make([]byte, i+1)
			copy(limit, prefix)
			limit[i] += 1
			return limit
		}
	}
	return nil
}
