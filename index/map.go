// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package index

import (
	"github.com/proofbase/merkledb/digest"
	"github.com/proofbase/merkledb/fault"
	"github.com/proofbase/merkledb/storage"
)

// Map - plain key to value map; keys are stored raw so iteration is
// in ascending key byte order
type Map struct {
	view *storage.View
	rw   *storage.RWView
}

// NewMap - open a read-only map over a snapshot or fork view
func NewMap(view *storage.View) *Map {
	return &Map{view: view}
}

// NewWritableMap - open a writable map over a fork view
func NewWritableMap(view *storage.RWView) *Map {
	return &Map{
		view: &view.View,
		rw:   view,
	}
}

// Address - the address this map is stored under
func (m *Map) Address() storage.Address {
	return m.view.Address()
}

// Get - read the value stored under a key; nil means absent
func (m *Map) Get(key []byte) ([]byte, error) {
	return m.view.Get(key)
}

// Has - check if a key is present
func (m *Map) Has(key []byte) (bool, error) {
	return m.view.Has(key)
}

// Put - store a key/value pair
func (m *Map) Put(key []byte, value []byte) error {
	if nil == m.rw {
		return fault.ErrReadOnlyIndex
	}
	return m.rw.Put(key, value)
}

// Remove - delete the value stored under a key
func (m *Map) Remove(key []byte) error {
	if nil == m.rw {
		return fault.ErrReadOnlyIndex
	}
	return m.rw.Delete(key)
}

// NewIterator - iterate entries in ascending key order from start
func (m *Map) NewIterator(start []byte) *storage.ViewIterator {
	return m.view.NewIterator(start)
}

// ObjectHash - content hash of the map
func (m *Map) ObjectHash() (digest.Digest, error) {
	return contentHash(m.view.NewIterator(nil))
}
