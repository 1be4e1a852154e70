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

var entryKey = []byte{'E'}

// Entry - a single optional value stored under an address
type Entry struct {
	view *storage.View
	rw   *storage.RWView
}

// NewEntry - open a read-only entry over a snapshot or fork view
func NewEntry(view *storage.View) *Entry {
	return &Entry{view: view}
}

// NewWritableEntry - open a writable entry over a fork view
func NewWritableEntry(view *storage.RWView) *Entry {
	return &Entry{
		view: &view.View,
		rw:   view,
	}
}

// Address - the address this entry is stored under
func (e *Entry) Address() storage.Address {
	return e.view.Address()
}

// Get - read the value; nil means unset
func (e *Entry) Get() ([]byte, error) {
	return e.view.Get(entryKey)
}

// Has - check if a value is set
func (e *Entry) Has() (bool, error) {
	return e.view.Has(entryKey)
}

// Set - store the value
func (e *Entry) Set(value []byte) error {
	if nil == e.rw {
		return fault.ErrReadOnlyIndex
	}
	return e.rw.Put(entryKey, value)
}

// Remove - unset the value
func (e *Entry) Remove() error {
	if nil == e.rw {
		return fault.ErrReadOnlyIndex
	}
	return e.rw.Delete(entryKey)
}

// ObjectHash - content hash of the entry
func (e *Entry) ObjectHash() (digest.Digest, error) {
	return contentHash(e.view.NewIterator(nil))
}
