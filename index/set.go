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

// a present member stores this marker so the record is non-empty
var setMarker = []byte{1}

// Set - plain membership set of byte strings
type Set struct {
	view *storage.View
	rw   *storage.RWView
}

// NewSet - open a read-only set over a snapshot or fork view
func NewSet(view *storage.View) *Set {
	return &Set{view: view}
}

// NewWritableSet - open a writable set over a fork view
func NewWritableSet(view *storage.RWView) *Set {
	return &Set{
		view: &view.View,
		rw:   view,
	}
}

// Address - the address this set is stored under
func (s *Set) Address() storage.Address {
	return s.view.Address()
}

// Contains - check membership
func (s *Set) Contains(member []byte) (bool, error) {
	return s.view.Has(member)
}

// Insert - add a member; adding an existing member is a no-op
func (s *Set) Insert(member []byte) error {
	if nil == s.rw {
		return fault.ErrReadOnlyIndex
	}
	return s.rw.Put(member, setMarker)
}

// Remove - delete a member; removing an absent member is a no-op
func (s *Set) Remove(member []byte) error {
	if nil == s.rw {
		return fault.ErrReadOnlyIndex
	}
	return s.rw.Delete(member)
}

// NewIterator - iterate members in ascending byte order
func (s *Set) NewIterator() *storage.ViewIterator {
	return s.view.NewIterator(nil)
}

// ObjectHash - content hash of the set
func (s *Set) ObjectHash() (digest.Digest, error) {
	return contentHash(s.view.NewIterator(nil))
}
