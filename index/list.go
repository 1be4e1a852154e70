// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package index

import (
	"encoding/binary"

	"github.com/proofbase/merkledb/digest"
	"github.com/proofbase/merkledb/fault"
	"github.com/proofbase/merkledb/storage"
)

var listCountKey = []byte{0xff}

// List - plain append-only sequence of byte values
type List struct {
	view *storage.View
	rw   *storage.RWView
}

// NewList - open a read-only list over a snapshot or fork view
func NewList(view *storage.View) *List {
	return &List{view: view}
}

// NewWritableList - open a writable list over a fork view
func NewWritableList(view *storage.RWView) *List {
	return &List{
		view: &view.View,
		rw:   view,
	}
}

// Address - the address this list is stored under
func (l *List) Address() storage.Address {
	return l.view.Address()
}

func listItemKey(index uint64) []byte {
	key := make([]byte, 9)
	binary.BigEndian.PutUint64(key[1:], index)
	return key
}

// Len - number of stored values
func (l *List) Len() (uint64, error) {
	n, _, err := l.view.GetN(listCountKey)
	return n, err
}

// Get - read the value at an index; nil beyond the end
func (l *List) Get(index uint64) ([]byte, error) {
	return l.view.Get(listItemKey(index))
}

// Push - append a value at the next free index
func (l *List) Push(value []byte) error {
	if nil == l.rw {
		return fault.ErrReadOnlyIndex
	}
	n, err := l.Len()
	if nil != err {
		return err
	}
	err = l.rw.Put(listItemKey(n), value)
	if nil != err {
		return err
	}
	return l.rw.PutN(listCountKey, n+1)
}

// ObjectHash - content hash of the list
func (l *List) ObjectHash() (digest.Digest, error) {
	return contentHash(l.view.NewIterator(nil))
}
