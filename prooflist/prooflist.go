// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package prooflist

import (
	"encoding/binary"

	"github.com/proofbase/merkledb/digest"
	"github.com/proofbase/merkledb/fault"
	"github.com/proofbase/merkledb/storage"
)

// element count record
var lengthKey = []byte{0xff}

// List - append-only sequence authenticated by a binary merkle tree
//
// read operations work over any view; Push requires a writable view
type List struct {
	view *storage.View
	rw   *storage.RWView
}

// New - open a read-only list over a snapshot or fork view
func New(view *storage.View) *List {
	return &List{view: view}
}

// NewWritable - open a writable list over a fork view
func NewWritable(view *storage.RWView) *List {
	return &List{
		view: &view.View,
		rw:   view,
	}
}

// Address - the address this list is stored under
func (l *List) Address() storage.Address {
	return l.view.Address()
}

// key of the tree node (height, index); height 0 addresses leaves
func nodeKey(height uint8, index uint64) []byte {
	key := make([]byte, 9)
	key[0] = height
	binary.BigEndian.PutUint64(key[1:], index)
	return key
}

// Len - number of elements
//
// tracked as a separate counter record, not derived by scanning
func (l *List) Len() (uint64, error) {
	n, found, err := l.view.GetN(lengthKey)
	if nil != err {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	return n, nil
}

// Get - read the value at an index
//
// nil for an index beyond the end of the list
func (l *List) Get(index uint64) ([]byte, error) {
	n, err := l.Len()
	if nil != err {
		return nil, err
	}
	if index >= n {
		return nil, nil
	}
	value, err := l.view.Get(nodeKey(0, index))
	if nil != err {
		return nil, err
	}
	if nil == value {
		return nil, fault.ErrCorruptedRecord
	}
	return value, nil
}

// Push - append a value at the next free index
//
// recomputes and stores the hash of every ancestor up to the root:
// O(log n) node writes
func (l *List) Push(value []byte) error {
	if nil == l.rw {
		return fault.ErrReadOnlyIndex
	}

	n, err := l.Len()
	if nil != err {
		return err
	}

	err = l.rw.Put(nodeKey(0, n), value)
	if nil != err {
		return err
	}
	err = l.rw.PutN(lengthKey, n+1)
	if nil != err {
		return err
	}

	// rebuild the path from the new leaf to the root
	index := n
	width := n + 1
	height := uint8(0)
	for width > 1 {
		parent := index >> 1

		combined, err := l.hashAt(height, 2*parent)
		if nil != err {
			return err
		}
		if 2*parent+1 < width {
			right, err := l.hashAt(height, 2*parent+1)
			if nil != err {
				return err
			}
			combined = pairHash(combined, right)
		}
		// an unpaired node is promoted unchanged

		err = l.rw.Put(nodeKey(height+1, parent), combined[:])
		if nil != err {
			return err
		}

		index = parent
		height += 1
		width = (width + 1) / 2
	}
	return nil
}

// ObjectHash - the root hash committing to the full list contents
func (l *List) ObjectHash() (digest.Digest, error) {
	n, err := l.Len()
	if nil != err {
		return digest.Digest{}, err
	}
	if 0 == n {
		return emptyRoot, nil
	}
	return l.hashAt(rootHeight(n), 0)
}

// read the hash of the node at (height, index)
//
// leaf hashes are recomputed from the stored value
func (l *List) hashAt(height uint8, index uint64) (digest.Digest, error) {
	var d digest.Digest

	if 0 == height {
		value, err := l.view.Get(nodeKey(0, index))
		if nil != err {
			return d, err
		}
		if nil == value {
			return d, fault.ErrCorruptedRecord
		}
		return leafHash(value), nil
	}

	buffer, err := l.view.Get(nodeKey(height, index))
	if nil != err {
		return d, err
	}
	err = digest.FromBytes(&d, buffer)
	if nil != err {
		return d, fault.ErrCorruptedRecord
	}
	return d, nil
}

// height of the root node for a list of n elements
func rootHeight(n uint64) uint8 {
	height := uint8(0)
	for width := n; width > 1; width = (width + 1) / 2 {
		height += 1
	}
	return height
}
