// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package proofmap

import (
	"github.com/proofbase/merkledb/digest"
	"github.com/proofbase/merkledb/fault"
)

// one child slot of a branch
//
// the path is the child's full position from the root; a 256 bit path
// marks a leaf, anything shorter points at another branch
type child struct {
	path Path
	hash digest.Digest
}

// branch - internal trie node
//
// path compression guarantees both children are always populated; a
// branch with one child is collapsed away on removal
type branch struct {
	left  child // bit 0 side
	right child // bit 1 side
}

func (b *branch) child(bit byte) child {
	if 0 == bit {
		return b.left
	}
	return b.right
}

func (b *branch) setChild(bit byte, c child) {
	if 0 == bit {
		b.left = c
	} else {
		b.right = c
	}
}

// build a branch holding two children, ordered by their next bit
// after the divergence point
func newBranch(position Path, a child, b child) *branch {
	node := &branch{}
	node.setChild(a.path.Bit(position.Len()), a)
	node.setChild(b.path.Bit(position.Len()), b)
	return node
}

// serialised form: left path ++ left hash ++ right path ++ right hash
func (b *branch) pack() []byte {
	leftPath := b.left.path.Encode()
	rightPath := b.right.path.Encode()

	buffer := make([]byte, 0, len(leftPath)+len(rightPath)+2*digest.Length)
	buffer = append(buffer, leftPath...)
	buffer = append(buffer, b.left.hash[:]...)
	buffer = append(buffer, rightPath...)
	buffer = append(buffer, b.right.hash[:]...)
	return buffer
}

func unpackBranch(buffer []byte) (*branch, error) {
	node := &branch{}

	path, n, err := decodePath(buffer)
	if nil != err {
		return nil, err
	}
	buffer = buffer[n:]
	if len(buffer) < digest.Length {
		return nil, fault.ErrCorruptedRecord
	}
	node.left.path = path
	copy(node.left.hash[:], buffer[:digest.Length])
	buffer = buffer[digest.Length:]

	path, n, err = decodePath(buffer)
	if nil != err {
		return nil, err
	}
	buffer = buffer[n:]
	if len(buffer) != digest.Length {
		return nil, fault.ErrCorruptedRecord
	}
	node.right.path = path
	copy(node.right.hash[:], buffer)

	return node, nil
}
