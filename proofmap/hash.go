// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package proofmap

import (
	"github.com/proofbase/merkledb/digest"
)

// domain separation tags; disjoint from the prooflist tags so a list
// node can never masquerade as a map node
const (
	tagValue    = 0x02
	tagLeafRoot = 0x03
	tagBranch   = 0x04
)

// root hash of a map with no entries
var emptyRoot = digest.NewDigest([]byte("merkledb:empty-map"))

// EmptyRoot - the object hash of an empty map
func EmptyRoot() digest.Digest {
	return emptyRoot
}

// the hashing rules shared by trie maintenance and proof verification

// commitment to one stored value
func valueHash(value []byte) digest.Digest {
	buffer := make([]byte, 1, 1+len(value))
	buffer[0] = tagValue
	return digest.NewDigest(append(buffer, value...))
}

// root hash when the whole trie is one leaf; binds the key path so a
// single-entry map commits to its key as well as its value
func leafRootHash(path Path, vh digest.Digest) digest.Digest {
	encoded := path.Encode()
	buffer := make([]byte, 1, 1+len(encoded)+digest.Length)
	buffer[0] = tagLeafRoot
	buffer = append(buffer, encoded...)
	buffer = append(buffer, vh[:]...)
	return digest.NewDigest(buffer)
}

// hash of a branch node; the child paths are part of the hash so the
// trie shape is committed, not just the leaf contents
func branchHash(left child, right child) digest.Digest {
	leftPath := left.path.Encode()
	rightPath := right.path.Encode()

	buffer := make([]byte, 1, 1+2*digest.Length+len(leftPath)+len(rightPath))
	buffer[0] = tagBranch
	buffer = append(buffer, left.hash[:]...)
	buffer = append(buffer, right.hash[:]...)
	buffer = append(buffer, leftPath...)
	buffer = append(buffer, rightPath...)
	return digest.NewDigest(buffer)
}
