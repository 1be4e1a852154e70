// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package prooflist

import (
	"github.com/proofbase/merkledb/digest"
)

// domain separation tags so a leaf can never be confused with an
// internal node
const (
	tagLeaf = 0x00
	tagNode = 0x01
)

// root hash of a list with no elements
//
// a fixed sentinel, distinct from the hash of any byte string, so an
// empty list is distinguishable from an absent one
var emptyRoot = digest.NewDigest([]byte("merkledb:empty-list"))

// EmptyRoot - the object hash of an empty list
func EmptyRoot() digest.Digest {
	return emptyRoot
}

// the only two hashing rules in this package; proof verification and
// live tree maintenance both go through these
func leafHash(value []byte) digest.Digest {
	buffer := make([]byte, 1, 1+len(value))
	buffer[0] = tagLeaf
	return digest.NewDigest(append(buffer, value...))
}

func pairHash(left digest.Digest, right digest.Digest) digest.Digest {
	buffer := make([]byte, 1, 1+2*digest.Length)
	buffer[0] = tagNode
	buffer = append(buffer, left[:]...)
	buffer = append(buffer, right[:]...)
	return digest.NewDigest(buffer)
}
