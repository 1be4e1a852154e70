// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package index

import (
	"encoding/binary"

	"github.com/proofbase/merkledb/digest"
	"github.com/proofbase/merkledb/storage"
)

// domain separation tag; disjoint from the proof index tags
const tagContent = 0x06

// content hash of a plain index: the tagged concatenation of all
// length-prefixed records in key order
//
// recomputed by scanning; plain indexes keep no incremental structure
func contentHash(it *storage.ViewIterator) (digest.Digest, error) {
	var scratch [binary.MaxVarintLen64]byte
	buffer := []byte{tagContent}

	for it.Next() {
		key := it.Key()
		value := it.Value()
		n := binary.PutUvarint(scratch[:], uint64(len(key)))
		buffer = append(buffer, scratch[:n]...)
		buffer = append(buffer, key...)
		n = binary.PutUvarint(scratch[:], uint64(len(value)))
		buffer = append(buffer, scratch[:n]...)
		buffer = append(buffer, value...)
	}
	it.Release()
	if err := it.Error(); nil != err {
		return digest.Digest{}, err
	}
	return digest.NewDigest(buffer), nil
}
