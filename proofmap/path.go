// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package proofmap

import (
	"encoding/binary"
	"encoding/hex"
	"math/bits"
	"strconv"

	"github.com/proofbase/merkledb/digest"
	"github.com/proofbase/merkledb/fault"
)

// number of bits in a full key path
const PathBits = 256

// Path - a bit string of up to 256 bits, most significant bit first
//
// a full length path addresses a leaf; shorter paths address branch
// positions; unused trailing bits are always zero so equal paths have
// equal byte representations
type Path struct {
	bits   [PathBits / 8]byte
	length uint16
}

// the full path of a hashed key
func leafPath(keyHash digest.Digest) Path {
	return Path{
		bits:   keyHash,
		length: PathBits,
	}
}

// Len - number of significant bits
func (p Path) Len() uint16 {
	return p.length
}

// Bit - the bit at position i (0 or 1)
func (p Path) Bit(i uint16) byte {
	return (p.bits[i>>3] >> (7 - i&7)) & 1
}

// Prefix - the first n bits as a canonical path
func (p Path) Prefix(n uint16) Path {
	q := Path{length: n}
	byteCount := int(n+7) >> 3
	copy(q.bits[:byteCount], p.bits[:byteCount])
	if 0 != n&7 {
		q.bits[byteCount-1] &= byte(0xff) << (8 - n&7)
	}
	return q
}

// Equal - compare two paths
func (p Path) Equal(q Path) bool {
	return p.length == q.length && p.bits == q.bits
}

// HasPrefix - true when q is a prefix of p
func (p Path) HasPrefix(q Path) bool {
	return q.length <= p.length && p.Prefix(q.length).Equal(q)
}

// length of the longest common prefix of two paths
func commonPrefixLength(a Path, b Path) uint16 {
	limit := a.length
	if b.length < limit {
		limit = b.length
	}
	n := uint16(0)
	for n < limit {
		x := a.bits[n>>3] ^ b.bits[n>>3]
		if 0 != x {
			diff := n&^7 + uint16(bits.LeadingZeros8(x))
			if diff < limit {
				return diff
			}
			return limit
		}
		n = n&^7 + 8
	}
	return limit
}

// Encode - self delimiting byte form: uvarint(bits) ++ path bytes
func (p Path) Encode() []byte {
	byteCount := int(p.length+7) >> 3
	buffer := make([]byte, 0, binary.MaxVarintLen16+byteCount)
	var scratch [binary.MaxVarintLen16]byte
	n := binary.PutUvarint(scratch[:], uint64(p.length))
	buffer = append(buffer, scratch[:n]...)
	return append(buffer, p.bits[:byteCount]...)
}

// decode a path from the front of a buffer
//
// returns the path and the number of bytes consumed
func decodePath(buffer []byte) (Path, int, error) {
	length, n := binary.Uvarint(buffer)
	if n <= 0 || length > PathBits {
		return Path{}, 0, fault.ErrCorruptedRecord
	}
	byteCount := int(length+7) >> 3
	if len(buffer) < n+byteCount {
		return Path{}, 0, fault.ErrCorruptedRecord
	}
	p := Path{length: uint16(length)}
	copy(p.bits[:byteCount], buffer[n:n+byteCount])
	// canonicalise any trailing bits
	if 0 != p.length&7 {
		p.bits[byteCount-1] &= byte(0xff) << (8 - p.length&7)
	}
	return p, n + byteCount, nil
}

// String - truncated hex with bit count for debugging
func (p Path) String() string {
	return hex.EncodeToString(p.bits[:(p.length+7)>>3]) + "/" + strconv.Itoa(int(p.length))
}

// MarshalText - hex of the encoded form
func (p Path) MarshalText() ([]byte, error) {
	encoded := p.Encode()
	buffer := make([]byte, hex.EncodedLen(len(encoded)))
	hex.Encode(buffer, encoded)
	return buffer, nil
}

// UnmarshalText - inverse of MarshalText
func (p *Path) UnmarshalText(s []byte) error {
	buffer := make([]byte, hex.DecodedLen(len(s)))
	n, err := hex.Decode(buffer, s)
	if nil != err {
		return err
	}
	decoded, consumed, err := decodePath(buffer[:n])
	if nil != err {
		return err
	}
	if consumed != n {
		return fault.ErrCorruptedRecord
	}
	*p = decoded
	return nil
}
