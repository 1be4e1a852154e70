// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/proofbase/merkledb/fault"
)

// Address - stable identifier for an index namespace
//
// immutable once an index is opened; the derived prefix is injective
// and prefix-free so independent indexes sharing one backing store can
// never collide
type Address struct {
	name   string
	suffix []byte
}

// NewAddress - create an address from a name
func NewAddress(name string) (Address, error) {
	return NewAddressWithSuffix(name, nil)
}

// NewAddressWithSuffix - create an address from a name and a byte suffix
//
// the suffix distinguishes index families created per entity, e.g. one
// list per account
func NewAddressWithSuffix(name string, suffix []byte) (Address, error) {
	if 0 == len(name) {
		return Address{}, fault.ErrAddressNameRequired
	}
	s := make([]byte, len(suffix))
	copy(s, suffix)
	return Address{
		name:   name,
		suffix: s,
	}, nil
}

// Name - the address name
func (a Address) Name() string {
	return a.name
}

// Suffix - copy of the address suffix
func (a Address) Suffix() []byte {
	s := make([]byte, len(a.suffix))
	copy(s, a.suffix)
	return s
}

// Prefix - the namespace key prefix
//
// layout: uvarint(len(name)) ++ name ++ uvarint(len(suffix)) ++ suffix
//
// both fields are length prefixed so the full encoding of one address
// can never be a prefix of another's
func (a Address) Prefix() []byte {
	buffer := make([]byte, 0, len(a.name)+len(a.suffix)+2*binary.MaxVarintLen64)
	var scratch [binary.MaxVarintLen64]byte

	n := binary.PutUvarint(scratch[:], uint64(len(a.name)))
	buffer = append(buffer, scratch[:n]...)
	buffer = append(buffer, a.name...)

	n = binary.PutUvarint(scratch[:], uint64(len(a.suffix)))
	buffer = append(buffer, scratch[:n]...)
	buffer = append(buffer, a.suffix...)

	return buffer
}

// String - printable form for logging
func (a Address) String() string {
	if 0 == len(a.suffix) {
		return a.name
	}
	return a.name + "/" + hex.EncodeToString(a.suffix)
}

// Equal - compare two addresses
func (a Address) Equal(b Address) bool {
	if a.name != b.name || len(a.suffix) != len(b.suffix) {
		return false
	}
	for i, v := range a.suffix {
		if b.suffix[i] != v {
			return false
		}
	}
	return true
}
