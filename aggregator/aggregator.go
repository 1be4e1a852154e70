// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package aggregator - fold the root hashes of a set of authenticated
// indexes into one global state digest
//
// the aggregate is the commitment an external system anchors to: it is
// a pure function of the registered addresses and their current
// contents, never of registration order
package aggregator

import (
	"bytes"
	"encoding/binary"
	"sort"
	"sync"

	"github.com/proofbase/merkledb/digest"
	"github.com/proofbase/merkledb/storage"
)

// domain separation tag for the aggregate hash
const tagAggregate = 0x05

// Index - the capability shared by all authenticated indexes
type Index interface {
	Address() storage.Address
	ObjectHash() (digest.Digest, error)
}

// Aggregator - collects registered indexes for state aggregation
type Aggregator struct {
	sync.Mutex
	entries map[string]Index // keyed by encoded address
}

// New - create an empty aggregator
func New() *Aggregator {
	return &Aggregator{
		entries: make(map[string]Index),
	}
}

// Register - add an index to the aggregation set
//
// idempotent per address: registering a second index under an already
// registered address replaces the earlier handle
func (a *Aggregator) Register(index Index) {
	a.Lock()
	defer a.Unlock()
	a.entries[string(index.Address().Prefix())] = index
}

// Len - number of registered addresses
func (a *Aggregator) Len() int {
	a.Lock()
	defer a.Unlock()
	return len(a.entries)
}

// AggregatedHash - the global state digest
//
// orders the registered addresses lexicographically by their encoded
// form, queries every index for its current root hash and hashes the
// concatenated (address, root) pairs
func (a *Aggregator) AggregatedHash() (digest.Digest, error) {
	a.Lock()
	encoded := make([]string, 0, len(a.entries))
	indexes := make(map[string]Index, len(a.entries))
	for prefix, index := range a.entries {
		encoded = append(encoded, prefix)
		indexes[prefix] = index
	}
	a.Unlock()

	sort.Strings(encoded)

	var scratch [binary.MaxVarintLen64]byte
	buffer := bytes.NewBuffer([]byte{tagAggregate})
	n := binary.PutUvarint(scratch[:], uint64(len(encoded)))
	buffer.Write(scratch[:n])

	for _, prefix := range encoded {
		root, err := indexes[prefix].ObjectHash()
		if nil != err {
			return digest.Digest{}, err
		}
		buffer.WriteString(prefix)
		buffer.Write(root[:])
	}
	return digest.NewDigest(buffer.Bytes()), nil
}
