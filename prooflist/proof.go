// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package prooflist

import (
	"sort"

	"github.com/proofbase/merkledb/digest"
	"github.com/proofbase/merkledb/fault"
)

// Entry - one proven element
type Entry struct {
	Index uint64
	Value []byte
}

// HashedEntry - one sibling hash at a fixed tree position
type HashedEntry struct {
	Height uint8
	Index  uint64
	Hash   digest.Digest
}

// Proof - self-contained multi-leaf membership proof
//
// one proof covers every requested leaf simultaneously; sibling
// hashes shared between requested leaves appear once
//
// Entries are sorted by index; Hashes are sorted by (height, index)
type Proof struct {
	Length  uint64
	Entries []Entry
	Hashes  []HashedEntry
}

// BuildProof - proof for a single index
func (l *List) BuildProof(index uint64) (*Proof, error) {
	return l.BuildRangeProof(index, index+1)
}

// BuildRangeProof - proof for the half-open index range [from, to)
//
// collects the minimum sibling set needed to recompute the root from
// the requested leaves
func (l *List) BuildRangeProof(from uint64, to uint64) (*Proof, error) {
	n, err := l.Len()
	if nil != err {
		return nil, err
	}
	if from >= to {
		return nil, fault.ErrInvalidRange
	}
	positions := make([]uint64, 0, to-from)
	for i := from; i < to; i += 1 {
		positions = append(positions, i)
	}
	return l.buildProof(positions, n)
}

// BuildMultiProof - proof for an arbitrary set of indexes
//
// the set need not be contiguous; it is sorted and deduplicated
func (l *List) BuildMultiProof(indexes []uint64) (*Proof, error) {
	n, err := l.Len()
	if nil != err {
		return nil, err
	}
	if 0 == len(indexes) {
		return nil, fault.ErrInvalidRange
	}

	positions := make([]uint64, len(indexes))
	copy(positions, indexes)
	sort.Slice(positions, func(i, j int) bool {
		return positions[i] < positions[j]
	})
	unique := positions[:1]
	for _, index := range positions[1:] {
		if index != unique[len(unique)-1] {
			unique = append(unique, index)
		}
	}
	return l.buildProof(unique, n)
}

// collect values and the minimum sibling set for sorted unique leaf
// positions
func (l *List) buildProof(positions []uint64, n uint64) (*Proof, error) {
	if positions[len(positions)-1] >= n {
		return nil, fault.ErrIndexOutOfRange
	}

	proof := &Proof{
		Length:  n,
		Entries: make([]Entry, 0, len(positions)),
	}

	for _, i := range positions {
		value, err := l.Get(i)
		if nil != err {
			return nil, err
		}
		if nil == value {
			return nil, fault.ErrCorruptedRecord
		}
		proof.Entries = append(proof.Entries, Entry{
			Index: i,
			Value: value,
		})
	}

	width := n
	height := uint8(0)
	for width > 1 {
		next := make([]uint64, 0, len(positions)/2+1)
		for i := 0; i < len(positions); {
			index := positions[i]
			sibling := index ^ 1
			if i+1 < len(positions) && positions[i+1] == sibling {
				i += 2 // both halves requested: nothing to add
			} else {
				if sibling < width {
					hash, err := l.hashAt(height, sibling)
					if nil != err {
						return nil, err
					}
					proof.Hashes = append(proof.Hashes, HashedEntry{
						Height: height,
						Index:  sibling,
						Hash:   hash,
					})
				}
				i += 1
			}
			parent := index >> 1
			if 0 == len(next) || next[len(next)-1] != parent {
				next = append(next, parent)
			}
		}
		positions = next
		width = (width + 1) / 2
		height += 1
	}

	return proof, nil
}

// internal position/hash pair used during verification
type positionHash struct {
	index uint64
	hash  digest.Digest
}

// Verify - recompute the root from the proof and compare
//
// returns the proven (index, value) pairs in index order; any
// mismatch or structural inconsistency yields a ProofError
func (p *Proof) Verify(root digest.Digest) ([]Entry, error) {

	if 0 == p.Length {
		if 0 != len(p.Entries) || 0 != len(p.Hashes) {
			return nil, fault.ErrProofMalformed
		}
		if emptyRoot != root {
			return nil, fault.ErrProofRootMismatch
		}
		return []Entry{}, nil
	}

	if 0 == len(p.Entries) {
		return nil, fault.ErrProofMalformed
	}

	// leaves: strictly ascending indexes within bounds
	layer := make([]positionHash, 0, len(p.Entries))
	for i, e := range p.Entries {
		if e.Index >= p.Length {
			return nil, fault.ErrProofMalformed
		}
		if i > 0 && e.Index <= p.Entries[i-1].Index {
			return nil, fault.ErrProofMalformed
		}
		layer = append(layer, positionHash{
			index: e.Index,
			hash:  leafHash(e.Value),
		})
	}

	// sibling hashes: strictly ascending (height, index)
	for i := 1; i < len(p.Hashes); i += 1 {
		a := p.Hashes[i-1]
		b := p.Hashes[i]
		if a.Height > b.Height || (a.Height == b.Height && a.Index >= b.Index) {
			return nil, fault.ErrProofMalformed
		}
	}

	hi := 0
	width := p.Length
	height := uint8(0)

	for width > 1 {

		// merge the layer with the proof hashes for this height
		merged := make([]positionHash, 0, len(layer)+2)
		li := 0
		for li < len(layer) || (hi < len(p.Hashes) && height == p.Hashes[hi].Height) {
			takeHash := hi < len(p.Hashes) && height == p.Hashes[hi].Height
			if takeHash && li < len(layer) {
				if p.Hashes[hi].Index == layer[li].index {
					return nil, fault.ErrProofMalformed // duplicate position
				}
				takeHash = p.Hashes[hi].Index < layer[li].index
			}
			if takeHash {
				if p.Hashes[hi].Index >= width {
					return nil, fault.ErrProofMalformed
				}
				merged = append(merged, positionHash{
					index: p.Hashes[hi].Index,
					hash:  p.Hashes[hi].Hash,
				})
				hi += 1
			} else {
				merged = append(merged, layer[li])
				li += 1
			}
		}

		// combine pairs; the last node of an odd level promotes
		next := make([]positionHash, 0, len(merged)/2+1)
		for i := 0; i < len(merged); {
			e := merged[i]
			if 0 != e.index&1 {
				return nil, fault.ErrProofMissingSibling
			}
			if i+1 < len(merged) && merged[i+1].index == e.index+1 {
				next = append(next, positionHash{
					index: e.index >> 1,
					hash:  pairHash(e.hash, merged[i+1].hash),
				})
				i += 2
			} else if e.index == width-1 {
				next = append(next, positionHash{
					index: e.index >> 1,
					hash:  e.hash,
				})
				i += 1
			} else {
				return nil, fault.ErrProofMissingSibling
			}
		}

		layer = next
		width = (width + 1) / 2
		height += 1
	}

	if hi != len(p.Hashes) {
		return nil, fault.ErrProofExtraHash
	}
	if 1 != len(layer) || 0 != layer[0].index {
		return nil, fault.ErrProofMalformed
	}
	if layer[0].hash != root {
		return nil, fault.ErrProofRootMismatch
	}

	result := make([]Entry, len(p.Entries))
	copy(result, p.Entries)
	return result, nil
}
