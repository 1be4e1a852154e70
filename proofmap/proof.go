// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package proofmap

import (
	"github.com/proofbase/merkledb/digest"
	"github.com/proofbase/merkledb/fault"
)

// ProofNode - one branch on the search path, in root-to-target order
//
// carries everything needed to recompute the branch hash offline
type ProofNode struct {
	LeftPath  Path
	LeftHash  digest.Digest
	RightPath Path
	RightHash digest.Digest
}

// ProofLeaf - the trie root when the whole map is one entry
type ProofLeaf struct {
	Path      Path
	ValueHash digest.Digest
}

// Proof - self-contained inclusion or exclusion proof for one key
//
// Included true:  Value holds the proven value
// Included false: the recorded path proves no leaf exists at the key
type Proof struct {
	Key      []byte
	Value    []byte
	Included bool
	Leaf     *ProofLeaf
	Nodes    []ProofNode
}

// BuildProof - record the search path and sibling hashes for a key
func (m *Map) BuildProof(key []byte) (*Proof, error) {
	path := keyPath(key)

	proof := &Proof{
		Key: append([]byte(nil), key...),
	}

	rootPath, rootHash, found, err := m.root()
	if nil != err {
		return nil, err
	}
	if !found {
		return proof, nil // empty map: exclusion
	}

	if PathBits == rootPath.Len() {
		// single leaf trie
		proof.Leaf = &ProofLeaf{
			Path:      rootPath,
			ValueHash: rootHash,
		}
		if rootPath.Equal(path) {
			proof.Included = true
			proof.Value, err = m.Get(key)
			if nil != err {
				return nil, err
			}
		}
		return proof, nil
	}

	current := rootPath
	for {
		node, err := m.loadBranch(current)
		if nil != err {
			return nil, err
		}
		proof.Nodes = append(proof.Nodes, ProofNode{
			LeftPath:  node.left.path,
			LeftHash:  node.left.hash,
			RightPath: node.right.path,
			RightHash: node.right.hash,
		})

		if !path.HasPrefix(current) {
			return proof, nil // position diverges: exclusion
		}

		next := node.child(path.Bit(current.Len()))
		if next.path.Equal(path) {
			proof.Included = true
			proof.Value, err = m.Get(key)
			if nil != err {
				return nil, err
			}
			return proof, nil
		}
		if !path.HasPrefix(next.path) {
			return proof, nil // edge diverges: exclusion
		}
		current = next.path
	}
}

// Verify - replay the recorded path against a known root hash
//
// returns the value for an inclusion proof or nil for a valid
// exclusion proof; any hash mismatch or structural inconsistency
// yields a ProofError
func (p *Proof) Verify(root digest.Digest) ([]byte, error) {
	path := keyPath(p.Key)

	// empty map proof
	if nil == p.Leaf && 0 == len(p.Nodes) {
		if p.Included {
			return nil, fault.ErrProofMalformed
		}
		if emptyRoot != root {
			return nil, fault.ErrProofRootMismatch
		}
		return nil, nil
	}

	// single leaf proof
	if nil != p.Leaf {
		if 0 != len(p.Nodes) || PathBits != p.Leaf.Path.Len() {
			return nil, fault.ErrProofMalformed
		}
		if p.Included {
			if !p.Leaf.Path.Equal(path) {
				return nil, fault.ErrProofMalformed
			}
			if valueHash(p.Value) != p.Leaf.ValueHash {
				return nil, fault.ErrProofValueMismatch
			}
		} else if p.Leaf.Path.Equal(path) {
			// an exclusion proof whose leaf matches the key is a lie
			return nil, fault.ErrProofMalformed
		}
		if leafRootHash(p.Leaf.Path, p.Leaf.ValueHash) != root {
			return nil, fault.ErrProofRootMismatch
		}
		if p.Included {
			return p.Value, nil
		}
		return nil, nil
	}

	// branch chain
	expected := root
	last := len(p.Nodes) - 1
	for i, node := range p.Nodes {
		left := child{path: node.LeftPath, hash: node.LeftHash}
		right := child{path: node.RightPath, hash: node.RightHash}

		// both children must extend the branch position by
		// opposite bits
		divergence := commonPrefixLength(left.path, right.path)
		if divergence >= left.path.Len() || divergence >= right.path.Len() {
			return nil, fault.ErrProofMalformed
		}
		position := left.path.Prefix(divergence)
		if 0 != left.path.Bit(divergence) || 1 != right.path.Bit(divergence) {
			return nil, fault.ErrProofMalformed
		}

		if branchHash(left, right) != expected {
			return nil, fault.ErrProofRootMismatch
		}

		if !path.HasPrefix(position) {
			// divergence at the branch position proves exclusion
			if p.Included || i != last {
				return nil, fault.ErrProofMalformed
			}
			return nil, nil
		}

		next := left
		if 1 == path.Bit(position.Len()) {
			next = right
		}

		if next.path.Equal(path) {
			// leaf for the key
			if !p.Included || i != last {
				return nil, fault.ErrProofMalformed
			}
			if valueHash(p.Value) != next.hash {
				return nil, fault.ErrProofValueMismatch
			}
			return p.Value, nil
		}
		if !path.HasPrefix(next.path) {
			// divergence inside the edge proves exclusion
			if p.Included || i != last {
				return nil, fault.ErrProofMalformed
			}
			return nil, nil
		}

		expected = next.hash
	}

	// the chain ran out without reaching a terminal state
	return nil, fault.ErrProofMalformed
}
