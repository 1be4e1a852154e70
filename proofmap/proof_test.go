// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package proofmap_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proofbase/merkledb/fault"
	"github.com/proofbase/merkledb/proofmap"
)

// inclusion proofs for every present key and exclusion proofs for a
// batch of absent keys, over maps of growing size
func TestProofRoundTrip(t *testing.T) {
	db := setup(t)
	defer teardown(t, db)

	for _, size := range []int{1, 2, 3, 5, 16, 50} {
		m, _ := newTestMap(t, db, fmt.Sprintf("proof-%d", size))
		for i := 0; i < size; i += 1 {
			require.NoError(t, m.Put([]byte(fmt.Sprintf("key-%d", i)), []byte(fmt.Sprintf("value-%d", i))))
		}
		root, err := m.ObjectHash()
		require.NoError(t, err)

		for i := 0; i < size; i += 1 {
			key := []byte(fmt.Sprintf("key-%d", i))
			proof, err := m.BuildProof(key)
			require.NoError(t, err)
			require.True(t, proof.Included, "size %d key %q", size, key)

			value, err := proof.Verify(root)
			require.NoError(t, err, "size %d key %q", size, key)
			assert.Equal(t, []byte(fmt.Sprintf("value-%d", i)), value)
		}

		for i := 0; i < 10; i += 1 {
			key := []byte(fmt.Sprintf("absent-%d", i))
			proof, err := m.BuildProof(key)
			require.NoError(t, err)
			require.False(t, proof.Included, "size %d key %q", size, key)

			value, err := proof.Verify(root)
			require.NoError(t, err, "size %d key %q", size, key)
			assert.Nil(t, value)
		}
	}
}

func TestEmptyMapProof(t *testing.T) {
	db := setup(t)
	defer teardown(t, db)

	m, _ := newTestMap(t, db, "proof-empty")

	proof, err := m.BuildProof([]byte("anything"))
	require.NoError(t, err)
	assert.False(t, proof.Included)
	assert.Nil(t, proof.Leaf)
	assert.Empty(t, proof.Nodes)

	value, err := proof.Verify(proofmap.EmptyRoot())
	require.NoError(t, err)
	assert.Nil(t, value)

	// a non-empty root rejects the empty-map proof
	other, _ := newTestMap(t, db, "proof-empty-other")
	require.NoError(t, other.Put([]byte("k"), []byte("v")))
	otherRoot, err := other.ObjectHash()
	require.NoError(t, err)

	_, err = proof.Verify(otherRoot)
	assert.Equal(t, fault.ErrProofRootMismatch, err)
}

// proofs remain valid only against the root they were built for
func TestProofStaleRoot(t *testing.T) {
	db := setup(t)
	defer teardown(t, db)

	m, _ := newTestMap(t, db, "proof-stale")
	require.NoError(t, m.Put([]byte("a"), []byte("1")))
	require.NoError(t, m.Put([]byte("b"), []byte("2")))
	oldRoot, err := m.ObjectHash()
	require.NoError(t, err)

	require.NoError(t, m.Put([]byte("c"), []byte("3")))
	newRoot, err := m.ObjectHash()
	require.NoError(t, err)

	proof, err := m.BuildProof([]byte("a"))
	require.NoError(t, err)

	_, err = proof.Verify(newRoot)
	require.NoError(t, err)

	_, err = proof.Verify(oldRoot)
	assert.Equal(t, fault.ErrProofRootMismatch, err)
}

func TestProofTampering(t *testing.T) {
	db := setup(t)
	defer teardown(t, db)

	m, _ := newTestMap(t, db, "proof-tamper")
	for i := 0; i < 20; i += 1 {
		require.NoError(t, m.Put([]byte(fmt.Sprintf("key-%d", i)), []byte(fmt.Sprintf("value-%d", i))))
	}
	root, err := m.ObjectHash()
	require.NoError(t, err)

	proof, err := m.BuildProof([]byte("key-7"))
	require.NoError(t, err)
	require.True(t, proof.Included)

	// forged value
	forged := *proof
	forged.Value = []byte("forged")
	_, err = forged.Verify(root)
	assert.Error(t, err)
	assert.True(t, fault.IsErrProof(err))

	// flip one byte of each sibling hash in turn
	for i := range proof.Nodes {
		damaged := *proof
		damaged.Nodes = append([]proofmap.ProofNode(nil), proof.Nodes...)
		damaged.Nodes[i].LeftHash[0] ^= 0x01
		_, err = damaged.Verify(root)
		assert.Error(t, err, "node %d left", i)

		damaged.Nodes = append([]proofmap.ProofNode(nil), proof.Nodes...)
		damaged.Nodes[i].RightHash[0] ^= 0x01
		_, err = damaged.Verify(root)
		assert.Error(t, err, "node %d right", i)
	}

	// flip the inclusion flag without adjusting anything else
	flipped := *proof
	flipped.Included = false
	_, err = flipped.Verify(root)
	assert.Equal(t, fault.ErrProofMalformed, err)

	// drop the terminal node so the chain never resolves
	if 1 < len(proof.Nodes) {
		truncated := *proof
		truncated.Nodes = proof.Nodes[:len(proof.Nodes)-1]
		_, err = truncated.Verify(root)
		assert.Error(t, err)
	}
}

// exclusion proof cannot be re-targeted to claim a present key absent
func TestProofExclusionForgery(t *testing.T) {
	db := setup(t)
	defer teardown(t, db)

	m, _ := newTestMap(t, db, "proof-forge")
	for i := 0; i < 20; i += 1 {
		require.NoError(t, m.Put([]byte(fmt.Sprintf("key-%d", i)), []byte(fmt.Sprintf("value-%d", i))))
	}
	root, err := m.ObjectHash()
	require.NoError(t, err)

	proof, err := m.BuildProof([]byte("no-such-key"))
	require.NoError(t, err)
	require.False(t, proof.Included)

	_, err = proof.Verify(root)
	require.NoError(t, err)

	// swap in a key that is present: the recorded path no longer
	// matches that key's trie position
	proof.Key = []byte("key-3")
	_, err = proof.Verify(root)
	assert.Error(t, err)
	assert.True(t, fault.IsErrProof(err))
}

func TestSingleLeafProof(t *testing.T) {
	db := setup(t)
	defer teardown(t, db)

	m, _ := newTestMap(t, db, "proof-single")
	require.NoError(t, m.Put([]byte("only"), []byte("entry")))
	root, err := m.ObjectHash()
	require.NoError(t, err)

	proof, err := m.BuildProof([]byte("only"))
	require.NoError(t, err)
	require.True(t, proof.Included)
	require.NotNil(t, proof.Leaf)
	assert.Empty(t, proof.Nodes)

	value, err := proof.Verify(root)
	require.NoError(t, err)
	assert.Equal(t, []byte("entry"), value)

	// exclusion against the single-leaf trie
	absent, err := m.BuildProof([]byte("other"))
	require.NoError(t, err)
	require.False(t, absent.Included)
	require.NotNil(t, absent.Leaf)

	value, err = absent.Verify(root)
	require.NoError(t, err)
	assert.Nil(t, value)

	// tampered leaf value hash
	damaged := *proof
	leaf := *proof.Leaf
	leaf.ValueHash[0] ^= 0x01
	damaged.Leaf = &leaf
	_, err = damaged.Verify(root)
	assert.Error(t, err)
}
