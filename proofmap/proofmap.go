// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package proofmap

import (
	"encoding/binary"

	"github.com/proofbase/merkledb/digest"
	"github.com/proofbase/merkledb/fault"
	"github.com/proofbase/merkledb/storage"
)

// local key tags
const (
	tagBranchKey = 'B'
	tagRootKey   = 'R'
	tagValueKey  = 'V'
)

var rootKey = []byte{tagRootKey}

// Map - key-value map authenticated by a binary patricia trie
//
// read operations work over any view; Put and Remove require a
// writable view
type Map struct {
	view *storage.View
	rw   *storage.RWView
}

// New - open a read-only map over a snapshot or fork view
func New(view *storage.View) *Map {
	return &Map{view: view}
}

// NewWritable - open a writable map over a fork view
func NewWritable(view *storage.RWView) *Map {
	return &Map{
		view: &view.View,
		rw:   view,
	}
}

// Address - the address this map is stored under
func (m *Map) Address() storage.Address {
	return m.view.Address()
}

// the fixed-length trie path of a key
func keyPath(key []byte) Path {
	return leafPath(digest.NewDigest(key))
}

func branchKey(position Path) []byte {
	return append([]byte{tagBranchKey}, position.Encode()...)
}

func valueKey(path Path) []byte {
	key := make([]byte, 1, 1+digest.Length)
	key[0] = tagValueKey
	return append(key, path.bits[:]...)
}

// value records carry the original key so iteration can return it
func packValue(key []byte, value []byte) []byte {
	var scratch [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(scratch[:], uint64(len(key)))

	buffer := make([]byte, 0, n+len(key)+len(value))
	buffer = append(buffer, scratch[:n]...)
	buffer = append(buffer, key...)
	return append(buffer, value...)
}

func unpackValue(buffer []byte) ([]byte, []byte, error) {
	keyLength, n := binary.Uvarint(buffer)
	if n <= 0 || uint64(len(buffer)-n) < keyLength {
		return nil, nil, fault.ErrCorruptedRecord
	}
	key := buffer[n : n+int(keyLength)]
	value := buffer[n+int(keyLength):]
	return key, value, nil
}

// read the root marker
//
// found is false for an empty map
func (m *Map) root() (Path, digest.Digest, bool, error) {
	buffer, err := m.view.Get(rootKey)
	if nil != err {
		return Path{}, digest.Digest{}, false, err
	}
	if nil == buffer {
		return Path{}, digest.Digest{}, false, nil
	}
	path, n, err := decodePath(buffer)
	if nil != err {
		return Path{}, digest.Digest{}, false, err
	}
	var hash digest.Digest
	err = digest.FromBytes(&hash, buffer[n:])
	if nil != err {
		return Path{}, digest.Digest{}, false, fault.ErrCorruptedRecord
	}
	return path, hash, true, nil
}

func (m *Map) putRoot(path Path, hash digest.Digest) error {
	return m.rw.Put(rootKey, append(path.Encode(), hash[:]...))
}

func (m *Map) loadBranch(position Path) (*branch, error) {
	buffer, err := m.view.Get(branchKey(position))
	if nil != err {
		return nil, err
	}
	if nil == buffer {
		return nil, fault.ErrCorruptedRecord
	}
	return unpackBranch(buffer)
}

func (m *Map) storeBranch(position Path, node *branch) error {
	return m.rw.Put(branchKey(position), node.pack())
}

// one step of the descent stack
type walkFrame struct {
	position Path
	node     *branch
	bit      byte
}

// Get - read the value stored under a key
//
// nil means the key is not present
func (m *Map) Get(key []byte) ([]byte, error) {
	buffer, err := m.view.Get(valueKey(keyPath(key)))
	if nil != err {
		return nil, err
	}
	if nil == buffer {
		return nil, nil
	}
	_, value, err := unpackValue(buffer)
	if nil != err {
		return nil, err
	}
	return value, nil
}

// Has - check if a key is present
func (m *Map) Has(key []byte) (bool, error) {
	return m.view.Has(valueKey(keyPath(key)))
}

// Put - store a key/value pair
//
// splits the trie at the point of divergence when needed and
// recomputes hashes along the modified path only
func (m *Map) Put(key []byte, value []byte) error {
	if nil == m.rw {
		return fault.ErrReadOnlyIndex
	}

	path := keyPath(key)
	vh := valueHash(value)

	err := m.rw.Put(valueKey(path), packValue(key, value))
	if nil != err {
		return err
	}

	rootPath, rootHash, found, err := m.root()
	if nil != err {
		return err
	}
	if !found {
		// first entry: the trie is a single leaf
		return m.putRoot(path, vh)
	}

	stack := []walkFrame{}
	current := rootPath
	currentHash := rootHash

	var updatedPath Path
	var updatedHash digest.Digest

walking:
	for {
		if current.Equal(path) {
			// existing leaf for this key: replace the value
			updatedPath = path
			updatedHash = vh
			break walking
		}

		if !path.HasPrefix(current) {
			// diverged: insert a branch above the current node
			position := path.Prefix(commonPrefixLength(current, path))
			node := newBranch(position,
				child{path: current, hash: currentHash},
				child{path: path, hash: vh},
			)
			err = m.storeBranch(position, node)
			if nil != err {
				return err
			}
			updatedPath = position
			updatedHash = branchHash(node.left, node.right)
			break walking
		}

		// a proper prefix of a full path is always a branch
		node, err := m.loadBranch(current)
		if nil != err {
			return err
		}
		bit := path.Bit(current.Len())
		next := node.child(bit)
		stack = append(stack, walkFrame{
			position: current,
			node:     node,
			bit:      bit,
		})
		current = next.path
		currentHash = next.hash
	}

	return m.unwind(stack, updatedPath, updatedHash)
}

// Remove - delete the value stored under a key
//
// a branch left with a single child is collapsed so no chain of
// single-child branches ever persists
func (m *Map) Remove(key []byte) error {
	if nil == m.rw {
		return fault.ErrReadOnlyIndex
	}

	path := keyPath(key)

	rootPath, _, found, err := m.root()
	if nil != err {
		return err
	}
	if !found {
		return nil // empty map
	}

	stack := []walkFrame{}
	current := rootPath

	for !current.Equal(path) {
		if !path.HasPrefix(current) {
			return nil // key not present
		}
		node, err := m.loadBranch(current)
		if nil != err {
			return err
		}
		bit := path.Bit(current.Len())
		next := node.child(bit)
		stack = append(stack, walkFrame{
			position: current,
			node:     node,
			bit:      bit,
		})
		current = next.path
	}

	err = m.rw.Delete(valueKey(path))
	if nil != err {
		return err
	}

	if 0 == len(stack) {
		// the leaf was the whole trie
		return m.rw.Delete(rootKey)
	}

	// collapse the parent branch into its surviving child
	parent := stack[len(stack)-1]
	stack = stack[:len(stack)-1]
	survivor := parent.node.child(parent.bit ^ 1)
	err = m.rw.Delete(branchKey(parent.position))
	if nil != err {
		return err
	}

	return m.unwind(stack, survivor.path, survivor.hash)
}

// propagate an updated child back up the descent stack, rewriting and
// rehashing each branch, then refresh the root marker
func (m *Map) unwind(stack []walkFrame, updatedPath Path, updatedHash digest.Digest) error {
	for i := len(stack) - 1; i >= 0; i -= 1 {
		frame := stack[i]
		frame.node.setChild(frame.bit, child{
			path: updatedPath,
			hash: updatedHash,
		})
		err := m.storeBranch(frame.position, frame.node)
		if nil != err {
			return err
		}
		updatedPath = frame.position
		updatedHash = branchHash(frame.node.left, frame.node.right)
	}
	return m.putRoot(updatedPath, updatedHash)
}

// ObjectHash - the root hash committing to the full map contents
func (m *Map) ObjectHash() (digest.Digest, error) {
	rootPath, rootHash, found, err := m.root()
	if nil != err {
		return digest.Digest{}, err
	}
	if !found {
		return emptyRoot, nil
	}
	if PathBits == rootPath.Len() {
		// single leaf: bind the key path into the root
		return leafRootHash(rootPath, rootHash), nil
	}
	return rootHash, nil
}

// MapIterator - iteration over all entries in key hash order
type MapIterator struct {
	iter  *storage.ViewIterator
	key   []byte
	value []byte
	err   error
}

// NewIterator - iterate every entry; order is by hashed key, which is
// stable but unrelated to the original key ordering
func (m *Map) NewIterator() *MapIterator {
	return &MapIterator{
		iter: m.view.NewIterator([]byte{tagValueKey}),
	}
}

// Next - advance; false at the end or on a decoding error
func (it *MapIterator) Next() bool {
	if nil != it.err {
		return false
	}
	for it.iter.Next() {
		raw := it.iter.Key()
		if 0 == len(raw) || tagValueKey != raw[0] {
			return false // past the value records
		}
		key, value, err := unpackValue(it.iter.Value())
		if nil != err {
			it.err = err
			return false
		}
		it.key = key
		it.value = value
		return true
	}
	return false
}

// Key - original key of the current entry
func (it *MapIterator) Key() []byte {
	return it.key
}

// Value - value of the current entry
func (it *MapIterator) Value() []byte {
	return it.value
}

// Release - must be called when finished with the iterator
func (it *MapIterator) Release() {
	it.iter.Release()
}

// Error - any error accumulated during iteration
func (it *MapIterator) Error() error {
	if nil != it.err {
		return it.err
	}
	return it.iter.Error()
}
