// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// key-value map authenticated by a binary patricia trie
//
//
// keys are hashed to a fixed 256 bit path before insertion so the
// trie depth is uniformly distributed and the root hash is a pure
// function of the key to value set, independent of insertion order
//
// the trie is path compressed: every stored branch has exactly two
// children, each recorded as (full path from root, node hash); leaves
// are not stored as separate trie records - a leaf is just a child
// entry whose path is a full 256 bits
//
// Keys:
//
//   'B' ++ encoded position    - branch node
//                                data: left path ++ left hash ++ right path ++ right hash
//   'R'                        - root marker
//                                data: encoded root path ++ 32 byte root node hash
//   'V' ++ key hash            - value records
//                                data: uvarint(len(key)) ++ key ++ value
//
// Notes:
// 1. ++              = concatenation of byte data
// 2. encoded path    = uvarint(bit count) ++ path bytes (trailing bits zero)
// 3. key hash        = 32 byte SHA3-256(key)
// 4. node "pointers" are derived keys, never in-memory references
package proofmap
