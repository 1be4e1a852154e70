// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// append-only list authenticated by a binary merkle tree
//
//
// the tree is kept as flat records in one view namespace; a node is
// addressed by (height, index) so no in-memory pointer structure is
// ever built
//
// Keys:
//
//   00 ++ index                - leaf values
//                                data: raw value bytes
//   height ++ index            - internal tree nodes (height 1..63)
//                                data: 32 byte node hash
//   FF                         - element count
//                                data: big endian uint64 (8 bytes)
//
// Notes:
// 1. ++     = concatenation of byte data
// 2. index  = big endian uint64 (8 bytes)
// 3. a level with an odd population promotes its last hash upward
//    unchanged - hashes are never duplicated as padding
// 4. pushing one value rewrites only the path to the root: O(log n)
package prooflist
