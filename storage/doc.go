// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// maintain the on-disk data store
//
//
// maintain isolated transactional views over a single LevelDB database
//
// This maintains a LevelDB database split into a series of namespaces.
// Each namespace is derived from an index address and every key in a
// namespace is physically stored as:
//
//   prefix(address) ++ local key
//
// where:
//
//   prefix(address) = uvarint(len(name)) ++ name ++ uvarint(len(suffix)) ++ suffix
//
// The length prefixes make the encoding injective and prefix-free, so
// no two distinct addresses can ever produce overlapping key ranges.
//
// Since an address name is never empty the first byte of any prefixed
// key is always non-zero; keys starting with 0x00 are reserved for
// database metadata:
//
//   00 'V' 'E' 'R' 'S' 'I' 'O' 'N'  - database format version
//                                     data: big endian uint32 (4 bytes)
//
// Reading follows a three level model:
//
// 1. Snapshot - immutable point-in-time view of the whole store
// 2. Fork     - in-memory change overlay on top of a Snapshot
// 3. Patch    - frozen fork changeset, applied atomically by Merge
//
// Notes:
// 1. ++ = concatenation of byte data
// 2. a Fork is exclusively owned by one writer; Snapshots are shared
// 3. Merge writes one LevelDB batch: all entries or none become visible
package storage
