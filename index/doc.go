// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package index - plain, non-authenticated collections over a view
//
// these are the simple siblings of the proof indexes: no Merkle
// structure is maintained, so mutations cost one record write and the
// content hash is recomputed by scanning
//
// local key layout inside an index namespace:
//
//	Entry  'E'             -> value
//	List   BE8(index)      -> value
//	       FF              -> BE8(count)
//	Map    key             -> value
//	Set    member          -> empty record
package index
