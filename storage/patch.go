// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"sync"
)

type patchEntry struct {
	key     []byte
	value   []byte
	deleted bool
}

// Patch - finalised, immutable changeset ready for atomic merge
//
// single use: owned exclusively by the caller until merged
type Patch struct {
	sync.Mutex
	entries  []patchEntry
	consumed bool
}

// Len - number of entries in the changeset
func (p *Patch) Len() int {
	p.Lock()
	defer p.Unlock()
	return len(p.entries)
}
