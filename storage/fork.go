// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"bytes"
	"sort"
	"sync"

	"github.com/proofbase/merkledb/fault"
)

// a single overlay record: an explicit delete is distinct from a key
// that is simply not in the overlay
type change struct {
	value   []byte
	deleted bool
}

// Fork - mutable overlay on top of a snapshot
//
// exclusively owned by one writer; reads fall through to the base
// snapshot when a key is absent from the overlay
type Fork struct {
	sync.Mutex
	base     *Snapshot
	changes  map[string]change
	consumed bool
}

// Get - overlay entry if present, otherwise the base snapshot
func (f *Fork) Get(key []byte) ([]byte, bool, error) {
	f.Lock()
	defer f.Unlock()

	if f.consumed {
		return nil, false, fault.ErrForkConsumed
	}
	if c, ok := f.changes[string(key)]; ok {
		if c.deleted {
			return nil, false, nil
		}
		return c.value, true, nil
	}
	return f.base.Get(key)
}

// Has - check if a key is visible through the fork
func (f *Fork) Has(key []byte) (bool, error) {
	f.Lock()
	defer f.Unlock()

	if f.consumed {
		return false, fault.ErrForkConsumed
	}
	if c, ok := f.changes[string(key)]; ok {
		return !c.deleted, nil
	}
	return f.base.Has(key)
}

// Put - record a key/value pair in the overlay
//
// no disk I/O occurs until the fork is merged
func (f *Fork) Put(key []byte, value []byte) error {
	f.Lock()
	defer f.Unlock()

	if f.consumed {
		return fault.ErrForkConsumed
	}
	v := make([]byte, len(value))
	copy(v, value)
	f.changes[string(key)] = change{value: v}
	return nil
}

// Delete - record an explicit delete in the overlay
func (f *Fork) Delete(key []byte) error {
	f.Lock()
	defer f.Unlock()

	if f.consumed {
		return fault.ErrForkConsumed
	}
	f.changes[string(key)] = change{deleted: true}
	return nil
}

// IntoPatch - freeze the changeset for merging
//
// the fork is consumed: any further operation on it returns
// fault.ErrForkConsumed
func (f *Fork) IntoPatch() (*Patch, error) {
	f.Lock()
	defer f.Unlock()

	if f.consumed {
		return nil, fault.ErrForkConsumed
	}
	f.consumed = true

	entries := make([]patchEntry, 0, len(f.changes))
	for k, c := range f.changes {
		entries = append(entries, patchEntry{
			key:     []byte(k),
			value:   c.value,
			deleted: c.deleted,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return bytes.Compare(entries[i].key, entries[j].key) < 0
	})

	f.changes = nil
	f.base.Release()
	f.base = nil

	return &Patch{entries: entries}, nil
}

// NewIterator - merged forward iteration over overlay and base
//
// the overlay portion is fixed when the iterator is created; later
// fork mutations are not observed by an open iterator
func (f *Fork) NewIterator(start []byte, limit []byte) Iterator {
	f.Lock()
	defer f.Unlock()

	if f.consumed {
		return &forkIterator{err: fault.ErrForkConsumed}
	}

	overlay := make([]patchEntry, 0, len(f.changes))
	for k, c := range f.changes {
		key := []byte(k)
		if nil != start && bytes.Compare(key, start) < 0 {
			continue
		}
		if nil != limit && bytes.Compare(key, limit) >= 0 {
			continue
		}
		overlay = append(overlay, patchEntry{
			key:     key,
			value:   c.value,
			deleted: c.deleted,
		})
	}
	sort.Slice(overlay, func(i, j int) bool {
		return bytes.Compare(overlay[i].key, overlay[j].key) < 0
	})

	return &forkIterator{
		overlay: overlay,
		base:    f.base.NewIterator(start, limit),
	}
}

// merge cursor over sorted overlay entries and the base iterator
//
// overlay entries override base entries with an equal key; deleted
// overlay entries mask base entries
type forkIterator struct {
	overlay   []patchEntry
	base      Iterator
	started   bool
	baseValid bool
	key       []byte
	value     []byte
	err       error
}

func (it *forkIterator) Next() bool {
	if nil != it.err {
		return false
	}
	if !it.started {
		it.started = true
		it.baseValid = it.base.Next()
	}

	for {
		overlayLeft := 0 != len(it.overlay)

		if !overlayLeft && !it.baseValid {
			return false
		}

		useOverlay := false
		if overlayLeft && it.baseValid {
			switch bytes.Compare(it.overlay[0].key, it.base.Key()) {
			case -1:
				useOverlay = true
			case 0:
				useOverlay = true
				it.baseValid = it.base.Next() // shadowed base entry
			case 1:
				useOverlay = false
			}
		} else if overlayLeft {
			useOverlay = true
		}

		if useOverlay {
			e := it.overlay[0]
			it.overlay = it.overlay[1:]
			if e.deleted {
				continue
			}
			it.key = e.key
			it.value = e.value
			return true
		}

		// copy out: base key/value are invalidated by the next Next
		it.key = append([]byte(nil), it.base.Key()...)
		it.value = append([]byte(nil), it.base.Value()...)
		it.baseValid = it.base.Next()
		return true
	}
}

func (it *forkIterator) Key() []byte {
	return it.key
}

func (it *forkIterator) Value() []byte {
	return it.value
}

func (it *forkIterator) Release() {
	if nil != it.base {
		it.base.Release()
	}
}

func (it *forkIterator) Error() error {
	if nil != it.err {
		return it.err
	}
	if nil != it.base {
		return it.base.Error()
	}
	return nil
}
