// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"bytes"
	"testing"

	"github.com/proofbase/merkledb/fault"
	"github.com/proofbase/merkledb/storage"
)

// write through a fork, merge, then check the committed state
func TestPutMergeGet(t *testing.T) {
	db := setup(t)
	defer teardown(t, db)

	addr := makeAddress(t, "test-data")

	fork, err := db.NewFork()
	if nil != err {
		t.Fatalf("fork error: %s", err)
	}
	view := storage.NewRWView(fork, addr)

	items := []struct {
		key   string
		value string
	}{
		{"key-one", "data-one"},
		{"key-two", "data-two"},
		{"key-three", "data-three"},
	}
	for _, item := range items {
		err = view.Put([]byte(item.key), []byte(item.value))
		if nil != err {
			t.Fatalf("put error: %s", err)
		}
	}
	err = view.Delete([]byte("key-three"))
	if nil != err {
		t.Fatalf("delete error: %s", err)
	}

	// values are visible through the fork before merge
	data, err := view.Get([]byte("key-one"))
	if nil != err {
		t.Fatalf("get error: %s", err)
	}
	if "data-one" != string(data) {
		t.Errorf("fork get mismatch, got: %q  expected: %q", data, "data-one")
	}

	patch, err := fork.IntoPatch()
	if nil != err {
		t.Fatalf("into patch error: %s", err)
	}
	if 4 != patch.Len() {
		t.Errorf("patch length mismatch, got: %d  expected: %d", patch.Len(), 4)
	}

	err = db.Merge(patch)
	if nil != err {
		t.Fatalf("merge error: %s", err)
	}

	// new snapshot observes the merge
	snap, err := db.Snapshot()
	if nil != err {
		t.Fatalf("snapshot error: %s", err)
	}
	defer snap.Release()

	after := storage.NewView(snap, addr)
	data, err = after.Get([]byte("key-two"))
	if nil != err {
		t.Fatalf("get error: %s", err)
	}
	if "data-two" != string(data) {
		t.Errorf("get mismatch, got: %q  expected: %q", data, "data-two")
	}

	// the deleted key must be absent
	data, err = after.Get([]byte("key-three"))
	if nil != err {
		t.Fatalf("get error: %s", err)
	}
	if nil != data {
		t.Errorf("unexpected data for deleted key: %q", data)
	}
}

// a snapshot taken before a merge never observes it
func TestSnapshotIsolation(t *testing.T) {
	db := setup(t)
	defer teardown(t, db)

	addr := makeAddress(t, "isolation")

	before, err := db.Snapshot()
	if nil != err {
		t.Fatalf("snapshot error: %s", err)
	}
	defer before.Release()

	fork, _ := db.NewFork()
	view := storage.NewRWView(fork, addr)
	view.Put([]byte("k"), []byte("v"))
	patch, _ := fork.IntoPatch()
	err = db.Merge(patch)
	if nil != err {
		t.Fatalf("merge error: %s", err)
	}

	// old snapshot: key absent
	oldView := storage.NewView(before, addr)
	data, err := oldView.Get([]byte("k"))
	if nil != err {
		t.Fatalf("get error: %s", err)
	}
	if nil != data {
		t.Errorf("old snapshot observed merged data: %q", data)
	}

	// new snapshot: key present
	afterSnap, _ := db.Snapshot()
	defer afterSnap.Release()
	newView := storage.NewView(afterSnap, addr)
	data, err = newView.Get([]byte("k"))
	if nil != err {
		t.Fatalf("get error: %s", err)
	}
	if "v" != string(data) {
		t.Errorf("get mismatch, got: %q  expected: %q", data, "v")
	}
}

// a consumed fork or patch is rejected
func TestConsumed(t *testing.T) {
	db := setup(t)
	defer teardown(t, db)

	fork, _ := db.NewFork()
	fork.Put([]byte("x"), []byte("y"))

	patch, err := fork.IntoPatch()
	if nil != err {
		t.Fatalf("into patch error: %s", err)
	}

	// all fork operations must now fail
	if err = fork.Put([]byte("x"), []byte("z")); fault.ErrForkConsumed != err {
		t.Errorf("put on consumed fork, got: %v  expected: %v", err, fault.ErrForkConsumed)
	}
	if _, _, err = fork.Get([]byte("x")); fault.ErrForkConsumed != err {
		t.Errorf("get on consumed fork, got: %v  expected: %v", err, fault.ErrForkConsumed)
	}
	if _, err = fork.IntoPatch(); fault.ErrForkConsumed != err {
		t.Errorf("double into patch, got: %v  expected: %v", err, fault.ErrForkConsumed)
	}

	err = db.Merge(patch)
	if nil != err {
		t.Fatalf("merge error: %s", err)
	}
	if err = db.Merge(patch); fault.ErrPatchConsumed != err {
		t.Errorf("double merge, got: %v  expected: %v", err, fault.ErrPatchConsumed)
	}
}

// latest-state reads go through the cache after a merge
func TestLatestRead(t *testing.T) {
	db := setup(t)
	defer teardown(t, db)

	addr := makeAddress(t, "latest")
	prefixed := append(addr.Prefix(), []byte("k")...)

	fork, _ := db.NewFork()
	storage.NewRWView(fork, addr).Put([]byte("k"), []byte("cached"))
	patch, _ := fork.IntoPatch()
	if err := db.Merge(patch); nil != err {
		t.Fatalf("merge error: %s", err)
	}

	data, err := db.Get(prefixed)
	if nil != err {
		t.Fatalf("get error: %s", err)
	}
	if !bytes.Equal([]byte("cached"), data) {
		t.Errorf("get mismatch, got: %q  expected: %q", data, "cached")
	}
}

// database refuses operation after close
func TestClosed(t *testing.T) {
	db := setup(t)
	defer removeFiles()

	err := db.Close()
	if nil != err {
		t.Fatalf("close error: %s", err)
	}

	if _, err = db.Snapshot(); fault.ErrDatabaseClosed != err {
		t.Errorf("snapshot on closed db, got: %v  expected: %v", err, fault.ErrDatabaseClosed)
	}
	if err = db.Close(); fault.ErrDatabaseClosed != err {
		t.Errorf("double close, got: %v  expected: %v", err, fault.ErrDatabaseClosed)
	}
}

// data survives a database restart
func TestReopen(t *testing.T) {
	db := setup(t)
	defer removeFiles()

	addr := makeAddress(t, "persist")

	fork, _ := db.NewFork()
	storage.NewRWView(fork, addr).Put([]byte("stable"), []byte("value"))
	patch, _ := fork.IntoPatch()
	if err := db.Merge(patch); nil != err {
		t.Fatalf("merge error: %s", err)
	}
	db.Close()

	db2, err := storage.Open(databaseFileName, storage.ReadWrite)
	if nil != err {
		t.Fatalf("reopen error: %s", err)
	}
	defer db2.Close()

	snap, _ := db2.Snapshot()
	defer snap.Release()
	data, err := storage.NewView(snap, addr).Get([]byte("stable"))
	if nil != err {
		t.Fatalf("get error: %s", err)
	}
	if "value" != string(data) {
		t.Errorf("get mismatch, got: %q  expected: %q", data, "value")
	}
}
