// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"fmt"
	"os"
	"testing"

	"github.com/bitmark-inc/logger"

	"github.com/proofbase/merkledb/storage"
)

// test database file
const (
	testingDirName   = "testing"
	databaseFileName = testingDirName + "/test.leveldb"
)

// common test setup routines

// remove all files created by test
func removeFiles() {
	os.RemoveAll(testingDirName)
}

// configure for testing
func setup(t *testing.T) *storage.Database {
	removeFiles()
	os.MkdirAll(testingDirName, 0700)
	db, err := storage.Open(databaseFileName, storage.ReadWrite)
	if nil != err {
		t.Fatalf("storage open error: %s", err)
	}
	return db
}

// post test cleanup
func teardown(t *testing.T, db *storage.Database) {
	db.Close()
	removeFiles()
}

// main entry point for tests - initialise logging
func TestMain(m *testing.M) {
	removeFiles()
	os.MkdirAll(testingDirName, 0700)

	logging := logger.Configuration{
		Directory: testingDirName,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}
	if err := logger.Initialise(logging); nil != err {
		panic(fmt.Sprintf("logger initialisation failed: %s", err))
	}

	rc := m.Run()
	logger.Finalise()
	removeFiles()
	os.Exit(rc)
}

// helper to make an address or fail
func makeAddress(t *testing.T, name string) storage.Address {
	addr, err := storage.NewAddress(name)
	if nil != err {
		t.Fatalf("address error: %s", err)
	}
	return addr
}
