// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package prooflist_test

import (
	"fmt"
	"os"
	"testing"

	"github.com/bitmark-inc/logger"

	"github.com/proofbase/merkledb/digest"
	"github.com/proofbase/merkledb/storage"
)

const (
	testingDirName   = "testing"
	databaseFileName = testingDirName + "/test.leveldb"
)

func removeFiles() {
	os.RemoveAll(testingDirName)
}

func setup(t *testing.T) *storage.Database {
	removeFiles()
	os.MkdirAll(testingDirName, 0700)
	db, err := storage.Open(databaseFileName, storage.ReadWrite)
	if nil != err {
		t.Fatalf("storage open error: %s", err)
	}
	return db
}

func teardown(t *testing.T, db *storage.Database) {
	db.Close()
	removeFiles()
}

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

// independent reference implementation of the tree root
//
// recomputes every level from all the leaves; the live index must
// always agree with this
func referenceRoot(values [][]byte) digest.Digest {
	level := make([]digest.Digest, 0, len(values))
	for _, v := range values {
		buffer := make([]byte, 1, 1+len(v))
		buffer[0] = 0x00
		level = append(level, digest.NewDigest(append(buffer, v...)))
	}
	for len(level) > 1 {
		next := make([]digest.Digest, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				buffer := make([]byte, 1, 1+2*digest.Length)
				buffer[0] = 0x01
				buffer = append(buffer, level[i][:]...)
				buffer = append(buffer, level[i+1][:]...)
				next = append(next, digest.NewDigest(buffer))
			} else {
				next = append(next, level[i]) // promote, never duplicate
			}
		}
		level = next
	}
	return level[0]
}
