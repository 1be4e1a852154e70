// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/bitmark-inc/logger"

	"github.com/proofbase/merkledb/fault"
)

// for database version
var versionKey = []byte{0x00, 'V', 'E', 'R', 'S', 'I', 'O', 'N'}

const currentDBVersion = 0x100

// database access modes
const (
	ReadOnly  = true
	ReadWrite = false
)

// Database - holds the LevelDB handle and serialises merges
type Database struct {
	sync.RWMutex
	db       *leveldb.DB
	cache    Cache
	readOnly bool
	log      *logger.L
}

// Open - open up the database connection
//
// this must be called before any snapshot or fork is created
func Open(database string, readOnly bool) (*Database, error) {

	log := logger.New("storage")

	db, version, err := getDB(database, readOnly)
	if nil != err {
		return nil, err
	}

	// ensure no database downgrade
	if version > currentDBVersion {
		db.Close()
		log.Criticalf("database version: %d > current version: %d", version, currentDBVersion)
		return nil, fault.ErrInvalidDBVersion
	}

	if 0 == version {
		if readOnly {
			db.Close()
			log.Criticalf("database: %s is empty but opened read only", database)
			return nil, fault.ErrInvalidDBVersion
		}
		// database was empty so tag as current version
		err = putVersion(db, currentDBVersion)
		if nil != err {
			db.Close()
			return nil, err
		}
	} else if version < currentDBVersion {
		db.Close()
		log.Criticalf("database version: %d < current version: %d", version, currentDBVersion)
		return nil, fault.ErrInvalidDBVersion
	}

	log.Infof("opened: %s", database)

	return &Database{
		db:       db,
		cache:    newCache(),
		readOnly: readOnly,
		log:      log,
	}, nil
}

// Close - close the database connection
func (d *Database) Close() error {
	d.Lock()
	defer d.Unlock()

	if nil == d.db {
		return fault.ErrDatabaseClosed
	}
	err := d.db.Close()
	d.db = nil
	d.cache.Clear()
	d.log.Info("closed")
	return err
}

// Snapshot - create an immutable point-in-time read view
//
// the snapshot must be released when finished with
func (d *Database) Snapshot() (*Snapshot, error) {
	d.RLock()
	defer d.RUnlock()

	if nil == d.db {
		return nil, fault.ErrDatabaseClosed
	}
	snap, err := d.db.GetSnapshot()
	if nil != err {
		return nil, err
	}
	return &Snapshot{snap: snap}, nil
}

// NewFork - create a mutable overlay on top of a fresh snapshot
func (d *Database) NewFork() (*Fork, error) {
	base, err := d.Snapshot()
	if nil != err {
		return nil, err
	}
	return &Fork{
		base:    base,
		changes: make(map[string]change),
	}, nil
}

// Get - read a key from the latest committed state
//
// recently merged values are served from the cache; nil means the key
// is not present
func (d *Database) Get(key []byte) ([]byte, error) {
	d.RLock()
	defer d.RUnlock()

	if nil == d.db {
		return nil, fault.ErrDatabaseClosed
	}

	if value, op, found := d.cache.Get(string(key)); found {
		if dbDelete == op {
			return nil, nil
		}
		return value, nil
	}

	value, err := d.db.Get(key, nil)
	if leveldb.ErrNotFound == err {
		return nil, nil
	} else if nil != err {
		return nil, err
	}
	d.cache.Set(dbPut, string(key), value)
	return value, nil
}

// Merge - atomically apply a patch to the backing store
//
// either all entries become visible to subsequent snapshots or none
// do; the patch is consumed and cannot be merged again
func (d *Database) Merge(patch *Patch) error {
	d.Lock()
	defer d.Unlock()

	if nil == d.db {
		return fault.ErrDatabaseClosed
	}
	if d.readOnly {
		return fault.ErrDatabaseReadOnly
	}
	if nil == patch {
		return fault.ErrPatchConsumed
	}

	patch.Lock()
	defer patch.Unlock()

	if patch.consumed {
		return fault.ErrPatchConsumed
	}

	batch := new(leveldb.Batch)
	for _, e := range patch.entries {
		if e.deleted {
			batch.Delete(e.key)
		} else {
			batch.Put(e.key, e.value)
		}
	}

	err := d.db.Write(batch, nil)
	if nil != err {
		d.log.Errorf("merge failed: %s", err)
		return err
	}

	// reflect the committed entries in the latest-state cache
	for _, e := range patch.entries {
		if e.deleted {
			d.cache.Set(dbDelete, string(e.key), nil)
		} else {
			d.cache.Set(dbPut, string(e.key), e.value)
		}
	}

	patch.consumed = true
	d.log.Debugf("merged %d entries", len(patch.entries))
	return nil
}

// return:
//   database handle
//   version number
func getDB(name string, readOnly bool) (*leveldb.DB, int, error) {
	opt := &ldb_opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: readOnly,
		ReadOnly:       readOnly,
	}

	db, err := leveldb.OpenFile(name, opt)
	if nil != err {
		return nil, 0, err
	}

	versionValue, err := db.Get(versionKey, nil)
	if leveldb.ErrNotFound == err {
		return db, 0, nil
	} else if nil != err {
		db.Close()
		return nil, 0, err
	}

	if 4 != len(versionValue) {
		db.Close()
		return nil, 0, fmt.Errorf("incompatible database version length: expected: %d  actual: %d", 4, len(versionValue))
	}

	version := int(binary.BigEndian.Uint32(versionValue))
	return db, version, nil
}

func putVersion(db *leveldb.DB, version int) error {
	currentVersion := make([]byte, 4)
	binary.BigEndian.PutUint32(currentVersion, uint32(version))

	return db.Put(versionKey, currentVersion, nil)
}
