// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"time"

	cache "github.com/patrickmn/go-cache"
)

// Cache - short lived cache over the latest committed state
//
// snapshots bypass this entirely: a snapshot must never observe an
// entry merged after it was created
type Cache interface {
	Get(key string) ([]byte, int, bool)
	Set(op int, key string, value []byte)
	Clear()
}

const (
	dbPut = iota
	dbDelete
)

const (
	defaultExpiration = 2 * time.Minute
	defaultCleanup    = 1 * time.Minute
)

type dbCache struct {
	cache *cache.Cache
}

type cacheData struct {
	op    int
	value []byte
}

func newCache() Cache {
	return &dbCache{
		cache: cache.New(defaultExpiration, defaultCleanup),
	}
}

func (c *dbCache) Get(key string) ([]byte, int, bool) {
	obj, found := c.cache.Get(key)
	if !found {
		return nil, dbDelete, false
	}
	data := obj.(cacheData)
	return data.value, data.op, true
}

func (c *dbCache) Set(op int, key string, value []byte) {
	cached := cacheData{
		op:    op,
		value: value,
	}
	c.cache.Set(key, cached, defaultExpiration)
}

func (c *dbCache) Clear() {
	c.cache.Flush()
}
