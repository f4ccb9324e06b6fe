// Copyright 2021-2022
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package data

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultTTL is how long a snapshot stays fresh when data.ttl is not
// configured. Intraday quotes are tolerated up to 15 minutes stale.
const DefaultTTL = 15 * time.Minute

type cacheEntry struct {
	snapshot  *MarketSnapshot
	fetchedAt time.Time
}

// SnapshotCache is a TTL cache over a quote provider. A stale read blocks
// on a refetch; the per-ticker fetch locks guarantee at most one request
// in flight per ticker. When a refetch fails and a stale entry exists the
// stale snapshot is returned together with ErrStaleData.
type SnapshotCache struct {
	provider Provider
	ttl      time.Duration

	locker  sync.RWMutex
	entries map[string]*cacheEntry

	fetchLocker sync.Mutex
	fetchLocks  map[string]*sync.Mutex
}

func NewSnapshotCache(provider Provider, ttl time.Duration) *SnapshotCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SnapshotCache{
		provider:   provider,
		ttl:        ttl,
		entries:    make(map[string]*cacheEntry),
		fetchLocks: make(map[string]*sync.Mutex),
	}
}

// Get returns a fresh snapshot for the ticker, fetching from the provider
// when the cached entry is missing or older than the TTL.
func (c *SnapshotCache) Get(ctx context.Context, ticker string) (*MarketSnapshot, error) {
	if snapshot := c.fresh(ticker); snapshot != nil {
		return snapshot, nil
	}

	fetchLock := c.fetchLock(ticker)
	fetchLock.Lock()
	defer fetchLock.Unlock()

	// another caller may have refreshed while this one waited on the lock
	if snapshot := c.fresh(ticker); snapshot != nil {
		return snapshot, nil
	}

	snapshot, err := c.provider.Quote(ctx, ticker)
	if err != nil {
		if stale := c.any(ticker); stale != nil {
			log.Warn().Err(err).Str("Ticker", ticker).Msg("refetch failed; falling back to stale snapshot")
			return stale, ErrStaleData
		}
		return nil, err
	}

	c.locker.Lock()
	c.entries[ticker] = &cacheEntry{snapshot: snapshot, fetchedAt: time.Now()}
	c.locker.Unlock()

	return copySnapshot(snapshot), nil
}

// fresh returns a copy of the cached snapshot if it is within the TTL.
func (c *SnapshotCache) fresh(ticker string) *MarketSnapshot {
	c.locker.RLock()
	defer c.locker.RUnlock()

	entry, ok := c.entries[ticker]
	if !ok || time.Since(entry.fetchedAt) >= c.ttl {
		return nil
	}
	return copySnapshot(entry.snapshot)
}

// any returns the cached snapshot regardless of age.
func (c *SnapshotCache) any(ticker string) *MarketSnapshot {
	c.locker.RLock()
	defer c.locker.RUnlock()

	entry, ok := c.entries[ticker]
	if !ok {
		return nil
	}
	return copySnapshot(entry.snapshot)
}

func (c *SnapshotCache) fetchLock(ticker string) *sync.Mutex {
	c.fetchLocker.Lock()
	defer c.fetchLocker.Unlock()

	lock, ok := c.fetchLocks[ticker]
	if !ok {
		lock = &sync.Mutex{}
		c.fetchLocks[ticker] = lock
	}
	return lock
}

func copySnapshot(snapshot *MarketSnapshot) *MarketSnapshot {
	dup := *snapshot
	return &dup
}
