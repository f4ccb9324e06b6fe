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
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/gold-assay/ga-api/common"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Manager owns the snapshot cache and the prior-run state store. All
// pipeline data access goes through it.
type Manager struct {
	cache      *SnapshotCache
	goldTicker string
}

var (
	managerOnce     sync.Once
	managerInstance *Manager
)

// NewManager builds a manager around an explicit provider; tests use this
// to substitute a mocked provider.
func NewManager(provider Provider, ttl time.Duration, goldTicker string) *Manager {
	if goldTicker == "" {
		goldTicker = DefaultGoldTicker
	}
	return &Manager{
		cache:      NewSnapshotCache(provider, ttl),
		goldTicker: goldTicker,
	}
}

func GetManagerInstance() *Manager {
	managerOnce.Do(func() {
		managerInstance = NewManager(
			NewYahoo(),
			viper.GetDuration("data.ttl"),
			viper.GetString("data.gold_ticker"),
		)
	})
	return managerInstance
}

// Snapshot returns the company's market snapshot stamped with the current
// gold price. An ErrStaleData result still carries a usable snapshot.
func (manager *Manager) Snapshot(ctx context.Context, ticker string) (*MarketSnapshot, error) {
	ticker = strings.ToUpper(ticker)
	snapshot, err := manager.cache.Get(ctx, ticker)
	if err != nil && snapshot == nil {
		return nil, err
	}

	goldPrice, goldErr := manager.GoldPrice(ctx)
	if goldErr != nil {
		log.Warn().Err(goldErr).Str("Ticker", ticker).Msg("gold price unavailable for snapshot")
		goldPrice = math.NaN()
	}
	snapshot.GoldPrice = goldPrice

	return snapshot, err
}

// GoldPrice returns the cached spot/futures gold price.
func (manager *Manager) GoldPrice(ctx context.Context) (float64, error) {
	snapshot, err := manager.cache.Get(ctx, manager.goldTicker)
	if err != nil && snapshot == nil {
		return math.NaN(), err
	}
	return snapshot.Price, nil
}

// GoldSnapshot returns the full snapshot of the gold ticker; the signal
// generator uses the previous close for the gold move scan.
func (manager *Manager) GoldSnapshot(ctx context.Context) (*MarketSnapshot, error) {
	snapshot, err := manager.cache.Get(ctx, manager.goldTicker)
	if err != nil && snapshot == nil {
		return nil, err
	}
	return snapshot, err
}

func priorStateKey(ticker string) string {
	return fmt.Sprintf("prior-state:%s", strings.ToUpper(ticker))
}

// PriorState loads what the previous run stored for the ticker.
func (manager *Manager) PriorState(ticker string) (*PriorState, error) {
	raw, err := common.CacheGet(priorStateKey(ticker))
	if err != nil || len(raw) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPriorState, ticker)
	}

	state := &PriorState{}
	if err := json.Unmarshal(raw, state); err != nil {
		log.Warn().Err(err).Str("Ticker", ticker).Msg("could not decode prior state")
		return nil, fmt.Errorf("%w: %s", ErrNoPriorState, ticker)
	}
	return state, nil
}

// SavePriorState persists a run's outcome for the next run's signal scan.
func (manager *Manager) SavePriorState(ticker string, state *PriorState) error {
	state.SavedAt = time.Now()
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return common.CacheSet(priorStateKey(ticker), raw)
}
