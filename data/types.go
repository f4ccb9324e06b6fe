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
	"math"
	"time"

	"github.com/goccy/go-json"
)

// MarketSnapshot is a point-in-time view of a company's market data.
// Unknown fields are NaN, never zero; zero is a legitimate market value.
type MarketSnapshot struct {
	Ticker            string
	Price             float64
	PreviousClose     float64
	MarketCap         float64
	SharesOutstanding float64
	Cash              float64
	Debt              float64
	QuarterlyBurn     float64
	FiftyTwoWeekHigh  float64
	FiftyTwoWeekLow   float64
	Volume            float64
	GoldPrice         float64
	FetchedAt         time.Time
}

// snapshotJSON is the wire form of MarketSnapshot; NaN round-trips as null.
type snapshotJSON struct {
	Ticker            string    `json:"ticker"`
	Price             *float64  `json:"price"`
	PreviousClose     *float64  `json:"previousClose"`
	MarketCap         *float64  `json:"marketCap"`
	SharesOutstanding *float64  `json:"sharesOutstanding"`
	Cash              *float64  `json:"cash"`
	Debt              *float64  `json:"debt"`
	QuarterlyBurn     *float64  `json:"quarterlyBurn"`
	FiftyTwoWeekHigh  *float64  `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow   *float64  `json:"fiftyTwoWeekLow"`
	Volume            *float64  `json:"volume"`
	GoldPrice         *float64  `json:"goldPrice"`
	FetchedAt         time.Time `json:"fetchedAt"`
}

func (snapshot MarketSnapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshotJSON{
		Ticker:            snapshot.Ticker,
		Price:             NaNToPtr(snapshot.Price),
		PreviousClose:     NaNToPtr(snapshot.PreviousClose),
		MarketCap:         NaNToPtr(snapshot.MarketCap),
		SharesOutstanding: NaNToPtr(snapshot.SharesOutstanding),
		Cash:              NaNToPtr(snapshot.Cash),
		Debt:              NaNToPtr(snapshot.Debt),
		QuarterlyBurn:     NaNToPtr(snapshot.QuarterlyBurn),
		FiftyTwoWeekHigh:  NaNToPtr(snapshot.FiftyTwoWeekHigh),
		FiftyTwoWeekLow:   NaNToPtr(snapshot.FiftyTwoWeekLow),
		Volume:            NaNToPtr(snapshot.Volume),
		GoldPrice:         NaNToPtr(snapshot.GoldPrice),
		FetchedAt:         snapshot.FetchedAt,
	})
}

func (snapshot *MarketSnapshot) UnmarshalJSON(raw []byte) error {
	wire := snapshotJSON{}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return err
	}

	snapshot.Ticker = wire.Ticker
	snapshot.Price = PtrToNaN(wire.Price)
	snapshot.PreviousClose = PtrToNaN(wire.PreviousClose)
	snapshot.MarketCap = PtrToNaN(wire.MarketCap)
	snapshot.SharesOutstanding = PtrToNaN(wire.SharesOutstanding)
	snapshot.Cash = PtrToNaN(wire.Cash)
	snapshot.Debt = PtrToNaN(wire.Debt)
	snapshot.QuarterlyBurn = PtrToNaN(wire.QuarterlyBurn)
	snapshot.FiftyTwoWeekHigh = PtrToNaN(wire.FiftyTwoWeekHigh)
	snapshot.FiftyTwoWeekLow = PtrToNaN(wire.FiftyTwoWeekLow)
	snapshot.Volume = PtrToNaN(wire.Volume)
	snapshot.GoldPrice = PtrToNaN(wire.GoldPrice)
	snapshot.FetchedAt = wire.FetchedAt
	return nil
}

// PriorState is what the previous successful run remembered about a company.
// The signal generator diffs the current run against it.
type PriorState struct {
	Snapshot  MarketSnapshot     `json:"snapshot"`
	Composite float64            `json:"composite"`
	Severity  string             `json:"severity"`
	Scores    map[string]float64 `json:"scores"`
	SavedAt   time.Time          `json:"savedAt"`
}

// NaNToPtr maps NaN to nil so that unknown values serialize as null.
func NaNToPtr(val float64) *float64 {
	if math.IsNaN(val) {
		return nil
	}
	return &val
}

// PtrToNaN maps nil (JSON null / missing) back to NaN.
func PtrToNaN(val *float64) float64 {
	if val == nil {
		return math.NaN()
	}
	return *val
}
