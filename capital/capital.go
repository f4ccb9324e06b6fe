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

// Package capital models the cash side of a junior miner: burn, runway,
// enterprise value and the gap between treasury and build cost. Unknown
// inputs are NaN and propagate; a metric that cannot be computed renders
// as N/A downstream rather than as a fake zero.
package capital

import (
	"math"

	"github.com/goccy/go-json"

	"github.com/gold-assay/ga-api/data"
)

// RunwayMonths is months of cash left at the current burn rate. A zero or
// negative burn (company is cash-flow neutral or positive) has no finite
// runway and returns NaN, never Inf.
func RunwayMonths(cash, quarterlyBurn float64) float64 {
	if math.IsNaN(cash) || math.IsNaN(quarterlyBurn) || quarterlyBurn <= 0 {
		return math.NaN()
	}
	return cash / (quarterlyBurn / 3)
}

// AnnualizedBurn extrapolates the quarterly burn to a full year.
func AnnualizedBurn(quarterlyBurn float64) float64 {
	if math.IsNaN(quarterlyBurn) || quarterlyBurn <= 0 {
		return math.NaN()
	}
	return quarterlyBurn * 4
}

// EnterpriseValue = market cap + debt - cash.
func EnterpriseValue(marketCap, debt, cash float64) float64 {
	return marketCap + debt - cash
}

// NetCash = cash - debt.
func NetCash(cash, debt float64) float64 {
	return cash - debt
}

// CashToMarketCap is the treasury as a fraction of market cap.
func CashToMarketCap(cash, marketCap float64) float64 {
	if math.IsNaN(cash) || math.IsNaN(marketCap) || marketCap <= 0 {
		return math.NaN()
	}
	return cash / marketCap
}

// FundingGap is the capex a company cannot cover from treasury.
func FundingGap(capex, cash float64) float64 {
	if math.IsNaN(cash) {
		return math.NaN()
	}
	gap := capex - cash
	if gap < 0 {
		return 0
	}
	return gap
}

// CashPosition is the full cash profile of a company for one run.
type CashPosition struct {
	Cash            float64
	Debt            float64
	QuarterlyBurn   float64
	AnnualBurn      float64
	RunwayMonths    float64
	EnterpriseValue float64
	NetCash         float64
	CashToMarketCap float64
	FundingGap      float64
}

type cashPositionJSON struct {
	Cash            *float64 `json:"cash"`
	Debt            *float64 `json:"debt"`
	QuarterlyBurn   *float64 `json:"quarterlyBurn"`
	AnnualBurn      *float64 `json:"annualBurn"`
	RunwayMonths    *float64 `json:"runwayMonths"`
	EnterpriseValue *float64 `json:"enterpriseValue"`
	NetCash         *float64 `json:"netCash"`
	CashToMarketCap *float64 `json:"cashToMarketCap"`
	FundingGap      *float64 `json:"fundingGap"`
}

func (position CashPosition) MarshalJSON() ([]byte, error) {
	return json.Marshal(cashPositionJSON{
		Cash:            data.NaNToPtr(position.Cash),
		Debt:            data.NaNToPtr(position.Debt),
		QuarterlyBurn:   data.NaNToPtr(position.QuarterlyBurn),
		AnnualBurn:      data.NaNToPtr(position.AnnualBurn),
		RunwayMonths:    data.NaNToPtr(position.RunwayMonths),
		EnterpriseValue: data.NaNToPtr(position.EnterpriseValue),
		NetCash:         data.NaNToPtr(position.NetCash),
		CashToMarketCap: data.NaNToPtr(position.CashToMarketCap),
		FundingGap:      data.NaNToPtr(position.FundingGap),
	})
}

func (position *CashPosition) UnmarshalJSON(raw []byte) error {
	wire := cashPositionJSON{}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return err
	}
	position.Cash = data.PtrToNaN(wire.Cash)
	position.Debt = data.PtrToNaN(wire.Debt)
	position.QuarterlyBurn = data.PtrToNaN(wire.QuarterlyBurn)
	position.AnnualBurn = data.PtrToNaN(wire.AnnualBurn)
	position.RunwayMonths = data.PtrToNaN(wire.RunwayMonths)
	position.EnterpriseValue = data.PtrToNaN(wire.EnterpriseValue)
	position.NetCash = data.PtrToNaN(wire.NetCash)
	position.CashToMarketCap = data.PtrToNaN(wire.CashToMarketCap)
	position.FundingGap = data.PtrToNaN(wire.FundingGap)
	return nil
}

// Analyze derives the full cash profile from a market snapshot and the
// project's initial capex.
func Analyze(snapshot *data.MarketSnapshot, initialCapex float64) *CashPosition {
	return &CashPosition{
		Cash:            snapshot.Cash,
		Debt:            snapshot.Debt,
		QuarterlyBurn:   snapshot.QuarterlyBurn,
		AnnualBurn:      AnnualizedBurn(snapshot.QuarterlyBurn),
		RunwayMonths:    RunwayMonths(snapshot.Cash, snapshot.QuarterlyBurn),
		EnterpriseValue: EnterpriseValue(snapshot.MarketCap, snapshot.Debt, snapshot.Cash),
		NetCash:         NetCash(snapshot.Cash, snapshot.Debt),
		CashToMarketCap: CashToMarketCap(snapshot.Cash, snapshot.MarketCap),
		FundingGap:      FundingGap(initialCapex, snapshot.Cash),
	}
}
