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

// Package benchmark compares a miner's implied return against a boring
// fixed-IRR alternative asset, haircut by how much of the mining outcome
// the investor actually controls.
package benchmark

import (
	"math"
	"sort"

	"github.com/goccy/go-json"

	"github.com/gold-assay/ga-api/common"
	"github.com/gold-assay/ga-api/config"
	"github.com/gold-assay/ga-api/data"
)

// Result is the benchmark comparison for one company. MiningIRR and
// AdjustedReturn are NaN when the return could not be derived (unknown
// market cap); they serialize as null like every other unknown metric.
type Result struct {
	Ticker              string
	MiningIRR           float64
	BenchmarkIRR        float64
	ControlFactor       float64
	AdjustedReturn      float64
	MeetsAdjustedHurdle bool
	MeetsRawHurdle      bool
}

type resultJSON struct {
	Ticker              string   `json:"ticker"`
	MiningIRR           *float64 `json:"miningIrr"`
	BenchmarkIRR        float64  `json:"benchmarkIrr"`
	ControlFactor       float64  `json:"controlFactor"`
	AdjustedReturn      *float64 `json:"adjustedReturn"`
	MeetsAdjustedHurdle bool     `json:"meetsAdjustedHurdle"`
	MeetsRawHurdle      bool     `json:"meetsRawHurdle"`
}

func (result Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{
		Ticker:              result.Ticker,
		MiningIRR:           data.NaNToPtr(result.MiningIRR),
		BenchmarkIRR:        result.BenchmarkIRR,
		ControlFactor:       result.ControlFactor,
		AdjustedReturn:      data.NaNToPtr(result.AdjustedReturn),
		MeetsAdjustedHurdle: result.MeetsAdjustedHurdle,
		MeetsRawHurdle:      result.MeetsRawHurdle,
	})
}

func (result *Result) UnmarshalJSON(raw []byte) error {
	wire := resultJSON{}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return err
	}
	result.Ticker = wire.Ticker
	result.MiningIRR = data.PtrToNaN(wire.MiningIRR)
	result.BenchmarkIRR = wire.BenchmarkIRR
	result.ControlFactor = wire.ControlFactor
	result.AdjustedReturn = data.PtrToNaN(wire.AdjustedReturn)
	result.MeetsAdjustedHurdle = wire.MeetsAdjustedHurdle
	result.MeetsRawHurdle = wire.MeetsRawHurdle
	return nil
}

// AdjustedReturn haircuts the mining return by the share of the benchmark
// return an investor gives up to external control.
func AdjustedReturn(miningIRR, controlFactor, benchmarkIRR float64) float64 {
	return miningIRR - controlFactor*benchmarkIRR
}

// MiningExpectedReturn annualizes the expected NPV against today's market
// cap over the given horizon. A non-positive expected value implies a full
// loss of the annualized kind (-100%); unknown inputs stay unknown.
func MiningExpectedReturn(expectedNPV, marketCap float64, horizonYears int) float64 {
	if math.IsNaN(expectedNPV) || math.IsNaN(marketCap) || marketCap <= 0 {
		return math.NaN()
	}
	if horizonYears < 1 {
		horizonYears = 1
	}
	ratio := expectedNPV / marketCap
	if ratio <= 0 {
		return -1
	}
	return math.Pow(ratio, 1/float64(horizonYears)) - 1
}

// Evaluate builds the benchmark result for one company.
func Evaluate(ticker string, miningIRR, controlFactor float64, cfg *config.Benchmark) *Result {
	adjusted := AdjustedReturn(miningIRR, controlFactor, cfg.IRR)
	return &Result{
		Ticker:              ticker,
		MiningIRR:           miningIRR,
		BenchmarkIRR:        cfg.IRR,
		ControlFactor:       controlFactor,
		AdjustedReturn:      adjusted,
		MeetsAdjustedHurdle: !math.IsNaN(adjusted) && adjusted >= cfg.MinAdjustedReturn,
		MeetsRawHurdle:      !math.IsNaN(miningIRR) && miningIRR >= cfg.MinRawReturn,
	}
}

// Rank orders results by adjusted return, best first. Companies whose
// return could not be computed sort last.
func Rank(results []*Result) []*Result {
	pairs := make(common.PairList, 0, len(results))
	byTicker := make(map[string]*Result, len(results))
	for _, result := range results {
		value := result.AdjustedReturn
		if math.IsNaN(value) {
			value = math.Inf(-1)
		}
		pairs = append(pairs, common.Pair{Key: result.Ticker, Value: value})
		byTicker[result.Ticker] = result
	}

	sort.Stable(sort.Reverse(pairs))

	ranked := make([]*Result, 0, len(results))
	for _, pair := range pairs {
		ranked = append(ranked, byTicker[pair.Key])
	}
	return ranked
}
