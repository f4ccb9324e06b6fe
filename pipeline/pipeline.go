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

// Package pipeline runs the full valuation pass: snapshot, cash, DCF grid,
// risk, benchmark and signals for every configured company. Companies are
// isolated; one company's bad data degrades its own result and nothing else.
package pipeline

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/gold-assay/ga-api/benchmark"
	"github.com/gold-assay/ga-api/capital"
	"github.com/gold-assay/ga-api/common"
	"github.com/gold-assay/ga-api/config"
	"github.com/gold-assay/ga-api/data"
	"github.com/gold-assay/ga-api/risk"
	"github.com/gold-assay/ga-api/signals"
	"github.com/gold-assay/ga-api/valuation"
	"github.com/rs/zerolog/log"
)

// CompanyResult is everything one pass computed for one company. Optional
// metrics are nil when they could not be computed; the Warnings list says
// why.
type CompanyResult struct {
	Ticker       string                      `json:"ticker"`
	Name         string                      `json:"name"`
	Stage        string                      `json:"stage,omitempty"`
	Snapshot     *data.MarketSnapshot        `json:"snapshot,omitempty"`
	Cash         *capital.CashPosition       `json:"cash,omitempty"`
	Dilution     []*capital.DilutionScenario `json:"dilution,omitempty"`
	Matrix       *valuation.Matrix           `json:"matrix,omitempty"`
	Schedule     []valuation.CashFlowRow     `json:"schedule,omitempty"`
	ExpectedNPV  *float64                    `json:"expectedNpv,omitempty"`
	NPVStdDev    *float64                    `json:"npvStdDev,omitempty"`
	Breakeven    *float64                    `json:"breakevenGoldPrice,omitempty"`
	IRR          *float64                    `json:"irr,omitempty"`
	PaybackYears *float64                    `json:"paybackYears,omitempty"`
	NAV          *capital.NAV                `json:"nav,omitempty"`
	Risk         *risk.Score                 `json:"risk,omitempty"`
	Benchmark    *benchmark.Result           `json:"benchmark,omitempty"`
	Signals      []*signals.Signal           `json:"signals"`
	Warnings     []string                    `json:"warnings"`
}

func (result *CompanyResult) warn(step string, err error) {
	log.Warn().Err(err).Str("Ticker", result.Ticker).Str("Step", step).Msg("company step degraded")
	result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %s", step, err))
}

// Result is one full pass over all configured companies.
type Result struct {
	GeneratedAt time.Time           `json:"generatedAt"`
	GoldPrice   *float64            `json:"goldPrice"`
	Companies   []*CompanyResult    `json:"companies"`
	Ranking     []*benchmark.Result `json:"ranking"`
	GoldSignal  *signals.Signal     `json:"goldSignal,omitempty"`
}

type Pipeline struct {
	settings    *config.Settings
	manager     *data.Manager
	currentYear int
}

func New(settings *config.Settings, manager *data.Manager) *Pipeline {
	return &Pipeline{
		settings:    settings,
		manager:     manager,
		currentYear: time.Now().In(common.GetTimezone()).Year(),
	}
}

// priceCases converts the configured scenarios into the engine's shape.
func (p *Pipeline) priceCases() []valuation.PriceCase {
	cases := make([]valuation.PriceCase, 0, len(p.settings.Scenarios.Cases))
	for _, priceCase := range p.settings.Scenarios.Cases {
		cases = append(cases, valuation.PriceCase{
			Name:        priceCase.Name,
			Price:       priceCase.Price,
			Probability: priceCase.Probability,
		})
	}
	return cases
}

// baseRateIdx picks the middle of the ascending rate grid as the reference
// rate for expected NPV, breakeven and the schedule.
func (p *Pipeline) baseRateIdx() int {
	return len(p.settings.Scenarios.DiscountRates) / 2
}

// baseCase is the price case carrying the highest probability.
func (p *Pipeline) baseCase() valuation.PriceCase {
	cases := p.priceCases()
	best := cases[0]
	for _, priceCase := range cases[1:] {
		if priceCase.Probability > best.Probability {
			best = priceCase
		}
	}
	return best
}

// Run executes one full synchronous pass.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	result := &Result{
		GeneratedAt: time.Now(),
		Companies:   make([]*CompanyResult, 0, len(p.settings.Companies)),
	}

	goldSnapshot, err := p.manager.GoldSnapshot(ctx)
	if err != nil && goldSnapshot == nil {
		log.Warn().Err(err).Msg("gold snapshot unavailable for this pass")
	}
	if goldSnapshot != nil {
		result.GoldPrice = data.NaNToPtr(goldSnapshot.Price)
		result.GoldSignal = signals.ScanGold(goldSnapshot.Ticker, goldSnapshot.Price, goldSnapshot.PreviousClose, &p.settings.Signals)
	}

	benchmarks := make([]*benchmark.Result, 0, len(p.settings.Companies))
	for _, company := range p.settings.Companies {
		companyResult := p.runCompany(ctx, company)
		result.Companies = append(result.Companies, companyResult)
		if companyResult.Benchmark != nil {
			benchmarks = append(benchmarks, companyResult.Benchmark)
		}
	}
	result.Ranking = benchmark.Rank(benchmarks)

	log.Info().Int("NumCompanies", len(result.Companies)).Msg("pipeline pass complete")
	return result, nil
}

func (p *Pipeline) runCompany(ctx context.Context, company *config.Company) *CompanyResult {
	result := &CompanyResult{
		Ticker:   company.Ticker,
		Name:     company.Name,
		Stage:    company.Stage,
		Signals:  []*signals.Signal{},
		Warnings: []string{},
	}

	snapshot, err := p.manager.Snapshot(ctx, company.Ticker)
	if err != nil {
		if snapshot == nil {
			result.warn("snapshot", err)
			return result
		}
		result.warn("snapshot", err) // stale fallback; metrics still computable
	}
	result.Snapshot = snapshot

	result.Cash = capital.Analyze(snapshot, company.InitialCapex)

	project := &valuation.Project{
		AnnualProductionOz:  company.AnnualProductionOz,
		AISCPerOz:           company.AISCPerOz,
		MineLifeYears:       company.MineLifeYears,
		InitialCapex:        company.InitialCapex,
		ProductionStartYear: company.ProductionStartYear,
	}
	taxRate := p.settings.Scenarios.TaxRate
	rates := p.settings.Scenarios.DiscountRates
	baseRate := rates[p.baseRateIdx()]
	baseCase := p.baseCase()

	matrix, err := valuation.SensitivityMatrix(project, p.priceCases(), rates, taxRate, p.currentYear)
	if err != nil {
		result.warn("sensitivity", err)
	} else {
		result.Matrix = matrix

		if expected, err := valuation.ExpectedNPVForMatrix(matrix, p.baseRateIdx()); err != nil {
			result.warn("expected-npv", err)
		} else {
			result.ExpectedNPV = data.NaNToPtr(expected)

			probabilities := make([]float64, len(matrix.Cases))
			for idx, priceCase := range matrix.Cases {
				probabilities[idx] = priceCase.Probability
			}
			if stddev, err := valuation.NPVStdDev(matrix.RateNPVs(p.baseRateIdx()), probabilities); err == nil {
				result.NPVStdDev = data.NaNToPtr(stddev)
			}
		}
	}

	if breakeven, err := valuation.BreakevenGoldPrice(project, baseRate, taxRate, p.currentYear,
		valuation.DefaultBreakevenLow, valuation.DefaultBreakevenHigh); err != nil {
		result.warn("breakeven", err)
	} else {
		result.Breakeven = data.NaNToPtr(breakeven)
	}

	if irr, err := valuation.IRR(project, baseCase.Price, taxRate); err != nil {
		result.warn("irr", err)
	} else {
		result.IRR = data.NaNToPtr(irr)
	}
	if payback, err := valuation.PaybackYears(project, baseCase.Price, taxRate); err == nil {
		result.PaybackYears = data.NaNToPtr(payback)
	}
	if schedule, err := valuation.Schedule(project, baseCase.Price, baseRate, taxRate, p.currentYear); err == nil {
		result.Schedule = schedule
	}

	// NAV works from the base-case project value. A producer's build cost is
	// sunk, so it is excluded from the producer's asset claim.
	navProject := project
	if company.Stage == "production" {
		producing := *project
		producing.InitialCapex = 0
		navProject = &producing
	}
	if projectNAV, err := valuation.NPV(navProject, baseCase.Price, baseRate, taxRate, p.currentYear); err != nil {
		result.warn("nav", err)
	} else {
		result.NAV = capital.ComputeNAV(snapshot, projectNAV,
			p.settings.NAV.StageProbability(company.Stage), company.Stage, p.settings.NAV.RiskPositiveOnly)
	}

	riskInputs := &risk.Inputs{
		RunwayMonths:      result.Cash.RunwayMonths,
		AISCPerOz:         company.AISCPerOz,
		YearsToProduction: float64(project.YearsToProduction(p.currentYear)),
		ControlFactor:     company.ControlFactor,
		Stage:             company.Stage,
		Thresholds:        &p.settings.Risk,
	}
	riskScore, err := risk.Composite(riskInputs, p.settings.WeightsFor(company))
	if err != nil {
		result.warn("risk", err)
	} else {
		result.Risk = riskScore
	}

	if result.ExpectedNPV != nil {
		horizon := project.YearsToProduction(p.currentYear)
		miningIRR := benchmark.MiningExpectedReturn(*result.ExpectedNPV, snapshot.MarketCap, horizon)
		result.Benchmark = benchmark.Evaluate(company.Ticker, miningIRR, company.ControlFactor, &p.settings.Benchmark)
	}

	if scenarios, err := capital.BuildScenarios(snapshot.SharesOutstanding, snapshot.Price, result.Cash.FundingGap); err != nil {
		result.warn("dilution", err)
	} else {
		result.Dilution = scenarios
	}

	p.scanSignals(result, riskScore)
	p.persistState(result, riskScore)

	return result
}

func (p *Pipeline) scanSignals(result *CompanyResult, riskScore *risk.Score) {
	inputs := &signals.Inputs{
		Ticker:         result.Ticker,
		Price:          result.Snapshot.Price,
		PriorPrice:     math.NaN(),
		RunwayMonths:   result.Cash.RunwayMonths,
		Composite:      math.NaN(),
		PriorComposite: math.NaN(),
		Cfg:            &p.settings.Signals,
	}
	if riskScore != nil {
		inputs.Composite = riskScore.Composite
		inputs.Severity = riskScore.Severity
		inputs.Scores = riskScore.SubScores()
	}

	if prior, err := p.manager.PriorState(result.Ticker); err == nil {
		inputs.PriorPrice = prior.Snapshot.Price
		inputs.PriorComposite = prior.Composite
		inputs.PriorSeverity = prior.Severity
		inputs.PriorScores = prior.Scores
	}

	found := signals.Scan(inputs)
	signals.SortBySeverity(found)
	result.Signals = found
}

func (p *Pipeline) persistState(result *CompanyResult, riskScore *risk.Score) {
	state := &data.PriorState{Snapshot: *result.Snapshot}
	if riskScore != nil {
		state.Composite = riskScore.Composite
		state.Severity = riskScore.Severity
		state.Scores = riskScore.SubScores()
	}
	if err := p.manager.SavePriorState(result.Ticker, state); err != nil {
		log.Warn().Err(err).Str("Ticker", result.Ticker).Msg("could not persist prior state")
	}
}
