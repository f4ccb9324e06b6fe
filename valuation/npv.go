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

package valuation

import (
	"fmt"
	"math"
)

// Project holds the mine-level inputs of the DCF. All dollar amounts are
// USD; production is ounces of gold per year.
type Project struct {
	AnnualProductionOz  float64
	AISCPerOz           float64
	MineLifeYears       int
	InitialCapex        float64
	ProductionStartYear int
}

func (p *Project) validate() error {
	if p.MineLifeYears < 1 {
		return fmt.Errorf("%w: got %d", ErrMineLife, p.MineLifeYears)
	}
	return nil
}

// AnnualFreeCashFlow is the single-year after-tax margin of the mine at the
// given gold price. Negative when the price is below AISC; tax shields from
// operating losses are not modeled.
func (p *Project) AnnualFreeCashFlow(goldPrice, taxRate float64) float64 {
	return (p.AnnualProductionOz*goldPrice - p.AnnualProductionOz*p.AISCPerOz) * (1 - taxRate)
}

// YearsToProduction returns how many full years remain before first pour;
// zero for a producing mine.
func (p *Project) YearsToProduction(currentYear int) int {
	years := p.ProductionStartYear - currentYear
	if years < 0 {
		return 0
	}
	return years
}

// CashFlowRow is one year of the DCF schedule.
type CashFlowRow struct {
	Year          int     `json:"year"`
	FCF           float64 `json:"fcf"`
	DiscountedFCF float64 `json:"discountedFcf"`
}

// NPV discounts the constant free cash flow over the mine life and subtracts
// initial capex at face value. Cash flows before the production start year
// are zero; the first producing year is discounted by its full distance from
// today. A zero rate is legal and means no time value.
func NPV(project *Project, goldPrice, rate, taxRate float64, currentYear int) (float64, error) {
	if err := project.validate(); err != nil {
		return 0, err
	}
	if rate < 0 {
		return 0, fmt.Errorf("%w: got %f", ErrBadRate, rate)
	}

	fcf := project.AnnualFreeCashFlow(goldPrice, taxRate)
	yearsOut := project.YearsToProduction(currentYear)

	npv := -project.InitialCapex
	for t := yearsOut + 1; t <= yearsOut+project.MineLifeYears; t++ {
		npv += fcf / math.Pow(1+rate, float64(t))
	}
	return npv, nil
}

// Schedule returns the per-year cash flow rows behind an NPV figure.
func Schedule(project *Project, goldPrice, rate, taxRate float64, currentYear int) ([]CashFlowRow, error) {
	if err := project.validate(); err != nil {
		return nil, err
	}
	if rate < 0 {
		return nil, fmt.Errorf("%w: got %f", ErrBadRate, rate)
	}

	fcf := project.AnnualFreeCashFlow(goldPrice, taxRate)
	yearsOut := project.YearsToProduction(currentYear)

	rows := make([]CashFlowRow, 0, project.MineLifeYears)
	for t := yearsOut + 1; t <= yearsOut+project.MineLifeYears; t++ {
		rows = append(rows, CashFlowRow{
			Year:          currentYear + t,
			FCF:           fcf,
			DiscountedFCF: fcf / math.Pow(1+rate, float64(t)),
		})
	}
	return rows, nil
}

// IRR solves the internal rate of return of the stream
// [-capex, fcf, fcf, ...] over the mine life. When the root search cannot
// bracket a solution it falls back to the total-return approximation
// (totalFCF/capex)^(1/life) - 1.
func IRR(project *Project, goldPrice, taxRate float64) (float64, error) {
	if err := project.validate(); err != nil {
		return 0, err
	}

	fcf := project.AnnualFreeCashFlow(goldPrice, taxRate)
	life := float64(project.MineLifeYears)

	if project.InitialCapex <= 0 || fcf <= 0 {
		return math.NaN(), fmt.Errorf("%w: fcf %.0f capex %.0f", ErrNeverPaysBack, fcf, project.InitialCapex)
	}

	objective := func(rate float64) float64 {
		val := -project.InitialCapex
		for t := 1; t <= project.MineLifeYears; t++ {
			val += fcf / math.Pow(1+rate, float64(t))
		}
		return val
	}

	irr, err := solveRoot(objective, -0.99, 10, 1e-6)
	if err != nil {
		totalReturn := fcf * life / project.InitialCapex
		return math.Pow(totalReturn, 1/life) - 1, nil
	}
	return irr, nil
}

// PaybackYears is the undiscounted years of free cash flow needed to repay
// initial capex.
func PaybackYears(project *Project, goldPrice, taxRate float64) (float64, error) {
	if err := project.validate(); err != nil {
		return 0, err
	}

	fcf := project.AnnualFreeCashFlow(goldPrice, taxRate)
	if fcf <= 0 {
		return math.NaN(), fmt.Errorf("%w: fcf %.0f", ErrNeverPaysBack, fcf)
	}
	return project.InitialCapex / fcf, nil
}

// Default gold price bracket for the breakeven search, $/oz.
const (
	DefaultBreakevenLow  = 250.0
	DefaultBreakevenHigh = 10000.0

	// BreakevenTolerance is the search tolerance in $/oz.
	BreakevenTolerance = 1.0
)

// BreakevenGoldPrice finds the gold price at which the project NPV is zero,
// to within BreakevenTolerance. The bracket must straddle a sign change in
// NPV; deeply-underwater projects that stay negative across the bracket
// return ErrNoSignChange.
func BreakevenGoldPrice(project *Project, rate, taxRate float64, currentYear int, low, high float64) (float64, error) {
	if err := project.validate(); err != nil {
		return 0, err
	}
	if rate < 0 {
		return 0, fmt.Errorf("%w: got %f", ErrBadRate, rate)
	}
	if low <= 0 || high <= low {
		return 0, fmt.Errorf("%w: breakeven bracket [%f, %f]", ErrBadGrid, low, high)
	}

	objective := func(price float64) float64 {
		npv, _ := NPV(project, price, rate, taxRate, currentYear)
		return npv
	}

	return solveRoot(objective, low, high, BreakevenTolerance)
}
