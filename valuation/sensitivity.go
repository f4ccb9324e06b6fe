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

import "fmt"

// PriceCase is a named gold price scenario with its subjective probability.
type PriceCase struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Probability float64 `json:"probability"`
}

// Matrix is a gold-price x discount-rate NPV sensitivity grid. Rows are
// discount rates, columns are price cases, both strictly ascending.
type Matrix struct {
	Rates []float64   `json:"rates"`
	Cases []PriceCase `json:"cases"`
	Cells [][]float64 `json:"cells"`
}

// Cell returns the NPV at the given rate/case indexes.
func (m *Matrix) Cell(rateIdx, caseIdx int) float64 {
	return m.Cells[rateIdx][caseIdx]
}

// CaseNPVs returns the NPV column for a price case across all rates.
func (m *Matrix) CaseNPVs(caseIdx int) []float64 {
	col := make([]float64, len(m.Rates))
	for rateIdx := range m.Rates {
		col[rateIdx] = m.Cells[rateIdx][caseIdx]
	}
	return col
}

// RateNPVs returns the NPV row for a discount rate across all price cases.
func (m *Matrix) RateNPVs(rateIdx int) []float64 {
	row := make([]float64, len(m.Cases))
	copy(row, m.Cells[rateIdx])
	return row
}

// SensitivityMatrix computes the full NPV grid. Every cell is the same NPV
// function evaluated at that (rate, price) pair; there is no incremental
// shortcut that could let a cell drift from a direct call.
func SensitivityMatrix(project *Project, cases []PriceCase, rates []float64, taxRate float64, currentYear int) (*Matrix, error) {
	if err := project.validate(); err != nil {
		return nil, err
	}
	if len(cases) == 0 {
		return nil, fmt.Errorf("%w: no price cases", ErrBadGrid)
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("%w: no discount rates", ErrBadGrid)
	}
	for idx := 1; idx < len(cases); idx++ {
		if cases[idx].Price <= cases[idx-1].Price {
			return nil, fmt.Errorf("%w: price cases out of order", ErrBadGrid)
		}
	}
	for idx := 1; idx < len(rates); idx++ {
		if rates[idx] <= rates[idx-1] {
			return nil, fmt.Errorf("%w: discount rates out of order", ErrBadGrid)
		}
	}

	cells := make([][]float64, len(rates))
	for rateIdx, rate := range rates {
		row := make([]float64, len(cases))
		for caseIdx, priceCase := range cases {
			npv, err := NPV(project, priceCase.Price, rate, taxRate, currentYear)
			if err != nil {
				return nil, err
			}
			row[caseIdx] = npv
		}
		cells[rateIdx] = row
	}

	return &Matrix{
		Rates: rates,
		Cases: cases,
		Cells: cells,
	}, nil
}
