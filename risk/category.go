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

package risk

import (
	"math"
	"strings"

	"github.com/gold-assay/ga-api/config"
)

// Inputs collects everything a category may score against. Unknown numeric
// inputs are NaN; an unknown stage is the empty string.
type Inputs struct {
	RunwayMonths      float64
	AISCPerOz         float64
	YearsToProduction float64
	ControlFactor     float64
	Stage             string
	Thresholds        *config.Risk
}

// CategoryScore is one category's verdict on the 1-5 scale where 5 is the
// highest risk. Unknown marks a score substituted with the neutral value
// because the input was missing.
type CategoryScore struct {
	Name    string  `json:"name"`
	Score   float64 `json:"score"`
	Unknown bool    `json:"unknown"`
}

// Category scores one dimension of company risk.
type Category interface {
	Name() string
	Score(inputs *Inputs) CategoryScore
}

// CategoryFactory factory method to create a category scorer
type CategoryFactory func() Category

// bandScore maps value against ascending breakpoints onto the 1-5 scale.
// With risingRisk the score climbs as the value climbs (AISC, years to
// production); without it the score falls as the value climbs (runway).
func bandScore(value float64, breakpoints []float64, risingRisk bool) float64 {
	band := len(breakpoints)
	for idx, breakpoint := range breakpoints {
		if value < breakpoint {
			band = idx
			break
		}
	}
	if risingRisk {
		return float64(band + 1)
	}
	return float64(len(breakpoints) + 1 - band)
}

type fundingCategory struct{}

func newFunding() Category { return &fundingCategory{} }

func (c *fundingCategory) Name() string { return "funding" }

// Score: less runway, more risk. Under the first breakpoint (6 months by
// default) the company scores the maximum 5.
func (c *fundingCategory) Score(inputs *Inputs) CategoryScore {
	if math.IsNaN(inputs.RunwayMonths) {
		return CategoryScore{Name: c.Name(), Score: inputs.Thresholds.NeutralScore, Unknown: true}
	}
	return CategoryScore{
		Name:  c.Name(),
		Score: bandScore(inputs.RunwayMonths, inputs.Thresholds.RunwayMonths, false),
	}
}

type executionCategory struct{}

func newExecution() Category { return &executionCategory{} }

func (c *executionCategory) Name() string { return "execution" }

func (c *executionCategory) Score(inputs *Inputs) CategoryScore {
	stage := strings.ToLower(inputs.Stage)
	score, ok := inputs.Thresholds.StageScores[stage]
	if stage == "" || !ok {
		return CategoryScore{Name: c.Name(), Score: inputs.Thresholds.NeutralScore, Unknown: true}
	}
	return CategoryScore{Name: c.Name(), Score: score}
}

type commodityCategory struct{}

func newCommodity() Category { return &commodityCategory{} }

func (c *commodityCategory) Name() string { return "commodity" }

// Score: a high-cost producer is more exposed to the gold price.
func (c *commodityCategory) Score(inputs *Inputs) CategoryScore {
	if math.IsNaN(inputs.AISCPerOz) || inputs.AISCPerOz <= 0 {
		return CategoryScore{Name: c.Name(), Score: inputs.Thresholds.NeutralScore, Unknown: true}
	}
	return CategoryScore{
		Name:  c.Name(),
		Score: bandScore(inputs.AISCPerOz, inputs.Thresholds.AISCPerOz, true),
	}
}

type controlCategory struct{}

func newControl() Category { return &controlCategory{} }

func (c *controlCategory) Name() string { return "control" }

func (c *controlCategory) Score(inputs *Inputs) CategoryScore {
	if math.IsNaN(inputs.ControlFactor) {
		return CategoryScore{Name: c.Name(), Score: inputs.Thresholds.NeutralScore, Unknown: true}
	}
	return CategoryScore{
		Name:  c.Name(),
		Score: bandScore(inputs.ControlFactor, inputs.Thresholds.ControlFactor, true),
	}
}

type timingCategory struct{}

func newTiming() Category { return &timingCategory{} }

func (c *timingCategory) Name() string { return "timing" }

func (c *timingCategory) Score(inputs *Inputs) CategoryScore {
	if math.IsNaN(inputs.YearsToProduction) || inputs.YearsToProduction < 0 {
		return CategoryScore{Name: c.Name(), Score: inputs.Thresholds.NeutralScore, Unknown: true}
	}
	return CategoryScore{
		Name:  c.Name(),
		Score: bandScore(inputs.YearsToProduction, inputs.Thresholds.YearsToProduction, true),
	}
}
