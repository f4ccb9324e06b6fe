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
	"fmt"
	"math"

	"github.com/gold-assay/ga-api/config"
)

// Severity labels for composite bands.
const (
	SeverityLow      = "low"
	SeverityModerate = "moderate"
	SeverityHigh     = "high"
	SeveritySevere   = "severe"
)

// Score is the complete risk verdict for one company. Scores run 1-5 with
// 5 the highest risk.
type Score struct {
	Categories map[string]CategoryScore `json:"categories"`
	Composite  float64                  `json:"composite"`
	Severity   string                   `json:"severity"`
	Weakest    string                   `json:"weakest"`
}

// SeverityBand labels a composite score.
func SeverityBand(composite float64) string {
	switch {
	case composite < 2:
		return SeverityLow
	case composite < 3:
		return SeverityModerate
	case composite < 4:
		return SeverityHigh
	default:
		return SeveritySevere
	}
}

// Composite scores every category and blends them with the given weights.
// The weights are validated before any category is scored; a bad weight
// table fails the whole computation, it never produces a partial score.
func Composite(inputs *Inputs, weights map[string]float64) (*Score, error) {
	if err := config.ValidateWeights(weights); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadWeights, err)
	}

	InitializeCategoryMap()

	result := &Score{
		Categories: make(map[string]CategoryScore, len(CategoryList)),
	}

	composite := 0.0
	weakestScore := math.Inf(-1)
	for _, info := range CategoryList {
		scorer := info.Factory()
		categoryScore := scorer.Score(inputs)
		result.Categories[info.Key] = categoryScore

		composite += weights[info.Key] * categoryScore.Score
		if categoryScore.Score > weakestScore {
			weakestScore = categoryScore.Score
			result.Weakest = info.Key
		}
	}

	result.Composite = math.Round(composite*100) / 100
	result.Severity = SeverityBand(result.Composite)
	return result, nil
}

// SubScores flattens a Score's categories to a plain name->score map; the
// prior-state store keeps this shape between runs.
func (s *Score) SubScores() map[string]float64 {
	scores := make(map[string]float64, len(s.Categories))
	for key, categoryScore := range s.Categories {
		scores[key] = categoryScore.Score
	}
	return scores
}
