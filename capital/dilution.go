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

package capital

import (
	"fmt"
	"math"
)

// DilutionScenario models one hypothetical equity raise. Ownership figures
// are from the perspective of a pre-raise shareholder.
type DilutionScenario struct {
	Name              string  `json:"name"`
	RaiseAmount       float64 `json:"raiseAmount"`
	IssuePrice        float64 `json:"issuePrice"`
	NewShares         float64 `json:"newShares"`
	PostShares        float64 `json:"postShares"`
	PostOwnershipPct  float64 `json:"postOwnershipPct"`
	OwnershipDeltaPct float64 `json:"ownershipDeltaPct"`
}

// Dilute computes the share math of raising raiseAmount at issuePrice on
// top of sharesOutstanding.
func Dilute(name string, sharesOutstanding, raiseAmount, issuePrice float64) (*DilutionScenario, error) {
	if math.IsNaN(sharesOutstanding) || sharesOutstanding <= 0 {
		return nil, fmt.Errorf("%w: %f", ErrNoShares, sharesOutstanding)
	}
	if issuePrice <= 0 || math.IsNaN(issuePrice) {
		return nil, fmt.Errorf("%w: %f", ErrBadIssuePrice, issuePrice)
	}
	if raiseAmount < 0 || math.IsNaN(raiseAmount) {
		return nil, fmt.Errorf("%w: %f", ErrBadRaise, raiseAmount)
	}

	newShares := raiseAmount / issuePrice
	postShares := sharesOutstanding + newShares
	postOwnership := sharesOutstanding / postShares * 100

	return &DilutionScenario{
		Name:              name,
		RaiseAmount:       raiseAmount,
		IssuePrice:        issuePrice,
		NewShares:         newShares,
		PostShares:        postShares,
		PostOwnershipPct:  postOwnership,
		OwnershipDeltaPct: postOwnership - 100,
	}, nil
}

// IssueDiscount is the assumed discount to market in a placement.
const IssueDiscount = 0.10

// BuildScenarios produces the Low/Base/High raise scenarios for closing a
// funding gap at a discounted issue price. Companies with no gap, or with
// unknown share counts, get no scenarios.
func BuildScenarios(sharesOutstanding, marketPrice, fundingGap float64) ([]*DilutionScenario, error) {
	if math.IsNaN(fundingGap) || fundingGap <= 0 {
		return nil, nil
	}

	issuePrice := marketPrice * (1 - IssueDiscount)
	cases := []struct {
		name     string
		fraction float64
	}{
		{"Low", 0.5},
		{"Base", 1.0},
		{"High", 1.5},
	}

	scenarios := make([]*DilutionScenario, 0, len(cases))
	for _, c := range cases {
		scenario, err := Dilute(c.name, sharesOutstanding, fundingGap*c.fraction, issuePrice)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, scenario)
	}
	return scenarios, nil
}

// NPVPerShareImpact reports NPV per share before and after a raise. The
// raise proceeds are assumed to fund the project, so the NPV itself is
// unchanged; only the share count moves.
func NPVPerShareImpact(expectedNPV, preShares, postShares float64) (pre, post float64) {
	if preShares <= 0 || postShares <= 0 || math.IsNaN(preShares) || math.IsNaN(postShares) {
		return math.NaN(), math.NaN()
	}
	return expectedNPV / preShares, expectedNPV / postShares
}
