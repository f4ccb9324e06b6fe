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
	"math"

	"github.com/goccy/go-json"

	"github.com/gold-assay/ga-api/data"
)

// NAV is the stage-risked corporate net asset value of one company. The
// project side is the base-case project NPV scaled by the probability its
// stage reaches production; the corporate figure adds net cash on top.
// Market ratios are NaN whenever the corporate NAV or the market side is
// unknown or non-positive.
type NAV struct {
	Stage            string
	StageProbability float64
	ProjectNAV       float64
	RiskedProjectNAV float64
	CorporateNAV     float64
	NAVPerShare      float64
	PriceToNAV       float64
	EVToNAV          float64
	ImpliedUpsidePct float64
}

type navJSON struct {
	Stage            string   `json:"stage"`
	StageProbability *float64 `json:"stageProbability"`
	ProjectNAV       *float64 `json:"projectNav"`
	RiskedProjectNAV *float64 `json:"riskedProjectNav"`
	CorporateNAV     *float64 `json:"corporateNav"`
	NAVPerShare      *float64 `json:"navPerShare"`
	PriceToNAV       *float64 `json:"priceToNav"`
	EVToNAV          *float64 `json:"evToNav"`
	ImpliedUpsidePct *float64 `json:"impliedUpsidePct"`
}

func (nav NAV) MarshalJSON() ([]byte, error) {
	return json.Marshal(navJSON{
		Stage:            nav.Stage,
		StageProbability: data.NaNToPtr(nav.StageProbability),
		ProjectNAV:       data.NaNToPtr(nav.ProjectNAV),
		RiskedProjectNAV: data.NaNToPtr(nav.RiskedProjectNAV),
		CorporateNAV:     data.NaNToPtr(nav.CorporateNAV),
		NAVPerShare:      data.NaNToPtr(nav.NAVPerShare),
		PriceToNAV:       data.NaNToPtr(nav.PriceToNAV),
		EVToNAV:          data.NaNToPtr(nav.EVToNAV),
		ImpliedUpsidePct: data.NaNToPtr(nav.ImpliedUpsidePct),
	})
}

func (nav *NAV) UnmarshalJSON(raw []byte) error {
	wire := navJSON{}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return err
	}
	nav.Stage = wire.Stage
	nav.StageProbability = data.PtrToNaN(wire.StageProbability)
	nav.ProjectNAV = data.PtrToNaN(wire.ProjectNAV)
	nav.RiskedProjectNAV = data.PtrToNaN(wire.RiskedProjectNAV)
	nav.CorporateNAV = data.PtrToNaN(wire.CorporateNAV)
	nav.NAVPerShare = data.PtrToNaN(wire.NAVPerShare)
	nav.PriceToNAV = data.PtrToNaN(wire.PriceToNAV)
	nav.EVToNAV = data.PtrToNaN(wire.EVToNAV)
	nav.ImpliedUpsidePct = data.PtrToNaN(wire.ImpliedUpsidePct)
	return nil
}

// ComputeNAV risks the base-case project NPV by its stage probability and
// folds the balance sheet in. With riskPositiveOnly set, a negative project
// NPV is floored at zero before risking; equity holders do not owe the
// shortfall of a project that never gets built.
func ComputeNAV(snapshot *data.MarketSnapshot, projectNAV, stageProbability float64, stage string, riskPositiveOnly bool) *NAV {
	risked := projectNAV
	if riskPositiveOnly && risked < 0 {
		risked = 0
	}
	risked *= stageProbability

	corporate := risked + NetCash(snapshot.Cash, snapshot.Debt)

	nav := &NAV{
		Stage:            stage,
		StageProbability: stageProbability,
		ProjectNAV:       projectNAV,
		RiskedProjectNAV: risked,
		CorporateNAV:     corporate,
		NAVPerShare:      math.NaN(),
		PriceToNAV:       math.NaN(),
		EVToNAV:          math.NaN(),
		ImpliedUpsidePct: math.NaN(),
	}

	if !math.IsNaN(corporate) && snapshot.SharesOutstanding > 0 {
		nav.NAVPerShare = corporate / snapshot.SharesOutstanding
	}
	if corporate > 0 && snapshot.MarketCap > 0 {
		nav.PriceToNAV = snapshot.MarketCap / corporate
		nav.ImpliedUpsidePct = (corporate/snapshot.MarketCap - 1) * 100
	}
	if enterprise := EnterpriseValue(snapshot.MarketCap, snapshot.Debt, snapshot.Cash); risked > 0 && !math.IsNaN(enterprise) {
		nav.EVToNAV = enterprise / risked
	}
	return nav
}
