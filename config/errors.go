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

package config

import "errors"

var (
	ErrNoCompanies         = errors.New("no companies configured")
	ErrDuplicateTicker     = errors.New("duplicate company ticker")
	ErrInvalidCompany      = errors.New("invalid company profile")
	ErrInvalidMineLife     = errors.New("mine life must be at least 1 year")
	ErrInvalidControl      = errors.New("control factor must be in [0, 1]")
	ErrInvalidStage        = errors.New("unknown project stage")
	ErrNoPriceCases        = errors.New("no gold price cases configured")
	ErrBadProbabilitySum   = errors.New("price case probabilities must sum to 1")
	ErrEmptyRateGrid       = errors.New("discount rate grid is empty")
	ErrUnsortedGrid        = errors.New("grid values must be strictly ascending")
	ErrNegativeRate        = errors.New("discount rate may not be negative")
	ErrInvalidTaxRate      = errors.New("tax rate must be in [0, 1)")
	ErrBadRiskWeights      = errors.New("risk weights must sum to 1")
	ErrUnknownRiskWeight   = errors.New("risk weight names an unknown category")
	ErrBadThresholdTable   = errors.New("threshold table must be strictly ascending")
	ErrInvalidScoreBounds  = errors.New("neutral risk score must be in [1, 5]")
	ErrBadStageProbability = errors.New("stage probability must be in [0, 1]")
)
