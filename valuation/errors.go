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

import "errors"

var (
	ErrMineLife              = errors.New("mine life must be at least 1 year")
	ErrBadRate               = errors.New("discount rate may not be negative")
	ErrBadGrid               = errors.New("grid must be non-empty and strictly ascending")
	ErrBadProbabilityWeights = errors.New("case probabilities must sum to 1")
	ErrNoSignChange          = errors.New("objective does not change sign across the bracket")
	ErrDidNotConverge        = errors.New("did not converge")
	ErrNeverPaysBack         = errors.New("project free cash flow never repays capex")
)
