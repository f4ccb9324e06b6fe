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

	"gonum.org/v1/gonum/stat"
)

// ProbabilityTolerance bounds how far case probabilities may drift from 1.
const ProbabilityTolerance = 1e-6

func validateProbabilities(npvs, probabilities []float64) error {
	if len(npvs) == 0 || len(npvs) != len(probabilities) {
		return fmt.Errorf("%w: %d values vs %d probabilities", ErrBadProbabilityWeights, len(npvs), len(probabilities))
	}
	sum := 0.0
	for _, p := range probabilities {
		if p < 0 {
			return fmt.Errorf("%w: negative probability %f", ErrBadProbabilityWeights, p)
		}
		sum += p
	}
	if math.Abs(sum-1) > ProbabilityTolerance {
		return fmt.Errorf("%w: got %f", ErrBadProbabilityWeights, sum)
	}
	return nil
}

// ExpectedNPV is the probability-weighted mean of per-case NPVs. The
// probability weights are validated before anything is computed.
func ExpectedNPV(npvs, probabilities []float64) (float64, error) {
	if err := validateProbabilities(npvs, probabilities); err != nil {
		return 0, err
	}
	return stat.Mean(npvs, probabilities), nil
}

// NPVStdDev is the probability-weighted standard deviation of per-case
// NPVs about the expected NPV (population form; the probabilities are the
// full distribution, not a sample).
func NPVStdDev(npvs, probabilities []float64) (float64, error) {
	if err := validateProbabilities(npvs, probabilities); err != nil {
		return 0, err
	}

	mean := stat.Mean(npvs, probabilities)
	variance := 0.0
	for idx, npv := range npvs {
		diff := npv - mean
		variance += probabilities[idx] * diff * diff
	}
	return math.Sqrt(variance), nil
}

// ExpectedNPVForMatrix computes the expected NPV at one discount rate of a
// sensitivity matrix, weighting each price case by its probability.
func ExpectedNPVForMatrix(matrix *Matrix, rateIdx int) (float64, error) {
	probabilities := make([]float64, len(matrix.Cases))
	for idx, priceCase := range matrix.Cases {
		probabilities[idx] = priceCase.Probability
	}
	return ExpectedNPV(matrix.RateNPVs(rateIdx), probabilities)
}
