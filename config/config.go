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

import (
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const WeightSumTolerance = 1e-6

// RiskCategories lists the scored categories in presentation order.
var RiskCategories = []string{"funding", "execution", "commodity", "control", "timing"}

var validStages = map[string]bool{
	"exploration":  true,
	"pea":          true,
	"feasibility":  true,
	"permitting":   true,
	"construction": true,
	"production":   true,
}

// Company is an immutable per-run profile of a single miner. All dollar
// amounts are USD; production is ounces of gold per year.
type Company struct {
	Ticker              string             `mapstructure:"ticker"`
	Name                string             `mapstructure:"name"`
	AnnualProductionOz  float64            `mapstructure:"annual_production_oz"`
	AISCPerOz           float64            `mapstructure:"aisc_per_oz"`
	MineLifeYears       int                `mapstructure:"mine_life_years"`
	InitialCapex        float64            `mapstructure:"initial_capex"`
	ProductionStartYear int                `mapstructure:"production_start_year"`
	ControlFactor       float64            `mapstructure:"control_factor"`
	Stage               string             `mapstructure:"stage"`
	RiskWeights         map[string]float64 `mapstructure:"risk_weights"`
}

func (c *Company) Validate() error {
	if c.Ticker == "" {
		return fmt.Errorf("%w: missing ticker", ErrInvalidCompany)
	}
	if c.AnnualProductionOz <= 0 || c.AISCPerOz <= 0 || c.InitialCapex < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidCompany, c.Ticker)
	}
	if c.MineLifeYears < 1 {
		return fmt.Errorf("%w: %s", ErrInvalidMineLife, c.Ticker)
	}
	if c.ControlFactor < 0 || c.ControlFactor > 1 {
		return fmt.Errorf("%w: %s", ErrInvalidControl, c.Ticker)
	}
	if c.Stage != "" && !validStages[strings.ToLower(c.Stage)] {
		return fmt.Errorf("%w: %s (%s)", ErrInvalidStage, c.Stage, c.Ticker)
	}
	if len(c.RiskWeights) > 0 {
		if err := ValidateWeights(c.RiskWeights); err != nil {
			return fmt.Errorf("%w: %s", err, c.Ticker)
		}
	}
	return nil
}

// PriceCase is a named gold price scenario with its subjective probability.
type PriceCase struct {
	Name        string  `mapstructure:"name"`
	Price       float64 `mapstructure:"price"`
	Probability float64 `mapstructure:"probability"`
}

// Scenarios holds the shared valuation assumptions: the gold price cases,
// the discount rate grid and the effective tax rate.
type Scenarios struct {
	Cases         []PriceCase `mapstructure:"price_cases"`
	DiscountRates []float64   `mapstructure:"discount_rates"`
	TaxRate       float64     `mapstructure:"tax_rate"`
}

func (s *Scenarios) Validate() error {
	if len(s.Cases) == 0 {
		return ErrNoPriceCases
	}
	prices := make([]float64, 0, len(s.Cases))
	sum := 0.0
	for _, pc := range s.Cases {
		prices = append(prices, pc.Price)
		sum += pc.Probability
	}
	if math.Abs(sum-1) > WeightSumTolerance {
		return fmt.Errorf("%w: got %f", ErrBadProbabilitySum, sum)
	}
	if !strictlyAscending(prices) {
		return fmt.Errorf("%w: price cases", ErrUnsortedGrid)
	}
	if len(s.DiscountRates) == 0 {
		return ErrEmptyRateGrid
	}
	if !strictlyAscending(s.DiscountRates) {
		return fmt.Errorf("%w: discount rates", ErrUnsortedGrid)
	}
	for _, rate := range s.DiscountRates {
		if rate < 0 {
			return fmt.Errorf("%w: %f", ErrNegativeRate, rate)
		}
	}
	if s.TaxRate < 0 || s.TaxRate >= 1 {
		return fmt.Errorf("%w: %f", ErrInvalidTaxRate, s.TaxRate)
	}
	return nil
}

// Risk holds the global category weights and the per-category threshold
// tables used by the risk scorer. Threshold tables are strictly ascending
// breakpoints; the scorer maps an input to the 1-5 band it falls in.
type Risk struct {
	Weights           map[string]float64 `mapstructure:"weights"`
	NeutralScore      float64            `mapstructure:"neutral_score"`
	RunwayMonths      []float64          `mapstructure:"runway_months"`
	AISCPerOz         []float64          `mapstructure:"aisc_per_oz"`
	YearsToProduction []float64          `mapstructure:"years_to_production"`
	ControlFactor     []float64          `mapstructure:"control_factor"`
	StageScores       map[string]float64 `mapstructure:"stage_scores"`
}

func (r *Risk) Validate() error {
	if err := ValidateWeights(r.Weights); err != nil {
		return err
	}
	if r.NeutralScore < 1 || r.NeutralScore > 5 {
		return fmt.Errorf("%w: %f", ErrInvalidScoreBounds, r.NeutralScore)
	}
	for name, table := range map[string][]float64{
		"runway_months":       r.RunwayMonths,
		"aisc_per_oz":         r.AISCPerOz,
		"years_to_production": r.YearsToProduction,
		"control_factor":      r.ControlFactor,
	} {
		if len(table) == 0 || !strictlyAscending(table) {
			return fmt.Errorf("%w: %s", ErrBadThresholdTable, name)
		}
	}
	return nil
}

// ValidateWeights checks that every named category exists and that the
// weights sum to 1 within WeightSumTolerance.
func ValidateWeights(weights map[string]float64) error {
	known := make(map[string]bool, len(RiskCategories))
	for _, cat := range RiskCategories {
		known[cat] = true
	}

	sum := 0.0
	for name, w := range weights {
		if !known[strings.ToLower(name)] {
			return fmt.Errorf("%w: %s", ErrUnknownRiskWeight, name)
		}
		sum += w
	}
	if math.Abs(sum-1) > WeightSumTolerance {
		return fmt.Errorf("%w: got %f", ErrBadRiskWeights, sum)
	}
	return nil
}

// NAV configures the stage-risked corporate net asset value model. Each
// stage carries the probability a project at that stage reaches production;
// the base-case project NPV is scaled by it before the balance sheet is
// folded in.
type NAV struct {
	StageProbabilities map[string]float64 `mapstructure:"stage_probabilities"`
	DefaultProbability float64            `mapstructure:"default_probability"`
	RiskPositiveOnly   bool               `mapstructure:"risk_positive_only"`
}

func (n *NAV) Validate() error {
	if n.DefaultProbability < 0 || n.DefaultProbability > 1 {
		return fmt.Errorf("%w: default %f", ErrBadStageProbability, n.DefaultProbability)
	}
	for stage, probability := range n.StageProbabilities {
		if !validStages[strings.ToLower(stage)] {
			return fmt.Errorf("%w: %s", ErrInvalidStage, stage)
		}
		if probability < 0 || probability > 1 {
			return fmt.Errorf("%w: %s %f", ErrBadStageProbability, stage, probability)
		}
	}
	return nil
}

// StageProbability returns the configured probability for a stage, falling
// back to the default for an empty or unconfigured stage.
func (n *NAV) StageProbability(stage string) float64 {
	if probability, ok := n.StageProbabilities[strings.ToLower(stage)]; ok {
		return probability
	}
	return n.DefaultProbability
}

// Benchmark configures the fixed-IRR alternative asset used for the
// control-adjusted comparison.
type Benchmark struct {
	IRR               float64 `mapstructure:"irr"`
	MinAdjustedReturn float64 `mapstructure:"min_adjusted_return"`
	MinRawReturn      float64 `mapstructure:"min_raw_return"`
}

// Signals configures the thresholds of the signal generator.
type Signals struct {
	PriceMovePct         float64 `mapstructure:"price_move_pct"`
	GoldMovePct          float64 `mapstructure:"gold_move_pct"`
	RunwayAlertMonths    float64 `mapstructure:"runway_alert_months"`
	RunwayCriticalMonths float64 `mapstructure:"runway_critical_months"`
	RiskChangePoints     float64 `mapstructure:"risk_change_points"`
}

// Settings is the fully validated assumption store for a run.
type Settings struct {
	Companies []*Company `mapstructure:"companies"`
	Scenarios Scenarios  `mapstructure:"scenarios"`
	Risk      Risk       `mapstructure:"risk"`
	NAV       NAV        `mapstructure:"nav"`
	Benchmark Benchmark  `mapstructure:"benchmark"`
	Signals   Signals    `mapstructure:"signals"`
}

func setDefaults() {
	viper.SetDefault("scenarios.tax_rate", 0.21)
	viper.SetDefault("risk.neutral_score", 3)
	viper.SetDefault("risk.weights", map[string]float64{
		"funding":   0.30,
		"execution": 0.25,
		"commodity": 0.20,
		"control":   0.15,
		"timing":    0.10,
	})
	viper.SetDefault("risk.runway_months", []float64{6, 12, 18, 24})
	viper.SetDefault("risk.aisc_per_oz", []float64{900, 1100, 1300, 1500})
	viper.SetDefault("risk.years_to_production", []float64{1, 2, 4, 7})
	viper.SetDefault("risk.control_factor", []float64{0.2, 0.4, 0.6, 0.8})
	viper.SetDefault("risk.stage_scores", map[string]float64{
		"production":   1,
		"construction": 2,
		"permitting":   3,
		"feasibility":  3,
		"pea":          4,
		"exploration":  5,
	})
	viper.SetDefault("nav.stage_probabilities", map[string]float64{
		"exploration":  0.25,
		"pea":          0.35,
		"feasibility":  0.65,
		"permitting":   0.60,
		"construction": 0.80,
		"production":   1.0,
	})
	viper.SetDefault("nav.default_probability", 0.5)
	viper.SetDefault("nav.risk_positive_only", true)
	viper.SetDefault("benchmark.irr", 0.18)
	viper.SetDefault("benchmark.min_adjusted_return", 0.15)
	viper.SetDefault("benchmark.min_raw_return", 0.25)
	viper.SetDefault("signals.price_move_pct", 5.0)
	viper.SetDefault("signals.gold_move_pct", 1.5)
	viper.SetDefault("signals.runway_alert_months", 12)
	viper.SetDefault("signals.runway_critical_months", 6)
	viper.SetDefault("signals.risk_change_points", 1.0)
}

// Load unmarshals and validates the assumption store. Any validation error
// is fatal to the caller; nothing should compute against bad assumptions.
func Load() (*Settings, error) {
	setDefaults()

	// Unmarshal the whole store at once: viper merges defaults into
	// partially overridden sections only when it walks every leaf, so a
	// per-section UnmarshalKey would drop sibling defaults.
	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCompany, err)
	}

	if len(settings.Companies) == 0 {
		return nil, ErrNoCompanies
	}
	seen := make(map[string]bool, len(settings.Companies))
	for _, company := range settings.Companies {
		company.Ticker = strings.ToUpper(company.Ticker)
		company.Stage = strings.ToLower(company.Stage)
		if err := company.Validate(); err != nil {
			return nil, err
		}
		if seen[company.Ticker] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTicker, company.Ticker)
		}
		seen[company.Ticker] = true
	}

	if err := settings.Scenarios.Validate(); err != nil {
		return nil, err
	}
	if err := settings.Risk.Validate(); err != nil {
		return nil, err
	}
	if err := settings.NAV.Validate(); err != nil {
		return nil, err
	}

	log.Info().Int("NumCompanies", len(settings.Companies)).
		Int("NumPriceCases", len(settings.Scenarios.Cases)).
		Int("NumDiscountRates", len(settings.Scenarios.DiscountRates)).
		Msg("loaded assumption store")
	return settings, nil
}

// WeightsFor returns the effective category weights for a company,
// preferring its per-company override when one is configured.
func (s *Settings) WeightsFor(company *Company) map[string]float64 {
	if len(company.RiskWeights) > 0 {
		return company.RiskWeights
	}
	return s.Risk.Weights
}

func strictlyAscending(vals []float64) bool {
	for idx := 1; idx < len(vals); idx++ {
		if vals[idx] <= vals[idx-1] {
			return false
		}
	}
	return true
}
