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

// Package signals turns run-over-run deltas into categorized alerts. The
// scan is stateless: everything it needs arrives in Inputs, the prior half
// coming from the previous run's cached state.
package signals

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/gold-assay/ga-api/config"
	"github.com/gold-assay/ga-api/risk"
	"github.com/google/uuid"
)

type Category string

const (
	PriceMove    Category = "PriceMove"
	FundingAlert Category = "FundingAlert"
	RiskChange   Category = "RiskChange"
)

const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Signal is one alert. At most one signal per (category, ticker) per run.
type Signal struct {
	ID          uuid.UUID `json:"id"`
	Category    Category  `json:"category"`
	Severity    string    `json:"severity"`
	Ticker      string    `json:"ticker"`
	Message     string    `json:"message"`
	Delta       float64   `json:"delta"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Inputs is the current-vs-prior view of one company. Prior values are NaN
// (or nil maps) on the first run, which suppresses the delta signals.
type Inputs struct {
	Ticker         string
	Price          float64
	PriorPrice     float64
	RunwayMonths   float64
	Composite      float64
	PriorComposite float64
	Severity       string
	PriorSeverity  string
	Scores         map[string]float64
	PriorScores    map[string]float64
	Cfg            *config.Signals
}

func newSignal(category Category, severity, ticker, message string, delta float64) *Signal {
	return &Signal{
		ID:          uuid.New(),
		Category:    category,
		Severity:    severity,
		Ticker:      ticker,
		Message:     message,
		Delta:       delta,
		GeneratedAt: time.Now(),
	}
}

// Scan evaluates all signal rules for one company. Rules are independent;
// a failed or suppressed rule never blocks the others.
func Scan(inputs *Inputs) []*Signal {
	found := []*Signal{}

	if signal := scanPriceMove(inputs); signal != nil {
		found = append(found, signal)
	}
	if signal := scanFunding(inputs); signal != nil {
		found = append(found, signal)
	}
	if signal := scanRiskChange(inputs); signal != nil {
		found = append(found, signal)
	}

	return found
}

func scanPriceMove(inputs *Inputs) *Signal {
	if math.IsNaN(inputs.Price) || math.IsNaN(inputs.PriorPrice) || inputs.PriorPrice == 0 {
		return nil
	}

	movePct := (inputs.Price - inputs.PriorPrice) / inputs.PriorPrice * 100
	if math.Abs(movePct) <= inputs.Cfg.PriceMovePct {
		return nil
	}

	severity := SeverityWarning
	if math.Abs(movePct) > 2*inputs.Cfg.PriceMovePct {
		severity = SeverityCritical
	}

	direction := "up"
	if movePct < 0 {
		direction = "down"
	}
	message := fmt.Sprintf("%s moved %s %.1f%% since the last run", inputs.Ticker, direction, math.Abs(movePct))
	return newSignal(PriceMove, severity, inputs.Ticker, message, movePct)
}

func scanFunding(inputs *Inputs) *Signal {
	// an unknown runway is rendered as N/A, not alerted on
	if math.IsNaN(inputs.RunwayMonths) {
		return nil
	}
	if inputs.RunwayMonths >= inputs.Cfg.RunwayAlertMonths {
		return nil
	}

	severity := SeverityWarning
	if inputs.RunwayMonths < inputs.Cfg.RunwayCriticalMonths {
		severity = SeverityCritical
	}

	message := fmt.Sprintf("%s has %.1f months of cash runway", inputs.Ticker, inputs.RunwayMonths)
	return newSignal(FundingAlert, severity, inputs.Ticker, message, inputs.RunwayMonths)
}

func scanRiskChange(inputs *Inputs) *Signal {
	if math.IsNaN(inputs.PriorComposite) || len(inputs.PriorScores) == 0 {
		return nil
	}

	crossedBand := inputs.PriorSeverity != "" && inputs.Severity != inputs.PriorSeverity

	movedCategory := ""
	movedBy := 0.0
	for name, score := range inputs.Scores {
		prior, ok := inputs.PriorScores[name]
		if !ok {
			continue
		}
		delta := score - prior
		if math.Abs(delta) > inputs.Cfg.RiskChangePoints && math.Abs(delta) > math.Abs(movedBy) {
			movedCategory = name
			movedBy = delta
		}
	}

	if !crossedBand && movedCategory == "" {
		return nil
	}

	severity := SeverityWarning
	if inputs.Severity == risk.SeveritySevere || inputs.Composite > inputs.PriorComposite+1 {
		severity = SeverityCritical
	}

	var message string
	switch {
	case movedCategory != "" && crossedBand:
		message = fmt.Sprintf("%s risk moved to %s; %s shifted %+.1f points", inputs.Ticker, inputs.Severity, movedCategory, movedBy)
	case movedCategory != "":
		message = fmt.Sprintf("%s %s risk shifted %+.1f points", inputs.Ticker, movedCategory, movedBy)
	default:
		message = fmt.Sprintf("%s risk moved from %s to %s", inputs.Ticker, inputs.PriorSeverity, inputs.Severity)
	}

	return newSignal(RiskChange, severity, inputs.Ticker, message, inputs.Composite-inputs.PriorComposite)
}

// ScanGold emits a PriceMove signal for the gold ticker itself when the
// metal moves more than the (tighter) gold threshold.
func ScanGold(goldTicker string, price, previousClose float64, cfg *config.Signals) *Signal {
	if math.IsNaN(price) || math.IsNaN(previousClose) || previousClose == 0 {
		return nil
	}

	movePct := (price - previousClose) / previousClose * 100
	if math.Abs(movePct) <= cfg.GoldMovePct {
		return nil
	}

	severity := SeverityWarning
	if math.Abs(movePct) > 2*cfg.GoldMovePct {
		severity = SeverityCritical
	}

	direction := "up"
	if movePct < 0 {
		direction = "down"
	}
	message := fmt.Sprintf("gold moved %s %.1f%%", direction, math.Abs(movePct))
	return newSignal(PriceMove, severity, goldTicker, message, movePct)
}

var severityRank = map[string]int{
	SeverityCritical: 0,
	SeverityWarning:  1,
	SeverityInfo:     2,
}

// SortBySeverity orders signals critical-first for presentation.
func SortBySeverity(found []*Signal) {
	sort.SliceStable(found, func(i, j int) bool {
		return severityRank[found[i].Severity] < severityRank[found[j].Severity]
	})
}
