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

// Package report renders a pipeline result as a markdown briefing. Metrics
// that could not be computed render as n/a; they are never shown as zero.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/gold-assay/ga-api/pipeline"
)

const notAvailable = "n/a"

// money renders a dollar figure scaled to millions or billions.
func money(value float64) string {
	if math.IsNaN(value) {
		return notAvailable
	}
	abs := math.Abs(value)
	switch {
	case abs >= 1e9:
		return fmt.Sprintf("$%.2fB", value/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("$%.1fM", value/1e6)
	default:
		return fmt.Sprintf("$%.2f", value)
	}
}

func moneyPtr(value *float64) string {
	if value == nil {
		return notAvailable
	}
	return money(*value)
}

func percentPtr(value *float64) string {
	if value == nil {
		return notAvailable
	}
	return fmt.Sprintf("%.1f%%", *value*100)
}

func numberPtr(value *float64, format string) string {
	if value == nil {
		return notAvailable
	}
	return fmt.Sprintf(format, *value)
}

// Render writes the full markdown briefing for one pipeline pass.
func Render(result *pipeline.Result) string {
	builder := &strings.Builder{}

	fmt.Fprintf(builder, "# Gold Assay Briefing\n\n")
	fmt.Fprintf(builder, "Generated: %s\n\n", result.GeneratedAt.Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(builder, "Gold price: %s\n\n", moneyPtr(result.GoldPrice))

	if result.GoldSignal != nil {
		fmt.Fprintf(builder, "> **%s** (%s): %s\n\n", result.GoldSignal.Category, result.GoldSignal.Severity, result.GoldSignal.Message)
	}

	renderRanking(builder, result)
	for _, company := range result.Companies {
		renderCompany(builder, company)
	}

	return builder.String()
}

func renderRanking(builder *strings.Builder, result *pipeline.Result) {
	if len(result.Ranking) == 0 {
		return
	}

	fmt.Fprintf(builder, "## Ranking\n\n")
	fmt.Fprintf(builder, "| # | Ticker | Mining IRR | Adjusted Return | Adjusted Hurdle | Raw Hurdle |\n")
	fmt.Fprintf(builder, "|---|--------|-----------:|----------------:|:---------------:|:----------:|\n")
	for idx, entry := range result.Ranking {
		fmt.Fprintf(builder, "| %d | %s | %s | %s | %s | %s |\n",
			idx+1, entry.Ticker,
			percent(entry.MiningIRR), percent(entry.AdjustedReturn),
			checkmark(entry.MeetsAdjustedHurdle), checkmark(entry.MeetsRawHurdle))
	}
	fmt.Fprintf(builder, "\n")
}

func renderCompany(builder *strings.Builder, company *pipeline.CompanyResult) {
	fmt.Fprintf(builder, "## %s (%s)\n\n", company.Name, company.Ticker)

	if company.Snapshot == nil {
		fmt.Fprintf(builder, "Market data unavailable this run.\n\n")
		renderWarnings(builder, company)
		return
	}

	fmt.Fprintf(builder, "Price %s | Market cap %s | Stage %s\n\n",
		money(company.Snapshot.Price), money(company.Snapshot.MarketCap), company.Stage)

	renderValuation(builder, company)
	renderNAV(builder, company)
	renderCash(builder, company)
	renderDilution(builder, company)
	renderRisk(builder, company)
	renderSignals(builder, company)
	renderWarnings(builder, company)
}

func renderValuation(builder *strings.Builder, company *pipeline.CompanyResult) {
	fmt.Fprintf(builder, "### Valuation\n\n")
	fmt.Fprintf(builder, "- Expected NPV: %s", moneyPtr(company.ExpectedNPV))
	if company.NPVStdDev != nil {
		fmt.Fprintf(builder, " (σ %s)", money(*company.NPVStdDev))
	}
	fmt.Fprintf(builder, "\n")
	fmt.Fprintf(builder, "- Breakeven gold price: %s\n", numberPtr(company.Breakeven, "$%.0f/oz"))
	fmt.Fprintf(builder, "- IRR at base case: %s\n", percentPtr(company.IRR))
	fmt.Fprintf(builder, "- Payback: %s\n\n", numberPtr(company.PaybackYears, "%.1f years"))

	if company.Matrix == nil {
		return
	}

	matrix := company.Matrix
	fmt.Fprintf(builder, "| Rate \\ Case |")
	for _, priceCase := range matrix.Cases {
		fmt.Fprintf(builder, " %s ($%.0f) |", priceCase.Name, priceCase.Price)
	}
	fmt.Fprintf(builder, "\n|---|")
	for range matrix.Cases {
		fmt.Fprintf(builder, "---:|")
	}
	fmt.Fprintf(builder, "\n")
	for rateIdx, rate := range matrix.Rates {
		fmt.Fprintf(builder, "| %.1f%% |", rate*100)
		for caseIdx := range matrix.Cases {
			fmt.Fprintf(builder, " %s |", money(matrix.Cell(rateIdx, caseIdx)))
		}
		fmt.Fprintf(builder, "\n")
	}
	fmt.Fprintf(builder, "\n")
}

func renderNAV(builder *strings.Builder, company *pipeline.CompanyResult) {
	if company.NAV == nil {
		return
	}

	nav := company.NAV
	fmt.Fprintf(builder, "### Net asset value\n\n")
	fmt.Fprintf(builder, "- Project NAV %s, risked %s at %.0f%% stage probability\n",
		money(nav.ProjectNAV), money(nav.RiskedProjectNAV), nav.StageProbability*100)
	fmt.Fprintf(builder, "- Corporate NAV %s (%s/share)\n", money(nav.CorporateNAV), money(nav.NAVPerShare))
	fmt.Fprintf(builder, "- P/NAV %s, EV/NAV %s, implied upside %s\n\n",
		ratio(nav.PriceToNAV), ratio(nav.EVToNAV), rawPercent(nav.ImpliedUpsidePct))
}

func renderCash(builder *strings.Builder, company *pipeline.CompanyResult) {
	if company.Cash == nil {
		return
	}

	fmt.Fprintf(builder, "### Cash\n\n")
	fmt.Fprintf(builder, "- Cash %s, debt %s, net %s\n", money(company.Cash.Cash), money(company.Cash.Debt), money(company.Cash.NetCash))
	fmt.Fprintf(builder, "- Quarterly burn %s, runway %s\n", money(company.Cash.QuarterlyBurn), months(company.Cash.RunwayMonths))
	fmt.Fprintf(builder, "- Enterprise value %s, funding gap %s\n\n", money(company.Cash.EnterpriseValue), money(company.Cash.FundingGap))
}

func renderDilution(builder *strings.Builder, company *pipeline.CompanyResult) {
	if len(company.Dilution) == 0 {
		return
	}

	fmt.Fprintf(builder, "### Dilution scenarios\n\n")
	fmt.Fprintf(builder, "| Scenario | Raise | Issue Price | New Shares | Ownership Δ |\n")
	fmt.Fprintf(builder, "|----------|------:|------------:|-----------:|------------:|\n")
	for _, scenario := range company.Dilution {
		fmt.Fprintf(builder, "| %s | %s | $%.2f | %.1fM | %.1f%% |\n",
			scenario.Name, money(scenario.RaiseAmount), scenario.IssuePrice,
			scenario.NewShares/1e6, scenario.OwnershipDeltaPct)
	}
	fmt.Fprintf(builder, "\n")
}

func renderRisk(builder *strings.Builder, company *pipeline.CompanyResult) {
	if company.Risk == nil {
		return
	}

	fmt.Fprintf(builder, "### Risk\n\n")
	fmt.Fprintf(builder, "Composite **%.2f** (%s), weakest area: %s\n\n",
		company.Risk.Composite, company.Risk.Severity, company.Risk.Weakest)
	names := make([]string, 0, len(company.Risk.Categories))
	for name := range company.Risk.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		categoryScore := company.Risk.Categories[name]
		flag := ""
		if categoryScore.Unknown {
			flag = " (input unknown)"
		}
		fmt.Fprintf(builder, "- %s: %.1f%s\n", name, categoryScore.Score, flag)
	}
	fmt.Fprintf(builder, "\n")
}

func renderSignals(builder *strings.Builder, company *pipeline.CompanyResult) {
	if len(company.Signals) == 0 {
		return
	}

	fmt.Fprintf(builder, "### Signals\n\n")
	for _, signal := range company.Signals {
		fmt.Fprintf(builder, "- **%s** (%s): %s\n", signal.Category, signal.Severity, signal.Message)
	}
	fmt.Fprintf(builder, "\n")
}

func renderWarnings(builder *strings.Builder, company *pipeline.CompanyResult) {
	if len(company.Warnings) == 0 {
		return
	}

	fmt.Fprintf(builder, "### Degraded steps\n\n")
	for _, warning := range company.Warnings {
		fmt.Fprintf(builder, "- %s\n", warning)
	}
	fmt.Fprintf(builder, "\n")
}

func percent(value float64) string {
	if math.IsNaN(value) {
		return notAvailable
	}
	return fmt.Sprintf("%.1f%%", value*100)
}

func ratio(value float64) string {
	if math.IsNaN(value) {
		return notAvailable
	}
	return fmt.Sprintf("%.2fx", value)
}

// rawPercent formats a value that is already expressed in percent.
func rawPercent(value float64) string {
	if math.IsNaN(value) {
		return notAvailable
	}
	return fmt.Sprintf("%.0f%%", value)
}

func months(value float64) string {
	if math.IsNaN(value) {
		return notAvailable
	}
	return fmt.Sprintf("%.1f months", value)
}

func checkmark(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}
