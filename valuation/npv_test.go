package valuation_test

import (
	"math"

	"github.com/gold-assay/ga-api/valuation"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const (
	currentYear = 2026
	taxRate     = 0.21
)

// 100k oz/yr at $1,200 AISC, 10 year life, $500M capex, first pour in two years
func devProject() *valuation.Project {
	return &valuation.Project{
		AnnualProductionOz:  100_000,
		AISCPerOz:           1200,
		MineLifeYears:       10,
		InitialCapex:        500_000_000,
		ProductionStartYear: currentYear + 2,
	}
}

func producingProject() *valuation.Project {
	project := devProject()
	project.ProductionStartYear = currentYear - 3
	return project
}

var _ = Describe("NPV", func() {
	Context("with the development-stage reference project at $1,800 gold and 8%", func() {
		It("computes $47.4M annual free cash flow", func() {
			fcf := devProject().AnnualFreeCashFlow(1800, taxRate)
			Expect(fcf).To(BeNumerically("~", 47_400_000, 1))
		})

		It("discounts years 3-12 and subtracts capex at face value", func() {
			npv, err := valuation.NPV(devProject(), 1800, 0.08, taxRate, currentYear)
			Expect(err).NotTo(HaveOccurred())
			Expect(npv).To(BeNumerically("~", -227_316_660, 5_000))
		})

		It("matches the sum of its own schedule", func() {
			project := devProject()
			npv, err := valuation.NPV(project, 1800, 0.08, taxRate, currentYear)
			Expect(err).NotTo(HaveOccurred())

			rows, err := valuation.Schedule(project, 1800, 0.08, taxRate, currentYear)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(10))
			Expect(rows[0].Year).To(Equal(currentYear + 3))
			Expect(rows[9].Year).To(Equal(currentYear + 12))

			total := -project.InitialCapex
			for _, row := range rows {
				total += row.DiscountedFCF
			}
			Expect(total).To(BeNumerically("~", npv, 1))
		})
	})

	It("is strictly decreasing in the discount rate for a positive-margin project", func() {
		project := producingProject()
		prev := math.Inf(1)
		for _, rate := range []float64{0.0, 0.03, 0.05, 0.08, 0.10, 0.15} {
			npv, err := valuation.NPV(project, 1800, rate, taxRate, currentYear)
			Expect(err).NotTo(HaveOccurred())
			Expect(npv).To(BeNumerically("<", prev))
			prev = npv
		}
	})

	It("treats a zero discount rate as no time value", func() {
		project := producingProject()
		npv, err := valuation.NPV(project, 1800, 0, taxRate, currentYear)
		Expect(err).NotTo(HaveOccurred())
		// 10 undiscounted years of $47.4M minus $500M capex
		Expect(npv).To(BeNumerically("~", -26_000_000, 1))
	})

	It("rejects a mine life below one year", func() {
		project := devProject()
		project.MineLifeYears = 0
		_, err := valuation.NPV(project, 1800, 0.08, taxRate, currentYear)
		Expect(err).To(MatchError(valuation.ErrMineLife))
	})

	It("rejects a negative discount rate", func() {
		_, err := valuation.NPV(devProject(), 1800, -0.01, taxRate, currentYear)
		Expect(err).To(MatchError(valuation.ErrBadRate))
	})
})

var _ = Describe("BreakevenGoldPrice", func() {
	It("finds a price whose NPV feeds back to approximately zero", func() {
		project := producingProject()
		breakeven, err := valuation.BreakevenGoldPrice(project, 0.08, taxRate, currentYear,
			valuation.DefaultBreakevenLow, valuation.DefaultBreakevenHigh)
		Expect(err).NotTo(HaveOccurred())

		npv, err := valuation.NPV(project, breakeven, 0.08, taxRate, currentYear)
		Expect(err).NotTo(HaveOccurred())

		// $1/oz of price is worth ~$530k of NPV for this project
		Expect(math.Abs(npv)).To(BeNumerically("<", 600_000))
	})

	It("lands near the analytic breakeven for the producing reference project", func() {
		breakeven, err := valuation.BreakevenGoldPrice(producingProject(), 0.08, taxRate, currentYear,
			valuation.DefaultBreakevenLow, valuation.DefaultBreakevenHigh)
		Expect(err).NotTo(HaveOccurred())
		Expect(breakeven).To(BeNumerically("~", 2143, 3))
	})

	It("returns ErrNoSignChange when the project is underwater across the bracket", func() {
		project := &valuation.Project{
			AnnualProductionOz:  1_000,
			AISCPerOz:           1200,
			MineLifeYears:       10,
			InitialCapex:        500_000_000,
			ProductionStartYear: currentYear,
		}
		_, err := valuation.BreakevenGoldPrice(project, 0.08, taxRate, currentYear,
			valuation.DefaultBreakevenLow, valuation.DefaultBreakevenHigh)
		Expect(err).To(MatchError(valuation.ErrNoSignChange))
	})
})

var _ = Describe("IRR and payback", func() {
	It("reports a negative IRR when lifetime cash flow trails capex", func() {
		// 10 x $47.4M = $474M of FCF against $500M capex
		irr, err := valuation.IRR(devProject(), 1800, taxRate)
		Expect(err).NotTo(HaveOccurred())
		Expect(irr).To(BeNumerically("<", 0))
	})

	It("reports a positive IRR at a richer gold price", func() {
		irr, err := valuation.IRR(devProject(), 2400, taxRate)
		Expect(err).NotTo(HaveOccurred())
		Expect(irr).To(BeNumerically(">", 0.10))
	})

	It("computes undiscounted payback", func() {
		payback, err := valuation.PaybackYears(devProject(), 1800, taxRate)
		Expect(err).NotTo(HaveOccurred())
		Expect(payback).To(BeNumerically("~", 10.5485, 0.001))
	})

	It("flags projects that never pay back", func() {
		_, err := valuation.PaybackYears(devProject(), 1100, taxRate)
		Expect(err).To(MatchError(valuation.ErrNeverPaysBack))
	})
})
