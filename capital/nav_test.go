package capital_test

import (
	"math"

	"github.com/goccy/go-json"

	"github.com/gold-assay/ga-api/capital"
	"github.com/gold-assay/ga-api/data"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func navSnapshot() *data.MarketSnapshot {
	return &data.MarketSnapshot{
		Ticker:            "JRMC",
		MarketCap:         250_000_000,
		SharesOutstanding: 100_000_000,
		Cash:              50_000_000,
		Debt:              10_000_000,
	}
}

var _ = Describe("ComputeNAV", func() {
	It("adds net cash to the full project NAV of a producer", func() {
		nav := capital.ComputeNAV(navSnapshot(), 400_000_000, 1.0, "production", true)

		Expect(nav.RiskedProjectNAV).To(Equal(400_000_000.0))
		Expect(nav.CorporateNAV).To(Equal(440_000_000.0))
		Expect(nav.NAVPerShare).To(BeNumerically("~", 4.40, 1e-9))
		Expect(nav.PriceToNAV).To(BeNumerically("~", 250.0/440.0, 1e-9))
		Expect(nav.ImpliedUpsidePct).To(BeNumerically("~", 76, 1e-9))
		// EV 210M over 400M of project value
		Expect(nav.EVToNAV).To(BeNumerically("~", 0.525, 1e-9))
	})

	It("discounts an early-stage project by its stage probability", func() {
		nav := capital.ComputeNAV(navSnapshot(), 100_000_000, 0.25, "exploration", true)

		Expect(nav.ProjectNAV).To(Equal(100_000_000.0))
		Expect(nav.RiskedProjectNAV).To(Equal(25_000_000.0))
		Expect(nav.CorporateNAV).To(Equal(65_000_000.0))
	})

	It("floors a negative project NPV at zero before risking", func() {
		nav := capital.ComputeNAV(navSnapshot(), -200_000_000, 0.65, "feasibility", true)

		Expect(nav.ProjectNAV).To(Equal(-200_000_000.0))
		Expect(nav.RiskedProjectNAV).To(Equal(0.0))
		// corporate NAV collapses to net cash
		Expect(nav.CorporateNAV).To(Equal(40_000_000.0))
		Expect(math.IsNaN(nav.EVToNAV)).To(BeTrue())
	})

	It("carries a negative project NPV through when flooring is off", func() {
		nav := capital.ComputeNAV(navSnapshot(), -200_000_000, 0.5, "pea", false)

		Expect(nav.RiskedProjectNAV).To(Equal(-100_000_000.0))
		Expect(nav.CorporateNAV).To(Equal(-60_000_000.0))
		Expect(math.IsNaN(nav.PriceToNAV)).To(BeTrue())
	})

	It("keeps market ratios unknown when market cap is unknown", func() {
		snapshot := navSnapshot()
		snapshot.MarketCap = math.NaN()

		nav := capital.ComputeNAV(snapshot, 400_000_000, 1.0, "production", true)
		Expect(nav.CorporateNAV).To(Equal(440_000_000.0))
		Expect(math.IsNaN(nav.PriceToNAV)).To(BeTrue())
		Expect(math.IsNaN(nav.EVToNAV)).To(BeTrue())
		Expect(math.IsNaN(nav.ImpliedUpsidePct)).To(BeTrue())

		raw, err := json.Marshal(nav)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).To(ContainSubstring(`"priceToNav":null`))
		Expect(string(raw)).To(ContainSubstring(`"corporateNav":440000000`))
	})

	It("round-trips null ratios back to unknown", func() {
		snapshot := navSnapshot()
		snapshot.MarketCap = math.NaN()
		raw, err := json.Marshal(capital.ComputeNAV(snapshot, 400_000_000, 1.0, "production", true))
		Expect(err).NotTo(HaveOccurred())

		decoded := &capital.NAV{}
		Expect(json.Unmarshal(raw, decoded)).To(Succeed())
		Expect(decoded.Stage).To(Equal("production"))
		Expect(math.IsNaN(decoded.PriceToNAV)).To(BeTrue())
		Expect(decoded.CorporateNAV).To(Equal(440_000_000.0))
	})
})
