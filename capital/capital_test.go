package capital_test

import (
	"math"

	"github.com/gold-assay/ga-api/capital"
	"github.com/gold-assay/ga-api/data"
	"github.com/goccy/go-json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("RunwayMonths", func() {
	It("computes 10 months for $50M cash at $15M quarterly burn", func() {
		// $15M/quarter is $5M/month
		Expect(capital.RunwayMonths(50_000_000, 15_000_000)).To(BeNumerically("~", 10, 1e-9))
	})

	It("is N/A when burn is zero or negative", func() {
		Expect(math.IsNaN(capital.RunwayMonths(50_000_000, 0))).To(BeTrue())
		Expect(math.IsNaN(capital.RunwayMonths(50_000_000, -1_000_000))).To(BeTrue())
	})

	It("is N/A when either input is unknown", func() {
		Expect(math.IsNaN(capital.RunwayMonths(math.NaN(), 15_000_000))).To(BeTrue())
		Expect(math.IsNaN(capital.RunwayMonths(50_000_000, math.NaN()))).To(BeTrue())
	})
})

var _ = Describe("EnterpriseValue", func() {
	It("adds debt and subtracts cash from market cap", func() {
		Expect(capital.EnterpriseValue(250_000_000, 10_000_000, 50_000_000)).To(Equal(210_000_000.0))
	})

	It("propagates unknown inputs", func() {
		Expect(math.IsNaN(capital.EnterpriseValue(math.NaN(), 10_000_000, 50_000_000))).To(BeTrue())
	})
})

var _ = Describe("FundingGap", func() {
	It("is the uncovered part of capex", func() {
		Expect(capital.FundingGap(500_000_000, 50_000_000)).To(Equal(450_000_000.0))
	})

	It("floors at zero when treasury covers the build", func() {
		Expect(capital.FundingGap(40_000_000, 50_000_000)).To(Equal(0.0))
	})
})

var _ = Describe("Analyze", func() {
	It("assembles the full cash position from a snapshot", func() {
		snapshot := &data.MarketSnapshot{
			Ticker:        "JRMC",
			MarketCap:     250_000_000,
			Cash:          50_000_000,
			Debt:          10_000_000,
			QuarterlyBurn: 15_000_000,
		}
		position := capital.Analyze(snapshot, 500_000_000)
		Expect(position.RunwayMonths).To(BeNumerically("~", 10, 1e-9))
		Expect(position.AnnualBurn).To(Equal(60_000_000.0))
		Expect(position.EnterpriseValue).To(Equal(210_000_000.0))
		Expect(position.NetCash).To(Equal(40_000_000.0))
		Expect(position.CashToMarketCap).To(BeNumerically("~", 0.2, 1e-9))
		Expect(position.FundingGap).To(Equal(450_000_000.0))
	})

	It("serializes unknown metrics as null, never zero", func() {
		snapshot := &data.MarketSnapshot{
			Ticker:        "XPLR",
			MarketCap:     80_000_000,
			Cash:          8_000_000,
			Debt:          math.NaN(),
			QuarterlyBurn: math.NaN(),
		}
		position := capital.Analyze(snapshot, 100_000_000)

		raw, err := json.Marshal(position)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).To(ContainSubstring(`"runwayMonths":null`))
		Expect(string(raw)).To(ContainSubstring(`"cash":8000000`))

		roundTrip := capital.CashPosition{}
		Expect(json.Unmarshal(raw, &roundTrip)).To(Succeed())
		Expect(math.IsNaN(roundTrip.RunwayMonths)).To(BeTrue())
		Expect(roundTrip.Cash).To(Equal(8_000_000.0))
	})
})

var _ = Describe("Dilute", func() {
	It("computes the $20M at $2.00 on 100M shares example", func() {
		scenario, err := capital.Dilute("Base", 100_000_000, 20_000_000, 2.00)
		Expect(err).NotTo(HaveOccurred())
		Expect(scenario.NewShares).To(Equal(10_000_000.0))
		Expect(scenario.PostShares).To(Equal(110_000_000.0))
		Expect(scenario.PostOwnershipPct).To(BeNumerically("~", 90.909, 0.001))
		Expect(scenario.OwnershipDeltaPct).To(BeNumerically("~", -9.091, 0.001))
	})

	It("rejects a non-positive issue price", func() {
		_, err := capital.Dilute("Base", 100_000_000, 20_000_000, 0)
		Expect(err).To(MatchError(capital.ErrBadIssuePrice))
	})

	It("rejects unknown share counts", func() {
		_, err := capital.Dilute("Base", math.NaN(), 20_000_000, 2.00)
		Expect(err).To(MatchError(capital.ErrNoShares))
	})

	It("rejects a negative raise", func() {
		_, err := capital.Dilute("Base", 100_000_000, -1, 2.00)
		Expect(err).To(MatchError(capital.ErrBadRaise))
	})
})

var _ = Describe("BuildScenarios", func() {
	It("builds Low/Base/High raises against the funding gap", func() {
		scenarios, err := capital.BuildScenarios(100_000_000, 2.00, 90_000_000)
		Expect(err).NotTo(HaveOccurred())
		Expect(scenarios).To(HaveLen(3))
		Expect(scenarios[0].Name).To(Equal("Low"))
		Expect(scenarios[0].RaiseAmount).To(Equal(45_000_000.0))
		Expect(scenarios[1].RaiseAmount).To(Equal(90_000_000.0))
		Expect(scenarios[2].RaiseAmount).To(Equal(135_000_000.0))
		// issue at a 10% discount to market
		Expect(scenarios[1].IssuePrice).To(BeNumerically("~", 1.80, 1e-9))
	})

	It("returns nothing when there is no gap", func() {
		scenarios, err := capital.BuildScenarios(100_000_000, 2.00, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(scenarios).To(BeEmpty())
	})
})

var _ = Describe("NPVPerShareImpact", func() {
	It("spreads the same NPV over more shares", func() {
		pre, post := capital.NPVPerShareImpact(220_000_000, 100_000_000, 110_000_000)
		Expect(pre).To(BeNumerically("~", 2.20, 1e-9))
		Expect(post).To(BeNumerically("~", 2.00, 1e-9))
	})
})
