package benchmark_test

import (
	"math"

	"github.com/gold-assay/ga-api/benchmark"
	"github.com/gold-assay/ga-api/config"
	"github.com/goccy/go-json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func benchmarkConfig() *config.Benchmark {
	return &config.Benchmark{
		IRR:               0.18,
		MinAdjustedReturn: 0.15,
		MinRawReturn:      0.25,
	}
}

var _ = Describe("AdjustedReturn", func() {
	It("subtracts the controlled share of the benchmark return", func() {
		// 30% mining IRR, 0.5 control factor, 18% benchmark
		Expect(benchmark.AdjustedReturn(0.30, 0.5, 0.18)).To(BeNumerically("~", 0.21, 1e-9))
	})

	It("leaves a fully controlled asset unadjusted", func() {
		Expect(benchmark.AdjustedReturn(0.30, 0, 0.18)).To(Equal(0.30))
	})
})

var _ = Describe("MiningExpectedReturn", func() {
	It("annualizes the NPV-to-market-cap ratio", func() {
		// 2x over 4 years is ~18.9%/yr
		ret := benchmark.MiningExpectedReturn(500_000_000, 250_000_000, 4)
		Expect(ret).To(BeNumerically("~", math.Pow(2, 0.25)-1, 1e-9))
	})

	It("treats a non-positive expected NPV as a full loss", func() {
		Expect(benchmark.MiningExpectedReturn(-100_000_000, 250_000_000, 4)).To(Equal(-1.0))
	})

	It("stays unknown when market cap is unknown", func() {
		Expect(math.IsNaN(benchmark.MiningExpectedReturn(500_000_000, math.NaN(), 4))).To(BeTrue())
	})
})

var _ = Describe("Evaluate", func() {
	It("checks both hurdles", func() {
		result := benchmark.Evaluate("JRMC", 0.30, 0.2, benchmarkConfig())
		// adjusted = 0.30 - 0.2*0.18 = 0.264
		Expect(result.AdjustedReturn).To(BeNumerically("~", 0.264, 1e-9))
		Expect(result.MeetsAdjustedHurdle).To(BeTrue())
		Expect(result.MeetsRawHurdle).To(BeTrue())
	})

	It("fails the raw hurdle on a thin raw return", func() {
		result := benchmark.Evaluate("JRMC", 0.20, 0.1, benchmarkConfig())
		Expect(result.MeetsAdjustedHurdle).To(BeTrue())
		Expect(result.MeetsRawHurdle).To(BeFalse())
	})

	It("fails both hurdles on an unknown IRR", func() {
		result := benchmark.Evaluate("JRMC", math.NaN(), 0.1, benchmarkConfig())
		Expect(result.MeetsAdjustedHurdle).To(BeFalse())
		Expect(result.MeetsRawHurdle).To(BeFalse())
	})
})

var _ = Describe("Result JSON", func() {
	It("serializes an unknown return as null instead of failing", func() {
		result := benchmark.Evaluate("JRMC", math.NaN(), 0.2, benchmarkConfig())

		raw, err := json.Marshal(result)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).To(ContainSubstring(`"miningIrr":null`))
		Expect(string(raw)).To(ContainSubstring(`"adjustedReturn":null`))
		Expect(string(raw)).To(ContainSubstring(`"benchmarkIrr":0.18`))
	})

	It("round-trips null back to an unknown return", func() {
		result := benchmark.Evaluate("JRMC", math.NaN(), 0.2, benchmarkConfig())
		raw, err := json.Marshal(result)
		Expect(err).NotTo(HaveOccurred())

		decoded := &benchmark.Result{}
		Expect(json.Unmarshal(raw, decoded)).To(Succeed())
		Expect(math.IsNaN(decoded.MiningIRR)).To(BeTrue())
		Expect(math.IsNaN(decoded.AdjustedReturn)).To(BeTrue())
		Expect(decoded.Ticker).To(Equal("JRMC"))
		Expect(decoded.BenchmarkIRR).To(Equal(0.18))
	})

	It("keeps known returns as numbers", func() {
		result := benchmark.Evaluate("JRMC", 0.30, 0.2, benchmarkConfig())
		raw, err := json.Marshal(result)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).To(ContainSubstring(`"miningIrr":0.3`))
	})
})

var _ = Describe("Rank", func() {
	It("orders by adjusted return descending with unknowns last", func() {
		cfg := benchmarkConfig()
		results := []*benchmark.Result{
			benchmark.Evaluate("MIDD", 0.20, 0.2, cfg),
			benchmark.Evaluate("BEST", 0.40, 0.1, cfg),
			benchmark.Evaluate("NONE", math.NaN(), 0.5, cfg),
			benchmark.Evaluate("WRST", 0.05, 0.9, cfg),
		}

		ranked := benchmark.Rank(results)
		Expect(ranked[0].Ticker).To(Equal("BEST"))
		Expect(ranked[1].Ticker).To(Equal("MIDD"))
		Expect(ranked[2].Ticker).To(Equal("WRST"))
		Expect(ranked[3].Ticker).To(Equal("NONE"))
	})
})
