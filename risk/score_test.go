package risk_test

import (
	"math"
	"sync"

	"github.com/gold-assay/ga-api/config"
	"github.com/gold-assay/ga-api/risk"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func thresholds() *config.Risk {
	return &config.Risk{
		Weights: map[string]float64{
			"funding":   0.30,
			"execution": 0.25,
			"commodity": 0.20,
			"control":   0.15,
			"timing":    0.10,
		},
		NeutralScore:      3,
		RunwayMonths:      []float64{6, 12, 18, 24},
		AISCPerOz:         []float64{900, 1100, 1300, 1500},
		YearsToProduction: []float64{1, 2, 4, 7},
		ControlFactor:     []float64{0.2, 0.4, 0.6, 0.8},
		StageScores: map[string]float64{
			"production":   1,
			"construction": 2,
			"permitting":   3,
			"feasibility":  3,
			"pea":          4,
			"exploration":  5,
		},
	}
}

func baseInputs() *risk.Inputs {
	return &risk.Inputs{
		RunwayMonths:      10,
		AISCPerOz:         1250,
		YearsToProduction: 3,
		ControlFactor:     0.5,
		Stage:             "production",
		Thresholds:        thresholds(),
	}
}

var _ = Describe("Category scoring", func() {
	BeforeEach(func() {
		risk.InitializeCategoryMap()
	})

	DescribeTable("funding scores runway on an inverted band",
		func(runway, expected float64) {
			inputs := baseInputs()
			inputs.RunwayMonths = runway
			score := risk.CategoryMap["funding"].Factory().Score(inputs)
			Expect(score.Score).To(Equal(expected))
			Expect(score.Unknown).To(BeFalse())
		},
		Entry("critical below 6 months", 3.0, 5.0),
		Entry("tight below 12 months", 10.0, 4.0),
		Entry("comfortable below 24 months", 20.0, 2.0),
		Entry("strong at 24 months", 24.0, 1.0),
		Entry("strong beyond 24 months", 36.0, 1.0),
	)

	It("scores unknown runway at the neutral value with the Unknown flag", func() {
		inputs := baseInputs()
		inputs.RunwayMonths = math.NaN()
		score := risk.CategoryMap["funding"].Factory().Score(inputs)
		Expect(score.Score).To(Equal(3.0))
		Expect(score.Unknown).To(BeTrue())
	})

	DescribeTable("commodity scores cost structure",
		func(aisc, expected float64) {
			inputs := baseInputs()
			inputs.AISCPerOz = aisc
			score := risk.CategoryMap["commodity"].Factory().Score(inputs)
			Expect(score.Score).To(Equal(expected))
		},
		Entry("low-cost producer", 800.0, 1.0),
		Entry("mid-cost producer", 1250.0, 3.0),
		Entry("high-cost producer", 1600.0, 5.0),
	)

	DescribeTable("timing scores distance to first pour",
		func(years, expected float64) {
			inputs := baseInputs()
			inputs.YearsToProduction = years
			score := risk.CategoryMap["timing"].Factory().Score(inputs)
			Expect(score.Score).To(Equal(expected))
		},
		Entry("producing now", 0.0, 1.0),
		Entry("a few years out", 3.0, 3.0),
		Entry("far in the future", 8.0, 5.0),
	)

	DescribeTable("control scores external control",
		func(factor, expected float64) {
			inputs := baseInputs()
			inputs.ControlFactor = factor
			score := risk.CategoryMap["control"].Factory().Score(inputs)
			Expect(score.Score).To(Equal(expected))
		},
		Entry("fully controlled asset", 0.1, 1.0),
		Entry("heavily encumbered asset", 0.9, 5.0),
	)

	It("scores execution from the project stage", func() {
		inputs := baseInputs()
		inputs.Stage = "exploration"
		score := risk.CategoryMap["execution"].Factory().Score(inputs)
		Expect(score.Score).To(Equal(5.0))
	})

	It("scores an unknown stage at the neutral value", func() {
		inputs := baseInputs()
		inputs.Stage = ""
		score := risk.CategoryMap["execution"].Factory().Score(inputs)
		Expect(score.Score).To(Equal(3.0))
		Expect(score.Unknown).To(BeTrue())
	})
})

var _ = Describe("Composite", func() {
	It("blends category scores with the configured weights", func() {
		score, err := risk.Composite(baseInputs(), thresholds().Weights)
		Expect(err).NotTo(HaveOccurred())
		// funding 4x0.30 + execution 1x0.25 + commodity 3x0.20 + control 3x0.15 + timing 3x0.10
		Expect(score.Composite).To(Equal(2.8))
		Expect(score.Severity).To(Equal(risk.SeverityModerate))
		Expect(score.Weakest).To(Equal("funding"))
	})

	It("validates the weights before scoring anything", func() {
		weights := thresholds().Weights
		weights["funding"] = 0.2
		_, err := risk.Composite(baseInputs(), weights)
		Expect(err).To(MatchError(risk.ErrBadWeights))
	})

	It("rejects weights naming an unknown category", func() {
		_, err := risk.Composite(baseInputs(), map[string]float64{"liquidity": 1})
		Expect(err).To(MatchError(risk.ErrBadWeights))
	})

	It("folds unknown inputs in at the neutral score", func() {
		inputs := baseInputs()
		inputs.RunwayMonths = math.NaN()
		score, err := risk.Composite(inputs, thresholds().Weights)
		Expect(err).NotTo(HaveOccurred())
		Expect(score.Categories["funding"].Unknown).To(BeTrue())
		// neutral 3x0.30 replaces the 4x0.30 of the base case
		Expect(score.Composite).To(Equal(2.5))
	})

	It("accepts a single-category override summing to 1", func() {
		score, err := risk.Composite(baseInputs(), map[string]float64{"funding": 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(score.Composite).To(Equal(4.0))
	})

	It("scores safely from concurrent goroutines", func() {
		const workers = 16
		var wg sync.WaitGroup
		scores := make([]*risk.Score, workers)
		failures := make([]error, workers)

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				scores[idx], failures[idx] = risk.Composite(baseInputs(), thresholds().Weights)
			}(i)
		}
		wg.Wait()

		for i := 0; i < workers; i++ {
			Expect(failures[i]).NotTo(HaveOccurred())
			Expect(scores[i].Categories).To(HaveLen(5))
			Expect(scores[i].Composite).To(Equal(2.8))
		}
		Expect(risk.CategoryList).To(HaveLen(5))
	})
})

var _ = Describe("SeverityBand", func() {
	DescribeTable("labels composites",
		func(composite float64, expected string) {
			Expect(risk.SeverityBand(composite)).To(Equal(expected))
		},
		Entry("low", 1.5, risk.SeverityLow),
		Entry("moderate", 2.5, risk.SeverityModerate),
		Entry("high", 3.2, risk.SeverityHigh),
		Entry("severe", 4.5, risk.SeveritySevere),
	)
})

var _ = Describe("Category registry", func() {
	It("registers the five categories with metadata", func() {
		risk.InitializeCategoryMap()
		Expect(risk.CategoryList).To(HaveLen(5))
		for _, key := range []string{"funding", "execution", "commodity", "control", "timing"} {
			info, ok := risk.CategoryMap[key]
			Expect(ok).To(BeTrue(), "missing category %s", key)
			Expect(info.Description).NotTo(BeEmpty())
			Expect(info.Factory).NotTo(BeNil())
			Expect(info.Factory().Name()).To(Equal(key))
		}
	})
})
