package valuation_test

import (
	"github.com/gold-assay/ga-api/valuation"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ExpectedNPV", func() {
	npvs := []float64{-100, 50, 200, 500}

	It("weights each case by its probability", func() {
		expected, err := valuation.ExpectedNPV(npvs, []float64{0.20, 0.50, 0.25, 0.05})
		Expect(err).NotTo(HaveOccurred())
		// -20 + 25 + 50 + 25
		Expect(expected).To(BeNumerically("~", 80, 1e-9))
	})

	It("accepts probabilities summing to 1 within tolerance", func() {
		_, err := valuation.ExpectedNPV(npvs, []float64{0.2, 0.5, 0.25, 0.05})
		Expect(err).NotTo(HaveOccurred())
	})

	It("fails fast when probabilities do not sum to 1", func() {
		_, err := valuation.ExpectedNPV(npvs, []float64{0.2, 0.5, 0.25, 0.15})
		Expect(err).To(MatchError(valuation.ErrBadProbabilityWeights))

		_, err = valuation.ExpectedNPV(npvs, []float64{0.2, 0.5, 0.2, 0.05})
		Expect(err).To(MatchError(valuation.ErrBadProbabilityWeights))
	})

	It("rejects negative probabilities", func() {
		_, err := valuation.ExpectedNPV(npvs, []float64{0.6, 0.5, 0.2, -0.3})
		Expect(err).To(MatchError(valuation.ErrBadProbabilityWeights))
	})

	It("rejects mismatched lengths", func() {
		_, err := valuation.ExpectedNPV(npvs, []float64{0.5, 0.5})
		Expect(err).To(MatchError(valuation.ErrBadProbabilityWeights))
	})

	It("computes a zero std-dev for a degenerate distribution", func() {
		stddev, err := valuation.NPVStdDev([]float64{42, 42, 42}, []float64{0.3, 0.3, 0.4})
		Expect(err).NotTo(HaveOccurred())
		Expect(stddev).To(BeNumerically("~", 0, 1e-9))
	})

	It("computes the population-weighted std-dev", func() {
		stddev, err := valuation.NPVStdDev([]float64{-100, 100}, []float64{0.5, 0.5})
		Expect(err).NotTo(HaveOccurred())
		Expect(stddev).To(BeNumerically("~", 100, 1e-9))
	})

	It("weights matrix columns by case probability", func() {
		matrix, err := valuation.SensitivityMatrix(producingProject(), referenceCases(), []float64{0.08}, taxRate, currentYear)
		Expect(err).NotTo(HaveOccurred())

		expected, err := valuation.ExpectedNPVForMatrix(matrix, 0)
		Expect(err).NotTo(HaveOccurred())

		manual := 0.0
		for caseIdx, priceCase := range referenceCases() {
			manual += priceCase.Probability * matrix.Cell(0, caseIdx)
		}
		Expect(expected).To(BeNumerically("~", manual, 1))
	})
})
