package data_test

import (
	"context"
	"math"

	"github.com/gold-assay/ga-api/data"

	"github.com/jarcoal/httpmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Yahoo provider", func() {
	var provider data.Provider

	BeforeEach(func() {
		httpmock.Activate()
		provider = data.NewYahoo()
	})

	AfterEach(func() {
		httpmock.DeactivateAndReset()
	})

	Context("with a complete quote payload", func() {
		BeforeEach(func() {
			httpmock.RegisterResponder("GET", "https://query1.finance.yahoo.com/v7/finance/quote?symbols=JRMC",
				httpmock.NewStringResponder(200, `{"quoteResponse":{"result":[{
					"symbol":"JRMC",
					"regularMarketPrice":2.50,
					"regularMarketPreviousClose":2.40,
					"marketCap":250000000,
					"sharesOutstanding":100000000,
					"fiftyTwoWeekHigh":3.10,
					"fiftyTwoWeekLow":1.20,
					"regularMarketVolume":1500000
				}]}}`))
			httpmock.RegisterResponder("GET", "https://query1.finance.yahoo.com/v10/finance/quoteSummary/JRMC?modules=financialData",
				httpmock.NewStringResponder(200, `{"quoteSummary":{"result":[{"financialData":{
					"totalCash":{"raw":50000000},
					"totalDebt":{"raw":10000000},
					"freeCashflow":{"raw":-20000000}
				}}]}}`))
		})

		It("maps all fields", func() {
			snapshot, err := provider.Quote(context.Background(), "JRMC")
			Expect(err).NotTo(HaveOccurred())
			Expect(snapshot.Ticker).To(Equal("JRMC"))
			Expect(snapshot.Price).To(Equal(2.50))
			Expect(snapshot.PreviousClose).To(Equal(2.40))
			Expect(snapshot.MarketCap).To(Equal(250_000_000.0))
			Expect(snapshot.SharesOutstanding).To(Equal(100_000_000.0))
			Expect(snapshot.Cash).To(Equal(50_000_000.0))
			Expect(snapshot.Debt).To(Equal(10_000_000.0))
		})

		It("derives quarterly burn from negative free cash flow", func() {
			snapshot, err := provider.Quote(context.Background(), "JRMC")
			Expect(err).NotTo(HaveOccurred())
			Expect(snapshot.QuarterlyBurn).To(Equal(5_000_000.0))
		})
	})

	Context("with missing payload fields", func() {
		BeforeEach(func() {
			httpmock.RegisterResponder("GET", "https://query1.finance.yahoo.com/v7/finance/quote?symbols=XPLR",
				httpmock.NewStringResponder(200, `{"quoteResponse":{"result":[{
					"symbol":"XPLR",
					"regularMarketPrice":0.85
				}]}}`))
			httpmock.RegisterResponder("GET", "https://query1.finance.yahoo.com/v10/finance/quoteSummary/XPLR?modules=financialData",
				httpmock.NewStringResponder(200, `{"quoteSummary":{"result":[{"financialData":{
					"totalCash":{"raw":8000000}
				}}]}}`))
		})

		It("maps missing fields to NaN, never zero", func() {
			snapshot, err := provider.Quote(context.Background(), "XPLR")
			Expect(err).NotTo(HaveOccurred())
			Expect(snapshot.Price).To(Equal(0.85))
			Expect(math.IsNaN(snapshot.MarketCap)).To(BeTrue())
			Expect(math.IsNaN(snapshot.SharesOutstanding)).To(BeTrue())
			Expect(math.IsNaN(snapshot.Debt)).To(BeTrue())
			Expect(math.IsNaN(snapshot.QuarterlyBurn)).To(BeTrue())
			Expect(snapshot.Cash).To(Equal(8_000_000.0))
		})
	})

	Context("when financial data is unavailable", func() {
		BeforeEach(func() {
			httpmock.RegisterResponder("GET", "https://query1.finance.yahoo.com/v7/finance/quote?symbols=JRMC",
				httpmock.NewStringResponder(200, `{"quoteResponse":{"result":[{"symbol":"JRMC","regularMarketPrice":2.50}]}}`))
			httpmock.RegisterResponder("GET", "https://query1.finance.yahoo.com/v10/finance/quoteSummary/JRMC?modules=financialData",
				httpmock.NewStringResponder(500, "server error"))
		})

		It("degrades the snapshot instead of failing it", func() {
			snapshot, err := provider.Quote(context.Background(), "JRMC")
			Expect(err).NotTo(HaveOccurred())
			Expect(snapshot.Price).To(Equal(2.50))
			Expect(math.IsNaN(snapshot.Cash)).To(BeTrue())
		})
	})

	Context("with an unknown ticker", func() {
		BeforeEach(func() {
			httpmock.RegisterResponder("GET", "https://query1.finance.yahoo.com/v7/finance/quote?symbols=NOPE",
				httpmock.NewStringResponder(200, `{"quoteResponse":{"result":[]}}`))
		})

		It("returns ErrTickerNotFound", func() {
			_, err := provider.Quote(context.Background(), "NOPE")
			Expect(err).To(MatchError(data.ErrTickerNotFound))
		})
	})

	Context("when the provider is down", func() {
		BeforeEach(func() {
			httpmock.RegisterResponder("GET", "https://query1.finance.yahoo.com/v7/finance/quote?symbols=JRMC",
				httpmock.NewStringResponder(502, "bad gateway"))
		})

		It("returns ErrDataUnavailable", func() {
			_, err := provider.Quote(context.Background(), "JRMC")
			Expect(err).To(MatchError(data.ErrDataUnavailable))
		})
	})
})
