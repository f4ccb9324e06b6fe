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

package data

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

var yahooAPI = "https://query1.finance.yahoo.com"

type yahoo struct{}

// NewYahoo creates a Yahoo-style quote provider
func NewYahoo() *yahoo {
	return &yahoo{}
}

type yahooQuote struct {
	Symbol                     string   `json:"symbol"`
	RegularMarketPrice         *float64 `json:"regularMarketPrice"`
	RegularMarketPreviousClose *float64 `json:"regularMarketPreviousClose"`
	MarketCap                  *float64 `json:"marketCap"`
	SharesOutstanding          *float64 `json:"sharesOutstanding"`
	FiftyTwoWeekHigh           *float64 `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow            *float64 `json:"fiftyTwoWeekLow"`
	RegularMarketVolume        *float64 `json:"regularMarketVolume"`
}

type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []yahooQuote `json:"result"`
	} `json:"quoteResponse"`
}

type yahooRaw struct {
	Raw *float64 `json:"raw"`
}

type yahooFinancialData struct {
	TotalCash    *yahooRaw `json:"totalCash"`
	TotalDebt    *yahooRaw `json:"totalDebt"`
	FreeCashflow *yahooRaw `json:"freeCashflow"`
}

type yahooSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			FinancialData *yahooFinancialData `json:"financialData"`
		} `json:"result"`
	} `json:"quoteSummary"`
}

// Quote fetches a market snapshot for the ticker. Fields absent from the
// upstream payload are set to NaN. Balance sheet details come from a
// second, best-effort request; a failure there degrades the snapshot
// rather than failing it.
func (y *yahoo) Quote(ctx context.Context, ticker string) (*MarketSnapshot, error) {
	subLog := log.With().Str("Ticker", ticker).Logger()

	quoteURL := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", yahooAPI, url.QueryEscape(ticker))
	quoteResp := yahooQuoteResponse{}
	if err := y.fetchJSON(ctx, quoteURL, &quoteResp); err != nil {
		subLog.Error().Err(err).Msg("quote request failed")
		return nil, fmt.Errorf("%w: %s", ErrDataUnavailable, err)
	}
	if len(quoteResp.QuoteResponse.Result) == 0 {
		subLog.Error().Msg("quote payload has no results")
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
	}

	quote := quoteResp.QuoteResponse.Result[0]
	snapshot := &MarketSnapshot{
		Ticker:            ticker,
		Price:             derefOrNaN(quote.RegularMarketPrice),
		PreviousClose:     derefOrNaN(quote.RegularMarketPreviousClose),
		MarketCap:         derefOrNaN(quote.MarketCap),
		SharesOutstanding: derefOrNaN(quote.SharesOutstanding),
		Cash:              math.NaN(),
		Debt:              math.NaN(),
		QuarterlyBurn:     math.NaN(),
		FiftyTwoWeekHigh:  derefOrNaN(quote.FiftyTwoWeekHigh),
		FiftyTwoWeekLow:   derefOrNaN(quote.FiftyTwoWeekLow),
		Volume:            derefOrNaN(quote.RegularMarketVolume),
		GoldPrice:         math.NaN(),
		FetchedAt:         time.Now(),
	}

	summaryURL := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=financialData", yahooAPI, url.PathEscape(ticker))
	summaryResp := yahooSummaryResponse{}
	if err := y.fetchJSON(ctx, summaryURL, &summaryResp); err != nil {
		subLog.Warn().Err(err).Msg("financial data request failed; balance sheet fields unknown")
		return snapshot, nil
	}
	if len(summaryResp.QuoteSummary.Result) == 0 || summaryResp.QuoteSummary.Result[0].FinancialData == nil {
		subLog.Warn().Msg("financial data payload empty; balance sheet fields unknown")
		return snapshot, nil
	}

	financials := summaryResp.QuoteSummary.Result[0].FinancialData
	snapshot.Cash = rawOrNaN(financials.TotalCash)
	snapshot.Debt = rawOrNaN(financials.TotalDebt)
	snapshot.QuarterlyBurn = burnFromFreeCashflow(rawOrNaN(financials.FreeCashflow))

	return snapshot, nil
}

func (y *yahoo) fetchJSON(ctx context.Context, fetchURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "gaapi")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: %d", ErrInvalidStatusCode, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return ErrEmptyPayload
	}

	return json.Unmarshal(body, out)
}

// burnFromFreeCashflow converts trailing-twelve-month free cash flow into a
// quarterly cash burn. Positive free cash flow means no burn; an unknown
// value stays unknown.
func burnFromFreeCashflow(freeCashflow float64) float64 {
	if math.IsNaN(freeCashflow) {
		return math.NaN()
	}
	if freeCashflow >= 0 {
		return 0
	}
	return -freeCashflow / 4
}

func derefOrNaN(val *float64) float64 {
	if val == nil {
		return math.NaN()
	}
	return *val
}

func rawOrNaN(val *yahooRaw) float64 {
	if val == nil || val.Raw == nil {
		return math.NaN()
	}
	return *val.Raw
}
