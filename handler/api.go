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

// Package handler implements the HTTP surface over the analysis pipeline.
// GET endpoints serve the latest completed pass, running one on demand the
// first time; POST /run always forces a fresh pass.
package handler

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/gold-assay/ga-api/data"
	"github.com/gold-assay/ga-api/pipeline"
	"github.com/gold-assay/ga-api/report"
	"github.com/gold-assay/ga-api/signals"
)

type PingResponse struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message" example:"API is alive"`
	Time    string `json:"time" example:"2021-06-19T08:09:10.115924-05:00"`
}

func Ping(c *fiber.Ctx) error {
	var response PingResponse
	now, err := time.Now().MarshalText()
	if err != nil {
		log.Error().Err(err).Msg("error while getting time in ping")
		response = PingResponse{
			Status:  "error",
			Message: err.Error(),
			Time:    string(now),
		}
	} else {
		response = PingResponse{
			Status:  "success",
			Message: "API is alive",
			Time:    string(now),
		}
	}
	return c.JSON(response)
}

// latestOrRun serves the most recent pass, running the first one on demand.
func latestOrRun(c *fiber.Ctx, service *pipeline.Service) (*pipeline.Result, error) {
	if result := service.Latest(); result != nil {
		return result, nil
	}

	result, err := service.Run(c.Context())
	if err != nil {
		log.Error().Err(err).Str("Uri", c.OriginalURL()).Msg("on-demand pipeline run failed")
		return nil, fiber.ErrServiceUnavailable
	}
	return result, nil
}

// GetAnalysis serves the full result of the latest pass.
func GetAnalysis(service *pipeline.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := latestOrRun(c, service)
		if err != nil {
			return err
		}
		return c.JSON(result)
	}
}

// RunAnalysis forces a fresh pass and serves its result.
func RunAnalysis(service *pipeline.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := service.Run(c.Context())
		if err != nil {
			log.Error().Err(err).Msg("forced pipeline run failed")
			return fiber.ErrServiceUnavailable
		}
		return c.JSON(result)
	}
}

// GetCompany serves one company's slice of the latest pass.
func GetCompany(service *pipeline.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := latestOrRun(c, service)
		if err != nil {
			return err
		}

		ticker := strings.ToUpper(c.Params("ticker"))
		for _, company := range result.Companies {
			if company.Ticker == ticker {
				return c.JSON(company)
			}
		}

		log.Warn().Str("Ticker", ticker).Msg("company not configured")
		return fiber.ErrNotFound
	}
}

// GetSignals serves every signal of the latest pass, gold included,
// critical first.
func GetSignals(service *pipeline.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := latestOrRun(c, service)
		if err != nil {
			return err
		}

		found := []*signals.Signal{}
		if result.GoldSignal != nil {
			found = append(found, result.GoldSignal)
		}
		for _, company := range result.Companies {
			found = append(found, company.Signals...)
		}
		signals.SortBySeverity(found)
		return c.JSON(found)
	}
}

// GetGold serves the current gold snapshot.
func GetGold(manager *data.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snapshot, err := manager.GoldSnapshot(c.Context())
		if err != nil && snapshot == nil {
			log.Error().Err(err).Msg("gold snapshot unavailable")
			return fiber.ErrServiceUnavailable
		}
		return c.JSON(snapshot)
	}
}

// GetReport serves the latest pass as a markdown briefing.
func GetReport(service *pipeline.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := latestOrRun(c, service)
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, "text/markdown; charset=utf-8")
		return c.SendString(report.Render(result))
	}
}
