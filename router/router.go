package router

import (
	"github.com/gold-assay/ga-api/data"
	"github.com/gold-assay/ga-api/handler"
	"github.com/gold-assay/ga-api/pipeline"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes setup router api
func SetupRoutes(app *fiber.App, service *pipeline.Service, manager *data.Manager) {
	api := app.Group("/v1")
	api.Get("/", handler.Ping)

	// Analysis
	api.Get("/analysis", handler.GetAnalysis(service))
	api.Post("/analysis/run", handler.RunAnalysis(service))
	api.Get("/analysis/report", handler.GetReport(service))

	// Companies
	api.Get("/companies/:ticker", handler.GetCompany(service))

	// Market
	api.Get("/signals", handler.GetSignals(service))
	api.Get("/gold", handler.GetGold(manager))
}
