package api

import (
	"FloorSentinel/api/handlers"
	"FloorSentinel/internal/sweeper"

	"github.com/gofiber/fiber/v3"
)

func SetupRoutes(app *fiber.App, sw *sweeper.Sweeper) {
	statusHandler := handlers.NewStatusHandler(sw)

	v1 := app.Group("/v1")

	v1.Get("/status", statusHandler.GetStatus)
	v1.Get("/opportunities", statusHandler.GetOpportunities)
}
