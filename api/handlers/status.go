package handlers

import (
	"FloorSentinel/internal/model"
	"FloorSentinel/internal/sweeper"

	"github.com/gofiber/fiber/v3"
)

type StatusHandler struct {
	sweeper *sweeper.Sweeper
}

func NewStatusHandler(sweeper *sweeper.Sweeper) *StatusHandler {
	return &StatusHandler{sweeper}
}

// Handles GET /v1/status.
func (h *StatusHandler) GetStatus(c fiber.Ctx) error {
	state := h.sweeper.State()

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"running":            state.Running,
		"total_spent":        state.TotalSpent,
		"max_total_spend":    state.MaxTotalSpend,
		"max_price_per_item": state.MaxPricePerItem,
		"remaining":          state.Remaining(),
		"updated_at":         state.UpdatedAt,
	})
}

// Handles GET /v1/opportunities.
func (h *StatusHandler) GetOpportunities(c fiber.Ctx) error {
	opps := h.sweeper.LastOpportunities()
	if opps == nil {
		opps = []*model.Opportunity{}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"count":         len(opps),
		"opportunities": opps,
	})
}
