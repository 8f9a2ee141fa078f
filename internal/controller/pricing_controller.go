package controller

import (
	"github.com/gofiber/fiber/v2"

	"planforge_backend/pkg/database"
	"planforge_backend/pkg/pricing"
	"planforge_backend/pkg/utils/validation"
)

// CalculatePricing returns a custom-design estimate for the given area,
// style, complexity and region.
func CalculatePricing(c *fiber.Ctx) error {
	input := new(pricing.Input)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}
	if fields := validation.ValidateStruct(input); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": fields,
		})
	}

	rates := pricing.LoadRates(database.GetDB())

	estimate, err := pricing.Calculate(*input, rates)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(estimate)
}

type BudgetInput struct {
	Budget float64 `json:"budget" validate:"required,gt=0"`
	Region string  `json:"region"`
}

// RecommendPlanByBudget inverts the estimate: how much house fits the budget.
func RecommendPlanByBudget(c *fiber.Ctx) error {
	input := new(BudgetInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}
	if fields := validation.ValidateStruct(input); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": fields,
		})
	}

	rates := pricing.LoadRates(database.GetDB())

	rec, err := pricing.RecommendByBudget(input.Budget, input.Region, rates)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(rec)
}
