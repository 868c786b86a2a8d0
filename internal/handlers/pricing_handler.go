package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/dannynerezov/motor-mutual-sub001/internal/models"
	"github.com/dannynerezov/motor-mutual-sub001/internal/repository"
	"github.com/dannynerezov/motor-mutual-sub001/internal/services"
	"github.com/dannynerezov/motor-mutual-sub001/internal/utils"
)

type PricingHandler struct {
	schemes *repository.PricingSchemeRepository
	pricing *services.PricingService
	fleet   *services.FleetPricingService
}

func NewPricingHandler(
	schemes *repository.PricingSchemeRepository,
	pricing *services.PricingService,
	fleet *services.FleetPricingService,
) *PricingHandler {
	return &PricingHandler{
		schemes: schemes,
		pricing: pricing,
		fleet:   fleet,
	}
}

func (h *PricingHandler) Register(app *fiber.App) {
	gr := app.Group("motor/api/v1/pricing")

	gr.Get("/premium", h.GetPremium)        // GET /pricing/premium?vehicle_value=42500
	gr.Get("/equation", h.GetEquation)      // GET /pricing/equation
	gr.Get("/points", h.GetDataPoints)      // GET /pricing/points?start=&end=&step=
	gr.Get("/stats", h.GetStats)            // GET /pricing/stats
	gr.Post("/sample-fleet", h.PriceSampleFleet)
}

// GetPremium prices a single vehicle value under the active scheme.
func (h *PricingHandler) GetPremium(c fiber.Ctx) error {
	vehicleValue, err := strconv.ParseFloat(c.Query("vehicle_value"), 64)
	if err != nil || vehicleValue < 0 {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_VEHICLE_VALUE", "vehicle_value must be a non-negative number"))
	}

	scheme, err := h.schemes.GetActiveScheme(c.Context())
	if err != nil {
		slog.Error("Failed to load active pricing scheme", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("SCHEME_UNAVAILABLE", "No active pricing scheme available"))
	}

	premium, err := h.pricing.CalculateBasePremium(vehicleValue, *scheme)
	if err != nil {
		return h.mapPricingError(c, err)
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(models.PricingPoint{
		VehicleValue: vehicleValue,
		Premium:      premium,
	}))
}

// GetEquation renders the active scheme's interpolation line for display.
func (h *PricingHandler) GetEquation(c fiber.Ctx) error {
	scheme, err := h.schemes.GetActiveScheme(c.Context())
	if err != nil {
		slog.Error("Failed to load active pricing scheme", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("SCHEME_UNAVAILABLE", "No active pricing scheme available"))
	}

	equation, err := h.pricing.GeneratePricingEquation(*scheme)
	if err != nil {
		return h.mapPricingError(c, err)
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(map[string]any{
		"equation": equation,
		"scheme":   scheme,
	}))
}

// GetDataPoints samples the active scheme's curve for charting.
func (h *PricingHandler) GetDataPoints(c fiber.Ctx) error {
	scheme, err := h.schemes.GetActiveScheme(c.Context())
	if err != nil {
		slog.Error("Failed to load active pricing scheme", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("SCHEME_UNAVAILABLE", "No active pricing scheme available"))
	}

	start := queryFloat(c, "start", scheme.FloorPoint)
	end := queryFloat(c, "end", scheme.CeilingPoint)
	step := queryFloat(c, "step", 1000)

	seq, err := h.pricing.GeneratePricingDataPoints(*scheme, start, end, step)
	if err != nil {
		return h.mapPricingError(c, err)
	}

	points := []models.PricingPoint{}
	for value, premium := range seq {
		points = append(points, models.PricingPoint{VehicleValue: value, Premium: premium})
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(map[string]any{
		"points": points,
		"count":  len(points),
	}))
}

// GetStats summarises the active scheme for the dashboard.
func (h *PricingHandler) GetStats(c fiber.Ctx) error {
	scheme, err := h.schemes.GetActiveScheme(c.Context())
	if err != nil {
		slog.Error("Failed to load active pricing scheme", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("SCHEME_UNAVAILABLE", "No active pricing scheme available"))
	}

	stats, err := h.pricing.GetPricingStats(*scheme)
	if err != nil {
		return h.mapPricingError(c, err)
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(stats))
}

// PriceSampleFleet prices a posted catalogue of sample vehicles in one batch.
func (h *PricingHandler) PriceSampleFleet(c fiber.Ctx) error {
	var req models.PriceFleetRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}
	if len(req.Vehicles) == 0 {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_REQUEST", "vehicles must not be empty"))
	}

	scheme, err := h.schemes.GetActiveScheme(c.Context())
	if err != nil {
		slog.Error("Failed to load active pricing scheme", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("SCHEME_UNAVAILABLE", "No active pricing scheme available"))
	}

	priced, err := h.fleet.PriceSampleFleet(c.Context(), *scheme, req.Vehicles)
	if err != nil {
		return h.mapPricingError(c, err)
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(map[string]any{
		"vehicles": priced,
		"count":    len(priced),
	}))
}

func (h *PricingHandler) mapPricingError(c fiber.Ctx, err error) error {
	var ineligible *services.VehicleIneligibleError
	if errors.As(err, &ineligible) {
		return c.Status(http.StatusUnprocessableEntity).JSON(
			utils.CreateErrorResponseWithDetails("VEHICLE_INELIGIBLE", err.Error(), map[string]float64{
				"ceiling_point": ineligible.CeilingPoint,
			}))
	}

	var invalid *services.InvalidSchemeError
	if errors.As(err, &invalid) {
		slog.Error("Active pricing scheme is invalid", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("INVALID_SCHEME", "Active pricing scheme is misconfigured"))
	}

	slog.Error("Pricing calculation failed", "error", err)
	return c.Status(http.StatusInternalServerError).JSON(
		utils.CreateErrorResponse("PRICING_FAILED", "Failed to calculate pricing"))
}

func queryFloat(c fiber.Ctx, key string, fallback float64) float64 {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}
