package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/dannynerezov/motor-mutual-sub001/internal/models"
	"github.com/dannynerezov/motor-mutual-sub001/internal/services"
	"github.com/dannynerezov/motor-mutual-sub001/internal/utils"
)

type QuoteHandler struct {
	quoteService *services.QuoteService
}

func NewQuoteHandler(quoteService *services.QuoteService) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService}
}

func (h *QuoteHandler) Register(app *fiber.App) {
	gr := app.Group("motor/api/v1/quotes")

	gr.Post("/", h.GenerateQuote)                  // POST /quotes
	gr.Get("/recent", h.ListRecent)                // GET /quotes/recent?limit=20
	gr.Get("/:id", h.GetByID)                      // GET /quotes/:id
	gr.Get("/:id/diagnostics", h.GetDiagnostics)   // GET /quotes/:id/diagnostics
}

// GenerateQuote runs the full quoting workflow for the posted vehicle and
// driver. Classified workflow failures return the structured failure body
// so the caller can render and operators can troubleshoot.
func (h *QuoteHandler) GenerateQuote(c fiber.Ctx) error {
	var req models.GenerateQuoteRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	result, err := h.quoteService.GenerateQuote(c.Context(), req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return c.Status(http.StatusGatewayTimeout).JSON(
				utils.CreateErrorResponse("WORKFLOW_TIMEOUT", "Quote workflow exceeded its time budget"))
		}
		if errors.Is(err, context.Canceled) {
			return c.Status(http.StatusRequestTimeout).JSON(
				utils.CreateErrorResponse("REQUEST_CANCELLED", "Quote workflow was cancelled"))
		}
		var validationErr *utils.ValidationError
		if errors.As(err, &validationErr) {
			return c.Status(http.StatusBadRequest).JSON(
				utils.CreateErrorResponseWithDetails("INVALID_REQUEST", validationErr.Error(), validationErr))
		}
		slog.Error("Quote generation failed", "registration", req.Vehicle.Registration, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("QUOTE_FAILED", "Failed to generate quote"))
	}

	if !result.Success {
		return c.Status(failureStatus(result.FailureCode)).JSON(
			utils.CreateErrorResponseWithDetails(string(result.FailureCode), result.FailureMessage, result))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(result))
}

// ListRecent returns the latest quote audit rows for the admin dashboard.
func (h *QuoteHandler) ListRecent(c fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	records, err := h.quoteService.ListRecentQuotes(c.Context(), limit)
	if err != nil {
		slog.Error("Failed to list quote records", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("RETRIEVAL_FAILED", "Failed to retrieve quote records"))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(map[string]any{
		"quotes": records,
		"count":  len(records),
	}))
}

func (h *QuoteHandler) GetByID(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_UUID", "Invalid quote record ID format"))
	}

	record, err := h.quoteService.GetQuoteRecord(c.Context(), id)
	if err != nil {
		if strings.Contains(err.Error(), "no rows") {
			return c.Status(http.StatusNotFound).JSON(
				utils.CreateErrorResponse("NOT_FOUND", "Quote record not found"))
		}
		slog.Error("Failed to get quote record", "quote_record_id", id, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("RETRIEVAL_FAILED", "Failed to retrieve quote record"))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(record))
}

// GetDiagnostics returns the archived request/response payloads of a
// failed quote.
func (h *QuoteHandler) GetDiagnostics(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_UUID", "Invalid quote record ID format"))
	}

	data, err := h.quoteService.GetQuoteDiagnostics(c.Context(), id)
	if err != nil {
		if strings.Contains(err.Error(), "not configured") {
			return c.Status(http.StatusNotImplemented).JSON(
				utils.CreateErrorResponse("ARCHIVE_DISABLED", "Diagnostics archive is not configured"))
		}
		slog.Error("Failed to get quote diagnostics", "quote_record_id", id, "error", err)
		return c.Status(http.StatusNotFound).JSON(
			utils.CreateErrorResponse("NOT_FOUND", "No diagnostics archived for this quote"))
	}

	c.Set("Content-Type", "application/json")
	return c.Status(http.StatusOK).Send(data)
}

// failureStatus maps a workflow failure classification to an HTTP status.
func failureStatus(code models.QuoteFailureCode) int {
	switch code {
	case models.FailureVehicleLookup, models.FailureNoAddressMatch, models.FailureAddressValidation:
		return http.StatusUnprocessableEntity
	case models.FailureQuoteSubmission:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
