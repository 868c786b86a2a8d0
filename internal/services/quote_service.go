package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dannynerezov/motor-mutual-sub001/internal/event"
	"github.com/dannynerezov/motor-mutual-sub001/internal/models"
	"github.com/dannynerezov/motor-mutual-sub001/internal/repository"
	"github.com/dannynerezov/motor-mutual-sub001/internal/utils"
)

// generateQuoteBudget bounds the whole external call sequence: up to three
// chained calls plus up to three submission attempts.
const generateQuoteBudget = 30 * time.Second

// QuoteService fronts the orchestrator for the API layer: input validation,
// the end-to-end deadline, the audit record, the diagnostics archive and
// the lifecycle event. Persistence and events are best-effort; they never
// change the result returned to the caller.
type QuoteService struct {
	orchestrator *QuoteOrchestrator
	records      *repository.QuoteRecordRepository
	archive      IPayloadArchive
	publisher    *event.QuotePublisher
}

func NewQuoteService(
	orchestrator *QuoteOrchestrator,
	records *repository.QuoteRecordRepository,
	archive IPayloadArchive,
	publisher *event.QuotePublisher,
) *QuoteService {
	return &QuoteService{
		orchestrator: orchestrator,
		records:      records,
		archive:      archive,
		publisher:    publisher,
	}
}

// GenerateQuote validates the request, runs the workflow under the
// end-to-end deadline, and records the outcome.
func (s *QuoteService) GenerateQuote(ctx context.Context, req models.GenerateQuoteRequest) (*models.QuoteResult, error) {
	if err := validateQuoteRequest(req); err != nil {
		return nil, err
	}
	policyStart, _ := time.Parse("2006-01-02", req.PolicyStartDate)

	workflowCtx, cancel := context.WithTimeout(ctx, generateQuoteBudget)
	defer cancel()

	result, err := s.orchestrator.GenerateQuote(workflowCtx, req.Vehicle, req.Driver, policyStart)
	if err != nil {
		return nil, err
	}

	quoteID := uuid.New()
	s.recordOutcome(ctx, quoteID, req.Vehicle, result)

	if result.Success {
		if s.publisher != nil {
			if err := s.publisher.PublishQuoteCompleted(ctx, req.Vehicle, result); err != nil {
				slog.Error("Failed to publish quote.completed event", "quote_number", result.QuoteNumber, "error", err)
			}
		}
	} else {
		if s.archive != nil {
			if err := s.archive.ArchiveFailedQuote(ctx, quoteID, req.Vehicle, result); err != nil {
				slog.Error("Failed to archive quote diagnostics", "quote_record_id", quoteID, "error", err)
			}
		}
		if s.publisher != nil {
			if err := s.publisher.PublishQuoteFailed(ctx, req.Vehicle, result); err != nil {
				slog.Error("Failed to publish quote.failed event", "quote_record_id", quoteID, "error", err)
			}
		}
	}

	return result, nil
}

func (s *QuoteService) recordOutcome(ctx context.Context, quoteID uuid.UUID, vehicle models.VehicleIdentity, result *models.QuoteResult) {
	if s.records == nil {
		return
	}

	record := &models.QuoteRecord{
		ID:              quoteID,
		Registration:    vehicle.Registration,
		State:           vehicle.State,
		Attempts:        result.Attempts,
		RequestPayload:  result.RequestPayload,
		ResponsePayload: result.ResponsePayload,
	}
	if result.Success {
		record.Status = models.QuoteCompleted
		record.QuoteNumber = &result.QuoteNumber
		record.TotalPremium = &result.TotalPremium
	} else {
		record.Status = models.QuoteFailed
		code := result.FailureCode
		record.FailureCode = &code
		message := result.FailureMessage
		record.FailureMessage = &message
	}

	if err := s.records.Insert(ctx, record); err != nil {
		slog.Error("Failed to persist quote record", "quote_record_id", quoteID, "error", err)
	}
}

// GetQuoteRecord returns one audit row.
func (s *QuoteService) GetQuoteRecord(ctx context.Context, id uuid.UUID) (*models.QuoteRecord, error) {
	return s.records.GetByID(ctx, id)
}

// ListRecentQuotes returns the latest audit rows for the admin dashboard.
func (s *QuoteService) ListRecentQuotes(ctx context.Context, limit int) ([]models.QuoteRecord, error) {
	return s.records.ListRecent(ctx, limit)
}

// GetQuoteDiagnostics returns the archived payloads of a failed quote.
func (s *QuoteService) GetQuoteDiagnostics(ctx context.Context, id uuid.UUID) ([]byte, error) {
	if s.archive == nil {
		return nil, fmt.Errorf("diagnostics archive not configured")
	}
	return s.archive.GetDiagnostics(ctx, id)
}

func validateQuoteRequest(req models.GenerateQuoteRequest) error {
	if _, err := utils.ValidateRegistration(req.Vehicle.Registration); err != nil {
		return &utils.ValidationError{Field: "vehicle.registration", Message: err.Error()}
	}
	if _, err := utils.ValidateState(req.Vehicle.State); err != nil {
		return &utils.ValidationError{Field: "vehicle.state", Message: err.Error()}
	}
	if req.Driver.Address.Line == "" {
		return &utils.ValidationError{Field: "driver.address.line", Message: "address line is required"}
	}
	if _, err := utils.ValidateDateOfBirth(req.Driver.DateOfBirth); err != nil {
		return &utils.ValidationError{Field: "driver.date_of_birth", Message: err.Error()}
	}
	if _, err := utils.ValidatePolicyStartDate(req.PolicyStartDate); err != nil {
		return &utils.ValidationError{Field: "policy_start_date", Message: err.Error()}
	}
	return nil
}
