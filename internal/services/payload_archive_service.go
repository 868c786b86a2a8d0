package services

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	miniodb "github.com/dannynerezov/motor-mutual-sub001/internal/database/minio"
	"github.com/dannynerezov/motor-mutual-sub001/internal/models"
)

// IPayloadArchive stores the diagnostic payloads of failed quote attempts
// for operator troubleshooting.
type IPayloadArchive interface {
	ArchiveFailedQuote(ctx context.Context, quoteID uuid.UUID, vehicle models.VehicleIdentity, result *models.QuoteResult) error
	GetDiagnostics(ctx context.Context, quoteID uuid.UUID) ([]byte, error)
}

type PayloadArchiveService struct {
	storage *miniodb.MinioClient
}

func NewPayloadArchiveService(storage *miniodb.MinioClient) IPayloadArchive {
	return &PayloadArchiveService{storage: storage}
}

// quoteDiagnosticsDocument is the archived JSON shape: the classification
// plus the last attempt's request and response exactly as sent/received.
type quoteDiagnosticsDocument struct {
	QuoteID         uuid.UUID               `json:"quote_id"`
	Registration    string                  `json:"registration"`
	State           string                  `json:"state"`
	FailureCode     models.QuoteFailureCode `json:"failure_code"`
	FailureMessage  string                  `json:"failure_message"`
	UpstreamCode    string                  `json:"upstream_code,omitempty"`
	UpstreamMessage string                  `json:"upstream_message,omitempty"`
	RiskLatitude    float64                 `json:"risk_latitude,omitempty"`
	RiskLongitude   float64                 `json:"risk_longitude,omitempty"`
	Attempts        int                     `json:"attempts"`
	RequestPayload  json.RawMessage         `json:"request_payload,omitempty"`
	ResponsePayload json.RawMessage         `json:"response_payload,omitempty"`
	ArchivedAt      time.Time               `json:"archived_at"`
}

func (s *PayloadArchiveService) ArchiveFailedQuote(ctx context.Context, quoteID uuid.UUID, vehicle models.VehicleIdentity, result *models.QuoteResult) error {
	doc := quoteDiagnosticsDocument{
		QuoteID:         quoteID,
		Registration:    vehicle.Registration,
		State:           vehicle.State,
		FailureCode:     result.FailureCode,
		FailureMessage:  result.FailureMessage,
		UpstreamCode:    result.UpstreamCode,
		UpstreamMessage: result.UpstreamMessage,
		RiskLatitude:    result.RiskLatitude,
		RiskLongitude:   result.RiskLongitude,
		Attempts:        result.Attempts,
		RequestPayload:  result.RequestPayload,
		ResponsePayload: result.ResponsePayload,
		ArchivedAt:      time.Now(),
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal diagnostics document: %w", err)
	}

	objectName := fmt.Sprintf("%s.json", quoteID)
	return s.storage.PutJSONObject(ctx, miniodb.Storage.QuoteDiagnostics, objectName, data)
}

func (s *PayloadArchiveService) GetDiagnostics(ctx context.Context, quoteID uuid.UUID) ([]byte, error) {
	objectName := fmt.Sprintf("%s.json", quoteID)
	return s.storage.GetObject(ctx, miniodb.Storage.QuoteDiagnostics, objectName)
}
