package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dannynerezov/motor-mutual-sub001/internal/database/postgres"
	"github.com/dannynerezov/motor-mutual-sub001/internal/models"
)

// QuoteRecordRepository persists the audit trail of quote workflow runs.
// The workflow itself never reads these back; they exist for operators.
type QuoteRecordRepository struct {
	db *postgres.Handle
}

func NewQuoteRecordRepository(db *postgres.Handle) *QuoteRecordRepository {
	return &QuoteRecordRepository{db: db}
}

func (r *QuoteRecordRepository) Insert(ctx context.Context, record *models.QuoteRecord) error {
	db := r.db.Get()
	if db == nil {
		return fmt.Errorf("database connection not ready")
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.CreatedAt = time.Now()

	slog.Info("Recording quote outcome",
		"quote_record_id", record.ID,
		"registration", record.Registration,
		"status", record.Status)

	query := `
		INSERT INTO quote_record (
			id, registration, state, status, quote_number, total_premium,
			failure_code, failure_message, attempts, request_payload,
			response_payload, created_at
		) VALUES (
			:id, :registration, :state, :status, :quote_number, :total_premium,
			:failure_code, :failure_message, :attempts, :request_payload,
			:response_payload, :created_at
		)`
	if _, err := db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("failed to insert quote record: %w", err)
	}
	return nil
}

func (r *QuoteRecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.QuoteRecord, error) {
	db := r.db.Get()
	if db == nil {
		return nil, fmt.Errorf("database connection not ready")
	}

	var record models.QuoteRecord
	query := `
		SELECT id, registration, state, status, quote_number, total_premium,
		       failure_code, failure_message, attempts, request_payload,
		       response_payload, created_at
		FROM quote_record
		WHERE id = $1`
	if err := db.GetContext(ctx, &record, query, id); err != nil {
		return nil, fmt.Errorf("failed to get quote record %s: %w", id, err)
	}
	return &record, nil
}

func (r *QuoteRecordRepository) ListRecent(ctx context.Context, limit int) ([]models.QuoteRecord, error) {
	db := r.db.Get()
	if db == nil {
		return nil, fmt.Errorf("database connection not ready")
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	records := []models.QuoteRecord{}
	query := `
		SELECT id, registration, state, status, quote_number, total_premium,
		       failure_code, failure_message, attempts, request_payload,
		       response_payload, created_at
		FROM quote_record
		ORDER BY created_at DESC
		LIMIT $1`
	if err := db.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list quote records: %w", err)
	}
	return records, nil
}
