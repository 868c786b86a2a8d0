package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/dannynerezov/motor-mutual-sub001/internal/config"
	"github.com/dannynerezov/motor-mutual-sub001/internal/models"
)

// IQuoteAPIService submits an assembled payload to the external insurer.
// Synchronous request/response only; there is no partial-success or async
// callback mode.
type IQuoteAPIService interface {
	SubmitQuote(ctx context.Context, payload models.QuotePayload) (*models.QuoteSubmissionOutcome, error)
}

type QuoteAPIService struct {
	cfg    config.InsurerAPIConfig
	client *http.Client
}

func NewQuoteAPIService(cfg config.InsurerAPIConfig) IQuoteAPIService {
	return &QuoteAPIService{
		cfg: cfg,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Wire shape of the insurer's quote response. Fixed integration contract.
type quoteAPIResponse struct {
	QuoteNumber string `json:"quoteNumber"`
	Premium     *struct {
		Base  float64                  `json:"base"`
		Items []models.PremiumLineItem `json:"items"`
		Total float64                  `json:"total"`
	} `json:"premium"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SubmitQuote performs one submission attempt. A rejection by the insurer
// (error body or non-200 status) is returned as a non-accepted outcome with
// the raw request/response preserved; only transport-level failures return
// an error.
func (q *QuoteAPIService) SubmitQuote(ctx context.Context, payload models.QuotePayload) (*models.QuoteSubmissionOutcome, error) {
	requestBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal quote payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/quotes", q.cfg.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to build quote submission request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+q.cfg.APIKey)

	resp, err := q.client.Do(req)
	if err != nil {
		slog.Error("Error calling quote submission API", "error", err)
		return nil, fmt.Errorf("failed to call quote submission API: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read quote submission response: %w", err)
	}

	outcome := &models.QuoteSubmissionOutcome{
		RawRequest:  requestBody,
		RawResponse: responseBody,
	}

	var parsed quoteAPIResponse
	if err := json.Unmarshal(responseBody, &parsed); err != nil {
		// Non-JSON rejection body; keep the raw text for diagnostics.
		outcome.UpstreamCode = fmt.Sprintf("HTTP_%d", resp.StatusCode)
		outcome.UpstreamMessage = strings.TrimSpace(string(responseBody))
		return outcome, nil
	}

	if resp.StatusCode == http.StatusOK && parsed.Error == nil && parsed.QuoteNumber != "" {
		outcome.Accepted = true
		outcome.QuoteNumber = parsed.QuoteNumber
		if parsed.Premium != nil {
			outcome.BasePremium = parsed.Premium.Base
			outcome.LineItems = parsed.Premium.Items
			outcome.TotalPremium = parsed.Premium.Total
		}
		return outcome, nil
	}

	if parsed.Error != nil {
		outcome.UpstreamCode = parsed.Error.Code
		outcome.UpstreamMessage = parsed.Error.Message
	} else {
		outcome.UpstreamCode = fmt.Sprintf("HTTP_%d", resp.StatusCode)
		outcome.UpstreamMessage = "quote submission rejected without error detail"
	}

	slog.Warn("Quote submission rejected",
		"status", resp.StatusCode,
		"upstream_code", outcome.UpstreamCode,
		"upstream_message", outcome.UpstreamMessage)

	return outcome, nil
}
