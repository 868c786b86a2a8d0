package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// QUOTE SUBMISSION PAYLOAD (external insurer API schema — fixed contract,
// reproduced field-for-field; do not rename wire fields)
// ============================================================================

type QuotePayload struct {
	PolicyStartDate string               `json:"policyStartDate"` // YYYY-MM-DD
	Vehicle         QuoteVehiclePayload  `json:"vehicle"`
	Driver          QuoteDriverPayload   `json:"driver"`
	RiskAddress     QuoteAddressPayload  `json:"riskAddress"`
}

type QuoteVehiclePayload struct {
	NVIC         string  `json:"nvic"`
	Registration string  `json:"registrationNumber"`
	State        string  `json:"registrationState"`
	ModelYear    int     `json:"yearOfManufacture"`
	MarketValue  float64 `json:"marketValue"`
	// IsNewVehicle is the ambiguous optional field: the insurer API requires
	// it for some current/next model-year vehicles and rejects it for
	// others, so submission toggles it then omits it. Outside that window it
	// is always omitted.
	IsNewVehicle *bool `json:"isNewVehicle,omitempty"`
}

type QuoteDriverPayload struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"dateOfBirth"`
	Gender      string `json:"gender"`
}

type QuoteAddressPayload struct {
	LURN        string `json:"lurn"`
	AddressLine string `json:"addressLine"`
	Suburb      string `json:"suburb"`
	State       string `json:"state"`
	Postcode    string `json:"postcode"`
}

// ============================================================================
// QUOTE SUBMISSION RESPONSE
// ============================================================================

type PremiumLineItem struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// QuoteSubmissionOutcome is one submission attempt's result, successful or
// rejected, together with the exact bytes that crossed the wire.
type QuoteSubmissionOutcome struct {
	Accepted        bool
	QuoteNumber     string
	BasePremium     float64
	LineItems       []PremiumLineItem
	TotalPremium    float64
	UpstreamCode    string
	UpstreamMessage string
	RawRequest      json.RawMessage
	RawResponse     json.RawMessage
}

// ============================================================================
// QUOTE RESULT (workflow output — transient, not the persisted record)
// ============================================================================

type QuoteResult struct {
	Success      bool              `json:"success"`
	QuoteNumber  string            `json:"quote_number,omitempty"`
	BasePremium  float64           `json:"base_premium,omitempty"`
	LineItems    []PremiumLineItem `json:"line_items,omitempty"`
	TotalPremium float64           `json:"total_premium,omitempty"`

	FailureCode     QuoteFailureCode `json:"failure_code,omitempty"`
	FailureMessage  string           `json:"failure_message,omitempty"`
	UpstreamCode    string           `json:"upstream_code,omitempty"`
	UpstreamMessage string           `json:"upstream_message,omitempty"`

	// Geocode of the validated risk address, set once validation succeeded.
	RiskLatitude  float64 `json:"risk_latitude,omitempty"`
	RiskLongitude float64 `json:"risk_longitude,omitempty"`

	// Diagnostics: the request/response of the attempt the outcome came
	// from. On failure these are the LAST attempted payload and the last
	// response received, if any.
	RequestPayload  json.RawMessage `json:"request_payload,omitempty"`
	ResponsePayload json.RawMessage `json:"response_payload,omitempty"`
	Attempts        int             `json:"attempts"`
}

// ============================================================================
// QUOTE RECORD (persisted audit row)
// ============================================================================

type QuoteRecord struct {
	ID              uuid.UUID        `json:"id" db:"id"`
	Registration    string           `json:"registration" db:"registration"`
	State           string           `json:"state" db:"state"`
	Status          QuoteStatus      `json:"status" db:"status"`
	QuoteNumber     *string          `json:"quote_number,omitempty" db:"quote_number"`
	TotalPremium    *float64         `json:"total_premium,omitempty" db:"total_premium"`
	FailureCode     *QuoteFailureCode `json:"failure_code,omitempty" db:"failure_code"`
	FailureMessage  *string          `json:"failure_message,omitempty" db:"failure_message"`
	Attempts        int              `json:"attempts" db:"attempts"`
	RequestPayload  []byte           `json:"-" db:"request_payload"`
	ResponsePayload []byte           `json:"-" db:"response_payload"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
}

// ============================================================================
// API REQUEST MODELS
// ============================================================================

type GenerateQuoteRequest struct {
	Vehicle         VehicleIdentity `json:"vehicle"`
	Driver          DriverIdentity  `json:"driver"`
	PolicyStartDate string          `json:"policy_start_date"` // YYYY-MM-DD
}

type PriceFleetRequest struct {
	Vehicles []SampleVehicle `json:"vehicles"`
}
