package models

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// PRICING SCHEME
// ============================================================================

// PricingScheme is the 4-parameter piecewise-linear premium curve. Vehicles
// valued at or below FloorPoint pay FloorPrice flat; vehicles valued at or
// above CeilingPoint are not insurable at all. Schemes are created by the
// admin workflow; the engine only ever receives the active one.
type PricingScheme struct {
	ID           uuid.UUID `json:"id" db:"id"`
	FloorPrice   float64   `json:"floor_price" db:"floor_price"`
	FloorPoint   float64   `json:"floor_point" db:"floor_point"`
	CeilingPrice float64   `json:"ceiling_price" db:"ceiling_price"`
	CeilingPoint float64   `json:"ceiling_point" db:"ceiling_point"`
	Active       bool      `json:"active" db:"active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
	CreatedBy    *string   `json:"created_by,omitempty" db:"created_by"`
}

// PricingPoint is one (vehicle value, premium) sample on the curve.
type PricingPoint struct {
	VehicleValue float64 `json:"vehicle_value"`
	Premium      float64 `json:"premium"`
}

type PricingStats struct {
	MinPremium      float64 `json:"min_premium"`
	MaxPremium      float64 `json:"max_premium"`
	AvgPremium      float64 `json:"avg_premium"`
	RatePerThousand float64 `json:"rate_per_thousand"`
}

// ============================================================================
// SAMPLE FLEET (batch pricing for the comparison pages)
// ============================================================================

type SampleVehicle struct {
	Make        string  `json:"make"`
	Model       string  `json:"model"`
	ModelYear   int     `json:"model_year"`
	MarketValue float64 `json:"market_value"`
}

type SampleVehiclePrice struct {
	Vehicle  SampleVehicle `json:"vehicle"`
	Premium  float64       `json:"premium"`
	Eligible bool          `json:"eligible"`
}
