package models

import (
	"github.com/twpayne/go-geom"
)

// ============================================================================
// DRIVER & ADDRESS
// ============================================================================

type DriverIdentity struct {
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	DateOfBirth string  `json:"date_of_birth"` // YYYY-MM-DD
	Gender      string  `json:"gender"`
	Address     Address `json:"address"`
}

// Address is the driver's residential address as collected from the intake
// form. Line is the free-form street line used for suggestion search.
type Address struct {
	Line     string `json:"line"`
	Unit     string `json:"unit,omitempty"`
	Suburb   string `json:"suburb"`
	State    string `json:"state"`
	Postcode string `json:"postcode"`
}

// AddressSuggestion is one candidate from the address suggestion service,
// with the upstream structured breakdown.
type AddressSuggestion struct {
	UnitType     string `json:"unitType"`
	UnitNumber   string `json:"unitNumber"`
	StreetNumber string `json:"streetNumber"`
	StreetName   string `json:"streetName"`
	StreetType   string `json:"streetType"`
	Suburb       string `json:"suburb"`
	State        string `json:"state"`
	Postcode     string `json:"postcode"`
}

// ValidatedAddress is an address that has been confirmed against the
// authoritative address database. LURN is the opaque reference token the
// quote submission requires; an address without one must never be submitted.
type ValidatedAddress struct {
	LURN       string            `json:"lurn"`
	Quality    int               `json:"quality"`
	Suggestion AddressSuggestion `json:"suggestion"`
	Location   *geom.Point       `json:"-"`
}
