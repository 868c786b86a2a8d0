package models

// QuoteStatus is the persisted outcome of a quote workflow run.
type QuoteStatus string

const (
	QuoteCompleted QuoteStatus = "completed"
	QuoteFailed    QuoteStatus = "failed"
)

// QuoteFailureCode classifies a terminal workflow failure. Every failure is
// reported with one of these, never as a bare boolean.
type QuoteFailureCode string

const (
	FailureVehicleLookup     QuoteFailureCode = "VEHICLE_LOOKUP_FAILED"
	FailureNoAddressMatch    QuoteFailureCode = "NO_ADDRESS_MATCH"
	FailureAddressValidation QuoteFailureCode = "ADDRESS_VALIDATION_FAILED"
	FailureQuoteSubmission   QuoteFailureCode = "QUOTE_SUBMISSION_FAILED"
)

// AustralianStates are the jurisdictions accepted for registration lookup
// and quoting.
var AustralianStates = map[string]bool{
	"NSW": true,
	"VIC": true,
	"QLD": true,
	"SA":  true,
	"WA":  true,
	"TAS": true,
	"NT":  true,
	"ACT": true,
}
