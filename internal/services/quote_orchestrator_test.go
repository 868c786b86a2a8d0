package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/dannynerezov/motor-mutual-sub001/internal/models"
)

// ============================================================================
// FAKE COLLABORATORS
// ============================================================================

type fakeVehicleLookup struct {
	result *models.VehicleLookupResult
	err    error
	calls  int
}

func (f *fakeVehicleLookup) LookupVehicle(ctx context.Context, registration, state string) (*models.VehicleLookupResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeAddressService struct {
	suggestions []models.AddressSuggestion
	suggestErr  error
	validated   *models.ValidatedAddress
	findErr     error

	suggestQueries []string
	findLines      []string
}

func (f *fakeAddressService) SuggestAddresses(ctx context.Context, query string) ([]models.AddressSuggestion, error) {
	f.suggestQueries = append(f.suggestQueries, query)
	return f.suggestions, f.suggestErr
}

func (f *fakeAddressService) FindAddress(ctx context.Context, suburb, postcode, state, addressLine string) (*models.ValidatedAddress, error) {
	f.findLines = append(f.findLines, addressLine)
	return f.validated, f.findErr
}

// fakeQuoteAPI replays one scripted outcome per attempt and records every
// payload it was handed.
type fakeQuoteAPI struct {
	outcomes []*models.QuoteSubmissionOutcome
	err      error
	payloads []models.QuotePayload
}

func (f *fakeQuoteAPI) SubmitQuote(ctx context.Context, payload models.QuotePayload) (*models.QuoteSubmissionOutcome, error) {
	f.payloads = append(f.payloads, payload)
	if f.err != nil {
		return nil, f.err
	}

	index := len(f.payloads) - 1
	if index >= len(f.outcomes) {
		panic("unscripted submission attempt")
	}
	outcome := f.outcomes[index]

	// Fill in the wire bytes the real client would carry.
	raw, _ := json.Marshal(payload)
	outcome.RawRequest = raw
	if outcome.RawResponse == nil {
		outcome.RawResponse = []byte(fmt.Sprintf(`{"attempt":%d}`, index+1))
	}
	return outcome, nil
}

func rejection(code string) *models.QuoteSubmissionOutcome {
	return &models.QuoteSubmissionOutcome{
		Accepted:        false,
		UpstreamCode:    code,
		UpstreamMessage: "rejected by insurer",
	}
}

func acceptance(quoteNumber string) *models.QuoteSubmissionOutcome {
	return &models.QuoteSubmissionOutcome{
		Accepted:     true,
		QuoteNumber:  quoteNumber,
		BasePremium:  1250,
		TotalPremium: 1391.5,
		LineItems: []models.PremiumLineItem{
			{Label: "Stamp Duty", Amount: 112.5},
			{Label: "GST", Amount: 29},
		},
	}
}

func testVehicle(modelYear int, nvic string) models.VehicleIdentity {
	return models.VehicleIdentity{
		Registration: "ABC123",
		State:        "NSW",
		Make:         "Toyota",
		Model:        "Corolla",
		ModelYear:    modelYear,
		NVIC:         nvic,
		MarketValue:  42500,
	}
}

func testDriver() models.DriverIdentity {
	return models.DriverIdentity{
		FirstName:   "Dana",
		LastName:    "Wu",
		DateOfBirth: "1990-04-12",
		Gender:      "F",
		Address: models.Address{
			Line:     "12 Dale St Brookvale",
			Suburb:   "Brookvale",
			State:    "NSW",
			Postcode: "2100",
		},
	}
}

func testSuggestion() models.AddressSuggestion {
	return models.AddressSuggestion{
		StreetNumber: "12",
		StreetName:   "Dale",
		StreetType:   "St",
		Suburb:       "Brookvale",
		State:        "NSW",
		Postcode:     "2100",
	}
}

func testValidated() *models.ValidatedAddress {
	location := geom.NewPointFlat(geom.XY, []float64{151.27, -33.76})
	location.SetSRID(4326)
	return &models.ValidatedAddress{
		LURN:     "LURN-0042-XYZ",
		Quality:  1,
		Location: location,
	}
}

// newTestOrchestrator pins the clock to mid-2025, making 2025-2026 the
// ambiguous model-year window.
func newTestOrchestrator(vehicles *fakeVehicleLookup, addresses *fakeAddressService, quoteAPI *fakeQuoteAPI) *QuoteOrchestrator {
	o := NewQuoteOrchestrator(vehicles, addresses, quoteAPI)
	o.now = func() time.Time {
		return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	}
	return o
}

func happyAddressFake() *fakeAddressService {
	return &fakeAddressService{
		suggestions: []models.AddressSuggestion{testSuggestion()},
		validated:   testValidated(),
	}
}

var policyStart = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

// ============================================================================
// TEST SUITE 1: SUBMISSION RETRY POLICY
// ============================================================================

func TestGenerateQuote_OutsideWindow_ExactlyOneAttempt(t *testing.T) {
	quoteAPI := &fakeQuoteAPI{outcomes: []*models.QuoteSubmissionOutcome{rejection("ERR_DECLINED")}}
	o := newTestOrchestrator(&fakeVehicleLookup{}, happyAddressFake(), quoteAPI)

	result, err := o.GenerateQuote(context.Background(), testVehicle(2018, "NVIC01"), testDriver(), policyStart)

	require.NoError(t, err)
	require.False(t, result.Success)
	assert.Len(t, quoteAPI.payloads, 1, "model-years outside the ambiguous window get exactly one attempt")
	assert.Nil(t, quoteAPI.payloads[0].Vehicle.IsNewVehicle, "the ambiguous field is omitted outside the window")
	assert.Equal(t, models.FailureQuoteSubmission, result.FailureCode)
	assert.Equal(t, "ERR_DECLINED", result.UpstreamCode)
	assert.Equal(t, 1, result.Attempts)
}

func TestGenerateQuote_InWindow_SecondAttemptWins(t *testing.T) {
	quoteAPI := &fakeQuoteAPI{outcomes: []*models.QuoteSubmissionOutcome{
		rejection("ERR_SCHEMA"),
		acceptance("Q-20250615-77"),
		rejection("ERR_NEVER_REACHED"),
	}}
	o := newTestOrchestrator(&fakeVehicleLookup{}, happyAddressFake(), quoteAPI)

	result, err := o.GenerateQuote(context.Background(), testVehicle(2025, "NVIC01"), testDriver(), policyStart)

	require.NoError(t, err)
	require.True(t, result.Success)
	require.Len(t, quoteAPI.payloads, 2, "the workflow must stop at the first acceptance")

	// Fixed toggle order: attempt 1 sends false, attempt 2 sends true.
	require.NotNil(t, quoteAPI.payloads[0].Vehicle.IsNewVehicle)
	assert.False(t, *quoteAPI.payloads[0].Vehicle.IsNewVehicle)
	require.NotNil(t, quoteAPI.payloads[1].Vehicle.IsNewVehicle)
	assert.True(t, *quoteAPI.payloads[1].Vehicle.IsNewVehicle)

	// The result reflects attempt 2's wire payload exactly.
	expectedRaw, _ := json.Marshal(quoteAPI.payloads[1])
	assert.JSONEq(t, string(expectedRaw), string(result.RequestPayload))
	assert.Equal(t, "Q-20250615-77", result.QuoteNumber)
	assert.Equal(t, 1391.5, result.TotalPremium)
	assert.Equal(t, 2, result.Attempts)
}

func TestGenerateQuote_InWindow_AllAttemptsFail_SurfacesLastAttempt(t *testing.T) {
	quoteAPI := &fakeQuoteAPI{outcomes: []*models.QuoteSubmissionOutcome{
		rejection("ERR_FIRST"),
		rejection("ERR_SECOND"),
		rejection("ERR_THIRD"),
	}}
	o := newTestOrchestrator(&fakeVehicleLookup{}, happyAddressFake(), quoteAPI)

	result, err := o.GenerateQuote(context.Background(), testVehicle(2026, "NVIC01"), testDriver(), policyStart)

	require.NoError(t, err)
	require.False(t, result.Success)
	require.Len(t, quoteAPI.payloads, 3, "the attempt list is bounded at three")

	// Attempt 3 omits the field entirely; its payload and response are the
	// ones surfaced, not attempt 1's or 2's.
	assert.Nil(t, quoteAPI.payloads[2].Vehicle.IsNewVehicle)
	assert.Equal(t, "ERR_THIRD", result.UpstreamCode)
	expectedRaw, _ := json.Marshal(quoteAPI.payloads[2])
	assert.JSONEq(t, string(expectedRaw), string(result.RequestPayload))
	assert.Equal(t, 3, result.Attempts)
}

func TestGenerateQuote_NextModelYearIsInWindow(t *testing.T) {
	quoteAPI := &fakeQuoteAPI{outcomes: []*models.QuoteSubmissionOutcome{
		rejection("ERR_1"), rejection("ERR_2"), rejection("ERR_3"),
	}}
	o := newTestOrchestrator(&fakeVehicleLookup{}, happyAddressFake(), quoteAPI)

	_, err := o.GenerateQuote(context.Background(), testVehicle(2026, "NVIC01"), testDriver(), policyStart)

	require.NoError(t, err)
	assert.Len(t, quoteAPI.payloads, 3, "current+1 model year is inside the rolling window")
}

// ============================================================================
// TEST SUITE 2: STAGE FAILURES ARE TERMINAL
// ============================================================================

func TestGenerateQuote_VehicleLookupFailure(t *testing.T) {
	vehicles := &fakeVehicleLookup{err: &UpstreamError{Service: "vehicle lookup API", Status: 404, Message: "registration not found"}}
	quoteAPI := &fakeQuoteAPI{}
	o := newTestOrchestrator(vehicles, happyAddressFake(), quoteAPI)

	result, err := o.GenerateQuote(context.Background(), testVehicle(2018, ""), testDriver(), policyStart)

	require.NoError(t, err)
	require.False(t, result.Success)
	assert.Equal(t, models.FailureVehicleLookup, result.FailureCode)
	assert.Equal(t, "HTTP_404", result.UpstreamCode)
	assert.Equal(t, "registration not found", result.UpstreamMessage)
	assert.Equal(t, 1, vehicles.calls, "lookup failures are not retried")
	assert.Empty(t, quoteAPI.payloads, "no submission after a lookup failure")
}

func TestGenerateQuote_KnownNVICSkipsLookup(t *testing.T) {
	vehicles := &fakeVehicleLookup{err: &UpstreamError{Service: "vehicle lookup API", Status: 500, Message: "down"}}
	quoteAPI := &fakeQuoteAPI{outcomes: []*models.QuoteSubmissionOutcome{acceptance("Q-1")}}
	o := newTestOrchestrator(vehicles, happyAddressFake(), quoteAPI)

	result, err := o.GenerateQuote(context.Background(), testVehicle(2018, "NVIC01"), testDriver(), policyStart)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Zero(t, vehicles.calls, "vehicle resolution is skipped when the NVIC is already known")
}

func TestGenerateQuote_NoAddressSuggestions(t *testing.T) {
	addresses := &fakeAddressService{suggestions: []models.AddressSuggestion{}}
	quoteAPI := &fakeQuoteAPI{}
	o := newTestOrchestrator(&fakeVehicleLookup{}, addresses, quoteAPI)

	result, err := o.GenerateQuote(context.Background(), testVehicle(2018, "NVIC01"), testDriver(), policyStart)

	require.NoError(t, err)
	require.False(t, result.Success)
	assert.Equal(t, models.FailureNoAddressMatch, result.FailureCode)
	assert.Empty(t, quoteAPI.payloads)
	assert.Empty(t, addresses.findLines, "no validation after an empty suggestion list")
}

func TestGenerateQuote_AddressValidationWithoutLURN(t *testing.T) {
	addresses := &fakeAddressService{
		suggestions: []models.AddressSuggestion{testSuggestion()},
		validated:   &models.ValidatedAddress{LURN: "", Quality: 3},
	}
	quoteAPI := &fakeQuoteAPI{}
	o := newTestOrchestrator(&fakeVehicleLookup{}, addresses, quoteAPI)

	result, err := o.GenerateQuote(context.Background(), testVehicle(2018, "NVIC01"), testDriver(), policyStart)

	require.NoError(t, err)
	require.False(t, result.Success)
	assert.Equal(t, models.FailureAddressValidation, result.FailureCode)
	assert.Empty(t, quoteAPI.payloads, "a submission is never sent without a validated address reference")
}

// ============================================================================
// TEST SUITE 3: PAYLOAD ASSEMBLY
// ============================================================================

func TestGenerateQuote_PayloadCarriesValidatedAddress(t *testing.T) {
	addresses := happyAddressFake()
	quoteAPI := &fakeQuoteAPI{outcomes: []*models.QuoteSubmissionOutcome{acceptance("Q-9")}}
	o := newTestOrchestrator(&fakeVehicleLookup{}, addresses, quoteAPI)

	result, err := o.GenerateQuote(context.Background(), testVehicle(2018, "NVIC01"), testDriver(), policyStart)

	require.NoError(t, err)
	require.True(t, result.Success)
	require.Len(t, quoteAPI.payloads, 1)

	payload := quoteAPI.payloads[0]
	assert.Equal(t, "LURN-0042-XYZ", payload.RiskAddress.LURN)
	assert.Equal(t, "12 Dale St", payload.RiskAddress.AddressLine)
	assert.Equal(t, "Brookvale", payload.RiskAddress.Suburb)
	assert.Equal(t, "2100", payload.RiskAddress.Postcode)
	assert.Equal(t, "2025-07-01", payload.PolicyStartDate)
	assert.Equal(t, "NVIC01", payload.Vehicle.NVIC)

	require.Len(t, addresses.findLines, 1)
	assert.Equal(t, "12 Dale St", addresses.findLines[0], "validation receives the reconstructed street line")

	// The validated address's geocode is surfaced on the result.
	assert.Equal(t, -33.76, result.RiskLatitude)
	assert.Equal(t, 151.27, result.RiskLongitude)
}

func TestGenerateQuote_FailureResultCarriesGeocode(t *testing.T) {
	quoteAPI := &fakeQuoteAPI{outcomes: []*models.QuoteSubmissionOutcome{rejection("ERR_DECLINED")}}
	o := newTestOrchestrator(&fakeVehicleLookup{}, happyAddressFake(), quoteAPI)

	result, err := o.GenerateQuote(context.Background(), testVehicle(2018, "NVIC01"), testDriver(), policyStart)

	require.NoError(t, err)
	require.False(t, result.Success)
	assert.Equal(t, -33.76, result.RiskLatitude)
	assert.Equal(t, 151.27, result.RiskLongitude)
}

func TestGenerateQuote_ResolvedVehicleFillsMissingFields(t *testing.T) {
	vehicles := &fakeVehicleLookup{result: &models.VehicleLookupResult{
		Make:        "Mazda",
		Model:       "CX-5",
		ModelYear:   2025,
		NVIC:        "NVIC99",
		MarketValue: 38000,
	}}
	quoteAPI := &fakeQuoteAPI{outcomes: []*models.QuoteSubmissionOutcome{acceptance("Q-2")}}
	o := newTestOrchestrator(vehicles, happyAddressFake(), quoteAPI)

	vehicle := models.VehicleIdentity{Registration: "XYZ789", State: "VIC"}
	result, err := o.GenerateQuote(context.Background(), vehicle, testDriver(), policyStart)

	require.NoError(t, err)
	require.True(t, result.Success)
	require.Len(t, quoteAPI.payloads, 1)
	assert.Equal(t, "NVIC99", quoteAPI.payloads[0].Vehicle.NVIC)
	assert.Equal(t, 2025, quoteAPI.payloads[0].Vehicle.ModelYear)
	assert.Equal(t, 38000.0, quoteAPI.payloads[0].Vehicle.MarketValue)
}

func TestGenerateQuote_CancelledContext(t *testing.T) {
	quoteAPI := &fakeQuoteAPI{outcomes: []*models.QuoteSubmissionOutcome{acceptance("Q-1")}}
	o := newTestOrchestrator(&fakeVehicleLookup{}, happyAddressFake(), quoteAPI)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.GenerateQuote(ctx, testVehicle(2018, "NVIC01"), testDriver(), policyStart)

	assert.ErrorIs(t, err, context.Canceled)
}
