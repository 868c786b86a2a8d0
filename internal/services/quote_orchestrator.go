package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	json "github.com/goccy/go-json"

	"github.com/dannynerezov/motor-mutual-sub001/internal/models"
)

// QuoteOrchestrator drives the external quoting workflow: vehicle
// resolution, address search, address validation, payload assembly and
// quote submission. One call is one independent sequential pass; there is
// no state shared between calls, so concurrent use needs no coordination.
//
// The insurer's isNewVehicle field is required for some vehicles in the
// current/next model-year window and rejected for others, so submission
// walks a closed, ordered attempt list (false, true, omitted) and stops at
// the first acceptance. Every other external failure is terminal: no stage
// is ever retried with different inputs.
type QuoteOrchestrator struct {
	vehicles  IVehicleLookupService
	addresses IAddressService
	quoteAPI  IQuoteAPIService
	now       func() time.Time
}

func NewQuoteOrchestrator(
	vehicles IVehicleLookupService,
	addresses IAddressService,
	quoteAPI IQuoteAPIService,
) *QuoteOrchestrator {
	return &QuoteOrchestrator{
		vehicles:  vehicles,
		addresses: addresses,
		quoteAPI:  quoteAPI,
		now:       time.Now,
	}
}

// payloadTransform is one step of the ambiguous-field attempt list. The
// list is built up front so the bound on submission attempts is structural,
// not a loop condition.
type payloadTransform struct {
	name  string
	apply func(models.QuotePayload) models.QuotePayload
}

func withNewVehicleFlag(value bool) payloadTransform {
	return payloadTransform{
		name: fmt.Sprintf("isNewVehicle=%t", value),
		apply: func(p models.QuotePayload) models.QuotePayload {
			v := value
			p.Vehicle.IsNewVehicle = &v
			return p
		},
	}
}

func withoutNewVehicleFlag() payloadTransform {
	return payloadTransform{
		name: "isNewVehicle omitted",
		apply: func(p models.QuotePayload) models.QuotePayload {
			p.Vehicle.IsNewVehicle = nil
			return p
		},
	}
}

// GenerateQuote runs the full workflow for one vehicle/driver pair and
// returns a structured result. Business failures (lookup, address, insurer
// rejection) come back classified inside the QuoteResult; the error return
// is reserved for cancellation and invariant violations.
func (o *QuoteOrchestrator) GenerateQuote(
	ctx context.Context,
	vehicle models.VehicleIdentity,
	driver models.DriverIdentity,
	policyStart time.Time,
) (*models.QuoteResult, error) {
	slog.Info("Quote workflow started",
		"registration", vehicle.Registration,
		"state", vehicle.State,
		"nvic_known", vehicle.NVIC != "")

	// Vehicle resolution: skipped when the NVIC is already known. A lookup
	// failure is a data problem, never retried.
	if vehicle.NVIC == "" {
		lookup, err := o.vehicles.LookupVehicle(ctx, vehicle.Registration, vehicle.State)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return o.failureResult(models.FailureVehicleLookup, err, nil), nil
		}
		if lookup.NVIC == "" {
			return o.failureResult(models.FailureVehicleLookup,
				fmt.Errorf("vehicle lookup returned no NVIC for %s (%s)", vehicle.Registration, vehicle.State), nil), nil
		}
		vehicle.NVIC = lookup.NVIC
		if vehicle.Make == "" {
			vehicle.Make = lookup.Make
		}
		if vehicle.Model == "" {
			vehicle.Model = lookup.Model
		}
		if vehicle.ModelYear == 0 {
			vehicle.ModelYear = lookup.ModelYear
		}
		if vehicle.MarketValue == 0 {
			vehicle.MarketValue = lookup.MarketValue
		}
		slog.Info("Vehicle resolved", "registration", vehicle.Registration, "nvic", vehicle.NVIC)
	}

	// Address search: the first suggestion is taken as-is; ranking is the
	// provider's responsibility.
	suggestions, err := o.addresses.SuggestAddresses(ctx, driver.Address.Line)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return o.failureResult(models.FailureNoAddressMatch, err, nil), nil
	}
	if len(suggestions) == 0 {
		return o.failureResult(models.FailureNoAddressMatch,
			fmt.Errorf("no address suggestions for %q", driver.Address.Line), nil), nil
	}
	suggestion := suggestions[0]

	// Address validation: the LURN returned here is the only token the
	// insurer accepts. Without it the workflow must stop.
	addressLine := ReconstructAddressLine(suggestion)
	validated, err := o.addresses.FindAddress(ctx, suggestion.Suburb, suggestion.Postcode, suggestion.State, addressLine)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return o.failureResult(models.FailureAddressValidation, err, nil), nil
	}
	if validated == nil || validated.LURN == "" {
		return o.failureResult(models.FailureAddressValidation,
			fmt.Errorf("address validation returned no matched address for %q", addressLine), nil), nil
	}
	validated.Suggestion = suggestion
	slog.Info("Address validated",
		"registration", vehicle.Registration,
		"lurn", validated.LURN,
		"quality", validated.Quality)

	payload := o.buildPayload(vehicle, driver, validated, addressLine, policyStart)
	if payload.RiskAddress.LURN == "" {
		return nil, errors.New("assembled payload is missing the validated address reference")
	}

	result, err := o.submitWithRetry(ctx, vehicle, payload)
	if err != nil {
		return nil, err
	}
	if loc := validated.Location; loc != nil {
		result.RiskLongitude = loc.X()
		result.RiskLatitude = loc.Y()
	}
	return result, nil
}

// submitWithRetry walks the ordered attempt list. Vehicles outside the
// ambiguous model-year window get exactly one attempt.
func (o *QuoteOrchestrator) submitWithRetry(
	ctx context.Context,
	vehicle models.VehicleIdentity,
	payload models.QuotePayload,
) (*models.QuoteResult, error) {
	var transforms []payloadTransform
	if o.inAmbiguousWindow(vehicle.ModelYear) {
		transforms = []payloadTransform{
			withNewVehicleFlag(false),
			withNewVehicleFlag(true),
			withoutNewVehicleFlag(),
		}
	} else {
		transforms = []payloadTransform{withoutNewVehicleFlag()}
	}

	var lastOutcome *models.QuoteSubmissionOutcome
	for attempt, transform := range transforms {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		attemptPayload := transform.apply(payload)
		slog.Info("Submitting quote",
			"registration", vehicle.Registration,
			"attempt", attempt+1,
			"variant", transform.name)

		outcome, err := o.quoteAPI.SubmitQuote(ctx, attemptPayload)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Transport failure: not the schema ambiguity the retry list
			// exists for, so stop here.
			result := o.failureResult(models.FailureQuoteSubmission, err, lastOutcome)
			result.Attempts = attempt + 1
			if raw, marshalErr := json.Marshal(attemptPayload); marshalErr == nil {
				result.RequestPayload = raw
			}
			return result, nil
		}

		if outcome.Accepted {
			slog.Info("Quote accepted",
				"registration", vehicle.Registration,
				"quote_number", outcome.QuoteNumber,
				"attempt", attempt+1)
			return &models.QuoteResult{
				Success:         true,
				QuoteNumber:     outcome.QuoteNumber,
				BasePremium:     outcome.BasePremium,
				LineItems:       outcome.LineItems,
				TotalPremium:    outcome.TotalPremium,
				RequestPayload:  outcome.RawRequest,
				ResponsePayload: outcome.RawResponse,
				Attempts:        attempt + 1,
			}, nil
		}

		lastOutcome = outcome
	}

	result := o.failureResult(models.FailureQuoteSubmission,
		fmt.Errorf("quote submission rejected after %d attempt(s)", len(transforms)), lastOutcome)
	result.Attempts = len(transforms)
	return result, nil
}

// inAmbiguousWindow reports whether a model year falls in the rolling
// current/next calendar-year window where the isNewVehicle field is
// unreliable upstream.
func (o *QuoteOrchestrator) inAmbiguousWindow(modelYear int) bool {
	currentYear := o.now().Year()
	return modelYear == currentYear || modelYear == currentYear+1
}

// buildPayload maps the resolved inputs into the insurer's submission
// schema. Deterministic; the ambiguous field is left unset here and managed
// by the attempt list.
func (o *QuoteOrchestrator) buildPayload(
	vehicle models.VehicleIdentity,
	driver models.DriverIdentity,
	validated *models.ValidatedAddress,
	addressLine string,
	policyStart time.Time,
) models.QuotePayload {
	return models.QuotePayload{
		PolicyStartDate: policyStart.Format("2006-01-02"),
		Vehicle: models.QuoteVehiclePayload{
			NVIC:         vehicle.NVIC,
			Registration: vehicle.Registration,
			State:        vehicle.State,
			ModelYear:    vehicle.ModelYear,
			MarketValue:  vehicle.MarketValue,
		},
		Driver: models.QuoteDriverPayload{
			FirstName:   driver.FirstName,
			LastName:    driver.LastName,
			DateOfBirth: driver.DateOfBirth,
			Gender:      driver.Gender,
		},
		RiskAddress: models.QuoteAddressPayload{
			LURN:        validated.LURN,
			AddressLine: addressLine,
			Suburb:      validated.Suggestion.Suburb,
			State:       validated.Suggestion.State,
			Postcode:    validated.Suggestion.Postcode,
		},
	}
}

// failureResult builds a classified failure, carrying the last attempt's
// payload and response when one exists.
func (o *QuoteOrchestrator) failureResult(
	code models.QuoteFailureCode,
	cause error,
	lastOutcome *models.QuoteSubmissionOutcome,
) *models.QuoteResult {
	result := &models.QuoteResult{
		Success:        false,
		FailureCode:    code,
		FailureMessage: cause.Error(),
	}

	var upstream *UpstreamError
	if errors.As(cause, &upstream) {
		result.UpstreamCode = fmt.Sprintf("HTTP_%d", upstream.Status)
		result.UpstreamMessage = upstream.Message
	}

	if lastOutcome != nil {
		result.UpstreamCode = lastOutcome.UpstreamCode
		result.UpstreamMessage = lastOutcome.UpstreamMessage
		result.RequestPayload = lastOutcome.RawRequest
		result.ResponsePayload = lastOutcome.RawResponse
	}

	slog.Warn("Quote workflow failed",
		"failure_code", code,
		"message", result.FailureMessage,
		"upstream_code", result.UpstreamCode)

	return result
}
