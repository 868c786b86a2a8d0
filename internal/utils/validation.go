package utils

import (
	"fmt"
	"regexp"
	"time"

	"github.com/dannynerezov/motor-mutual-sub001/internal/models"
)

// ValidationError reports a rejected request field. Handlers match on it to
// classify the failure as a client error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var regoPattern = regexp.MustCompile(`^[A-Za-z0-9]{1,7}$`)

// ValidateRegistration checks an Australian number-plate format: 1-7
// alphanumeric characters, no spaces or punctuation.
func ValidateRegistration(rego string) (bool, error) {
	if !regoPattern.MatchString(rego) {
		return false, fmt.Errorf("registration format incorrect")
	}
	return true, nil
}

func ValidateState(state string) (bool, error) {
	if !models.AustralianStates[state] {
		return false, fmt.Errorf("unknown state/territory: %s", state)
	}
	return true, nil
}

var postcodePattern = regexp.MustCompile(`^[0-9]{4}$`)

func ValidatePostcode(postcode string) (bool, error) {
	if !postcodePattern.MatchString(postcode) {
		return false, fmt.Errorf("postcode must be 4 digits")
	}
	return true, nil
}

// ValidateDateOfBirth expects YYYY-MM-DD and requires the driver to be at
// least 16 years old at the time of the check.
func ValidateDateOfBirth(dob string) (bool, error) {
	parsed, err := time.Parse("2006-01-02", dob)
	if err != nil {
		return false, fmt.Errorf("date of birth must be YYYY-MM-DD: %w", err)
	}
	if parsed.After(time.Now().AddDate(-16, 0, 0)) {
		return false, fmt.Errorf("driver must be at least 16 years old")
	}
	return true, nil
}

// ValidatePolicyStartDate expects YYYY-MM-DD; the start date may not be in
// the past (today is allowed).
func ValidatePolicyStartDate(date string) (bool, error) {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false, fmt.Errorf("policy start date must be YYYY-MM-DD: %w", err)
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if parsed.Before(today) {
		return false, fmt.Errorf("policy start date cannot be in the past")
	}
	return true, nil
}
