package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateRegistration(t *testing.T) {
	for _, rego := range []string{"ABC123", "A", "XYZ789A", "1234567"} {
		ok, err := ValidateRegistration(rego)
		assert.True(t, ok, "expected %q to be valid", rego)
		assert.NoError(t, err)
	}

	for _, rego := range []string{"", "ABC 123", "ABC-123", "ABCD1234", "abc!23"} {
		ok, err := ValidateRegistration(rego)
		assert.False(t, ok, "expected %q to be rejected", rego)
		assert.Error(t, err)
	}
}

func TestValidateState(t *testing.T) {
	for _, state := range []string{"NSW", "VIC", "QLD", "SA", "WA", "TAS", "NT", "ACT"} {
		ok, err := ValidateState(state)
		assert.True(t, ok)
		assert.NoError(t, err)
	}

	for _, state := range []string{"", "nsw", "NZ", "NEW SOUTH WALES"} {
		ok, err := ValidateState(state)
		assert.False(t, ok, "expected %q to be rejected", state)
		assert.Error(t, err)
	}
}

func TestValidatePostcode(t *testing.T) {
	ok, err := ValidatePostcode("2100")
	assert.True(t, ok)
	assert.NoError(t, err)

	for _, postcode := range []string{"", "210", "21000", "2O00"} {
		ok, err := ValidatePostcode(postcode)
		assert.False(t, ok, "expected %q to be rejected", postcode)
		assert.Error(t, err)
	}
}

func TestValidateDateOfBirth(t *testing.T) {
	adult := time.Now().AddDate(-30, 0, 0).Format("2006-01-02")
	ok, err := ValidateDateOfBirth(adult)
	assert.True(t, ok)
	assert.NoError(t, err)

	tooYoung := time.Now().AddDate(-15, 0, 0).Format("2006-01-02")
	ok, err = ValidateDateOfBirth(tooYoung)
	assert.False(t, ok)
	assert.Error(t, err)

	ok, err = ValidateDateOfBirth("12/04/1990")
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestValidatePolicyStartDate(t *testing.T) {
	today := time.Now().UTC().Format("2006-01-02")
	ok, err := ValidatePolicyStartDate(today)
	assert.True(t, ok, "today must be an allowed start date")
	assert.NoError(t, err)

	future := time.Now().UTC().AddDate(0, 1, 0).Format("2006-01-02")
	ok, err = ValidatePolicyStartDate(future)
	assert.True(t, ok)
	assert.NoError(t, err)

	past := time.Now().UTC().AddDate(0, 0, -2).Format("2006-01-02")
	ok, err = ValidatePolicyStartDate(past)
	assert.False(t, ok)
	assert.Error(t, err)

	ok, err = ValidatePolicyStartDate("01-07-2025")
	assert.False(t, ok)
	assert.Error(t, err)
}
