package models

// ============================================================================
// VEHICLE
// ============================================================================

// VehicleIdentity identifies the vehicle being quoted. NVIC may be empty, in
// which case the workflow resolves it from the registration lookup before
// quoting.
type VehicleIdentity struct {
	Registration string  `json:"registration"`
	State        string  `json:"state"`
	Make         string  `json:"make"`
	Model        string  `json:"model"`
	ModelYear    int     `json:"model_year"`
	NVIC         string  `json:"nvic,omitempty"`
	MarketValue  float64 `json:"market_value"`
}

// VehicleLookupResult is the registration-lookup response from the vehicle
// data provider. Any field may be absent upstream.
type VehicleLookupResult struct {
	Make        string  `json:"make"`
	Model       string  `json:"model"`
	ModelYear   int     `json:"modelYear"`
	NVIC        string  `json:"nvic"`
	Variant     string  `json:"variant"`
	MarketValue float64 `json:"marketValue"`
}
