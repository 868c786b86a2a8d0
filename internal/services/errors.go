package services

import "fmt"

// InvalidSchemeError reports a pricing scheme whose parameters produce an
// undefined slope. Admin-validated schemes should never trip this; it is a
// precondition guard, not a business case.
type InvalidSchemeError struct {
	Reason string
}

func (e *InvalidSchemeError) Error() string {
	return fmt.Sprintf("invalid pricing scheme: %s", e.Reason)
}

// VehicleIneligibleError reports a vehicle valued at or above the scheme
// ceiling. The product does not price such vehicles at all; the ceiling is
// carried for display.
type VehicleIneligibleError struct {
	VehicleValue float64
	CeilingPoint float64
}

func (e *VehicleIneligibleError) Error() string {
	return fmt.Sprintf("vehicle value %.2f is at or above the insurable ceiling of %.2f", e.VehicleValue, e.CeilingPoint)
}

// UpstreamError reports a non-success response from one of the external
// collaborators, keeping the upstream status and message for diagnostics.
type UpstreamError struct {
	Service string
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.Status, e.Message)
}
