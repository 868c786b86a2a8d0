package services

import (
	"fmt"
	"iter"
	"math"

	"github.com/dannynerezov/motor-mutual-sub001/internal/models"
)

// statsSampleStep is the vehicle-value increment used when sampling the
// curve for aggregate statistics.
const statsSampleStep = 1000.0

// PricingService computes premiums from a piecewise-linear pricing scheme.
// Pure calculation, no I/O; safe for concurrent use.
type PricingService struct{}

func NewPricingService() *PricingService {
	return &PricingService{}
}

// ValidateScheme rejects schemes with an undefined or inverted slope.
func (s *PricingService) ValidateScheme(scheme models.PricingScheme) error {
	if scheme.CeilingPoint <= scheme.FloorPoint {
		return &InvalidSchemeError{
			Reason: fmt.Sprintf("ceiling point %.2f must be greater than floor point %.2f", scheme.CeilingPoint, scheme.FloorPoint),
		}
	}
	if scheme.CeilingPrice < scheme.FloorPrice {
		return &InvalidSchemeError{
			Reason: fmt.Sprintf("ceiling price %.2f must not be below floor price %.2f", scheme.CeilingPrice, scheme.FloorPrice),
		}
	}
	return nil
}

// CalculateBasePremium returns the annual premium for a vehicle value.
// Values at or below the floor point pay the floor price flat; values at or
// above the ceiling point are not insurable and return
// VehicleIneligibleError; in between the premium is linearly interpolated
// and rounded to cents.
func (s *PricingService) CalculateBasePremium(vehicleValue float64, scheme models.PricingScheme) (float64, error) {
	if err := s.ValidateScheme(scheme); err != nil {
		return 0, err
	}

	if vehicleValue <= scheme.FloorPoint {
		return scheme.FloorPrice, nil
	}
	if vehicleValue >= scheme.CeilingPoint {
		return 0, &VehicleIneligibleError{
			VehicleValue: vehicleValue,
			CeilingPoint: scheme.CeilingPoint,
		}
	}

	slope, _ := s.slopeIntercept(scheme)
	premium := scheme.FloorPrice + slope*(vehicleValue-scheme.FloorPoint)
	return roundToCents(premium), nil
}

// GeneratePricingEquation renders the interpolation band as a linear
// equation for display. It shares the slope/intercept computation with
// CalculateBasePremium so the displayed equation and the computed premium
// can never disagree.
func (s *PricingService) GeneratePricingEquation(scheme models.PricingScheme) (string, error) {
	if err := s.ValidateScheme(scheme); err != nil {
		return "", err
	}

	slope, intercept := s.slopeIntercept(scheme)
	operator := "+"
	if intercept < 0 {
		operator = "-"
	}
	return fmt.Sprintf("premium = %.6f * value %s %.2f", slope, operator, math.Abs(intercept)), nil
}

// GeneratePricingDataPoints yields (vehicle value, premium) samples from
// start to end at fixed increments. The sequence is restartable and stops
// before the first ineligible value: no point is ever yielded at or beyond
// the ceiling point.
func (s *PricingService) GeneratePricingDataPoints(scheme models.PricingScheme, start, end, step float64) (iter.Seq2[float64, float64], error) {
	if err := s.ValidateScheme(scheme); err != nil {
		return nil, err
	}
	if step <= 0 {
		return nil, fmt.Errorf("step must be positive: %.2f", step)
	}

	return func(yield func(float64, float64) bool) {
		for value := start; value <= end; value += step {
			if value >= scheme.CeilingPoint {
				return
			}
			premium, err := s.CalculateBasePremium(value, scheme)
			if err != nil {
				return
			}
			if !yield(value, premium) {
				return
			}
		}
	}, nil
}

// GetPricingStats summarises the scheme for the comparison dashboard.
func (s *PricingService) GetPricingStats(scheme models.PricingScheme) (models.PricingStats, error) {
	points, err := s.GeneratePricingDataPoints(scheme, scheme.FloorPoint, scheme.CeilingPoint, statsSampleStep)
	if err != nil {
		return models.PricingStats{}, err
	}

	var sum float64
	var count int
	for _, premium := range points {
		sum += premium
		count++
	}

	avg := 0.0
	if count > 0 {
		avg = roundToCents(sum / float64(count))
	}

	slope, _ := s.slopeIntercept(scheme)
	return models.PricingStats{
		MinPremium:      scheme.FloorPrice,
		MaxPremium:      scheme.CeilingPrice,
		AvgPremium:      avg,
		RatePerThousand: slope * 1000,
	}, nil
}

// slopeIntercept is the single source of the interpolation line. Callers
// must have validated the scheme first.
func (s *PricingService) slopeIntercept(scheme models.PricingScheme) (slope, intercept float64) {
	slope = (scheme.CeilingPrice - scheme.FloorPrice) / (scheme.CeilingPoint - scheme.FloorPoint)
	intercept = scheme.FloorPrice - slope*scheme.FloorPoint
	return slope, intercept
}

// roundToCents rounds half away from zero to 2 decimal places, the standard
// currency rounding.
func roundToCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}
