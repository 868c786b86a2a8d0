package services

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/dannynerezov/motor-mutual-sub001/internal/models"
	"github.com/dannynerezov/motor-mutual-sub001/internal/worker"
)

// FleetPricingService prices a catalogue of sample vehicles in one batch
// for the comparison pages. The engine is pure, so the batch fans out over
// a worker pool.
type FleetPricingService struct {
	pricing    *PricingService
	numWorkers int
}

func NewFleetPricingService(pricing *PricingService, numWorkers int) *FleetPricingService {
	if numWorkers <= 0 {
		numWorkers = 4
	}
	return &FleetPricingService{
		pricing:    pricing,
		numWorkers: numWorkers,
	}
}

// PriceSampleFleet prices every vehicle in the fleet against the scheme.
// Ineligible vehicles (value at or above the ceiling) come back with
// Eligible=false rather than failing the batch.
func (s *FleetPricingService) PriceSampleFleet(
	ctx context.Context,
	scheme models.PricingScheme,
	fleet []models.SampleVehicle,
) ([]models.SampleVehiclePrice, error) {
	if err := s.pricing.ValidateScheme(scheme); err != nil {
		return nil, err
	}
	if len(fleet) == 0 {
		return []models.SampleVehiclePrice{}, nil
	}

	pool := worker.NewWorkingPool(s.numWorkers, len(fleet))
	poolCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var managerWg sync.WaitGroup
	managerWg.Add(1)
	go pool.Start(poolCtx, &managerWg)

	results := make(chan models.SampleVehiclePrice, len(fleet))
	submitted := 0
	for _, vehicle := range fleet {
		vehicle := vehicle
		err := pool.SubmitJob(ctx, func(context.Context) error {
			priced := models.SampleVehiclePrice{Vehicle: vehicle}
			premium, err := s.pricing.CalculateBasePremium(vehicle.MarketValue, scheme)
			if err != nil {
				var ineligible *VehicleIneligibleError
				if !errors.As(err, &ineligible) {
					results <- priced
					return err
				}
				// Ineligible stays in the output with no premium.
				results <- priced
				return nil
			}
			priced.Premium = premium
			priced.Eligible = true
			results <- priced
			return nil
		})
		if err != nil {
			break
		}
		submitted++
	}
	pool.Close()

	if submitted < len(fleet) {
		cancel()
		managerWg.Wait()
		return nil, ctx.Err()
	}

	priced := make([]models.SampleVehiclePrice, 0, len(fleet))
	for range fleet {
		select {
		case p := <-results:
			priced = append(priced, p)
		case <-ctx.Done():
			cancel()
			managerWg.Wait()
			return nil, ctx.Err()
		}
	}

	cancel()
	managerWg.Wait()

	sort.Slice(priced, func(i, j int) bool {
		return priced[i].Vehicle.MarketValue < priced[j].Vehicle.MarketValue
	})
	return priced, nil
}
