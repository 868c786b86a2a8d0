package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/dannynerezov/motor-mutual-sub001/internal/config"
	"github.com/dannynerezov/motor-mutual-sub001/internal/models"
)

// IVehicleLookupService resolves a registration + jurisdiction to the
// vehicle's identity, including the NVIC needed for quoting.
type IVehicleLookupService interface {
	LookupVehicle(ctx context.Context, registration, state string) (*models.VehicleLookupResult, error)
}

type VehicleLookupService struct {
	cfg    config.VehicleAPIConfig
	client *http.Client
}

func NewVehicleLookupService(cfg config.VehicleAPIConfig) IVehicleLookupService {
	return &VehicleLookupService{
		cfg: cfg,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// LookupVehicle calls the registration lookup provider. Upstream failures
// come back as UpstreamError with the provider's status and message; the
// workflow treats them as data problems, not transient faults.
func (v *VehicleLookupService) LookupVehicle(ctx context.Context, registration, state string) (*models.VehicleLookupResult, error) {
	if v.cfg.APIKey == "" {
		return nil, fmt.Errorf("vehicle API key not configured")
	}

	params := url.Values{}
	params.Set("registration", registration)
	params.Set("state", state)
	endpoint := fmt.Sprintf("%s/lookup?%s", v.cfg.BaseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build vehicle lookup request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+v.cfg.APIKey)

	resp, err := v.client.Do(req)
	if err != nil {
		slog.Error("Error calling vehicle lookup API", "registration", registration, "error", err)
		return nil, fmt.Errorf("failed to call vehicle lookup API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read vehicle lookup response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.Error("Vehicle lookup API returned non-200 status",
			"registration", registration,
			"status", resp.StatusCode,
			"body", string(body))
		return nil, &UpstreamError{
			Service: "vehicle lookup API",
			Status:  resp.StatusCode,
			Message: strings.TrimSpace(string(body)),
		}
	}

	var result models.VehicleLookupResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse vehicle lookup response: %w", err)
	}

	return &result, nil
}
