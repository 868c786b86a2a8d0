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
	"github.com/twpayne/go-geom"

	"github.com/dannynerezov/motor-mutual-sub001/internal/config"
	"github.com/dannynerezov/motor-mutual-sub001/internal/models"
)

// IAddressService is the address provider contract: free-text suggestion
// search plus find/confirm against the authoritative address database.
type IAddressService interface {
	SuggestAddresses(ctx context.Context, query string) ([]models.AddressSuggestion, error)
	FindAddress(ctx context.Context, suburb, postcode, state, addressLine string) (*models.ValidatedAddress, error)
}

type AddressService struct {
	cfg    config.AddressAPIConfig
	client *http.Client
}

func NewAddressService(cfg config.AddressAPIConfig) IAddressService {
	return &AddressService{
		cfg: cfg,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type suggestionResponse struct {
	Completions []models.AddressSuggestion `json:"completions"`
}

type findResponse struct {
	MatchedAddress *struct {
		LURN      string  `json:"lurn"`
		Quality   int     `json:"quality"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"matchedAddress"`
}

// SuggestAddresses returns the provider's candidate list for a free-text
// address line. An empty list is a valid response, not an error.
func (a *AddressService) SuggestAddresses(ctx context.Context, query string) ([]models.AddressSuggestion, error) {
	params := url.Values{}
	params.Set("query", query)
	endpoint := fmt.Sprintf("%s/suggest?%s", a.cfg.BaseURL, params.Encode())

	body, err := a.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var parsed suggestionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse address suggestions: %w", err)
	}

	return parsed.Completions, nil
}

// FindAddress confirms a reconstructed address line against the address
// database. A response without a matched address returns nil.
func (a *AddressService) FindAddress(ctx context.Context, suburb, postcode, state, addressLine string) (*models.ValidatedAddress, error) {
	params := url.Values{}
	params.Set("addressLine", addressLine)
	params.Set("suburb", suburb)
	params.Set("postcode", postcode)
	params.Set("state", state)
	endpoint := fmt.Sprintf("%s/find?%s", a.cfg.BaseURL, params.Encode())

	body, err := a.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var parsed findResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse address match: %w", err)
	}
	if parsed.MatchedAddress == nil {
		return nil, nil
	}

	location := geom.NewPointFlat(geom.XY, []float64{parsed.MatchedAddress.Longitude, parsed.MatchedAddress.Latitude})
	location.SetSRID(4326)

	return &models.ValidatedAddress{
		LURN:     parsed.MatchedAddress.LURN,
		Quality:  parsed.MatchedAddress.Quality,
		Location: location,
	}, nil
}

func (a *AddressService) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build address request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)

	resp, err := a.client.Do(req)
	if err != nil {
		slog.Error("Error calling address API", "error", err)
		return nil, fmt.Errorf("failed to call address API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read address API response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.Error("Address API returned non-200 status", "status", resp.StatusCode, "body", string(body))
		return nil, &UpstreamError{
			Service: "address API",
			Status:  resp.StatusCode,
			Message: strings.TrimSpace(string(body)),
		}
	}

	return body, nil
}

// ReconstructAddressLine rebuilds the street line from a suggestion's
// structured breakdown, prefixing the unit designator when present:
// "{unit}/{streetNumber} {streetName} {streetType}". This is the single
// canonical format used for address validation.
func ReconstructAddressLine(sug models.AddressSuggestion) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{sug.StreetNumber, sug.StreetName, sug.StreetType} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	line := strings.Join(parts, " ")
	if sug.UnitNumber != "" {
		return fmt.Sprintf("%s/%s", sug.UnitNumber, line)
	}
	return line
}
