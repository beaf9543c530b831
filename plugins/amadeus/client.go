package amadeus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/firebase/genkit/go/genkit"
	"github.com/va6996/tripplanner/config"
	"github.com/va6996/tripplanner/log"
	"github.com/va6996/tripplanner/tools"
)

const (
	BaseURLTest       = "https://test.api.amadeus.com"
	BaseURLProduction = "https://api.amadeus.com"

	flightOffersPath = "/v2/shopping/flight-offers"
	hotelsByCityPath = "/v1/reference-data/locations/hotels/by-city"
	hotelOffersPath  = "/v3/shopping/hotel-offers"
)

// maxErrorBody caps how much of a failed response body is kept for logs.
const maxErrorBody = 512

// Client is the Amadeus self-service API client. It holds no per-search state;
// concurrent searches on one Client are independent.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenProvider
	Limits     struct {
		Flight int
		Hotel  int
	}

	// Sources of the synthetic fields, swappable in tests.
	randIntN  func(n int) int
	randFloat func() float64

	FlightTool *FlightTool
	HotelTool  *HotelTool
}

// NewClient creates a client from explicit configuration and, when gk and
// registry are non-nil, registers the flight_search and hotel_search tools.
func NewClient(cfg config.AmadeusConfig, gk *genkit.Genkit, registry *tools.Registry) (*Client, error) {
	if !cfg.HasCredentials() {
		return nil, fmt.Errorf("amadeus client id and secret are required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = BaseURLTest
		if cfg.Production {
			baseURL = BaseURLProduction
		}
	}
	baseURL = strings.TrimRight(baseURL, "/")

	httpClient := &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}

	c := &Client{
		BaseURL:    baseURL,
		HTTPClient: httpClient,
		Tokens:     NewClientCredentials(cfg.ClientID, cfg.ClientSecret, baseURL, httpClient, cfg.CacheToken),
		randIntN:   rand.IntN,
		randFloat:  rand.Float64,
	}
	c.Limits.Flight = min(positiveOr(cfg.FlightLimit, config.MaxFlightLimit), config.MaxFlightLimit)
	c.Limits.Hotel = min(positiveOr(cfg.HotelLimit, config.MaxHotelLimit), config.MaxHotelLimit)

	c.initTools(gk, registry)
	return c, nil
}

func (c *Client) initTools(gk *genkit.Genkit, registry *tools.Registry) {
	c.FlightTool = NewFlightTool(c, gk, registry)
	c.HotelTool = NewHotelTool(c, gk, registry)
}

// getJSON acquires a fresh token and decodes a GET response into out.
// Failures come back as *AuthError or *SearchError.
func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	token, err := c.Tokens.Acquire(ctx)
	if err != nil {
		return err
	}

	u := c.BaseURL + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &SearchError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &SearchError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &SearchError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &SearchError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func logUpstreamFailure(ctx context.Context, op string, err error) {
	var se *SearchError
	if errors.As(err, &se) && se.Body != "" {
		log.WithField(ctx, "body", se.Body).Errorf("%s: %v", op, err)
		return
	}
	log.Errorf(ctx, "%s: %v", op, err)
}

// syntheticFlightID mimics a provider-looking id; it carries no information.
func (c *Client) syntheticFlightID() string {
	return fmt.Sprintf("AMADEUS-%d", 100+c.randIntN(900))
}

// syntheticRating is uniform in [3.0, 5.0).
func (c *Client) syntheticRating() float64 {
	return 3.0 + 2.0*c.randFloat()
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
