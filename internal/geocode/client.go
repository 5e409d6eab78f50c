// Package geocode resolves a postal code to a coordinate via the
// postcodes.io API. A failed lookup at startup is fatal for the monitor,
// so the client makes no retry attempts of its own.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/yegors/skyalert/internal/geo"
	"github.com/yegors/skyalert/pkg/logger"
)

const defaultBaseURL = "https://api.postcodes.io"

// ErrNotFound is returned when the API does not know the postcode
var ErrNotFound = fmt.Errorf("postcode not found")

// Client looks up postcodes against the postcodes.io API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

// postcodeResponse mirrors the relevant parts of the postcodes.io payload
type postcodeResponse struct {
	Status int `json:"status"`
	Result struct {
		Postcode  string  `json:"postcode"`
		Longitude float64 `json:"longitude"`
		Latitude  float64 `json:"latitude"`
	} `json:"result"`
}

// NewClient creates a new geocoding client. An empty baseURL selects the
// public postcodes.io endpoint.
func NewClient(baseURL string, timeout time.Duration, loggerObj *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: loggerObj.Named("geocode"),
	}
}

// Lookup resolves a postcode to a coordinate. ErrNotFound is returned
// when the service reports an unknown postcode.
func (c *Client) Lookup(ctx context.Context, postcode string) (geo.Coordinate, error) {
	urlStr := fmt.Sprintf("%s/postcodes/%s", c.baseURL, url.PathEscape(postcode))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Resolving postcode", logger.String("postcode", postcode))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	// postcodes.io reports the outcome both in the HTTP status and in the
	// body's status field; a 404 body still decodes.
	var data postcodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return geo.Coordinate{}, fmt.Errorf("failed to parse postcode response: %w", err)
	}

	if data.Status != http.StatusOK {
		return geo.Coordinate{}, fmt.Errorf("%w: %s (status %d)", ErrNotFound, postcode, data.Status)
	}

	coord := geo.Coordinate{
		Lon: data.Result.Longitude,
		Lat: data.Result.Latitude,
	}

	c.logger.Debug("Postcode resolved",
		logger.String("postcode", data.Result.Postcode),
		logger.Float64("lat", coord.Lat),
		logger.Float64("lon", coord.Lon),
	)

	return coord, nil
}
