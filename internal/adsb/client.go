// Package adsb fetches aircraft state vectors from the OpenSky REST API
// for a fixed bounding box.
package adsb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/yegors/skyalert/pkg/logger"
)

const (
	defaultBaseURL  = "https://opensky-network.org/api"
	defaultTokenURL = "https://auth.opensky-network.org/auth/realms/opensky-network/protocol/openid-connect/token"
)

// Client fetches state vectors from the OpenSky states/all endpoint.
// With client credentials configured it performs the OAuth2
// client_credentials flow and caches the token until shortly before
// expiry; without credentials it queries anonymously (rate-limited).
type Client struct {
	httpClient   *http.Client
	baseURL      string
	tokenURL     string
	clientID     string
	clientSecret string
	bbox         BoundingBox
	logger       *logger.Logger

	token       string
	tokenExpiry time.Time
	tokenMu     sync.Mutex
}

// NewClient creates a new OpenSky client. Empty baseURL/tokenURL select
// the public OpenSky endpoints.
func NewClient(baseURL, tokenURL, clientID, clientSecret string, bbox BoundingBox, timeout time.Duration, loggerObj *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}
	c := &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:      baseURL,
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		bbox:         bbox,
		logger:       loggerObj.Named("adsb-cli"),
	}
	if clientID == "" || clientSecret == "" {
		c.logger.Warn("No OpenSky credentials configured - proceeding as anonymous (rate limits apply)")
	}
	return c
}

// FetchStates fetches the current state vectors inside the configured
// bounding box. A non-200 response or malformed payload is an error;
// callers decide how to degrade.
func (c *Client) FetchStates(ctx context.Context) ([]StateVector, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		// Token trouble should not take the whole cycle down; fall back
		// to an anonymous request and let the API decide.
		c.logger.Warn("OpenSky token request failed, querying anonymously", logger.Error(err))
		token = ""
	}

	urlStr := fmt.Sprintf("%s/states/all?lamin=%f&lomin=%f&lamax=%f&lomax=%f",
		c.baseURL, c.bbox.LatMin, c.bbox.LonMin, c.bbox.LatMax, c.bbox.LonMax)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("Fetching OpenSky state vectors", logger.String("url", urlStr))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.Error("Unexpected OpenSky status code",
			logger.Int("status_code", resp.StatusCode),
			logger.String("body", preview))
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var payload struct {
		Time   int64           `json:"time"`
		States [][]interface{} `json:"states"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to parse OpenSky JSON: %w", err)
	}

	// "states" is null when the box is empty.
	states := make([]StateVector, 0, len(payload.States))
	for _, row := range payload.States {
		states = append(states, stateFromRow(row))
	}

	c.logger.Debug("Fetched OpenSky state vectors",
		logger.Int("state_count", len(states)),
		logger.Time("feed_time", time.Unix(payload.Time, 0)),
	)

	return states, nil
}

// ensureToken returns a cached OAuth2 access token, requesting a fresh
// one when none is held or the held one is near expiry. Returns an empty
// token without error when no credentials are configured.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	if c.clientID == "" || c.clientSecret == "" {
		return "", nil
	}

	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	c.logger.Debug("Requesting OpenSky OAuth2 token", logger.String("token_url", c.tokenURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to request token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var tokResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokResp); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokResp.AccessToken == "" {
		return "", fmt.Errorf("token response contained no access_token")
	}

	c.token = tokResp.AccessToken
	if tokResp.ExpiresIn > 60 {
		// Renew a little before the server-side expiry
		c.tokenExpiry = time.Now().Add(time.Duration(tokResp.ExpiresIn-30) * time.Second)
	} else {
		c.tokenExpiry = time.Now().Add(29 * time.Minute)
	}

	return c.token, nil
}
