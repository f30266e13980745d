// Package careportal provides a client for the Nightscout-compatible
// care portal API that records treatments, basal state and device status
package careportal

import (
	"context"
	"crypto/sha1" //nolint:gosec // Required for care portal API secret hashing (legacy API requirement)
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nocturne-care/insulin-engine/internal/models"
)

const defaultTimeout = 30 * time.Second

// Client handles communication with the care portal API
type Client struct {
	baseURL    string
	apiSecret  string
	apiToken   string
	useToken   bool
	httpClient *http.Client
}

// NewClient creates a new care portal client
func NewClient(baseURL, apiSecret, apiToken string, useToken bool, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiSecret: apiSecret,
		apiToken:  apiToken,
		useToken:  useToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// hashSecret generates SHA1 hash of the API secret
// Note: SHA1 is required for care portal API compatibility
func hashSecret(secret string) string {
	hasher := sha1.New() //nolint:gosec // Required for care portal API
	hasher.Write([]byte(secret))
	return hex.EncodeToString(hasher.Sum(nil))
}

// buildRequest creates an HTTP request with proper authentication
func (c *Client) buildRequest(ctx context.Context, method, endpoint string, params url.Values) (*http.Request, error) {
	fullURL := c.baseURL + endpoint
	if params != nil {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	// Add authentication
	if c.useToken && c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	} else if c.apiSecret != "" {
		req.Header.Set("API-SECRET", hashSecret(c.apiSecret))
	}

	return req, nil
}

// doRequest executes an HTTP request and returns the response body
func (c *Client) doRequest(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// rangeParams builds the find[date] query for a half-open window.
func rangeParams(from, to time.Time) url.Values {
	params := url.Values{}
	if !from.IsZero() {
		params.Set("find[date][$gte]", fmt.Sprintf("%d", from.UnixMilli()))
	}
	if !to.IsZero() {
		params.Set("find[date][$lt]", fmt.Sprintf("%d", to.UnixMilli()))
	}
	return params
}

// GetTreatments retrieves insulin dose events in [from, to)
func (c *Client) GetTreatments(ctx context.Context, from, to time.Time) ([]models.DoseEvent, error) {
	req, err := c.buildRequest(ctx, "GET", "/api/v1/treatments", rangeParams(from, to))
	if err != nil {
		return nil, err
	}

	body, err := c.doRequest(req)
	if err != nil {
		return nil, err
	}

	var doses []models.DoseEvent
	if err := json.Unmarshal(body, &doses); err != nil {
		return nil, fmt.Errorf("parsing treatments: %w", err)
	}

	return doses, nil
}

// GetBasalIntervals retrieves the basal delivery timeline covering [from, to)
func (c *Client) GetBasalIntervals(ctx context.Context, from, to time.Time) ([]models.BasalInterval, error) {
	params := url.Values{}
	if !from.IsZero() {
		params.Set("find[startDate][$lt]", fmt.Sprintf("%d", to.UnixMilli()))
		params.Set("find[endDate][$gte]", fmt.Sprintf("%d", from.UnixMilli()))
	}

	req, err := c.buildRequest(ctx, "GET", "/api/v1/basal", params)
	if err != nil {
		return nil, err
	}

	body, err := c.doRequest(req)
	if err != nil {
		return nil, err
	}

	var intervals []models.BasalInterval
	if err := json.Unmarshal(body, &intervals); err != nil {
		return nil, fmt.Errorf("parsing basal intervals: %w", err)
	}

	return intervals, nil
}

// GetDeviceStatuses retrieves device status snapshots reported since the
// given time
func (c *Client) GetDeviceStatuses(ctx context.Context, since time.Time) ([]models.DeviceStatus, error) {
	params := url.Values{}
	if !since.IsZero() {
		params.Set("find[date][$gte]", fmt.Sprintf("%d", since.UnixMilli()))
	}

	req, err := c.buildRequest(ctx, "GET", "/api/v1/devicestatus", params)
	if err != nil {
		return nil, err
	}

	body, err := c.doRequest(req)
	if err != nil {
		return nil, err
	}

	var statuses []models.DeviceStatus
	if err := json.Unmarshal(body, &statuses); err != nil {
		return nil, fmt.Errorf("parsing device statuses: %w", err)
	}

	return statuses, nil
}

// ServerStatus represents the care portal server status
type ServerStatus struct {
	Status  string `json:"status"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// GetStatus retrieves the care portal server status
func (c *Client) GetStatus(ctx context.Context) (*ServerStatus, error) {
	req, err := c.buildRequest(ctx, "GET", "/api/v1/status", nil)
	if err != nil {
		return nil, err
	}

	body, err := c.doRequest(req)
	if err != nil {
		return nil, err
	}

	var status ServerStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("parsing status: %w", err)
	}

	return &status, nil
}

// TestConnection tests if the connection to the care portal works
func (c *Client) TestConnection(ctx context.Context) error {
	_, err := c.GetStatus(ctx)
	return err
}
