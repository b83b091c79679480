// Package eventstore talks to the upstream triage event store.
package eventstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

const userAgent = "rasa/covid19-healthcheckbot"

// Paths for completed-screening submissions. The education deployment posts
// to an older API version with an extended payload.
const (
	TriagePath    = "/api/v5/covid19triage/"
	TriagePathDBE = "/api/v3/covid19triage/"
)

// Client wraps event store API calls
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	maxRetries int
}

// NewClient creates a new event store API client. retries is the total
// number of attempts per call; anything below one is bumped to one.
func NewClient(baseURL, token string, retries int) *Client {
	if token == "" {
		log.Println("Warning: event store token not set")
	}
	if retries < 1 {
		retries = 1
	}

	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries: retries,
	}
}

// TriageResponse is the API response for a submitted screening.
type TriageResponse struct {
	ID      string `json:"id"`
	Profile struct {
		HCSStudyAArm string `json:"hcs_study_a_arm"`
	} `json:"profile"`
}

// OnBehalfProfile is a saved profile a guardian previously screened for.
type OnBehalfProfile struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name"`
	Age                  *int    `json:"age"`
	Gender               string  `json:"gender"`
	Province             string  `json:"province"`
	City                 string  `json:"city"`
	CityLocation         string  `json:"city_location"`
	Location             string  `json:"location"`
	School               string  `json:"school"`
	SchoolEmis           *string `json:"school_emis"`
	PreexistingCondition string  `json:"preexisting_condition"`
	Obesity              *bool   `json:"obesity"`
	Diabetes             *bool   `json:"diabetes"`
	Hypertension         *bool   `json:"hypertension"`
	Cardio               *bool   `json:"cardio"`
	Asthma               *bool   `json:"asthma"`
	TB                   *bool   `json:"tb"`
	Respiratory          *bool   `json:"respiratory"`
	Cardiac              *bool   `json:"cardiac"`
	Immuno               *bool   `json:"immuno"`
}

// doRequest performs an HTTP request with retry logic. A fresh request is
// built per attempt so the body can be re-sent.
func (c *Client) doRequest(method, path string, body []byte) ([]byte, error) {
	fullURL := c.baseURL + path
	log.Printf("[Event Store] %s %s", method, path)

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			log.Printf("[Event Store] Retry attempt %d/%d for %s %s", attempt, c.maxRetries, method, path)
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequest(method, fullURL, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Authorization", "Token "+c.token)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			log.Printf("[Event Store] ERROR: HTTP request failed (attempt %d): %v", attempt+1, err)
			lastErr = err
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			log.Printf("[Event Store] ERROR: Failed to read response body: %v", err)
			lastErr = err
			continue
		}

		// Error statuses are retried like transport failures; the store is
		// occasionally flaky and submissions must not be lost to a blip.
		if resp.StatusCode >= 400 {
			log.Printf("[Event Store] ERROR: API returned %d: %s", resp.StatusCode, string(respBody))
			lastErr = fmt.Errorf("event store error %d: %s", resp.StatusCode, string(respBody))
			continue
		}

		return respBody, nil
	}

	log.Printf("[Event Store] ERROR: Max retries (%d) exceeded for %s %s: %v", c.maxRetries, method, path, lastErr)
	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// SubmitTriage posts a completed screening to the given API path.
func (c *Client) SubmitTriage(path string, payload map[string]any) (*TriageResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode triage payload: %w", err)
	}

	respBody, err := c.doRequest("POST", path, body)
	if err != nil {
		return nil, err
	}

	var result TriageResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse triage response: %w", err)
	}

	return &result, nil
}

// GetOnBehalfProfiles lists the saved on-behalf-of profiles for a number.
func (c *Client) GetOnBehalfProfiles(msisdn string) ([]OnBehalfProfile, error) {
	path := "/api/v2/dbeonbehalfofprofile/?msisdn=" + url.QueryEscape(msisdn)

	respBody, err := c.doRequest("GET", path, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Results []OnBehalfProfile `json:"results"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse profile list: %w", err)
	}

	return result.Results, nil
}

// IsConfigured returns true if a token is set.
func (c *Client) IsConfigured() bool {
	return c.token != ""
}
