// Package places resolves free-text city names via the Google Places API.
package places

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the production Google Maps API host.
const DefaultBaseURL = "https://maps.googleapis.com"

// Search bias per province, roughly the provincial centroid. Biasing keeps
// ambiguous town names resolving inside the user's own province.
var provinceBias = map[string]string{
	"ec": "-32.2968402,26.419389",
	"fs": "-28.4541105,26.7967849",
	"gt": "-26.2707593,28.1122679",
	"lp": "-23.4012946,29.4179324",
	"mp": "-25.565336,30.5279096",
	"nc": "-29.0466808,21.8568586",
	"nl": "-28.5305539,30.8958242",
	"nw": "-26.6638599,25.2837585",
	"wc": "-33.2277918,21.8568586",
}

// Client wraps the Places autocomplete and details endpoints.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// IsConfigured returns true if an API key is set. Without a key the bot
// accepts location text verbatim instead of resolving it.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// Place is a resolved location.
type Place struct {
	FormattedAddress string
	Lat              float64
	Lng              float64
}

// Lookup resolves search text to a place, restricted to South Africa and
// biased toward the given province. Returns (nil, nil) when the API has no
// predictions for the text. The session token groups the autocomplete and
// details calls for billing.
func (c *Client) Lookup(searchText, sessionToken, province string) (*Place, error) {
	query := url.Values{
		"key":          {c.apiKey},
		"input":        {searchText},
		"sessiontoken": {sessionToken},
		"language":     {"en"},
		"components":   {"country:za"},
	}
	if bias, ok := provinceBias[province]; ok {
		query.Set("location", bias)
	}

	var autocomplete struct {
		Predictions []struct {
			PlaceID string `json:"place_id"`
		} `json:"predictions"`
	}
	if err := c.get("/maps/api/place/autocomplete/json", query, &autocomplete); err != nil {
		return nil, err
	}
	if len(autocomplete.Predictions) == 0 {
		return nil, nil
	}

	query = url.Values{
		"key":          {c.apiKey},
		"place_id":     {autocomplete.Predictions[0].PlaceID},
		"sessiontoken": {sessionToken},
		"language":     {"en"},
		"fields":       {"formatted_address,geometry"},
	}
	var details struct {
		Result struct {
			FormattedAddress string `json:"formatted_address"`
			Geometry         struct {
				Location struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"location"`
			} `json:"geometry"`
		} `json:"result"`
	}
	if err := c.get("/maps/api/place/details/json", query, &details); err != nil {
		return nil, err
	}

	return &Place{
		FormattedAddress: details.Result.FormattedAddress,
		Lat:              details.Result.Geometry.Location.Lat,
		Lng:              details.Result.Geometry.Location.Lng,
	}, nil
}

func (c *Client) get(path string, query url.Values, out any) error {
	fullURL := c.baseURL + path + "?" + query.Encode()

	resp, err := c.httpClient.Get(fullURL)
	if err != nil {
		return fmt.Errorf("places request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("places response read failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		log.Printf("[Places] ERROR: API returned %d: %s", resp.StatusCode, string(body))
		return fmt.Errorf("places API error %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("places response parse failed: %w", err)
	}
	return nil
}
