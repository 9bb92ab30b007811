// Package postal resolves U.S. ZIP codes to place, county, and state using
// the Mapbox geocoding API's postcode search.
package postal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ericrodrz/rci-service/internal/observability"
	"github.com/ericrodrz/rci-service/internal/rci"
)

// Client implements rci.Locator using the Mapbox Geocoding API.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Mapbox postcode lookup client.
func NewClient(token string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.mapbox.com/geocoding/v5/mapbox.places",
		metrics: metrics,
		logger:  logger,
	}
}

// LocateZIP resolves a five-digit ZIP to its geography. An unknown ZIP
// returns a zero Location with a nil error.
func (c *Client) LocateZIP(ctx context.Context, zip string) (rci.Location, error) {
	u := fmt.Sprintf("%s/%s.json", c.baseURL, url.PathEscape(zip))
	params := url.Values{
		"access_token": {c.token},
		"country":      {"us"},
		"types":        {"postcode"},
		"limit":        {"1"},
	}

	start := time.Now()
	loc, err := c.doRequest(ctx, u+"?"+params.Encode())
	c.metrics.GeocodeAPIDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
	case !loc.Found():
		c.metrics.GeocodeRequests.WithLabelValues("empty").Inc()
	default:
		c.metrics.GeocodeRequests.WithLabelValues("success").Inc()
	}
	return loc, err
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (rci.Location, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return rci.Location{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return rci.Location{}, fmt.Errorf("postcode lookup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return rci.Location{}, fmt.Errorf("mapbox API error: status %d: %s", resp.StatusCode, body)
	}

	var mapboxResp response
	if err := json.NewDecoder(resp.Body).Decode(&mapboxResp); err != nil {
		return rci.Location{}, fmt.Errorf("decode response: %w", err)
	}

	if len(mapboxResp.Features) == 0 {
		return rci.Location{}, nil
	}
	return locationFromFeature(mapboxResp.Features[0]), nil
}

// locationFromFeature maps the Mapbox context hierarchy onto a Location:
// "place"/"locality" entries carry the town name, "district" the county,
// "region" the state (short_code "US-XX" gives the abbreviation).
func locationFromFeature(f feature) rci.Location {
	var loc rci.Location
	for _, c := range f.Context {
		kind, _, _ := strings.Cut(c.ID, ".")
		switch kind {
		case "place":
			loc.PlaceName = c.Text
		case "locality":
			if loc.PlaceName == "" {
				loc.PlaceName = c.Text
			}
		case "district":
			loc.CountyName = c.Text
		case "region":
			loc.StateName = c.Text
			if code, ok := strings.CutPrefix(strings.ToUpper(c.ShortCode), "US-"); ok {
				loc.StateCode = code
			}
		}
	}
	return loc
}

// Mapbox API response types.

type response struct {
	Features []feature `json:"features"`
}

type feature struct {
	Text      string         `json:"text"` // the postcode itself
	PlaceName string         `json:"place_name"`
	Context   []contextEntry `json:"context"`
}

type contextEntry struct {
	ID        string `json:"id"` // e.g. "place.123", "district.45", "region.6"
	Text      string `json:"text"`
	ShortCode string `json:"short_code,omitempty"`
}
