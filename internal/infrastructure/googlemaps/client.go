package googlemaps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/routing"
)

const (
	defaultBaseURL = "https://maps.googleapis.com/maps/api"
	linkBaseURL    = "https://www.google.com/maps/dir/"

	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
)

// Client implements routing.Planner against the Google Maps web APIs. All
// routes originate at the restaurant. Calls are bounded by the HTTP client
// timeout and never retried here; a failed call is the caller's to handle so
// stock-affecting flows are not silently doubled.
type Client struct {
	http       *http.Client
	baseURL    string
	apiKey     string
	restaurant routing.Coordinates
}

type Option func(*Client)

// WithBaseURL points the client at a different API host. Used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func NewClient(apiKey string, restaurant routing.Coordinates, opts ...Option) *Client {
	c := &Client{
		http:       &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		restaurant: restaurant,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

func (c *Client) Geocode(ctx context.Context, address string) (routing.Coordinates, error) {
	if strings.TrimSpace(address) == "" {
		return routing.Coordinates{}, fmt.Errorf("%w: empty address", routing.ErrAddressNotFound)
	}

	q := url.Values{}
	q.Set("address", address)
	q.Set("key", c.apiKey)

	var decoded geocodeResponse
	if err := c.getJSON(ctx, "/geocode/json", q, &decoded); err != nil {
		return routing.Coordinates{}, err
	}

	switch decoded.Status {
	case statusOK:
	case statusZeroResults:
		return routing.Coordinates{}, fmt.Errorf("%w: %q", routing.ErrAddressNotFound, address)
	default:
		return routing.Coordinates{}, fmt.Errorf("routing: geocode status %s for %q", decoded.Status, address)
	}
	if len(decoded.Results) == 0 {
		return routing.Coordinates{}, fmt.Errorf("%w: %q", routing.ErrAddressNotFound, address)
	}

	loc := decoded.Results[0].Geometry.Location
	return routing.Coordinates{Lat: loc.Lat, Lng: loc.Lng}, nil
}

type directionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		Legs []struct {
			Distance struct {
				Value int `json:"value"`
			} `json:"distance"`
			Duration struct {
				Value int `json:"value"`
			} `json:"duration"`
		} `json:"legs"`
	} `json:"routes"`
}

// Directions computes the aggregate trip from the restaurant through every
// destination; the last entry is the final stop, earlier ones are waypoints.
func (c *Client) Directions(ctx context.Context, destinations []routing.Coordinates, mode routing.Mode) (routing.Route, error) {
	if len(destinations) == 0 {
		return routing.Route{}, routing.ErrNoDestinations
	}
	if _, err := routing.ParseMode(string(mode)); err != nil {
		return routing.Route{}, err
	}

	q := url.Values{}
	q.Set("origin", c.restaurant.String())
	q.Set("destination", destinations[len(destinations)-1].String())
	if wp := waypoints(destinations); wp != "" {
		q.Set("waypoints", wp)
	}
	q.Set("mode", string(mode))
	q.Set("key", c.apiKey)

	var decoded directionsResponse
	if err := c.getJSON(ctx, "/directions/json", q, &decoded); err != nil {
		return routing.Route{}, err
	}

	switch decoded.Status {
	case statusOK:
	case statusZeroResults:
		return routing.Route{}, routing.ErrNoRoute
	default:
		return routing.Route{}, fmt.Errorf("routing: directions status %s", decoded.Status)
	}
	if len(decoded.Routes) == 0 {
		return routing.Route{}, routing.ErrNoRoute
	}

	var meters, seconds int
	for _, leg := range decoded.Routes[0].Legs {
		meters += leg.Distance.Value
		seconds += leg.Duration.Value
	}
	return routing.Route{
		DurationMin: (seconds + 30) / 60,
		DistanceKm:  float64(meters) / 1000,
		Mode:        mode,
	}, nil
}

// MapsLink builds the driver-facing deep link: restaurant origin, final stop
// as destination, every earlier stop as a waypoint.
func (c *Client) MapsLink(destinations []routing.Coordinates) (string, error) {
	if len(destinations) == 0 {
		return "", routing.ErrNoDestinations
	}
	q := url.Values{}
	q.Set("api", "1")
	q.Set("origin", c.restaurant.String())
	q.Set("destination", destinations[len(destinations)-1].String())
	if wp := waypoints(destinations); wp != "" {
		q.Set("waypoints", wp)
	}
	return linkBaseURL + "?" + q.Encode(), nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, into any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("routing: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("routing: call %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("routing: %s returned status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("routing: decode %s response: %w", path, err)
	}
	return nil
}

func waypoints(destinations []routing.Coordinates) string {
	if len(destinations) < 2 {
		return ""
	}
	parts := make([]string, 0, len(destinations)-1)
	for _, d := range destinations[:len(destinations)-1] {
		parts = append(parts, d.String())
	}
	return strings.Join(parts, "|")
}
