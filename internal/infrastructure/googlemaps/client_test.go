package googlemaps

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/routing"
)

var restaurant = routing.Coordinates{Lat: 48.050245, Lng: -1.741515}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient("test-key", restaurant, WithBaseURL(server.URL), WithHTTPClient(server.Client()))
}

func TestGeocode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geocode/json", r.URL.Path)
		assert.Equal(t, "13 Main St.", r.URL.Query().Get("address"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		fmt.Fprint(w, `{
			"status": "OK",
			"results": [{"geometry": {"location": {"lat": 48.1, "lng": -1.6}}}]
		}`)
	})

	coords, err := client.Geocode(context.Background(), "13 Main St.")
	require.NoError(t, err)
	assert.Equal(t, routing.Coordinates{Lat: 48.1, Lng: -1.6}, coords)
}

func TestGeocodeZeroResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"status": "ZERO_RESULTS", "results": []}`)
	})

	_, err := client.Geocode(context.Background(), "nowhere at all")
	assert.ErrorIs(t, err, routing.ErrAddressNotFound)
}

func TestGeocodeUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"status": "OVER_QUERY_LIMIT", "results": []}`)
	})

	_, err := client.Geocode(context.Background(), "13 Main St.")
	require.Error(t, err)
	assert.NotErrorIs(t, err, routing.ErrAddressNotFound, "quota errors are not geocoding misses")
}

func TestDirectionsSumsLegs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/directions/json", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, restaurant.String(), q.Get("origin"))
		assert.Equal(t, "48.2,-1.5", q.Get("destination"))
		assert.Equal(t, "48.1,-1.6", q.Get("waypoints"))
		assert.Equal(t, "bicycling", q.Get("mode"))
		fmt.Fprint(w, `{
			"status": "OK",
			"routes": [{"legs": [
				{"distance": {"value": 2500}, "duration": {"value": 600}},
				{"distance": {"value": 1700}, "duration": {"value": 330}}
			]}]
		}`)
	})

	route, err := client.Directions(context.Background(), []routing.Coordinates{
		{Lat: 48.1, Lng: -1.6},
		{Lat: 48.2, Lng: -1.5},
	}, routing.ModeBicycling)
	require.NoError(t, err)

	// 930 seconds rounds to 16 minutes; 4200 meters is 4.2 km.
	assert.Equal(t, 16, route.DurationMin)
	assert.InDelta(t, 4.2, route.DistanceKm, 1e-9)
	assert.Equal(t, routing.ModeBicycling, route.Mode)
}

func TestDirectionsNoRoute(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"status": "ZERO_RESULTS", "routes": []}`)
	})

	_, err := client.Directions(context.Background(), []routing.Coordinates{{Lat: 48.1, Lng: -1.6}}, routing.ModeDriving)
	assert.ErrorIs(t, err, routing.ErrNoRoute)
}

func TestDirectionsValidatesInput(t *testing.T) {
	client := NewClient("test-key", restaurant)

	_, err := client.Directions(context.Background(), nil, routing.ModeDriving)
	assert.ErrorIs(t, err, routing.ErrNoDestinations)

	_, err = client.Directions(context.Background(), []routing.Coordinates{{Lat: 1, Lng: 1}}, "teleport")
	assert.ErrorIs(t, err, routing.ErrInvalidMode)
}

func TestMapsLink(t *testing.T) {
	client := NewClient("test-key", restaurant)

	link, err := client.MapsLink([]routing.Coordinates{
		{Lat: 48.1, Lng: -1.6},
		{Lat: 48.2, Lng: -1.5},
	})
	require.NoError(t, err)

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	q := parsed.Query()
	assert.Equal(t, "1", q.Get("api"))
	assert.Equal(t, restaurant.String(), q.Get("origin"))
	assert.Equal(t, "48.2,-1.5", q.Get("destination"))
	assert.Equal(t, "48.1,-1.6", q.Get("waypoints"))

	_, err = client.MapsLink(nil)
	assert.ErrorIs(t, err, routing.ErrNoDestinations)
}
