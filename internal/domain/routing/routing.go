package routing

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrAddressNotFound = errors.New("routing: address not found")
	ErrNoRoute         = errors.New("routing: no route found")
	ErrNoDestinations  = errors.New("routing: destination list must not be empty")
	ErrInvalidMode     = errors.New("routing: unknown travel mode")
)

// Coordinates is an immutable geographic point.
type Coordinates struct {
	Lat float64
	Lng float64
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%g,%g", c.Lat, c.Lng)
}

// Mode is the driver's travel mode.
type Mode string

const (
	ModeDriving   Mode = "driving"
	ModeBicycling Mode = "bicycling"
	ModeWalking   Mode = "walking"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeDriving:
		return ModeDriving, nil
	case ModeBicycling:
		return ModeBicycling, nil
	case ModeWalking:
		return ModeWalking, nil
	case "":
		return ModeDriving, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// Route is the aggregate estimate for a multi-stop trip from the restaurant.
type Route struct {
	DurationMin int
	DistanceKm  float64
	Mode        Mode
}

// Planner is the external geocoding/directions collaborator.
type Planner interface {
	Geocode(ctx context.Context, address string) (Coordinates, error)
	Directions(ctx context.Context, destinations []Coordinates, mode Mode) (Route, error)
	MapsLink(destinations []Coordinates) (string, error)
}
