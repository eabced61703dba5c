package delivery

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("delivery: not found")
	ErrAlreadyAccepted = errors.New("delivery: already accepted")
	ErrNoStops         = errors.New("delivery: at least one stop is required")
	ErrStopsMismatch   = errors.New("delivery: order and stop lists must have the same length")
)

// Delivery groups one or more orders with an aligned route of stop addresses.
// OrderIDs[i] is delivered at Stops[i]. The lifecycle is a single monotone
// transition: unaccepted -> accepted, performed by an atomic conditional
// update in the repository.
type Delivery struct {
	ID          string
	Driver      string
	DurationMin int
	OrderIDs    []string
	Stops       []string
	Accepted    bool
	CreatedAt   time.Time
}

func New(id string, orderIDs, stops []string) (*Delivery, error) {
	if len(orderIDs) == 0 || len(stops) == 0 {
		return nil, ErrNoStops
	}
	if len(orderIDs) != len(stops) {
		return nil, ErrStopsMismatch
	}
	return &Delivery{
		ID:        id,
		OrderIDs:  append([]string(nil), orderIDs...),
		Stops:     append([]string(nil), stops...),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// FinalStop is the route destination; earlier stops are waypoints.
func (d *Delivery) FinalStop() string {
	return d.Stops[len(d.Stops)-1]
}

func (d *Delivery) Clone() *Delivery {
	clone := *d
	clone.OrderIDs = append([]string(nil), d.OrderIDs...)
	clone.Stops = append([]string(nil), d.Stops...)
	return &clone
}
