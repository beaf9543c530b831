package agents

import (
	"context"

	"github.com/va6996/tripplanner/models"
	"github.com/va6996/tripplanner/plugins/amadeus"
)

// Planner is the interface for trip planning
type Planner interface {
	Plan(ctx context.Context, req TripRequest) (*PlanResult, error)
}

type FlightSearcher interface {
	SearchFlights(ctx context.Context, q amadeus.FlightQuery) (*models.FlightSearchResult, error)
}

type HotelSearcher interface {
	SearchHotels(ctx context.Context, q amadeus.HotelQuery) (*models.HotelSearchResult, error)
}

// StateWriter receives each pipeline step's output under its session key.
type StateWriter interface {
	Put(ctx context.Context, sessionID, key string, value interface{}) error
}
