// Package models holds the normalized flight, hotel and itinerary shapes
// returned by the travel tools and stored in session state.
package models

// SearchStatus tells the caller why a result list looks the way it does,
// so "the provider is down" is not confused with "nothing matched".
type SearchStatus string

const (
	StatusSuccess             SearchStatus = "SUCCESS"
	StatusNoOffersFound       SearchStatus = "NO_OFFERS_FOUND"
	StatusUpstreamUnavailable SearchStatus = "UPSTREAM_UNAVAILABLE"
)

// FlightOption is one normalized flight offer.
type FlightOption struct {
	// FlightID is a display placeholder (AMADEUS-NNN). It is random per call
	// and not unique; use OfferID to refer back to the upstream offer.
	FlightID      string  `json:"flight_id"`
	OfferID       string  `json:"offer_id,omitempty"`
	Airline       string  `json:"airline" description:"IATA carrier code"`
	Price         float64 `json:"price" description:"Total price as returned by the provider"`
	Currency      string  `json:"currency,omitempty"`
	DepartureTime string  `json:"departure_time" description:"Local departure time, HH:MM"`
	Duration      string  `json:"duration" description:"Total travel time, e.g. 10h30m"`
}

// FlightSearchResult is the outcome of a flight search. Options is never nil
// and holds at most the configured flight limit, in provider order.
type FlightSearchResult struct {
	Status  SearchStatus   `json:"status"`
	Options []FlightOption `json:"options"`
	Error   string         `json:"error,omitempty"`
}

// HotelOption is one normalized hotel offer.
type HotelOption struct {
	HotelID       string  `json:"hotel_id,omitempty"`
	Name          string  `json:"name"`
	PricePerNight float64 `json:"price_per_night"`
	Currency      string  `json:"currency,omitempty"`
	Nights        int     `json:"nights"`
	// Rating is synthesized, not sourced from the provider; RatingSynthetic marks it.
	Rating           float64  `json:"rating"`
	RatingSynthetic  bool     `json:"rating_synthetic"`
	AmenitiesSummary string   `json:"amenities_summary"`
	DistanceToCenter *float64 `json:"distance_to_center,omitempty" description:"Kilometres from the city centre"`
}

// HotelSearchResult is the outcome of a hotel search. Options is never nil and
// every entry satisfies the caller's nightly budget.
type HotelSearchResult struct {
	Status             SearchStatus  `json:"status"`
	Options            []HotelOption `json:"options"`
	ExcludedOverBudget int           `json:"excluded_over_budget"`
	Error              string        `json:"error,omitempty"`
}

// NewFlightSearchResult returns an empty result with the given status.
func NewFlightSearchResult(status SearchStatus) *FlightSearchResult {
	return &FlightSearchResult{Status: status, Options: []FlightOption{}}
}

// NewHotelSearchResult returns an empty result with the given status.
func NewHotelSearchResult(status SearchStatus) *HotelSearchResult {
	return &HotelSearchResult{Status: status, Options: []HotelOption{}}
}

// DailyActivity is a single activity planned for a day.
type DailyActivity struct {
	Time          string  `json:"time" description:"Suggested time for the activity, e.g. 10:00 AM"`
	Description   string  `json:"description" description:"The attraction or activity"`
	EstimatedCost float64 `json:"estimated_cost" description:"Estimated cost or entry fee"`
}

// DailyPlan is the plan for one day of the trip.
type DailyPlan struct {
	DayNumber  int             `json:"day_number"`
	Theme      string          `json:"theme" description:"Short theme for the day, e.g. Cultural Immersion"`
	Activities []DailyActivity `json:"activities"`
}

// ItineraryPlanResult is the structure the LLM is asked to fill in.
// Nothing in this module populates it from provider data.
type ItineraryPlanResult struct {
	City       string      `json:"city"`
	TotalDays  int         `json:"total_days"`
	DailyPlans []DailyPlan `json:"daily_plans"`
}
