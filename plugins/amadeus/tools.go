package amadeus

import (
	"context"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/va6996/tripplanner/log"
	"github.com/va6996/tripplanner/models"
	"github.com/va6996/tripplanner/tools"
)

const (
	FlightToolName = "flight_search"
	HotelToolName  = "hotel_search"

	defaultFlightAdults = 1
)

// Input definitions for Amadeus tools
type FlightInput struct {
	OriginLocationCode      string `json:"originLocationCode" description:"IATA code of the departure city or airport, e.g. MAA"`
	DestinationLocationCode string `json:"destinationLocationCode" description:"IATA code of the arrival city or airport, e.g. BSL"`
	DepartureDate           string `json:"departureDate" description:"Departure date as YYYY-MM-DD"`
	Adults                  int    `json:"adults,omitempty" description:"Number of adult travellers (default 1)"`
}

type HotelInput struct {
	CityCode  string  `json:"cityCode" description:"IATA city code, e.g. BSL"`
	CheckIn   string  `json:"check_in" description:"Check-in date as YYYY-MM-DD"`
	CheckOut  string  `json:"check_out" description:"Check-out date as YYYY-MM-DD"`
	MaxBudget float64 `json:"max_budget" description:"Maximum price per night"`
	Adults    int     `json:"adults,omitempty" description:"Number of adult guests (default 2)"`
}

// FlightTool implementation
type FlightTool struct {
	Client *Client
}

func (t *FlightTool) Name() string {
	return FlightToolName
}

func (t *FlightTool) Description() string {
	return "Searches one-way flight offers between two IATA locations on a date. " +
		"Returns up to three options with airline, price, currency, departure time and duration, " +
		"plus a status of SUCCESS, NO_OFFERS_FOUND or UPSTREAM_UNAVAILABLE."
}

func (t *FlightTool) Execute(ctx context.Context, input *FlightInput) (*models.FlightSearchResult, error) {
	adults := input.Adults
	if adults <= 0 {
		adults = defaultFlightAdults
	}
	log.Debugf(ctx, "FlightTool: executing with input %+v", *input)
	return t.Client.SearchFlights(ctx, FlightQuery{
		Origin:        input.OriginLocationCode,
		Destination:   input.DestinationLocationCode,
		DepartureDate: input.DepartureDate,
		Adults:        adults,
	})
}

// NewFlightTool initializes and registers the FlightTool
func NewFlightTool(c *Client, gk *genkit.Genkit, registry *tools.Registry) *FlightTool {
	t := &FlightTool{Client: c}
	if gk == nil || registry == nil {
		return t
	}
	registry.Register(genkit.DefineTool[*FlightInput, *models.FlightSearchResult](
		gk,
		FlightToolName,
		t.Description(),
		func(ctx *ai.ToolContext, input *FlightInput) (*models.FlightSearchResult, error) {
			return t.Execute(ctx, input)
		},
	), func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		in := &FlightInput{}
		if err := tools.DecodeArgs(args, in); err != nil {
			return nil, err
		}
		return t.Execute(ctx, in)
	})
	return t
}

// HotelTool implementation
type HotelTool struct {
	Client *Client
}

func (t *HotelTool) Name() string {
	return HotelToolName
}

func (t *HotelTool) Description() string {
	return "Searches hotel offers in a city for the given check-in and check-out dates and keeps " +
		"those whose price per night is within max_budget. Ratings are illustrative, not provider data."
}

func (t *HotelTool) Execute(ctx context.Context, input *HotelInput) (*models.HotelSearchResult, error) {
	log.Debugf(ctx, "HotelTool: executing with input %+v", *input)
	return t.Client.SearchHotels(ctx, HotelQuery{
		CityCode:          input.CityCode,
		CheckIn:           input.CheckIn,
		CheckOut:          input.CheckOut,
		MaxBudgetPerNight: input.MaxBudget,
		Adults:            input.Adults,
	})
}

// NewHotelTool initializes and registers the HotelTool
func NewHotelTool(c *Client, gk *genkit.Genkit, registry *tools.Registry) *HotelTool {
	t := &HotelTool{Client: c}
	if gk == nil || registry == nil {
		return t
	}
	registry.Register(genkit.DefineTool[*HotelInput, *models.HotelSearchResult](
		gk,
		HotelToolName,
		t.Description(),
		func(ctx *ai.ToolContext, input *HotelInput) (*models.HotelSearchResult, error) {
			return t.Execute(ctx, input)
		},
	), func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		in := &HotelInput{}
		if err := tools.DecodeArgs(args, in); err != nil {
			return nil, err
		}
		return t.Execute(ctx, in)
	})
	return t
}
