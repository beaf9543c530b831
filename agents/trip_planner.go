package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	reqctx "github.com/va6996/tripplanner/context"
	"github.com/va6996/tripplanner/log"
	"github.com/va6996/tripplanner/models"
	"github.com/va6996/tripplanner/plugins/amadeus"
	"github.com/va6996/tripplanner/plugins/core"
	"github.com/va6996/tripplanner/plugins/itinerary"
	"github.com/va6996/tripplanner/session"
	"github.com/va6996/tripplanner/tools"
)

const itinerarySystemPrompt = `You are an expert itinerary planner. Your task is to generate a comprehensive daily plan.
Combine what you know about the destination with the flight and hotel details provided.
Call the itinerary_generator tool to get the plan structure, and use date_tool if you need to resolve dates.
Answer with the filled ItineraryPlanResult as JSON. Cover the requested number of days and include
specific times, descriptions and estimated costs.`

const summarySystemPrompt = `You are a professional trip planning assistant.
Present the flight and hotel results clearly and briefly, then the itinerary.
Never make up flights or hotels that are not in the data. If a search status is UPSTREAM_UNAVAILABLE,
say the provider could not be reached; if it is NO_OFFERS_FOUND, say nothing matched.`

// TripRequest is a structured trip planning request.
type TripRequest struct {
	SessionID     string `json:"session_id,omitempty"`
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departure_date"`
	// CheckIn defaults to DepartureDate.
	CheckIn           string  `json:"check_in,omitempty"`
	CheckOut          string  `json:"check_out"`
	Adults            int     `json:"adults,omitempty"`
	MaxBudgetPerNight float64 `json:"max_budget"`
	// City is the destination name for the itinerary; defaults to Destination.
	City string `json:"city,omitempty"`
	// TripLengthDays defaults to the number of nights.
	TripLengthDays int `json:"trip_length_days,omitempty"`
}

// PlanResult is everything the pipeline produced for one request.
type PlanResult struct {
	SessionID            string                     `json:"session_id"`
	Flights              *models.FlightSearchResult `json:"flight_options"`
	Hotels               *models.HotelSearchResult  `json:"hotel_options"`
	ItineraryInstruction string                     `json:"itinerary_instruction"`
	// Itinerary is the model's answer to the instruction; empty without a model.
	Itinerary string `json:"itinerary_plan,omitempty"`
	Summary   string `json:"summary"`
}

// ItineraryState is what gets stored under the itinerary_plan key.
type ItineraryState struct {
	City        string `json:"city"`
	Days        int    `json:"trip_length_days"`
	Instruction string `json:"instruction"`
	Plan        string `json:"plan,omitempty"`
}

// TripPlanner runs flight and hotel search side by side, then the itinerary
// step, and writes each output to session state.
type TripPlanner struct {
	flights  FlightSearcher
	hotels   HotelSearcher
	state    StateWriter
	genkit   *genkit.Genkit
	registry *tools.Registry
	model    ai.Model

	Now func() time.Time
}

// NewTripPlanner creates a new TripPlanner. gk and model may be nil, in which
// case the itinerary and summary steps are rendered without a model.
func NewTripPlanner(flights FlightSearcher, hotels HotelSearcher, state StateWriter, gk *genkit.Genkit, registry *tools.Registry, model ai.Model) *TripPlanner {
	return &TripPlanner{
		flights:  flights,
		hotels:   hotels,
		state:    state,
		genkit:   gk,
		registry: registry,
		model:    model,
		Now:      time.Now,
	}
}

// withDefaults upper-cases the codes and fills the optional fields.
func (r TripRequest) withDefaults() TripRequest {
	r.Origin = strings.ToUpper(strings.TrimSpace(r.Origin))
	r.Destination = strings.ToUpper(strings.TrimSpace(r.Destination))
	if r.CheckIn == "" {
		r.CheckIn = r.DepartureDate
	}
	if r.Adults <= 0 {
		r.Adults = 1
	}
	if strings.TrimSpace(r.City) == "" {
		r.City = r.Destination
	}
	if r.TripLengthDays <= 0 {
		in, errIn := time.Parse("2006-01-02", r.CheckIn)
		out, errOut := time.Parse("2006-01-02", r.CheckOut)
		if errIn == nil && errOut == nil {
			r.TripLengthDays = int(out.Sub(in).Hours() / 24)
		}
	}
	return r
}

// Plan runs the pipeline. Upstream outages show up as statuses in the
// result; invalid requests and unmappable provider responses are errors.
func (p *TripPlanner) Plan(ctx context.Context, req TripRequest) (*PlanResult, error) {
	req = req.withDefaults()
	if req.SessionID == "" {
		req.SessionID = reqctx.NewSessionID()
	}
	ctx = reqctx.WithSessionID(ctx, req.SessionID)

	log.Infof(ctx, "TripPlanner: %s -> %s, %s to %s, %d adult(s), budget %.2f/night",
		req.Origin, req.Destination, req.CheckIn, req.CheckOut, req.Adults, req.MaxBudgetPerNight)

	if err := core.ValidateTrip(ctx, core.TripWindow{
		DepartureDate: req.DepartureDate,
		CheckIn:       req.CheckIn,
		CheckOut:      req.CheckOut,
		Travelers:     req.Adults,
	}, p.Now()); err != nil {
		return nil, err
	}

	result := &PlanResult{SessionID: req.SessionID}

	// Flight and hotel search share nothing and run concurrently.
	var (
		wg                  sync.WaitGroup
		flightErr, hotelErr error
	)
	wg.Go(func() {
		result.Flights, flightErr = p.flights.SearchFlights(ctx, amadeus.FlightQuery{
			Origin:        req.Origin,
			Destination:   req.Destination,
			DepartureDate: req.DepartureDate,
			Adults:        req.Adults,
		})
		if flightErr == nil {
			if result.Flights == nil {
				result.Flights = models.NewFlightSearchResult(models.StatusNoOffersFound)
			}
			flightErr = p.put(ctx, req.SessionID, session.KeyFlightOptions, result.Flights)
		}
	})
	wg.Go(func() {
		result.Hotels, hotelErr = p.hotels.SearchHotels(ctx, amadeus.HotelQuery{
			CityCode:          req.Destination,
			CheckIn:           req.CheckIn,
			CheckOut:          req.CheckOut,
			MaxBudgetPerNight: req.MaxBudgetPerNight,
			Adults:            req.Adults,
		})
		if hotelErr == nil {
			if result.Hotels == nil {
				result.Hotels = models.NewHotelSearchResult(models.StatusNoOffersFound)
			}
			hotelErr = p.put(ctx, req.SessionID, session.KeyHotelOptions, result.Hotels)
		}
	})
	wg.Wait()

	if err := errors.Join(flightErr, hotelErr); err != nil {
		log.Errorf(ctx, "TripPlanner: search failed: %v", err)
		return nil, fmt.Errorf("trip search failed: %w", err)
	}

	result.ItineraryInstruction = itinerary.Generate(req.City, req.TripLengthDays)
	result.Itinerary = p.expandItinerary(ctx, req, result)
	if err := p.put(ctx, req.SessionID, session.KeyItineraryPlan, ItineraryState{
		City:        req.City,
		Days:        req.TripLengthDays,
		Instruction: result.ItineraryInstruction,
		Plan:        result.Itinerary,
	}); err != nil {
		return nil, err
	}

	result.Summary = p.summarize(ctx, req, result)
	if err := p.put(ctx, req.SessionID, session.KeySummary, result.Summary); err != nil {
		return nil, err
	}

	log.Infof(ctx, "TripPlanner: done (flights %s, hotels %s)", result.Flights.Status, result.Hotels.Status)
	return result, nil
}

func (p *TripPlanner) put(ctx context.Context, sessionID, key string, value interface{}) error {
	if p.state == nil {
		return nil
	}
	return p.state.Put(ctx, sessionID, key, value)
}

// expandItinerary asks the model to answer the itinerary instruction. A model
// failure leaves the instruction as the only itinerary output.
func (p *TripPlanner) expandItinerary(ctx context.Context, req TripRequest, result *PlanResult) string {
	if p.genkit == nil || p.model == nil {
		return ""
	}

	prompt := fmt.Sprintf("%s\n\nTrip: %s, %d day(s), arriving %s.\nSearch results:\n%s",
		result.ItineraryInstruction, req.City, req.TripLengthDays, req.CheckIn, searchContext(result))

	resp, err := genkit.Generate(ctx,
		p.genkit,
		ai.WithModel(p.model),
		ai.WithSystem(itinerarySystemPrompt),
		ai.WithPrompt(prompt),
		ai.WithTools(p.toolRefs(itinerary.ToolName, core.DateToolName)...),
		ai.WithMaxTurns(5),
	)
	if err != nil {
		log.Warnf(ctx, "TripPlanner: itinerary generation failed: %v", err)
		return ""
	}
	return strings.TrimSpace(resp.Text())
}

// summarize renders the combined answer, through the model when one is
// configured and as plain text otherwise.
func (p *TripPlanner) summarize(ctx context.Context, req TripRequest, result *PlanResult) string {
	fallback := RenderSummary(req, result)
	if p.genkit == nil || p.model == nil {
		return fallback
	}

	resp, err := genkit.Generate(ctx,
		p.genkit,
		ai.WithModel(p.model),
		ai.WithSystem(summarySystemPrompt),
		ai.WithPrompt(fallback),
	)
	if err != nil {
		log.Warnf(ctx, "TripPlanner: summary generation failed: %v", err)
		return fallback
	}
	if text := strings.TrimSpace(resp.Text()); text != "" {
		return text
	}
	return fallback
}

func (p *TripPlanner) toolRefs(names ...string) []ai.ToolRef {
	if p.registry == nil {
		return nil
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	var refs []ai.ToolRef
	for _, t := range p.registry.GetTools() {
		if wanted[t.Name()] {
			refs = append(refs, t)
		}
	}
	return refs
}

func searchContext(result *PlanResult) string {
	b, err := json.MarshalIndent(struct {
		Flights *models.FlightSearchResult `json:"flight_options"`
		Hotels  *models.HotelSearchResult  `json:"hotel_options"`
	}{result.Flights, result.Hotels}, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

// RenderSummary is the plain-text trip summary.
func RenderSummary(req TripRequest, result *PlanResult) string {
	flights, hotels := result.Flights, result.Hotels
	if flights == nil {
		flights = models.NewFlightSearchResult(models.StatusNoOffersFound)
	}
	if hotels == nil {
		hotels = models.NewHotelSearchResult(models.StatusNoOffersFound)
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "Trip %s -> %s on %s for %d adult(s)\n", req.Origin, req.Destination, req.DepartureDate, req.Adults)

	fmt.Fprintf(&sb, "\nFlights (%s):\n", flights.Status)
	switch {
	case flights.Status == models.StatusUpstreamUnavailable:
		sb.WriteString("  Flight search is currently unavailable.\n")
	case len(flights.Options) == 0:
		sb.WriteString("  No flights found.\n")
	}
	for i, f := range flights.Options {
		fmt.Fprintf(&sb, "  %d. %s departs %s, %s, %.2f %s\n", i+1, f.Airline, f.DepartureTime, f.Duration, f.Price, f.Currency)
	}

	fmt.Fprintf(&sb, "\nHotels in %s, %s to %s, up to %.2f/night (%s):\n",
		req.Destination, req.CheckIn, req.CheckOut, req.MaxBudgetPerNight, hotels.Status)
	switch {
	case hotels.Status == models.StatusUpstreamUnavailable:
		sb.WriteString("  Hotel search is currently unavailable.\n")
	case len(hotels.Options) == 0:
		sb.WriteString("  No hotels found within budget.\n")
	}
	for i, h := range hotels.Options {
		fmt.Fprintf(&sb, "  %d. %s, %.2f %s/night for %d night(s)", i+1, h.Name, h.PricePerNight, h.Currency, h.Nights)
		if h.DistanceToCenter != nil {
			fmt.Fprintf(&sb, ", %.1f km from centre", *h.DistanceToCenter)
		}
		sb.WriteString("\n")
	}
	if n := hotels.ExcludedOverBudget; n > 0 {
		fmt.Fprintf(&sb, "  %d more over budget.\n", n)
	}

	sb.WriteString("\nItinerary:\n")
	if result.Itinerary != "" {
		sb.WriteString(result.Itinerary)
	} else {
		sb.WriteString(result.ItineraryInstruction)
	}
	sb.WriteString("\n")

	return sb.String()
}
