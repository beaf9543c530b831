package amadeus

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/va6996/tripplanner/log"
	"github.com/va6996/tripplanner/models"
	"github.com/va6996/tripplanner/plugins/core"
)

// --- Structs for Flight Search (only the fields we map) ---

type FlightSearchResponse struct {
	Data []FlightOffer `json:"data"`
}

type FlightOffer struct {
	Type        string      `json:"type"`
	ID          string      `json:"id"`
	Itineraries []Itinerary `json:"itineraries"`
	Price       Price       `json:"price"`
}

type Itinerary struct {
	Duration string    `json:"duration"`
	Segments []Segment `json:"segments"`
}

type Segment struct {
	Departure   FlightEndPoint `json:"departure"`
	Arrival     FlightEndPoint `json:"arrival"`
	CarrierCode string         `json:"carrierCode"`
	Number      string         `json:"number"`
	Operating   struct {
		CarrierCode string `json:"carrierCode"`
	} `json:"operating"`
}

type FlightEndPoint struct {
	IataCode string `json:"iataCode"`
	Terminal string `json:"terminal,omitempty"`
	At       string `json:"at"`
}

type Price struct {
	Currency   string `json:"currency"`
	Total      string `json:"total"`
	Base       string `json:"base"`
	GrandTotal string `json:"grandTotal,omitempty"`
}

// FlightQuery is a one-way flight offer search.
type FlightQuery struct {
	Origin        string
	Destination   string
	DepartureDate string
	Adults        int
}

// Normalize validates the query and returns it with upper-cased codes.
func (q FlightQuery) Normalize() (FlightQuery, error) {
	var err error
	if q.Origin, err = normalizeIATA("originLocationCode", q.Origin); err != nil {
		return q, err
	}
	if q.Destination, err = normalizeIATA("destinationLocationCode", q.Destination); err != nil {
		return q, err
	}
	if _, err = parseDate("departureDate", q.DepartureDate); err != nil {
		return q, err
	}
	if q.Adults <= 0 {
		return q, fmt.Errorf("adults must be positive, got %d", q.Adults)
	}
	return q, nil
}

// SearchFlights returns up to Limits.Flight offers in provider order.
//
// Authentication and transport failures are logged and reported through
// StatusUpstreamUnavailable with a nil error. An error is returned only for an
// invalid query or a response that cannot be mapped (*MappingError).
func (c *Client) SearchFlights(ctx context.Context, q FlightQuery) (*models.FlightSearchResult, error) {
	q, err := q.Normalize()
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("originLocationCode", q.Origin)
	params.Set("destinationLocationCode", q.Destination)
	params.Set("departureDate", q.DepartureDate)
	params.Set("adults", strconv.Itoa(q.Adults))

	log.Infof(ctx, "Searching flights %s -> %s on %s for %d adult(s)", q.Origin, q.Destination, q.DepartureDate, q.Adults)

	var resp FlightSearchResponse
	if err := c.getJSON(ctx, flightOffersPath, params, &resp); err != nil {
		logUpstreamFailure(ctx, "SearchFlights", err)
		result := models.NewFlightSearchResult(models.StatusUpstreamUnavailable)
		result.Error = err.Error()
		return result, nil
	}

	if len(resp.Data) == 0 {
		log.Warnf(ctx, "SearchFlights: no flight offers in response")
		return models.NewFlightSearchResult(models.StatusNoOffersFound), nil
	}

	offers := resp.Data
	if len(offers) > c.Limits.Flight {
		offers = offers[:c.Limits.Flight]
	}

	result := models.NewFlightSearchResult(models.StatusSuccess)
	for i, offer := range offers {
		option, err := c.toFlightOption(offer)
		if err != nil {
			var me *MappingError
			if errors.As(err, &me) {
				me.Field = fmt.Sprintf("data[%d].%s", i, me.Field)
			}
			log.Errorf(ctx, "SearchFlights: %v", err)
			return nil, err
		}
		result.Options = append(result.Options, option)
	}

	log.Infof(ctx, "SearchFlights: mapped %d of %d offers", len(result.Options), len(resp.Data))
	return result, nil
}

// toFlightOption reads the first itinerary's first segment of an offer.
func (c *Client) toFlightOption(offer FlightOffer) (models.FlightOption, error) {
	if len(offer.Itineraries) == 0 {
		return models.FlightOption{}, &MappingError{Field: "itineraries[0]", Err: errMissingField}
	}
	itinerary := offer.Itineraries[0]
	if len(itinerary.Segments) == 0 {
		return models.FlightOption{}, &MappingError{Field: "itineraries[0].segments[0]", Err: errMissingField}
	}
	segment := itinerary.Segments[0]

	price, err := strconv.ParseFloat(offer.Price.Total, 64)
	if err != nil {
		return models.FlightOption{}, &MappingError{Field: "price.total", Value: offer.Price.Total, Err: err}
	}
	if price < 0 {
		return models.FlightOption{}, &MappingError{Field: "price.total", Value: offer.Price.Total, Err: errors.New("negative price")}
	}

	departure, err := timeOfDay(segment.Departure.At)
	if err != nil {
		return models.FlightOption{}, &MappingError{Field: "itineraries[0].segments[0].departure.at", Value: segment.Departure.At, Err: err}
	}

	airline := segment.CarrierCode
	if airline == "" {
		airline = segment.Operating.CarrierCode
	}
	if airline == "" {
		return models.FlightOption{}, &MappingError{Field: "itineraries[0].segments[0].carrierCode", Err: errMissingField}
	}

	return models.FlightOption{
		FlightID:      c.syntheticFlightID(),
		OfferID:       offer.ID,
		Airline:       airline,
		Price:         price,
		Currency:      core.NormalizeCurrency(offer.Price.Currency),
		DepartureTime: departure,
		Duration:      durationText(itinerary.Duration),
	}, nil
}
