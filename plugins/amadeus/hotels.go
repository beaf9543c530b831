package amadeus

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/va6996/tripplanner/log"
	"github.com/va6996/tripplanner/models"
	"github.com/va6996/tripplanner/plugins/core"
)

const (
	unknownHotelName     = "Unknown Hotel"
	amenitiesPlaceholder = "Check for amenities in the offer details."
	defaultHotelAdults   = 2
)

// --- Structs for Hotel Search ---

// HotelListResponse is the response from /v1/reference-data/locations/hotels/by-city
type HotelListResponse struct {
	Data []struct {
		ChainCode string `json:"chainCode"`
		IataCode  string `json:"iataCode"`
		Name      string `json:"name"`
		HotelId   string `json:"hotelId"`
		GeoCode   struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"geoCode"`
		Distance *struct {
			Value float64 `json:"value"`
			Unit  string  `json:"unit"`
		} `json:"distance,omitempty"`
	} `json:"data"`
}

type HotelSearchResponse struct {
	Data []HotelOfferData `json:"data"`
}

type HotelOfferData struct {
	Type      string       `json:"type"`
	Hotel     HotelInfo    `json:"hotel"`
	Available bool         `json:"available"`
	Offers    []HotelOffer `json:"offers"`
}

type HotelInfo struct {
	HotelId  string `json:"hotelId"`
	Name     string `json:"name"`
	CityCode string `json:"cityCode"`
}

type HotelOffer struct {
	ID           string     `json:"id"`
	CheckInDate  string     `json:"checkInDate"`
	CheckOutDate string     `json:"checkOutDate"`
	Room         HotelRoom  `json:"room"`
	Price        HotelPrice `json:"price"`
}

type HotelRoom struct {
	Type        string `json:"type"`
	Description struct {
		Text string `json:"text"`
		Lang string `json:"lang"`
	} `json:"description"`
}

type HotelPrice struct {
	Currency string `json:"currency"`
	Base     string `json:"base"`
	Total    string `json:"total"`
}

// HotelRef is a hotel found for a city, before any offer lookup.
type HotelRef struct {
	ID string
	// DistanceKm is the provider's distance from the city centre, if it gave one.
	DistanceKm *float64
}

// HotelQuery is a city-wide hotel offer search with a nightly budget.
type HotelQuery struct {
	CityCode          string
	CheckIn           string
	CheckOut          string
	MaxBudgetPerNight float64
	Adults            int
}

// Normalize validates the query, applies the default party size and
// returns the number of nights in the stay.
func (q HotelQuery) Normalize() (HotelQuery, int, error) {
	var err error
	if q.CityCode, err = normalizeIATA("cityCode", q.CityCode); err != nil {
		return q, 0, err
	}
	nights, err := stayNights(q.CheckIn, q.CheckOut)
	if err != nil {
		return q, 0, err
	}
	if q.MaxBudgetPerNight <= 0 || math.IsNaN(q.MaxBudgetPerNight) || math.IsInf(q.MaxBudgetPerNight, 0) {
		return q, 0, fmt.Errorf("max_budget must be positive, got %v", q.MaxBudgetPerNight)
	}
	if q.Adults <= 0 {
		q.Adults = defaultHotelAdults
	}
	return q, nights, nil
}

// SearchHotels resolves hotels in the city, fetches their live offers and keeps
// the ones within budget. Upstream failures end in StatusUpstreamUnavailable
// with a nil error; mapping failures are returned.
func (c *Client) SearchHotels(ctx context.Context, q HotelQuery) (*models.HotelSearchResult, error) {
	q, nights, err := q.Normalize()
	if err != nil {
		return nil, err
	}

	refs, listErr := c.ResolveHotelIDs(ctx, q.CityCode)

	result, err := c.FetchOffers(ctx, refs, q, nights)
	if err != nil {
		return nil, err
	}
	if listErr != nil {
		result.Status = models.StatusUpstreamUnavailable
		result.Error = listErr.Error()
		return result, nil
	}

	result.Options, result.ExcludedOverBudget = filterByBudget(result.Options, q.MaxBudgetPerNight)
	if result.Status == models.StatusSuccess && len(result.Options) == 0 {
		result.Status = models.StatusNoOffersFound
	}

	log.Infof(ctx, "SearchHotels: %d option(s) within %.2f/night, %d over budget",
		len(result.Options), q.MaxBudgetPerNight, result.ExcludedOverBudget)
	return result, nil
}

// ResolveHotelIDs lists up to Limits.Hotel hotels for a city in provider order.
// On failure the list is empty and the (already logged) error is returned for
// status reporting only.
func (c *Client) ResolveHotelIDs(ctx context.Context, cityCode string) ([]HotelRef, error) {
	log.Infof(ctx, "ResolveHotelIDs: searching hotels in %s", cityCode)

	params := url.Values{}
	params.Set("cityCode", cityCode)

	var listResp HotelListResponse
	if err := c.getJSON(ctx, hotelsByCityPath, params, &listResp); err != nil {
		logUpstreamFailure(ctx, "ResolveHotelIDs", err)
		return []HotelRef{}, err
	}

	refs := make([]HotelRef, 0, c.Limits.Hotel)
	for _, h := range listResp.Data {
		if len(refs) == c.Limits.Hotel {
			break
		}
		if h.HotelId == "" {
			continue
		}
		ref := HotelRef{ID: h.HotelId}
		if h.Distance != nil && strings.EqualFold(h.Distance.Unit, "KM") {
			d := h.Distance.Value
			ref.DistanceKm = &d
		}
		refs = append(refs, ref)
	}

	log.Infof(ctx, "ResolveHotelIDs: found %d hotel(s), using %d", len(listResp.Data), len(refs))
	return refs, nil
}

// FetchOffers looks up live offers for the given hotels. An empty refs slice
// returns StatusNoOffersFound without touching the network.
func (c *Client) FetchOffers(ctx context.Context, refs []HotelRef, q HotelQuery, nights int) (*models.HotelSearchResult, error) {
	if len(refs) == 0 {
		return models.NewHotelSearchResult(models.StatusNoOffersFound), nil
	}

	ids := make([]string, len(refs))
	distances := make(map[string]*float64, len(refs))
	for i, ref := range refs {
		ids[i] = ref.ID
		distances[ref.ID] = ref.DistanceKm
	}

	params := url.Values{}
	params.Set("hotelIds", strings.Join(ids, ","))
	params.Set("checkInDate", q.CheckIn)
	params.Set("checkOutDate", q.CheckOut)
	params.Set("adults", strconv.Itoa(q.Adults))

	log.Infof(ctx, "FetchOffers: searching offers for %d hotel(s)", len(ids))

	var searchResp HotelSearchResponse
	if err := c.getJSON(ctx, hotelOffersPath, params, &searchResp); err != nil {
		logUpstreamFailure(ctx, "FetchOffers", err)
		result := models.NewHotelSearchResult(models.StatusUpstreamUnavailable)
		result.Error = err.Error()
		return result, nil
	}

	entries := searchResp.Data
	if len(entries) > c.Limits.Hotel {
		entries = entries[:c.Limits.Hotel]
	}

	result := models.NewHotelSearchResult(models.StatusSuccess)
	for i, entry := range entries {
		if len(entry.Offers) == 0 {
			continue
		}
		option, err := c.toHotelOption(entry, nights, distances[entry.Hotel.HotelId])
		if err != nil {
			var me *MappingError
			if errors.As(err, &me) {
				me.Field = fmt.Sprintf("data[%d].%s", i, me.Field)
			}
			log.Errorf(ctx, "FetchOffers: %v", err)
			return nil, err
		}
		result.Options = append(result.Options, option)
	}
	if len(result.Options) == 0 {
		result.Status = models.StatusNoOffersFound
	}
	return result, nil
}

// toHotelOption maps the first listed offer of a hotel. The provider does not
// order offers by price, so "first" is not necessarily "cheapest".
func (c *Client) toHotelOption(entry HotelOfferData, nights int, distanceKm *float64) (models.HotelOption, error) {
	offer := entry.Offers[0]

	total, err := strconv.ParseFloat(offer.Price.Total, 64)
	if err != nil {
		return models.HotelOption{}, &MappingError{Field: "offers[0].price.total", Value: offer.Price.Total, Err: err}
	}

	name := strings.TrimSpace(entry.Hotel.Name)
	if name == "" {
		name = unknownHotelName
	}

	amenities := strings.TrimSpace(offer.Room.Description.Text)
	if amenities == "" {
		amenities = amenitiesPlaceholder
	}

	return models.HotelOption{
		HotelID:          entry.Hotel.HotelId,
		Name:             name,
		PricePerNight:    roundCents(total / float64(nights)),
		Currency:         core.NormalizeCurrency(offer.Price.Currency),
		Nights:           nights,
		Rating:           c.syntheticRating(),
		RatingSynthetic:  true,
		AmenitiesSummary: amenities,
		DistanceToCenter: distanceKm,
	}, nil
}

// filterByBudget keeps options whose nightly price is at most maxPerNight.
func filterByBudget(options []models.HotelOption, maxPerNight float64) ([]models.HotelOption, int) {
	kept := make([]models.HotelOption, 0, len(options))
	for _, o := range options {
		if o.PricePerNight <= maxPerNight {
			kept = append(kept, o)
		}
	}
	return kept, len(options) - len(kept)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
