// Command cmd is a smoke check against the configured Amadeus environment:
// one flight search and one hotel search, results logged as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"time"

	"github.com/joho/godotenv"
	"github.com/va6996/tripplanner/config"
	reqctx "github.com/va6996/tripplanner/context"
	"github.com/va6996/tripplanner/log"
	"github.com/va6996/tripplanner/plugins/amadeus"
)

type smokeOptions struct {
	Origin      string
	Destination string
	Departure   string
	Nights      int
	Adults      int
	Budget      float64
}

func main() {
	// Load .env if present
	_ = godotenv.Load()

	opts := smokeOptions{}
	flag.StringVar(&opts.Origin, "origin", "MAA", "origin IATA code")
	flag.StringVar(&opts.Destination, "destination", "BSL", "destination IATA city code")
	flag.StringVar(&opts.Departure, "date", time.Now().AddDate(0, 0, 30).Format("2006-01-02"), "departure / check-in date (YYYY-MM-DD)")
	flag.IntVar(&opts.Nights, "nights", 3, "hotel nights")
	flag.IntVar(&opts.Adults, "adults", 2, "travellers")
	flag.Float64Var(&opts.Budget, "budget", 300, "max hotel price per night")
	flag.Parse()

	ctx := reqctx.EnsureRequestID(context.Background())

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf(ctx, "Failed to load config: %v", err)
	}
	log.Init(cfg.Log.Level)

	client, err := amadeus.NewClient(cfg.Amadeus, nil, nil)
	if err != nil {
		log.Fatalf(ctx, "Failed to create Amadeus client: %v", err)
	}

	if err := runSmoke(ctx, client, opts); err != nil {
		log.Fatalf(ctx, "Smoke run failed: %v", err)
	}
}

func runSmoke(ctx context.Context, client *amadeus.Client, opts smokeOptions) error {
	checkIn, err := time.Parse("2006-01-02", opts.Departure)
	if err != nil {
		return err
	}
	checkOut := checkIn.AddDate(0, 0, opts.Nights).Format("2006-01-02")

	log.Infof(ctx, "=== Flight search %s -> %s on %s ===", opts.Origin, opts.Destination, opts.Departure)
	flights, err := client.SearchFlights(ctx, amadeus.FlightQuery{
		Origin:        opts.Origin,
		Destination:   opts.Destination,
		DepartureDate: opts.Departure,
		Adults:        opts.Adults,
	})
	if err != nil {
		return err
	}
	logJSON(ctx, "flights", flights)

	log.Infof(ctx, "=== Hotel search %s, %s to %s, max %.2f/night ===", opts.Destination, opts.Departure, checkOut, opts.Budget)
	hotels, err := client.SearchHotels(ctx, amadeus.HotelQuery{
		CityCode:          opts.Destination,
		CheckIn:           opts.Departure,
		CheckOut:          checkOut,
		MaxBudgetPerNight: opts.Budget,
		Adults:            opts.Adults,
	})
	if err != nil {
		return err
	}
	logJSON(ctx, "hotels", hotels)
	return nil
}

func logJSON(ctx context.Context, label string, v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Errorf(ctx, "failed to encode %s: %v", label, err)
		return
	}
	log.Infof(ctx, "%s:\n%s", label, b)
}
