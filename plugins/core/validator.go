package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/va6996/tripplanner/log"
)

// TripWindow is the date and party shape of a trip request.
type TripWindow struct {
	DepartureDate string
	CheckIn       string
	CheckOut      string
	Travelers     int
}

// ValidateTrip checks the trip dates for consistency before any provider is
// called. All problems are reported together.
func ValidateTrip(ctx context.Context, trip TripWindow, now time.Time) error {
	log.Debugf(ctx, "Validating trip: departure %s, stay %s -> %s", trip.DepartureDate, trip.CheckIn, trip.CheckOut)

	var errors []string

	departure, depErr := time.Parse("2006-01-02", trip.DepartureDate)
	checkIn, inErr := time.Parse("2006-01-02", trip.CheckIn)
	checkOut, outErr := time.Parse("2006-01-02", trip.CheckOut)

	// Use yesterday as buffer to account for timezones
	yesterday := now.AddDate(0, 0, -1)

	if depErr != nil {
		errors = append(errors, fmt.Sprintf("Departure date %q is not YYYY-MM-DD", trip.DepartureDate))
	} else if departure.Before(yesterday) {
		errors = append(errors, fmt.Sprintf("Departure date (%s) is in the past", trip.DepartureDate))
	}

	if inErr != nil {
		errors = append(errors, fmt.Sprintf("Check-in date %q is not YYYY-MM-DD", trip.CheckIn))
	}
	if outErr != nil {
		errors = append(errors, fmt.Sprintf("Check-out date %q is not YYYY-MM-DD", trip.CheckOut))
	}
	if inErr == nil && outErr == nil && !checkOut.After(checkIn) {
		errors = append(errors, fmt.Sprintf("Check-out (%s) must be after check-in (%s)", trip.CheckOut, trip.CheckIn))
	}
	if depErr == nil && inErr == nil && checkIn.Before(departure) {
		errors = append(errors, fmt.Sprintf("Check-in (%s) is before departure (%s)", trip.CheckIn, trip.DepartureDate))
	}

	if trip.Travelers <= 0 {
		errors = append(errors, fmt.Sprintf("Invalid traveler count: %d", trip.Travelers))
	}

	if len(errors) > 0 {
		errMsg := fmt.Sprintf("Validation Failed with %d errors:\n- %s", len(errors), strings.Join(errors, "\n- "))
		log.Errorf(ctx, "ValidateTrip: %s", errMsg)
		return fmt.Errorf("%s", errMsg)
	}

	log.Debugf(ctx, "ValidateTrip: Validation passed.")
	return nil
}
