package amadeus

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Departure timestamps come without a zone, e.g. 2025-12-15T08:30:00.
var localTimestampLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04", time.RFC3339}

// normalizeIATA upper-cases and checks a three-letter airport or city code.
func normalizeIATA(field, code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", fmt.Errorf("%s must be a 3-letter IATA code, got %q", field, code)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", fmt.Errorf("%s must be a 3-letter IATA code, got %q", field, code)
		}
	}
	return code, nil
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be YYYY-MM-DD, got %q", field, value)
	}
	return t, nil
}

// stayNights counts the nights between check-in and check-out.
func stayNights(checkIn, checkOut string) (int, error) {
	in, err := parseDate("check_in", checkIn)
	if err != nil {
		return 0, err
	}
	out, err := parseDate("check_out", checkOut)
	if err != nil {
		return 0, err
	}
	nights := int(out.Sub(in).Hours() / 24)
	if nights <= 0 {
		return 0, fmt.Errorf("check_out (%s) must be after check_in (%s)", checkOut, checkIn)
	}
	return nights, nil
}

// timeOfDay keeps only HH:MM of a local departure timestamp.
func timeOfDay(ts string) (string, error) {
	for _, layout := range localTimestampLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.Format("15:04"), nil
		}
	}
	return "", fmt.Errorf("not a timestamp")
}

// durationText strips the ISO-8601 "PT" prefix and lower-cases the rest:
// PT10H30M becomes 10h30m. No unit arithmetic is done.
func durationText(iso string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(iso), "PT"))
}
