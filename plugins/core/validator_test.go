package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateTrip(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC)

	valid := TripWindow{DepartureDate: "2025-12-15", CheckIn: "2025-12-15", CheckOut: "2025-12-18", Travelers: 2}
	assert.NoError(t, ValidateTrip(ctx, valid, now))

	tests := []struct {
		name    string
		mutate  func(w *TripWindow)
		wantMsg []string
	}{
		{
			name:    "past departure",
			mutate:  func(w *TripWindow) { w.DepartureDate = "2025-11-01"; w.CheckIn = "2025-11-01" },
			wantMsg: []string{"in the past"},
		},
		{
			name:    "stay of zero nights",
			mutate:  func(w *TripWindow) { w.CheckOut = w.CheckIn },
			wantMsg: []string{"must be after check-in"},
		},
		{
			name:    "check-in before departure",
			mutate:  func(w *TripWindow) { w.CheckIn = "2025-12-14" },
			wantMsg: []string{"before departure"},
		},
		{
			name: "several problems at once",
			mutate: func(w *TripWindow) {
				w.DepartureDate = "15.12.2025"
				w.Travelers = 0
			},
			wantMsg: []string{"2 errors", "not YYYY-MM-DD", "Invalid traveler count: 0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := valid
			tt.mutate(&w)
			err := ValidateTrip(ctx, w, now)
			if assert.Error(t, err) {
				for _, msg := range tt.wantMsg {
					assert.Contains(t, err.Error(), msg)
				}
			}
		})
	}
}
