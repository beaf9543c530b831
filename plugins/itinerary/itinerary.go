// Package itinerary provides the itinerary_generator tool. It performs no
// search itself; it hands the model an instruction and the plan shape to fill.
package itinerary

import (
	"context"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/va6996/tripplanner/log"
	"github.com/va6996/tripplanner/models"
	"github.com/va6996/tripplanner/tools"
)

const ToolName = "itinerary_generator"

// MaxTripLengthDays bounds the plan skeleton handed back to the model.
const MaxTripLengthDays = 365

const instructionTemplate = "Search Google for a comprehensive %d-day itinerary for %s, including top attractions, " +
	"activities, and dining recommendations. Structure the results as a day-by-day plan."

// Generate returns the itinerary instruction for the model. It is pure.
func Generate(city string, tripLengthDays int) string {
	return fmt.Sprintf(instructionTemplate, tripLengthDays, city)
}

// Input matches the tool's named arguments.
type Input struct {
	City           string `json:"city" description:"Destination city name"`
	TripLengthDays int    `json:"trip_length_days" description:"Number of days for the trip"`
}

// Signal is what the model receives back: the instruction plus an empty plan
// with one entry per day, in the ItineraryPlanResult shape it should return.
type Signal struct {
	Instruction string                      `json:"instruction"`
	Plan        *models.ItineraryPlanResult `json:"plan" description:"Fill daily_plans with times, descriptions and estimated costs"`
}

// Tool implementation
type Tool struct{}

func (t *Tool) Name() string {
	return ToolName
}

func (t *Tool) Description() string {
	return "Signals itinerary creation for a destination. Returns an instruction to research the city " +
		"and the day-by-day plan structure (ItineraryPlanResult) to fill in."
}

func (t *Tool) Execute(ctx context.Context, input *Input) (*Signal, error) {
	if input == nil {
		return nil, fmt.Errorf("input is required")
	}
	city := strings.TrimSpace(input.City)
	if city == "" {
		return nil, fmt.Errorf("city is required")
	}
	if input.TripLengthDays <= 0 {
		return nil, fmt.Errorf("trip_length_days must be positive, got %d", input.TripLengthDays)
	}
	if input.TripLengthDays > MaxTripLengthDays {
		return nil, fmt.Errorf("trip_length_days must be at most %d, got %d", MaxTripLengthDays, input.TripLengthDays)
	}

	log.Debugf(ctx, "ItineraryTool: %d-day signal for %s", input.TripLengthDays, city)

	plan := &models.ItineraryPlanResult{
		City:       city,
		TotalDays:  input.TripLengthDays,
		DailyPlans: make([]models.DailyPlan, input.TripLengthDays),
	}
	for i := range plan.DailyPlans {
		plan.DailyPlans[i] = models.DailyPlan{DayNumber: i + 1, Activities: []models.DailyActivity{}}
	}

	return &Signal{
		Instruction: Generate(city, input.TripLengthDays),
		Plan:        plan,
	}, nil
}

// NewTool creates the itinerary tool and registers it
func NewTool(gk *genkit.Genkit, registry *tools.Registry) *Tool {
	t := &Tool{}
	if gk == nil || registry == nil {
		return t
	}
	registry.Register(genkit.DefineTool[*Input, *Signal](
		gk,
		ToolName,
		t.Description(),
		func(ctx *ai.ToolContext, input *Input) (*Signal, error) {
			return t.Execute(ctx, input)
		},
	), func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		in := &Input{}
		if err := tools.DecodeArgs(args, in); err != nil {
			return nil, err
		}
		return t.Execute(ctx, in)
	})
	return t
}
