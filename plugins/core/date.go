package core

import (
	"context"
	"fmt"
	"time"

	"github.com/dop251/goja"
	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/va6996/tripplanner/log"
	"github.com/va6996/tripplanner/tools"
)

const DateToolName = "date_tool"

const nextFridayExpression = "var d = new Date(now); d.setUTCDate(d.getUTCDate() + (12 - d.getUTCDay()) % 7); " +
	"if(d.getUTCDay() !== 5 || d <= now) d.setUTCDate(d.getUTCDate() + 7); d"

// DateInput defines the input for the date tool
type DateInput struct {
	Expression string `json:"expression" description:"JavaScript expression to calculate a date. Variable 'now' is available as current timestamp in milliseconds."`
}

// DateResult is a resolved date in the shapes the search tools accept.
type DateResult struct {
	Date      string    `json:"date" description:"Calendar date as YYYY-MM-DD, usable as departureDate, check_in or check_out"`
	Weekday   string    `json:"weekday"`
	Timestamp time.Time `json:"timestamp"`
}

// DateTool turns relative date phrases into concrete dates
type DateTool struct {
	Now func() time.Time
}

// NewDateTool creates a new DateTool and registers it
func NewDateTool(gk *genkit.Genkit, registry *tools.Registry) *DateTool {
	t := &DateTool{
		Now: time.Now,
	}

	if gk == nil || registry == nil {
		return t
	}

	registry.Register(genkit.DefineTool[*DateInput, *DateResult](
		gk,
		DateToolName,
		t.Description(),
		func(ctx *ai.ToolContext, input *DateInput) (*DateResult, error) {
			return t.Execute(ctx, input)
		},
	), func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		expression, ok := args["expression"].(string)
		if !ok {
			return nil, fmt.Errorf("missing expression")
		}
		return t.Execute(ctx, &DateInput{Expression: expression})
	})

	return t
}

func (t *DateTool) Name() string {
	return DateToolName
}

func (t *DateTool) Description() string {
	return `Executes a JavaScript expression to calculate a travel date. Variable 'now' holds the current timestamp (milliseconds).
Return a Date object or ISO string; the last expression is the return value. Dates are read in UTC, so use the getUTC*/setUTC* methods. The result's 'date' field is YYYY-MM-DD.
Examples:
- Next Friday: "` + nextFridayExpression + `"
- Tomorrow: "new Date(now + 86400000)"
- Three nights after 2025-12-15: "new Date(Date.parse('2025-12-15') + 3 * 86400000)"`
}

func (t *DateTool) Execute(ctx context.Context, input *DateInput) (*DateResult, error) {
	if input == nil {
		return nil, fmt.Errorf("input is required")
	}
	log.Debugf(ctx, "DateTool: executing expression: %s", input.Expression)

	vm := goja.New()
	if err := vm.Set("now", t.Now().UnixMilli()); err != nil {
		return nil, fmt.Errorf("failed to set 'now': %w", err)
	}

	val, err := vm.RunString(input.Expression)
	if err != nil {
		log.Warnf(ctx, "DateTool: js execution failed: %v", err)
		return nil, fmt.Errorf("js execution failed: %w", err)
	}

	resolved, err := exportTime(val.Export())
	if err != nil {
		return nil, err
	}
	resolved = resolved.UTC()

	log.Debugf(ctx, "DateTool: resolved %s", resolved.Format(time.RFC3339))
	return &DateResult{
		Date:      resolved.Format("2006-01-02"),
		Weekday:   resolved.Weekday().String(),
		Timestamp: resolved,
	}, nil
}

// exportTime accepts what goja hands back for a JS Date or an ISO string.
func exportTime(exported interface{}) (time.Time, error) {
	switch v := exported.(type) {
	case nil:
		return time.Time{}, fmt.Errorf("result is null or undefined")
	case time.Time:
		return v, nil
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if parsed, err := time.Parse(layout, v); err == nil {
				return parsed, nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("result is not a valid Date object or ISO string")
}
