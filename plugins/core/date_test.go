package core

import (
	"context"
	"testing"
	"time"

	"github.com/firebase/genkit/go/genkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/va6996/tripplanner/tools"
)

func TestDateTool_Execute_Validation(t *testing.T) {
	registry := tools.NewRegistry()
	gk := genkit.Init(context.Background())

	dt := NewDateTool(gk, registry)
	dt.Now = func() time.Time {
		// Thursday
		return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name      string
		code      string
		wantDate  string
		expectErr bool
	}{
		{
			name:     "Valid Date Object",
			code:     "new Date('2026-01-02T00:00:00Z')",
			wantDate: "2026-01-02",
		},
		{
			name:     "Valid ISO String",
			code:     "'2026-01-02T00:00:00Z'",
			wantDate: "2026-01-02",
		},
		{
			name:     "Plain Date String",
			code:     "'2025-12-15'",
			wantDate: "2025-12-15",
		},
		{
			name:     "Tomorrow",
			code:     "new Date(now + 86400000)",
			wantDate: "2026-01-02",
		},
		{
			name:      "Invalid Return Type (Number)",
			code:      "12345",
			expectErr: true,
		},
		{
			name:      "Null Return",
			code:      "null",
			expectErr: true,
		},
		{
			name:      "Undefined Return (no return)",
			code:      "var x = 1;",
			expectErr: true,
		},
		{
			name:      "Syntax Error",
			code:      "new Date(",
			expectErr: true,
		},
		{
			name:     "LLM Generated Code",
			code:     "var d = new Date(now); d.setUTCDate(d.getUTCDate() + (12 - d.getUTCDay()) % 7); if(d.getUTCDay() !== 5 || d <= now) d.setUTCDate(d.getUTCDate() + 7); d",
			wantDate: "2026-01-02",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := dt.Execute(context.Background(), &DateInput{Expression: tt.code})
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDate, res.Date)
		})
	}
}

func TestDateTool_NextFridayExampleIgnoresLocalZone(t *testing.T) {
	local := time.Local
	time.Local = time.FixedZone("UTC+14", 14*60*60)
	t.Cleanup(func() { time.Local = local })

	dt := NewDateTool(nil, nil)
	// Thursday noon UTC, already Friday in the local zone.
	dt.Now = func() time.Time { return time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC) }

	assert.Contains(t, dt.Description(), nextFridayExpression)
	res, err := dt.Execute(context.Background(), &DateInput{Expression: nextFridayExpression})
	require.NoError(t, err)
	assert.Equal(t, "2026-01-02", res.Date)
	assert.Equal(t, "Friday", res.Weekday)
}

func TestDateTool_Registered(t *testing.T) {
	registry := tools.NewRegistry()
	c := NewClient(genkit.Init(context.Background()), registry)
	c.DateTool.Now = func() time.Time { return time.Date(2025, 12, 12, 9, 0, 0, 0, time.UTC) }

	require.True(t, registry.Has(DateToolName))

	out, err := registry.ExecuteTool(context.Background(), DateToolName, map[string]interface{}{
		"expression": "new Date(now + 3 * 86400000)",
	})
	require.NoError(t, err)
	res, ok := out.(*DateResult)
	require.True(t, ok)
	assert.Equal(t, "2025-12-15", res.Date)
	assert.Equal(t, "Monday", res.Weekday)

	_, err = registry.ExecuteTool(context.Background(), DateToolName, map[string]interface{}{})
	assert.ErrorContains(t, err, "missing expression")
}
