package v1_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/firebase/genkit/go/genkit"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/va6996/tripplanner/agents"
	v1 "github.com/va6996/tripplanner/apis/v1"
	reqctx "github.com/va6996/tripplanner/context"
	"github.com/va6996/tripplanner/models"
	"github.com/va6996/tripplanner/plugins/amadeus"
	"github.com/va6996/tripplanner/plugins/core"
	"github.com/va6996/tripplanner/plugins/itinerary"
	"github.com/va6996/tripplanner/session"
	"github.com/va6996/tripplanner/tools"
)

type MockPlanner struct {
	mock.Mock
}

func (m *MockPlanner) Plan(ctx context.Context, req agents.TripRequest) (*agents.PlanResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*agents.PlanResult), args.Error(1)
}

type testServer struct {
	srv      *httptest.Server
	planner  *MockPlanner
	sessions *session.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gk := genkit.Init(context.Background())
	registry := tools.NewRegistry()
	core.NewClient(gk, registry)
	itinerary.NewTool(gk, registry)

	store, err := session.NewStore("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	planner := new(MockPlanner)
	srv := httptest.NewServer(v1.New(registry, planner, store).Routes())
	t.Cleanup(srv.Close)
	return &testServer{srv: srv, planner: planner, sessions: store}
}

func (s *testServer) do(t *testing.T, method, path, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req, err := http.NewRequest(method, s.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	if resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func TestHandler_Health(t *testing.T) {
	s := newTestServer(t)
	resp, body := s.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, resp.Header.Get(v1.RequestIDHeader))
}

func TestHandler_ListTools(t *testing.T) {
	s := newTestServer(t)
	resp, body := s.do(t, http.MethodGet, "/v1/tools", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	listed, ok := body["tools"].([]interface{})
	require.True(t, ok)
	var names []string
	for _, item := range listed {
		names = append(names, item.(map[string]interface{})["name"].(string))
	}
	assert.Equal(t, []string{core.DateToolName, itinerary.ToolName}, names)
}

func TestHandler_ExecuteTool(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		check      func(t *testing.T, body map[string]interface{})
	}{
		{
			name:       "itinerary signal",
			path:       "/v1/tools/itinerary_generator",
			body:       `{"city":"Basel","trip_length_days":3}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, itinerary.Generate("Basel", 3), body["instruction"])
			},
		},
		{
			name:       "invalid arguments",
			path:       "/v1/tools/itinerary_generator",
			body:       `{"city":"Basel","trip_length_days":0}`,
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Contains(t, body["error"], "trip_length_days")
			},
		},
		{
			name:       "malformed json",
			path:       "/v1/tools/date_tool",
			body:       `{"expression":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown tool",
			path:       "/v1/tools/book_flight",
			body:       `{}`,
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := s.do(t, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.check != nil {
				tt.check(t, body)
			}
		})
	}
}

func TestHandler_Plan(t *testing.T) {
	s := newTestServer(t)

	want := agents.TripRequest{
		Origin: "MAA", Destination: "BSL", DepartureDate: "2025-12-15", CheckOut: "2025-12-18",
		Adults: 2, MaxBudgetPerNight: 150,
	}
	s.planner.On("Plan", mock.MatchedBy(func(ctx context.Context) bool {
		return reqctx.RequestIDFromContext(ctx) == "req-123"
	}), want).Return(&agents.PlanResult{
		SessionID: "session-1",
		Flights:   models.NewFlightSearchResult(models.StatusUpstreamUnavailable),
		Hotels:    models.NewHotelSearchResult(models.StatusNoOffersFound),
		Summary:   "summary",
	}, nil).Once()

	req, err := http.NewRequest(http.MethodPost, s.srv.URL+"/v1/plan", strings.NewReader(
		`{"origin":"MAA","destination":"BSL","departure_date":"2025-12-15","check_out":"2025-12-18","adults":2,"max_budget":150}`))
	require.NoError(t, err)
	req.Header.Set(v1.RequestIDHeader, "req-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "req-123", resp.Header.Get(v1.RequestIDHeader))

	var body struct {
		SessionID string                     `json:"session_id"`
		Flights   *models.FlightSearchResult `json:"flight_options"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "session-1", body.SessionID)
	assert.Equal(t, models.StatusUpstreamUnavailable, body.Flights.Status)
	assert.NotNil(t, body.Flights.Options)
	s.planner.AssertExpectations(t)
}

func TestHandler_PlanErrors(t *testing.T) {
	s := newTestServer(t)

	s.planner.On("Plan", mock.Anything, mock.MatchedBy(func(r agents.TripRequest) bool { return r.Destination == "XXX" })).
		Return(nil, &amadeus.MappingError{Field: "data[0].price.total", Err: errors.New("bad")})
	s.planner.On("Plan", mock.Anything, mock.Anything).
		Return(nil, errors.New("Validation Failed with 1 errors"))

	resp, body := s.do(t, http.MethodPost, "/v1/plan", `{"destination":"XXX"}`)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body["error"], "price.total")
	assert.NotEmpty(t, body["request_id"])

	resp, _ = s.do(t, http.MethodPost, "/v1/plan", `{"destination":"BSL"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_GetSession(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, s.sessions.Put(ctx, "session-1", session.KeyItineraryPlan, map[string]string{"city": "Basel"}))

	resp, body := s.do(t, http.MethodGet, "/v1/sessions/session-1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := body["state"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"city": "Basel"}, state[session.KeyItineraryPlan])

	resp, _ = s.do(t, http.MethodGet, "/v1/sessions/unknown", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandler_CORSPreflight(t *testing.T) {
	s := newTestServer(t)
	resp, _ := s.do(t, http.MethodOptions, "/v1/plan", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
