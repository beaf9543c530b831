// Package v1 is the HTTP surface over the tool registry, the trip pipeline
// and session state.
package v1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/va6996/tripplanner/agents"
	reqctx "github.com/va6996/tripplanner/context"
	"github.com/va6996/tripplanner/log"
	"github.com/va6996/tripplanner/plugins/amadeus"
	"github.com/va6996/tripplanner/session"
	"github.com/va6996/tripplanner/tools"
)

// RequestIDHeader carries the request id in and out.
const RequestIDHeader = "X-Request-ID"

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

type ToolCatalog interface {
	Describe() []tools.Descriptor
	Has(name string) bool
	ExecuteTool(ctx context.Context, name string, args map[string]interface{}) (interface{}, error)
}

type SessionReader interface {
	Snapshot(ctx context.Context, sessionID string) (map[string]json.RawMessage, error)
}

// Handler handles HTTP requests.
type Handler struct {
	tools    ToolCatalog
	planner  agents.Planner
	sessions SessionReader
}

// New creates a new Handler.
func New(catalog ToolCatalog, planner agents.Planner, sessions SessionReader) *Handler {
	return &Handler{
		tools:    catalog,
		planner:  planner,
		sessions: sessions,
	}
}

// Routes returns the API mux wrapped in request id and CORS middleware.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.Health)
	mux.HandleFunc("GET /v1/tools", h.ListTools)
	mux.HandleFunc("POST /v1/tools/{name}", h.ExecuteTool)
	mux.HandleFunc("POST /v1/plan", h.Plan)
	mux.HandleFunc("GET /v1/sessions/{id}", h.GetSession)
	return WithRequestID(WithCORS(mux))
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListTools handles GET /v1/tools.
func (h *Handler) ListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]interface{}{"tools": h.tools.Describe()})
}

// ExecuteTool handles POST /v1/tools/{name} with the named arguments as a JSON object.
func (h *Handler) ExecuteTool(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := r.PathValue("name")
	if !h.tools.Has(name) {
		writeError(ctx, w, http.StatusNotFound, fmt.Sprintf("tool not found: %s", name))
		return
	}

	args := map[string]interface{}{}
	if err := decodeBody(r, &args); err != nil {
		writeError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	log.Infof(ctx, "Executing tool %s", name)
	out, err := h.tools.ExecuteTool(ctx, name, args)
	if err != nil {
		log.Warnf(ctx, "Tool %s failed: %v", name, err)
		writeError(ctx, w, statusFor(err), err.Error())
		return
	}
	writeJSON(ctx, w, http.StatusOK, out)
}

// Plan handles POST /v1/plan.
func (h *Handler) Plan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req agents.TripRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.planner.Plan(ctx, req)
	if err != nil {
		log.Errorf(ctx, "Error processing plan request: %v", err)
		writeError(ctx, w, statusFor(err), err.Error())
		return
	}
	writeJSON(ctx, w, http.StatusOK, result)
}

// GetSession handles GET /v1/sessions/{id}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	state, err := h.sessions.Snapshot(ctx, id)
	if errors.Is(err, session.ErrNotFound) {
		writeError(ctx, w, http.StatusNotFound, fmt.Sprintf("session not found: %s", id))
		return
	}
	if err != nil {
		log.Errorf(ctx, "Failed to load session %s: %v", id, err)
		writeError(ctx, w, http.StatusInternalServerError, "failed to load session")
		return
	}
	writeJSON(ctx, w, http.StatusOK, map[string]interface{}{"session_id": id, "state": state})
}

// statusFor maps an execution error to a response code. Provider responses we
// cannot interpret are the upstream's fault; anything else is the caller's.
func statusFor(err error) int {
	var me *amadeus.MappingError
	if errors.As(err, &me) {
		return http.StatusBadGateway
	}
	return http.StatusBadRequest
}

func decodeBody(r *http.Request, out interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Can't change status after WriteHeader, just log
		log.Errorf(ctx, "failed to encode response: %v", err)
	}
}

// writeError writes a JSON error response.
func writeError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	writeJSON(ctx, w, status, map[string]string{
		"error":      message,
		"request_id": reqctx.RequestIDFromContext(ctx),
	})
}
