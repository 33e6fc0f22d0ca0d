package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/zenitsu0509/Employee-NLQ/pkg/apperrors"
	"github.com/zenitsu0509/Employee-NLQ/pkg/logging"
	"github.com/zenitsu0509/Employee-NLQ/pkg/models"
	"github.com/zenitsu0509/Employee-NLQ/pkg/services"
)

// EngineHandler exposes connection, schema and query endpoints backed by
// the engine registry.
type EngineHandler struct {
	registry *services.Registry
	logger   *zap.Logger
}

// NewEngineHandler creates a new EngineHandler.
func NewEngineHandler(registry *services.Registry, logger *zap.Logger) *EngineHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EngineHandler{registry: registry, logger: logger.Named("handlers")}
}

// RegisterRoutes registers the engine handler's routes on the given mux.
func (h *EngineHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/connect", h.Connect)
	mux.HandleFunc("POST /api/schema/refresh", h.RefreshSchema)
	mux.HandleFunc("POST /api/query", h.Query)
	mux.HandleFunc("GET /api/history", h.History)
}

type connectRequest struct {
	ConnectionString string `json:"connection_string"`
}

type queryRequest struct {
	ConnectionString string `json:"connection_string"`
	Query            string `json:"query"`
	TopK             int    `json:"top_k"`
}

type schemaResponse struct {
	Identity string              `json:"identity"`
	Schema   *models.SchemaModel `json:"schema"`
}

// Connect handles POST /api/connect requests. First use of a connection
// string runs schema discovery; repeat use returns the existing engine's
// schema snapshot.
func (h *EngineHandler) Connect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ConnectionString == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "validation_error", "connection_string is required")
		return
	}

	engine, err := h.registry.GetOrCreate(r.Context(), req.ConnectionString)
	if err != nil {
		h.logger.Warn("connect failed", zap.String("error", logging.SanitizeError(err)))
		_ = WriteError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, schemaResponse{
		Identity: string(engine.Identity()),
		Schema:   engine.Schema(),
	})
}

// RefreshSchema handles POST /api/schema/refresh requests for an already
// connected database.
func (h *EngineHandler) RefreshSchema(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	engine, ok := h.registry.Get(req.ConnectionString)
	if !ok {
		_ = WriteError(w, apperrors.ErrConnectionNotFound)
		return
	}

	schema, err := engine.RefreshSchema(r.Context())
	if err != nil {
		h.logger.Warn("schema refresh failed", zap.String("error", logging.SanitizeError(err)))
		_ = WriteError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, schemaResponse{
		Identity: string(engine.Identity()),
		Schema:   schema,
	})
}

// Query handles POST /api/query requests.
func (h *EngineHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ConnectionString == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "validation_error", "connection_string is required")
		return
	}

	engine, err := h.registry.GetOrCreate(r.Context(), req.ConnectionString)
	if err != nil {
		h.logger.Warn("connect failed", zap.String("error", logging.SanitizeError(err)))
		_ = WriteError(w, err)
		return
	}

	result, err := engine.Query(r.Context(), req.Query, req.TopK)
	if err != nil {
		_ = WriteError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, result)
}

// History handles GET /api/history requests, most recent first.
func (h *EngineHandler) History(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.registry.Get(r.URL.Query().Get("connection_string"))
	if !ok {
		_ = WriteError(w, apperrors.ErrConnectionNotFound)
		return
	}

	_ = WriteJSON(w, http.StatusOK, map[string]any{
		"history": engine.History(),
	})
}

// decodeJSON decodes the request body into dst, writing a 400 response
// and returning false on malformed input.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return false
	}
	return true
}
