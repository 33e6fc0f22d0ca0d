package handlers

import (
	"net/http"
	"runtime"

	"go.uber.org/zap"

	"github.com/zenitsu0509/Employee-NLQ/pkg/config"
)

// PingResponse contains service status and version information.
type PingResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Service   string `json:"service"`
	GoVersion string `json:"go_version"`
}

// HealthHandler handles health check and ping endpoints.
type HealthHandler struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(cfg *config.Config, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{cfg: cfg, logger: logger}
}

// RegisterRoutes registers the health handler's routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ping", h.Ping)
}

// Health handles GET /health requests.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ping handles GET /ping requests.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	_ = WriteJSON(w, http.StatusOK, PingResponse{
		Status:    "ok",
		Version:   h.cfg.Version,
		Service:   "employee-nlq",
		GoVersion: runtime.Version(),
	})
}
