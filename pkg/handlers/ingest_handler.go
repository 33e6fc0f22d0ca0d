package handlers

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/zenitsu0509/Employee-NLQ/pkg/apperrors"
	"github.com/zenitsu0509/Employee-NLQ/pkg/logging"
	"github.com/zenitsu0509/Employee-NLQ/pkg/services"
)

const maxMultipartMemory = 32 << 20

// IngestHandler exposes document ingestion and job tracking endpoints.
type IngestHandler struct {
	registry *services.Registry
	logger   *zap.Logger
}

// NewIngestHandler creates a new IngestHandler.
func NewIngestHandler(registry *services.Registry, logger *zap.Logger) *IngestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngestHandler{registry: registry, logger: logger.Named("handlers")}
}

// RegisterRoutes registers the ingest handler's routes on the given mux.
func (h *IngestHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/ingest", h.Ingest)
	mux.HandleFunc("GET /api/jobs", h.Jobs)
	mux.HandleFunc("GET /api/jobs/{id}", h.Job)
}

// Ingest handles POST /api/ingest multipart requests. The job is queued
// and processed in the background; the response carries the pending job.
func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "validation_error", "invalid multipart request")
		return
	}

	connString := r.FormValue("connection_string")
	if connString == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "validation_error", "connection_string is required")
		return
	}

	engine, err := h.registry.GetOrCreate(r.Context(), connString)
	if err != nil {
		h.logger.Warn("connect failed", zap.String("error", logging.SanitizeError(err)))
		_ = WriteError(w, err)
		return
	}

	var files []services.FileInput
	for _, header := range r.MultipartForm.File["files"] {
		file, err := header.Open()
		if err != nil {
			_ = ErrorResponse(w, http.StatusBadRequest, "validation_error", "unreadable file "+header.Filename)
			return
		}
		content, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			_ = ErrorResponse(w, http.StatusBadRequest, "validation_error", "unreadable file "+header.Filename)
			return
		}
		files = append(files, services.FileInput{Name: header.Filename, Content: content})
	}

	job, err := engine.Ingest(r.Context(), files)
	if err != nil {
		_ = WriteError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusAccepted, job)
}

// Jobs handles GET /api/jobs requests.
func (h *IngestHandler) Jobs(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.registry.Get(r.URL.Query().Get("connection_string"))
	if !ok {
		_ = WriteError(w, apperrors.ErrConnectionNotFound)
		return
	}

	_ = WriteJSON(w, http.StatusOK, map[string]any{
		"jobs": engine.Jobs(),
	})
}

// Job handles GET /api/jobs/{id} requests.
func (h *IngestHandler) Job(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.registry.Get(r.URL.Query().Get("connection_string"))
	if !ok {
		_ = WriteError(w, apperrors.ErrConnectionNotFound)
		return
	}

	job, err := engine.Job(r.PathValue("id"))
	if err != nil {
		_ = WriteError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, job)
}
