// Package api is the thin HTTP adapter over the judging pipeline. It
// decodes a submit request, builds a job.Job via internal/langpreset,
// hands it to internal/judge, and encodes the response.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/BV-BRC/cwe-judge/internal/job"
	"github.com/BV-BRC/cwe-judge/internal/judge"
	"github.com/BV-BRC/cwe-judge/internal/langpreset"
)

// Handler implements the service's three HTTP operations.
type Handler struct {
	service *judge.Service
}

// NewHandler creates a Handler over a judge.Service.
func NewHandler(service *judge.Service) *Handler {
	return &Handler{service: service}
}

// createRequest is the external submit request shape.
type createRequest struct {
	Code        string   `json:"code"`
	Language    string   `json:"language"`
	Input       string   `json:"input"`
	Expected    string   `json:"expected"`
	TimeLimit   *float64 `json:"time_limit,omitempty"`
	MemoryLimit *int64   `json:"memory_limit,omitempty"`
	StackLimit  *int64   `json:"stack_limit,omitempty"`
}

type createResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// CreateJob implements POST /create.
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	lang, ok := langpreset.Lookup(req.Language)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unsupported language: " + req.Language})
		return
	}

	j := job.New(req.Code, lang).WithStdin(req.Input).WithExpectedOutput(req.Expected)

	settings := j.Settings
	if req.TimeLimit != nil {
		settings.CPUTimeLimit = *req.TimeLimit
	}
	if req.MemoryLimit != nil {
		settings.MemoryLimit = *req.MemoryLimit
	}
	if req.StackLimit != nil {
		settings.StackLimit = *req.StackLimit
	}
	j.WithLimits(settings.CPUTimeLimit, settings.WallTimeLimit, settings.MemoryLimit, settings.StackLimit, settings.MaxProcesses)

	id, err := h.service.Submit(r.Context(), j)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, createResponse{Status: "created", ID: strconv.FormatUint(id, 10)})
}

// CheckJob implements GET /check/{id}.
func (h *Handler) CheckJob(w http.ResponseWriter, r *http.Request) {
	idParam := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(idParam, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid job id"})
		return
	}

	j, found, err := h.service.Check(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "job not found"})
		return
	}

	writeJSON(w, http.StatusOK, judge.ToCheckResponse(j))
}

// HealthCheck implements GET /health.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
