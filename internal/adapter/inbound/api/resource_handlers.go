package api

import (
	"errors"
	"net/http"

	"github.com/Assure-Desk/assuredesk/internal/domain/assurance"
	"github.com/Assure-Desk/assuredesk/internal/domain/connection"
	"github.com/Assure-Desk/assuredesk/internal/service"
)

func (h *Handler) handleListConnections(w http.ResponseWriter, r *http.Request) {
	conns, err := h.connections.List(r.Context())
	if err != nil {
		h.logger.Error("list connections failed", "error", err)
		h.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.respondJSON(w, http.StatusOK, conns)
}

func (h *Handler) handleAddConnection(w http.ResponseWriter, r *http.Request) {
	var req service.AddInput
	if err := h.readJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	conn, err := h.connections.Add(r.Context(), req)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.respondJSON(w, http.StatusCreated, conn)
}

// testConnectionResponse is the wire shape of a connectivity test result.
type testConnectionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func (h *Handler) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	ok, err := h.connections.Test(r.Context(), id)
	if err != nil {
		var probeErr *service.ProbeError
		switch {
		case errors.Is(err, connection.ErrConnectionNotFound):
			h.respondError(w, http.StatusNotFound, "connection not found")
			return
		case errors.As(err, &probeErr):
			// A failed probe is a completed test with a negative
			// result, not an HTTP error.
		default:
			h.logger.Error("connection test failed", "error", err, "id", id)
			h.respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	if h.metrics != nil {
		h.metrics.ConnectionTests.WithLabelValues(testResultLabel(ok)).Inc()
	}

	resp := testConnectionResponse{Success: ok}
	if err != nil {
		resp.Message = err.Error()
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func testResultLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// applicationListResponse carries the list plus paging metadata.
type applicationListResponse struct {
	Data  []assurance.Application `json:"data"`
	Total int                     `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}

func (h *Handler) handleListApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.applications.List(r.Context())
	if err != nil {
		h.logger.Error("list applications failed", "error", err)
		h.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.respondJSON(w, http.StatusOK, applicationListResponse{
		Data:  apps,
		Total: len(apps),
		Page:  1,
		Limit: len(apps),
	})
}

func (h *Handler) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	app, err := h.applications.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, assurance.ErrApplicationNotFound) {
			h.respondError(w, http.StatusNotFound, "application not found")
			return
		}
		h.logger.Error("get application failed", "error", err, "id", id)
		h.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.respondJSON(w, http.StatusOK, app)
}

func (h *Handler) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Snapshot(r.Context())
	if err != nil {
		h.logger.Error("stats snapshot failed", "error", err)
		h.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.respondJSON(w, http.StatusOK, stats)
}
