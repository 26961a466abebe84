package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/haldorsen/breakwater/internal/journal"
	"github.com/haldorsen/breakwater/internal/model"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// listDispatchesResponse wraps the paginated list response.
type listDispatchesResponse struct {
	Dispatches []*model.Dispatch `json:"dispatches"`
	Total      int               `json:"total"`
	Limit      int               `json:"limit"`
	Offset     int               `json:"offset"`
}

func (s *Server) handleListDispatches(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", defaultListLimit)
	offset := parseIntQuery(r, "offset", 0)

	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	dispatches, total, err := s.journal.ListDispatches(r.Context(), limit, offset)
	if err != nil {
		s.logger.Error("list dispatches", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list dispatches")
		return
	}

	if dispatches == nil {
		dispatches = []*model.Dispatch{}
	}

	s.writeJSON(w, http.StatusOK, listDispatchesResponse{
		Dispatches: dispatches,
		Total:      total,
		Limit:      limit,
		Offset:     offset,
	})
}

func (s *Server) handleGetDispatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	d, err := s.journal.GetDispatch(r.Context(), id)
	if errors.Is(err, journal.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "dispatch not found")
		return
	}
	if err != nil {
		s.logger.Error("get dispatch", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get dispatch")
		return
	}

	s.writeJSON(w, http.StatusOK, d)
}
