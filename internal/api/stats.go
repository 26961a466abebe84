package api

import (
	"net/http"
)

// statsResponse is the JSON response for GET /v1/stats.
type statsResponse struct {
	Total         int            `json:"total"`
	ByOutcome     map[string]int `json:"by_outcome"`
	ByPool        map[string]int `json:"by_pool"`
	AvgDurationMS float64        `json:"avg_duration_ms"`
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.journal.GetDispatchStats(r.Context())
	if err != nil {
		s.logger.Error("get dispatch stats", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	s.writeJSON(w, http.StatusOK, statsResponse{
		Total:         stats.Total,
		ByOutcome:     stats.CountByOutcome,
		ByPool:        stats.CountByPool,
		AvgDurationMS: stats.AvgDurationMS,
	})
}
