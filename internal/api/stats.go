package api

import (
	"net/http"
)

// statsResponse is the JSON response for GET /v1/stats.
type statsResponse struct {
	Sessions       int            `json:"sessions"`
	Jobs           int            `json:"jobs"`
	JobsByStatus   map[string]int `json:"jobs_by_status"`
	AvgJobProgress float64        `json:"avg_job_progress"`
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.logger.Error("get stats", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	s.writeJSON(w, http.StatusOK, statsResponse{
		Sessions:       stats.Sessions,
		Jobs:           stats.Jobs,
		JobsByStatus:   stats.JobsByStatus,
		AvgJobProgress: stats.AvgJobProgress,
	})
}
