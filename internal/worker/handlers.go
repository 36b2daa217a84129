package worker

import (
	"errors"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/SaiKrishna-333/QuckAI/internal/pipeline"
	"github.com/SaiKrishna-333/QuckAI/internal/project"
)

// ClusterRequest is the body of POST /api/cluster.
type ClusterRequest struct {
	Projects []project.Project `json:"projects"`
}

// ClusterResponse is the success body of POST /api/cluster.
type ClusterResponse struct {
	Clusters []pipeline.Cluster `json:"clusters"`
}

// writeJSON writes a JSON response with proper error handling.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !s.ready.Load() {
		writeError(w, http.StatusServiceUnavailable, "not ready")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.version,
	})
}

func (s *Service) handleCluster(w http.ResponseWriter, r *http.Request) {
	var req ClusterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	clusters, err := s.pipeline.Run(r.Context(), req.Projects)
	if err != nil {
		switch {
		case errors.Is(err, pipeline.ErrRunInProgress):
			writeError(w, http.StatusConflict, "a clustering run is already in progress")
		case errors.Is(err, pipeline.ErrInsufficientData):
			writeError(w, http.StatusUnprocessableEntity, "at least two projects with descriptions are required")
		case errors.Is(err, pipeline.ErrEmbeddingUnavailable):
			log.Error().Err(err).Msg("Clustering failed: embedding provider")
			writeError(w, http.StatusBadGateway, "clustering failed, try again later")
		case errors.Is(err, pipeline.ErrCancelled):
			// Client went away; the status is written for completeness.
			writeError(w, http.StatusServiceUnavailable, "clustering run cancelled")
		default:
			log.Error().Err(err).Msg("Clustering failed")
			writeError(w, http.StatusInternalServerError, "clustering failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, ClusterResponse{Clusters: clusters})
}
