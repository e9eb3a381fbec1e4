package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"voxpitch/internal/api"
	"voxpitch/internal/logging"
)

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.status == nil {
		s.writeJSON(w, http.StatusOK, api.StatusResponse{})
		return
	}
	s.writeJSON(w, http.StatusOK, s.status.Status(r.Context()))
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.journal == nil {
		s.writeJSON(w, http.StatusOK, api.JobsResponse{})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	recent, err := s.journal.Recent(r.Context(), limit)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	payload := api.JobsResponse{Jobs: make([]api.Job, 0, len(recent))}
	for _, job := range recent {
		payload.Jobs = append(payload.Jobs, api.Job{
			ID:         job.ID,
			SourceID:   job.SourceID,
			DerivedID:  job.DerivedID,
			Parameter:  job.Parameter,
			Status:     string(job.Status),
			Error:      job.ErrorMessage,
			CreatedAt:  job.CreatedAt,
			FinishedAt: job.FinishedAt,
		})
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}
