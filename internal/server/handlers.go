package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"voxpitch/internal/api"
	"voxpitch/internal/logging"
	"voxpitch/internal/services"
	"voxpitch/internal/store"
)

// multipartOverhead leaves room for multipart framing above the payload
// ceiling the store enforces byte-exactly.
const multipartOverhead = 1 << 20

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+multipartOverhead)
	file, header, err := r.FormFile("audio")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeError(w, http.StatusBadRequest, "uploaded file is too large")
			return
		}
		s.writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	result, err := s.orch.Ingest(r.Context(), file, header.Header.Get("Content-Type"), header.Filename)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, api.UploadResponse{
		Success:      true,
		FileID:       result.Artifact.ID,
		OriginalName: result.OriginalName,
		Size:         result.Artifact.Size,
	})
}

func (s *Server) handleTransform(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req api.TransformRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := decoder.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.FileID) == "" || req.TransformValue == nil {
		s.writeError(w, http.StatusBadRequest, "missing required parameters")
		return
	}

	derived, err := s.orch.Transform(r.Context(), req.FileID, *req.TransformValue)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, api.TransformResponse{
		Success:           true,
		TransformedFileID: derived.ID,
	})
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/audio/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[1] == "" || strings.Contains(parts[1], "/") {
		s.writeError(w, http.StatusNotFound, "file not found")
		return
	}

	var kind store.Kind
	switch parts[0] {
	case "original":
		kind = store.KindOriginal
	case "transformed":
		kind = store.KindDerived
	default:
		s.writeError(w, http.StatusNotFound, "file not found")
		return
	}

	file, artifact, err := s.orch.Fetch(r.Context(), parts[1], kind)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	defer file.Close()

	// Streamed bytes are always labeled audio/mpeg regardless of the stored
	// container; players key on the bytes, not the header.
	w.Header().Set("Content-Type", "audio/mpeg")
	http.ServeContent(w, r, "", artifact.ModTime, file)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/download/")
	if id == "" || strings.Contains(id, "/") {
		s.writeError(w, http.StatusNotFound, "file not found")
		return
	}

	file, artifact, err := s.orch.Fetch(r.Context(), id, store.KindDerived)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	defer file.Close()

	filename := fmt.Sprintf("voice-transformed-%d.mp3", time.Now().UnixMilli())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Type", "audio/mpeg")
	http.ServeContent(w, r, "", artifact.ModTime, file)
}

func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := services.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logging.WithContext(r.Context(), s.logger).Error("request failed",
			logging.String("path", r.URL.Path),
			logging.Error(err),
		)
	}
	s.writeError(w, status, services.ClientMessage(err))
}
