// Package api declares the JSON payloads shared by the HTTP server and the
// CLI client.
package api

import "time"

// UploadResponse is returned by POST /api/upload.
type UploadResponse struct {
	Success      bool   `json:"success"`
	FileID       string `json:"fileId"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
}

// TransformRequest is the body of POST /api/transform. TransformValue is a
// pointer so a missing field is distinguishable from zero.
type TransformRequest struct {
	FileID         string   `json:"fileId"`
	TransformValue *float64 `json:"transformValue"`
}

// TransformResponse is returned by POST /api/transform.
type TransformResponse struct {
	Success           bool   `json:"success"`
	TransformedFileID string `json:"transformedFileId"`
}

// ErrorResponse carries a stable machine-readable failure message.
type ErrorResponse struct {
	Error string `json:"error"`
}

// DependencyStatus reports availability of an external tool.
type DependencyStatus struct {
	Name      string `json:"name"`
	Command   string `json:"command"`
	Available bool   `json:"available"`
	Detail    string `json:"detail,omitempty"`
}

// ArtifactCounts summarizes the store contents.
type ArtifactCounts struct {
	Originals int `json:"originals"`
	Derived   int `json:"derived"`
}

// StatusResponse is returned by GET /api/status.
type StatusResponse struct {
	Running       bool               `json:"running"`
	PID           int                `json:"pid"`
	UptimeSeconds int64              `json:"uptimeSeconds"`
	Dependencies  []DependencyStatus `json:"dependencies"`
	Artifacts     ArtifactCounts     `json:"artifacts"`
}

// Job mirrors one journal entry in GET /api/jobs.
type Job struct {
	ID         int64      `json:"id"`
	SourceID   string     `json:"sourceId"`
	DerivedID  string     `json:"derivedId,omitempty"`
	Parameter  float64    `json:"parameter"`
	Status     string     `json:"status"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

// JobsResponse is returned by GET /api/jobs.
type JobsResponse struct {
	Jobs []Job `json:"jobs"`
}
