// Package server exposes the pipeline over the HTTP contract the UI consumes:
// multipart upload, JSON transform requests, range-capable audio streaming,
// and attachment download, plus status and job-history endpoints for the CLI.
package server
