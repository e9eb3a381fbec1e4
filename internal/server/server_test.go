package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"

	"voxpitch/internal/api"
	"voxpitch/internal/config"
	"voxpitch/internal/jobs"
	"voxpitch/internal/logging"
	"voxpitch/internal/pipeline"
	"voxpitch/internal/server"
	"voxpitch/internal/store"
	"voxpitch/internal/testsupport"
	"voxpitch/internal/transform"
)

type passthroughExecutor struct{}

func (passthroughExecutor) Run(ctx context.Context, binary string, args []string, onOutput func(string)) error {
	src, dest := args[4], args[len(args)-1]
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}

type stubStatus struct{}

func (stubStatus) Status(context.Context) api.StatusResponse {
	return api.StatusResponse{Running: true, PID: os.Getpid()}
}

func newTestServer(t *testing.T, opts ...testsupport.ConfigOption) (*httptest.Server, *config.Config) {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)

	artifacts, err := store.New(cfg, logging.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	journal, err := jobs.Open(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = journal.Close() })

	engine := transform.New(cfg, logging.NewNop(), transform.WithExecutor(passthroughExecutor{}))
	orch := pipeline.New(artifacts, engine, journal, logging.NewNop())

	srv, err := server.New(cfg, orch, journal, stubStatus{}, logging.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, cfg
}

func uploadClip(t *testing.T, ts *httptest.Server, payload []byte, filename, contentType string) (api.UploadResponse, *http.Response) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="audio"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Post(ts.URL+"/api/upload", writer.FormDataContentType(), &body)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded api.UploadResponse
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			t.Fatal(err)
		}
	}
	return decoded, resp
}

func requestTransform(t *testing.T, ts *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/api/transform", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestUploadTransformStreamFlow(t *testing.T) {
	ts, _ := newTestServer(t)
	payload := []byte("some encoded audio content")

	uploaded, resp := uploadClip(t, ts, payload, "voice memo.mp3", "audio/mpeg")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upload status %d", resp.StatusCode)
	}
	if !uploaded.Success || uploaded.FileID == "" {
		t.Fatalf("unexpected upload response %+v", uploaded)
	}
	if uploaded.Size != int64(len(payload)) {
		t.Fatalf("size mismatch: %d vs %d", uploaded.Size, len(payload))
	}

	transformResp := requestTransform(t, ts, fmt.Sprintf(`{"fileId":%q,"transformValue":75}`, uploaded.FileID))
	if transformResp.StatusCode != http.StatusOK {
		t.Fatalf("transform status %d", transformResp.StatusCode)
	}
	var transformed api.TransformResponse
	if err := json.NewDecoder(transformResp.Body).Decode(&transformed); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(transformed.TransformedFileID, "transformed-") {
		t.Fatalf("unexpected derived id %q", transformed.TransformedFileID)
	}

	streamResp, err := http.Get(ts.URL + "/api/audio/transformed/" + transformed.TransformedFileID)
	if err != nil {
		t.Fatal(err)
	}
	defer streamResp.Body.Close()
	if streamResp.StatusCode != http.StatusOK {
		t.Fatalf("stream status %d", streamResp.StatusCode)
	}
	if ct := streamResp.Header.Get("Content-Type"); ct != "audio/mpeg" {
		t.Fatalf("stream content type %q", ct)
	}
	streamed, err := io.ReadAll(streamResp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(streamed, payload) {
		t.Fatal("streamed bytes differ from stored artifact")
	}
}

func TestStreamOriginalSupportsRange(t *testing.T) {
	ts, _ := newTestServer(t)
	payload := []byte("0123456789abcdef")

	uploaded, _ := uploadClip(t, ts, payload, "clip.mp3", "audio/mpeg")

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/audio/original/"+uploaded.FileID, nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Range", "bytes=4-7")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusPartialContent {
		t.Fatalf("expected 206, got %d", resp.StatusCode)
	}
	want := fmt.Sprintf("bytes 4-7/%d", len(payload))
	if got := resp.Header.Get("Content-Range"); got != want {
		t.Fatalf("Content-Range %q, want %q", got, want)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "4567" {
		t.Fatalf("range body %q, want %q", body, "4567")
	}
}

func TestUploadRejectsMissingField(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Post(ts.URL+"/api/upload", "multipart/form-data; boundary=x", strings.NewReader("--x--"))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestUploadRejectsNonAudio(t *testing.T) {
	ts, _ := newTestServer(t)
	_, resp := uploadClip(t, ts, []byte("plain text"), "notes.txt", "text/plain")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-audio upload, got %d", resp.StatusCode)
	}
}

func TestUploadRejectsOversize(t *testing.T) {
	ts, _ := newTestServer(t, testsupport.WithMaxUploadMiB(1))
	oversize := bytes.Repeat([]byte("a"), 1024*1024+1)
	_, resp := uploadClip(t, ts, oversize, "big.mp3", "audio/mpeg")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversize upload, got %d", resp.StatusCode)
	}
}

func TestTransformValidation(t *testing.T) {
	ts, _ := newTestServer(t)
	uploaded, _ := uploadClip(t, ts, []byte("bytes"), "clip.mp3", "audio/mpeg")

	cases := []struct {
		name string
		body string
		want int
	}{
		{"missing value", fmt.Sprintf(`{"fileId":%q}`, uploaded.FileID), http.StatusBadRequest},
		{"missing file id", `{"transformValue":50}`, http.StatusBadRequest},
		{"out of range", fmt.Sprintf(`{"fileId":%q,"transformValue":150}`, uploaded.FileID), http.StatusBadRequest},
		{"unknown source", `{"fileId":"transformed-00000000-0000-0000-0000-000000000000.mp3","transformValue":50}`, http.StatusNotFound},
		{"garbage body", `{"fileId":`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		resp := requestTransform(t, ts, tc.body)
		if resp.StatusCode != tc.want {
			t.Errorf("%s: status %d, want %d", tc.name, resp.StatusCode, tc.want)
		}
	}
}

func TestStreamUnknownID(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/audio/original/" + store.NewDerivedID())
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestStreamRejectsBadKind(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/audio/backups/whatever.mp3")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown kind, got %d", resp.StatusCode)
	}
}

func TestDownloadHeaders(t *testing.T) {
	ts, _ := newTestServer(t)
	uploaded, _ := uploadClip(t, ts, []byte("bytes to ship"), "clip.mp3", "audio/mpeg")

	transformResp := requestTransform(t, ts, fmt.Sprintf(`{"fileId":%q,"transformValue":25}`, uploaded.FileID))
	var transformed api.TransformResponse
	if err := json.NewDecoder(transformResp.Body).Decode(&transformed); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get(ts.URL + "/api/download/" + transformed.TransformedFileID)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("download status %d", resp.StatusCode)
	}
	disposition := resp.Header.Get("Content-Disposition")
	if !strings.HasPrefix(disposition, `attachment; filename="voice-transformed-`) || !strings.Contains(disposition, ".mp3") {
		t.Fatalf("unexpected disposition %q", disposition)
	}
}

func TestDownloadOnlyServesDerived(t *testing.T) {
	ts, _ := newTestServer(t)
	uploaded, _ := uploadClip(t, ts, []byte("bytes"), "clip.mp3", "audio/mpeg")

	resp, err := http.Get(ts.URL + "/api/download/" + uploaded.FileID)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("originals must not be downloadable, got %d", resp.StatusCode)
	}
}

func TestStatusAndJobsEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)
	uploaded, _ := uploadClip(t, ts, []byte("bytes"), "clip.mp3", "audio/mpeg")
	requestTransform(t, ts, fmt.Sprintf(`{"fileId":%q,"transformValue":60}`, uploaded.FileID))

	statusResp, err := http.Get(ts.URL + "/api/status")
	if err != nil {
		t.Fatal(err)
	}
	defer statusResp.Body.Close()
	var status api.StatusResponse
	if err := json.NewDecoder(statusResp.Body).Decode(&status); err != nil {
		t.Fatal(err)
	}
	if !status.Running {
		t.Fatal("stub status should report running")
	}

	jobsResp, err := http.Get(ts.URL + "/api/jobs?limit=5")
	if err != nil {
		t.Fatal(err)
	}
	defer jobsResp.Body.Close()
	var jobList api.JobsResponse
	if err := json.NewDecoder(jobsResp.Body).Decode(&jobList); err != nil {
		t.Fatal(err)
	}
	if len(jobList.Jobs) != 1 || jobList.Jobs[0].Status != "done" {
		t.Fatalf("unexpected jobs payload %+v", jobList)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/upload")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}
