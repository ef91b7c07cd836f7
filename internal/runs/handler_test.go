package runs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"textlens-backend/internal/pipeline"
)

func newTestRouter(t *testing.T, svc *Service, enrich HealthChecker) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api")
	NewHandler(svc, enrich).RegisterRoutes(api)
	return r
}

func multipartUpload(t *testing.T, fileName, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &body, mw.FormDataContentType()
}

func TestUploadAcceptedAndPollable(t *testing.T) {
	svc, _ := newTestService(t)
	router := newTestRouter(t, svc, nil)

	body, contentType := multipartUpload(t, "ocean.txt", serviceSample)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", resp.Code, resp.Body.String())
	}
	var accepted struct {
		Success    bool   `json:"success"`
		AnalysisID string `json:"analysisId"`
		Status     string `json:"status"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &accepted); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !accepted.Success || accepted.AnalysisID == "" || accepted.Status != "pending" {
		t.Fatalf("unexpected response %+v", accepted)
	}

	waitForTerminal(t, svc, accepted.AnalysisID)

	req = httptest.NewRequest(http.MethodGet, "/api/results/"+accepted.AnalysisID, nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var result map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result["status"] != "completed" {
		t.Fatalf("expected completed result, got %v", result["status"])
	}
	if _, ok := result["textStatistics"]; !ok {
		t.Fatalf("expected textStatistics in result body")
	}
}

func TestUploadMissingFile(t *testing.T) {
	svc, _ := newTestService(t)
	router := newTestRouter(t, svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader(""))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestUploadUnsupportedFormat(t *testing.T) {
	svc, _ := newTestService(t)
	router := newTestRouter(t, svc, nil)

	body, contentType := multipartUpload(t, "image.png", "binary")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", resp.Code)
	}
}

func TestResultNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	router := newTestRouter(t, svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/results/no-such-run", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestDownloadEndpointSetsAttachment(t *testing.T) {
	svc, _ := newTestService(t)
	router := newTestRouter(t, svc, nil)

	id, err := svc.Start(context.Background(), "ocean.txt", strings.NewReader(serviceSample))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	waitForTerminal(t, svc, id)

	req := httptest.NewRequest(http.MethodGet, "/api/download/"+id, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if cd := resp.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Fatalf("expected attachment disposition, got %q", cd)
	}

	// Delete-after-download: a second download misses.
	req = httptest.NewRequest(http.MethodGet, "/api/download/"+id, nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after consume, got %d", resp.Code)
	}
}

func TestFormatsEndpoint(t *testing.T) {
	svc, _ := newTestService(t)
	router := newTestRouter(t, svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/formats", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var payload struct {
		Formats []struct {
			Extension string `json:"extension"`
			Available bool   `json:"available"`
		} `json:"formats"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode formats: %v", err)
	}
	if len(payload.Formats) == 0 {
		t.Fatalf("expected formats list")
	}
	seenTxt := false
	for _, f := range payload.Formats {
		if f.Extension == ".txt" && f.Available {
			seenTxt = true
		}
	}
	if !seenTxt {
		t.Fatalf("expected .txt available in %v", payload.Formats)
	}
}

type stubHealth struct{ err error }

func (s stubHealth) Health(ctx context.Context) error { return s.err }

func TestOllamaHealthEndpoint(t *testing.T) {
	svc, _ := newTestService(t)

	cases := []struct {
		name      string
		enrich    HealthChecker
		available bool
	}{
		{"not configured", nil, false},
		{"healthy", stubHealth{}, true},
		{"unreachable", stubHealth{err: errors.New("connection refused")}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(t, svc, tc.enrich)
			req := httptest.NewRequest(http.MethodGet, "/api/ollama/health", nil)
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)
			if resp.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", resp.Code)
			}
			var payload map[string]any
			if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if payload["available"] != tc.available {
				t.Fatalf("expected available=%v, got %v", tc.available, payload["available"])
			}
		})
	}
}

func TestPendingRunVisibleWithoutResultBody(t *testing.T) {
	svc, _ := newTestService(t)
	router := newTestRouter(t, svc, nil)

	svc.Results.Put(&pipeline.Result{
		AnalysisID: "pending-run",
		Timestamp:  time.Now().UTC(),
		Status:     pipeline.StatusProcessing,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/results/pending-run", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var payload map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["status"] != "processing" {
		t.Fatalf("expected processing, got %v", payload["status"])
	}
	if _, ok := payload["textStatistics"]; ok {
		t.Fatalf("in-flight run should not expose a result body")
	}
}
