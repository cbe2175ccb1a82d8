package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmutonyi/assetimport/internal/config"
	"github.com/dmutonyi/assetimport/internal/importer"
	"github.com/dmutonyi/assetimport/internal/schema"
	"github.com/dmutonyi/assetimport/internal/workbook"
)

type stubPipeline struct {
	summary importer.Summary
	err     error
	gotData []byte
}

func (p *stubPipeline) Import(_ context.Context, data []byte) (importer.Summary, error) {
	p.gotData = data
	return p.summary, p.err
}

type stubStore struct {
	cats []schema.Category
	err  error
}

func (s *stubStore) Categories(context.Context) ([]schema.Category, error) {
	return s.cats, s.err
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Import.MaxFileSize = 1 << 20
	cfg.Import.Timeout = time.Minute
	cfg.Rate.Enabled = false
	return cfg
}

func newTestServer(pipeline ImportService, store CategorySource) *Server {
	return NewServer(pipeline, store, testConfig())
}

// multipartUpload builds a request body with the workbook bytes under the
// "file" form field.
func multipartUpload(t *testing.T, field string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, "assets.xlsx")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &body, mw.FormDataContentType()
}

func TestHandleImport_Success(t *testing.T) {
	pipeline := &stubPipeline{summary: importer.Summary{
		BatchID:   "run-1",
		Total:     3,
		Submitted: 2,
		Failed:    1,
		Failures:  []importer.Failure{{Line: 4, Reason: "missing required field"}},
	}}
	srv := newTestServer(pipeline, &stubStore{})

	body, contentType := multipartUpload(t, "file", []byte("workbook-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	// Partial failure is still a 200; the summary carries the detail.
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	if !bytes.Equal(pipeline.gotData, []byte("workbook-bytes")) {
		t.Error("pipeline did not receive the uploaded bytes")
	}

	var sum importer.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if sum.Total != 3 || sum.Submitted != 2 || sum.Failed != 1 {
		t.Errorf("summary = %+v", sum)
	}
	if len(sum.Failures) != 1 || sum.Failures[0].Line != 4 {
		t.Errorf("failures = %+v", sum.Failures)
	}
}

func TestHandleImport_MissingFile(t *testing.T) {
	srv := newTestServer(&stubPipeline{}, &stubStore{})

	body, contentType := multipartUpload(t, "attachment", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/api/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleImport_UnreadableWorkbook(t *testing.T) {
	pipeline := &stubPipeline{err: &workbook.DecodeError{Reason: "not a parseable workbook"}}
	srv := newTestServer(pipeline, &stubStore{})

	body, contentType := multipartUpload(t, "file", []byte("not an xlsx"))
	req := httptest.NewRequest(http.MethodPost, "/api/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Error == "" {
		t.Error("error response must carry a message")
	}
}

func TestHandleImport_PipelineFailure(t *testing.T) {
	pipeline := &stubPipeline{err: errors.New("boom")}
	srv := newTestServer(pipeline, &stubStore{})

	body, contentType := multipartUpload(t, "file", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/api/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestHandleImport_UploadTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.Import.MaxFileSize = 64
	srv := NewServer(&stubPipeline{}, &stubStore{}, cfg)

	body, contentType := multipartUpload(t, "file", bytes.Repeat([]byte("a"), 4096))
	req := httptest.NewRequest(http.MethodPost, "/api/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	if rec.Code == http.StatusOK {
		t.Errorf("oversized upload accepted with status %d", rec.Code)
	}
}

func TestHandleCategories(t *testing.T) {
	tests := []struct {
		name       string
		store      *stubStore
		wantStatus int
		wantBody   string
	}{
		{
			name: "list returned as JSON",
			store: &stubStore{cats: []schema.Category{
				{ID: 1, CategoryName: "IT Equipment"},
			}},
			wantStatus: http.StatusOK,
			wantBody:   `[{"id":1,"category_name":"IT Equipment"}]`,
		},
		{
			name:       "nil list serializes as empty array",
			store:      &stubStore{},
			wantStatus: http.StatusOK,
			wantBody:   `[]`,
		},
		{
			name:       "store unreachable",
			store:      &stubStore{err: errors.New("connection refused")},
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(&stubPipeline{}, tt.store)

			req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
			rec := httptest.NewRecorder()
			srv.Router().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantBody != "" {
				if got := bytes.TrimSpace(rec.Body.Bytes()); string(got) != tt.wantBody {
					t.Errorf("body = %s, want %s", got, tt.wantBody)
				}
			}
		})
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(&stubPipeline{}, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(&stubPipeline{}, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)

	if !rl.allow("10.0.0.1") || !rl.allow("10.0.0.1") {
		t.Fatal("first two requests within the window must pass")
	}
	if rl.allow("10.0.0.1") {
		t.Error("third request within the window must be limited")
	}
	if !rl.allow("10.0.0.2") {
		t.Error("a different client has its own bucket")
	}
}
