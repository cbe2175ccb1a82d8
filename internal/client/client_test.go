package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmutonyi/assetimport/internal/importer"
)

func TestCreateAsset_MultipartFields(t *testing.T) {
	var gotFields map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/addAsset" {
			t.Errorf("request = %s %s, want POST /addAsset", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		gotFields = r.MultipartForm.Value
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	rec := importer.Record{Line: 2, Fields: map[string]string{
		"assetName":    "Laptop",
		"assetType":    "IT",
		"serialNumber": "SN-001",
		"purchaseDate": "2024-01-15 00:00:00",
	}}

	if err := c.CreateAsset(context.Background(), rec); err != nil {
		t.Fatalf("CreateAsset() error = %v", err)
	}

	for k, want := range rec.Fields {
		if got := gotFields[k]; len(got) != 1 || got[0] != want {
			t.Errorf("form field %q = %v, want %q", k, got, want)
		}
	}
}

func TestCreateAsset_LogoPart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		files := r.MultipartForm.File["logo"]
		if len(files) != 1 {
			t.Fatalf("logo parts = %d, want 1", len(files))
		}
		fh := files[0]
		if fh.Filename != "logo.png" {
			t.Errorf("logo filename = %q, want logo.png", fh.Filename)
		}
		if ct := fh.Header.Get("Content-Type"); ct != "image/png" {
			t.Errorf("logo content type = %q, want image/png", ct)
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	rec := importer.Record{
		Fields: map[string]string{"assetName": "Laptop"},
		Logo: &importer.Attachment{
			Filename:    "logo.png",
			ContentType: "image/png",
			Data:        []byte{0x89, 0x50, 0x4e, 0x47},
		},
	}

	if err := c.CreateAsset(context.Background(), rec); err != nil {
		t.Fatalf("CreateAsset() error = %v", err)
	}
}

func TestCreateAsset_Acknowledgments(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    bool
		wantReason string
	}{
		{
			name:   "explicit success",
			status: http.StatusOK,
			body:   `{"success":true,"message":"asset created"}`,
		},
		{
			name:       "explicit rejection carries the store's error",
			status:     http.StatusOK,
			body:       `{"success":false,"error":"duplicate serial number"}`,
			wantErr:    true,
			wantReason: "duplicate serial number",
		},
		{
			name:       "rejection falls back to the message field",
			status:     http.StatusBadRequest,
			body:       `{"success":false,"message":"missing asset name"}`,
			wantErr:    true,
			wantReason: "missing asset name",
		},
		{
			name:    "non-JSON error body falls back to the status",
			status:  http.StatusBadGateway,
			body:    "upstream exploded",
			wantErr: true,
		},
		{
			name:    "2xx with unreadable body is still a failure",
			status:  http.StatusOK,
			body:    "ok",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := New(srv.URL, 5*time.Second)
			err := c.CreateAsset(context.Background(), importer.Record{
				Fields: map[string]string{"assetName": "Laptop"},
			})

			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateAsset() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantReason != "" && !strings.Contains(err.Error(), tt.wantReason) {
				t.Errorf("error %q should carry reason %q", err, tt.wantReason)
			}
		})
	}
}

func TestCreateAsset_StoreUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := New(srv.URL, time.Second)
	err := c.CreateAsset(context.Background(), importer.Record{
		Fields: map[string]string{"assetName": "Laptop"},
	})
	if err == nil {
		t.Fatal("CreateAsset() succeeded against a closed server")
	}
}

func TestCategories_FetchedOnceAndCached(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/categories" {
			t.Errorf("path = %s, want /categories", r.URL.Path)
		}
		hits.Add(1)
		w.Write([]byte(`[{"id":1,"category_name":"IT Equipment"},{"id":2,"category_name":"Furniture"}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)

	first, err := c.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories() error = %v", err)
	}
	if len(first) != 2 || first[0].CategoryName != "IT Equipment" {
		t.Errorf("categories = %+v", first)
	}

	second, err := c.Categories(context.Background())
	if err != nil {
		t.Fatalf("second Categories() error = %v", err)
	}
	if len(second) != 2 {
		t.Errorf("cached categories = %+v", second)
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("store hit %d times, want 1 (cached after first fetch)", got)
	}
}

// A failed fetch is not cached; the next call retries.
func TestCategories_ErrorNotCached(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`[{"id":1,"category_name":"IT Equipment"}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)

	if _, err := c.Categories(context.Background()); err == nil {
		t.Fatal("first Categories() should fail")
	}

	cats, err := c.Categories(context.Background())
	if err != nil {
		t.Fatalf("retry Categories() error = %v", err)
	}
	if len(cats) != 1 {
		t.Errorf("categories = %+v, want one entry", cats)
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("store hit %d times, want 2", got)
	}
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c := New("http://store.local/", time.Second)
	if c.baseURL != "http://store.local" {
		t.Errorf("baseURL = %q, want trailing slash trimmed", c.baseURL)
	}
}
