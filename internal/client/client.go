// Package client talks to the asset store, the external service that owns
// persistence. Two capabilities are consumed: the single-record creation
// endpoint (POST /addAsset, multipart) and the category list
// (GET /categories), which only feeds the type selector.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmutonyi/assetimport/internal/importer"
	"github.com/dmutonyi/assetimport/internal/schema"
)

// Client is an asset store API client. It is safe for concurrent use.
type Client struct {
	baseURL string
	httpc   *http.Client

	// Categories are low-churn; the first successful fetch is cached for
	// the process lifetime with no invalidation.
	mu         sync.Mutex
	categories []schema.Category
	fetched    bool
}

// apiResponse is the store's acknowledgment envelope.
type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// New creates a Client for the store at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
	}
}

// CreateAsset submits one record as a multipart form to the creation
// endpoint. A nil return means the store acknowledged success; any
// non-success acknowledgment or transport fault is an error.
func (c *Client) CreateAsset(ctx context.Context, rec importer.Record) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	// Deterministic part order keeps payloads reproducible across runs.
	keys := make([]string, 0, len(rec.Fields))
	for k := range rec.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := mw.WriteField(k, rec.Fields[k]); err != nil {
			return fmt.Errorf("encode field %q: %w", k, err)
		}
	}

	if rec.Logo != nil {
		if err := writeLogoPart(mw, rec.Logo); err != nil {
			return err
		}
	}

	if err := mw.Close(); err != nil {
		return fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/addAsset", &body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("asset store unreachable: %w", err)
	}
	defer resp.Body.Close()

	return decodeAck(resp)
}

// Categories returns the store's category list, fetching it at most once.
// Fetch errors are not cached, so a later call can succeed once the store
// becomes reachable.
func (c *Client) Categories(ctx context.Context) ([]schema.Category, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fetched {
		return c.categories, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/categories", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch categories: unexpected status %d", resp.StatusCode)
	}

	var cats []schema.Category
	if err := json.NewDecoder(resp.Body).Decode(&cats); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}

	c.categories = cats
	c.fetched = true
	return cats, nil
}

func writeLogoPart(mw *multipart.Writer, logo *importer.Attachment) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="logo"; filename=%q`, logo.Filename))
	contentType := logo.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create logo part: %w", err)
	}
	if _, err := part.Write(logo.Data); err != nil {
		return fmt.Errorf("write logo part: %w", err)
	}
	return nil
}

// decodeAck interprets the store's response. The body envelope is
// authoritative when present; otherwise the HTTP status decides.
func decodeAck(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var ack apiResponse
	if err := json.Unmarshal(body, &ack); err != nil {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return fmt.Errorf("unreadable acknowledgment (status %d)", resp.StatusCode)
		}
		return fmt.Errorf("asset store returned status %d", resp.StatusCode)
	}

	if !ack.Success {
		reason := ack.Error
		if reason == "" {
			reason = ack.Message
		}
		if reason == "" {
			reason = fmt.Sprintf("store rejected record (status %d)", resp.StatusCode)
		}
		return fmt.Errorf("asset store rejected record: %s", reason)
	}

	return nil
}
