package web

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/dmutonyi/assetimport/internal/importer"
	"github.com/dmutonyi/assetimport/internal/logging"
	"github.com/dmutonyi/assetimport/internal/schema"
	"github.com/dmutonyi/assetimport/internal/workbook"
)

// ImportService runs the bulk import pipeline over raw workbook bytes.
type ImportService interface {
	Import(ctx context.Context, data []byte) (importer.Summary, error)
}

// CategorySource supplies the asset category list for the type selector.
type CategorySource interface {
	Categories(ctx context.Context) ([]schema.Category, error)
}

// handleImport accepts a multipart workbook upload, runs the pipeline and
// returns the run summary. Partial failure is still a 200: the summary says
// how many records were submitted and which ones failed. Only a decode
// failure is a hard abort.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "no workbook file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, http.StatusRequestEntityTooLarge, "workbook exceeds the upload size limit")
			return
		}
		respondError(w, r, http.StatusBadRequest, "could not read uploaded file")
		return
	}

	logger.Info("import started", "file", header.Filename, "bytes", len(data))

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Import.Timeout)
	defer cancel()

	summary, err := s.pipeline.Import(ctx, data)
	if err != nil {
		var decodeErr *workbook.DecodeError
		if errors.As(err, &decodeErr) {
			logger.Warn("import aborted", "file", header.Filename, "error", err)
			respondError(w, r, http.StatusBadRequest, "the uploaded file is not a readable workbook")
			return
		}
		logger.Error("import failed", "file", header.Filename, "error", err)
		respondError(w, r, http.StatusInternalServerError, "import failed")
		return
	}

	logger.Info("import finished",
		"file", header.Filename,
		"total", summary.Total,
		"submitted", summary.Submitted,
		"failed", summary.Failed,
	)

	writeJSON(w, http.StatusOK, summary)
}

// handleCategories returns the cached asset category list.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.store.Categories(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("category fetch failed", "error", err)
		respondError(w, r, http.StatusBadGateway, "asset store is unreachable")
		return
	}

	// An empty list still serializes as [] for the selector.
	if cats == nil {
		cats = []schema.Category{}
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
