package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fixerhq/job-import/internal/core"
	"github.com/fixerhq/job-import/internal/importer"
	"github.com/fixerhq/job-import/internal/store"
)

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

// handleDownloadTemplate serves the canonical import template with sample
// rows filled in.
func (s *Server) handleDownloadTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="job-import-template.csv"`)
	_, _ = io.WriteString(w, importer.TemplateCSV())
	_, _ = io.WriteString(w, "\n")
}

// readImportFile pulls the uploaded CSV out of the multipart form, bounded
// by the configured size limit. The filename is returned for bookkeeping.
func (s *Server) readImportFile(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		s.writeError(w, http.StatusBadRequest, "file too large or invalid form")
		return nil, "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "no file provided")
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to read file")
		return nil, "", false
	}
	return data, header.Filename, true
}

// handleStartImport accepts a CSV upload and begins an asynchronous import.
// Responds with the import ID; progress streams from the progress endpoint.
func (s *Server) handleStartImport(w http.ResponseWriter, r *http.Request) {
	data, fileName, ok := s.readImportFile(w, r)
	if !ok {
		return
	}

	importID, err := s.service.StartImport(r.Context(), fileName, data)
	if err != nil {
		status := http.StatusBadRequest
		if err == core.ErrTooManyImports {
			status = http.StatusServiceUnavailable
			w.Header().Set("Retry-After", "30")
		}
		s.writeUserError(w, status, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
	s.writeJSON(w, map[string]string{"importId": importID})
}

// handlePreview validates a CSV upload without writing anything.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	data, _, ok := s.readImportFile(w, r)
	if !ok {
		return
	}

	result, err := s.service.Preview(data)
	if err != nil {
		s.writeUserError(w, http.StatusBadRequest, err)
		return
	}
	s.writeJSON(w, result)
}

// handleProgress streams import progress via Server-Sent Events. Clients
// can resume after reconnecting by passing lastEventId; events with a
// percentage at or below it are skipped.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	importID := chi.URLParam(r, "importID")

	lastEventIDStr := r.URL.Query().Get("lastEventId")
	var lastEventID int
	if lastEventIDStr != "" {
		lastEventID, _ = strconv.Atoi(lastEventIDStr)
	}

	progressCh, err := s.service.SubscribeProgress(importID)
	if err != nil {
		s.writeUserError(w, http.StatusNotFound, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	for {
		select {
		case progress, open := <-progressCh:
			if !open {
				fmt.Fprintf(w, "event: complete\ndata: {}\n\n")
				flusher.Flush()
				return
			}

			percent := progress.Percent()
			if lastEventIDStr != "" && percent <= lastEventID {
				continue
			}

			data, _ := json.Marshal(progress)
			fmt.Fprintf(w, "id: %d\nevent: progress\ndata: %s\n\n", percent, data)
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

// handleResult returns the final outcome of an import, blocking until it
// finishes.
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	importID := chi.URLParam(r, "importID")

	result, err := s.service.GetResult(importID)
	if err != nil {
		s.writeUserError(w, http.StatusNotFound, err)
		return
	}
	s.writeJSON(w, result)
}

// handleCancel stops an in-progress import.
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	importID := chi.URLParam(r, "importID")

	if err := s.service.CancelImport(importID); err != nil {
		s.writeUserError(w, http.StatusNotFound, err)
		return
	}
	s.writeJSON(w, map[string]string{"status": "cancelled"})
}

// handleRollback deletes every job one import created.
func (s *Server) handleRollback(w http.ResponseWriter, r *http.Request) {
	importID := chi.URLParam(r, "importID")

	result, err := s.service.Rollback(r.Context(), importID)
	if err != nil {
		status := http.StatusBadRequest
		if err == store.ErrUploadNotFound {
			status = http.StatusNotFound
		}
		s.writeUserError(w, status, err)
		return
	}
	s.writeJSON(w, result)
}

// handleGetImport returns the recorded run for one import ID.
func (s *Server) handleGetImport(w http.ResponseWriter, r *http.Request) {
	importID := chi.URLParam(r, "importID")

	upload, err := s.service.GetUpload(r.Context(), importID)
	if err != nil {
		s.writeUserError(w, http.StatusNotFound, err)
		return
	}
	s.writeJSON(w, upload)
}

// handleHistory returns recent import runs, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.Import.HistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	history, err := s.service.History(r.Context(), limit)
	if err != nil {
		s.writeUserError(w, http.StatusInternalServerError, err)
		return
	}
	if history == nil {
		history = []store.Upload{}
	}
	s.writeJSON(w, history)
}

// handleErrorReport exports the persisted row failures of one import as a
// downloadable CSV.
func (s *Server) handleErrorReport(w http.ResponseWriter, r *http.Request) {
	importID := chi.URLParam(r, "importID")

	report, err := s.service.ErrorReportCSV(r.Context(), importID)
	if err != nil {
		s.writeUserError(w, http.StatusNotFound, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="import-errors-%s.csv"`, importID))
	_, _ = io.WriteString(w, report)
	if report != "" {
		_, _ = io.WriteString(w, "\n")
	}
}
