package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"nautilus/internal/gallery"
	"nautilus/internal/scans"
	"nautilus/internal/web/middleware"
)

// ScansHandler serves the scan history: saving a scan with its image,
// listing the session user's records, previewing and deleting them.
type ScansHandler struct {
	history *scans.History
	images  *gallery.Store
	logger  *zap.Logger
}

// NewScansHandler creates a new scans handler.
func NewScansHandler(history *scans.History, images *gallery.Store, logger *zap.Logger) *ScansHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScansHandler{
		history: history,
		images:  images,
		logger:  logger,
	}
}

// ScanResponse is one scan record in API responses.
type ScanResponse struct {
	Date     string `json:"date"`
	User     string `json:"user"`
	Emotion  string `json:"emotion"`
	Status   string `json:"status"`
	FileName string `json:"file_name"`
}

func toScanResponse(rec scans.Record) ScanResponse {
	return ScanResponse{
		Date:     rec.Date,
		User:     rec.User,
		Emotion:  rec.Emotion,
		Status:   rec.Status,
		FileName: rec.FileName,
	}
}

// List returns the session user's scan records in insertion order.
func (h *ScansHandler) List(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())

	records, err := h.history.ListByUser(session.Username)
	if err != nil {
		h.logger.Error("failed to load scan history", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load scan history")
		return
	}

	out := make([]ScanResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toScanResponse(rec))
	}
	respondJSON(w, http.StatusOK, map[string]any{"scans": out})
}

// Save stores the uploaded scan image and appends a history record. The
// emotion summary comes from the form; an empty value is recorded as the
// no-face sentinel.
func (h *ScansHandler) Save(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())

	data, originalName, err := singleImageFromForm(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	emotionSummary := r.FormValue("emotion")

	fileName, filePath, err := h.images.SaveScanImage(session.Username, data, originalName)
	if errors.Is(err, gallery.ErrInvalidName) {
		respondError(w, http.StatusBadRequest, "username cannot be used as a storage directory")
		return
	}
	if err != nil {
		h.logger.Error("failed to save scan image",
			zap.String("user", session.Username),
			zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to save scan image")
		return
	}

	rec := scans.NewRecord(session.Username, emotionSummary, fileName, filePath)
	if err := h.history.Append(rec); err != nil {
		h.logger.Error("failed to append scan record",
			zap.String("file_name", fileName),
			zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to save scan record")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"saved": true,
		"scan":  toScanResponse(rec),
	})
}

// Image streams the stored image bytes for one of the session user's scans.
func (h *ScansHandler) Image(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	fileName := chi.URLParam(r, "fileName")

	rec, found, err := h.history.Find(fileName)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load scan history")
		return
	}
	if !found || rec.User != session.Username {
		respondError(w, http.StatusNotFound, "scan not found")
		return
	}

	data, err := os.ReadFile(rec.FilePath)
	if err != nil {
		respondError(w, http.StatusNotFound, "image file missing")
		return
	}

	w.Header().Set("Content-Type", imageContentType(rec.FileName))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Delete removes a scan record and its stored image. Records of other users
// are invisible here, so they report not-found.
func (h *ScansHandler) Delete(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	fileName := chi.URLParam(r, "fileName")

	rec, found, err := h.history.Find(fileName)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load scan history")
		return
	}
	if !found || rec.User != session.Username {
		respondError(w, http.StatusNotFound, "scan not found")
		return
	}

	deleted, err := h.history.Delete(fileName)
	if err != nil {
		h.logger.Error("failed to delete scan",
			zap.String("file_name", sanitizeForLog(fileName)),
			zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to delete scan")
		return
	}
	if !deleted {
		respondError(w, http.StatusNotFound, "scan not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func imageContentType(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}
