package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"nautilus/internal/gallery"
	"nautilus/internal/scans"
	"nautilus/internal/web/middleware"
)

// StatsHandler reports per-user storage counters.
type StatsHandler struct {
	history *scans.History
	images  *gallery.Store
	logger  *zap.Logger
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(history *scans.History, images *gallery.Store, logger *zap.Logger) *StatsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsHandler{
		history: history,
		images:  images,
		logger:  logger,
	}
}

// StatsResponse summarizes a user's stored data.
type StatsResponse struct {
	Scans         int `json:"scans"`
	People        int `json:"people"`
	GalleryImages int `json:"gallery_images"`
}

// Get returns the session user's counters.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())

	records, err := h.history.ListByUser(session.Username)
	if err != nil {
		h.logger.Error("failed to load scan history", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	people, err := h.images.ListPeople(session.Username)
	if err != nil {
		h.logger.Error("failed to list people", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	galleryImages := 0
	for _, p := range people {
		galleryImages += len(p.Images)
	}

	respondJSON(w, http.StatusOK, StatsResponse{
		Scans:         len(records),
		People:        len(people),
		GalleryImages: galleryImages,
	})
}
