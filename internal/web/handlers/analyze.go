package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"nautilus/internal/facer"
	"nautilus/internal/gallery"
	"nautilus/internal/web/middleware"
)

// AnalyzeHandler runs the face engine on an uploaded image and matches the
// detected faces against the session user's gallery. Engine failures never
// propagate as crashes; the response degrades to empty results plus an
// error string.
type AnalyzeHandler struct {
	provider facer.Provider
	images   *gallery.Store
	logger   *zap.Logger
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(provider facer.Provider, images *gallery.Store, logger *zap.Logger) *AnalyzeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyzeHandler{
		provider: provider,
		images:   images,
		logger:   logger,
	}
}

// AnalyzeResponse carries the engine output for one uploaded image.
type AnalyzeResponse struct {
	Faces          []facer.Face `json:"faces"`
	EmotionSummary string       `json:"emotion_summary"`
	Matches        []string     `json:"matches"`
	Error          string       `json:"error,omitempty"`
}

// Analyze handles POST of a multipart image for detection and matching.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())

	data, _, err := singleImageFromForm(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := AnalyzeResponse{Faces: []facer.Face{}, Matches: []string{}}

	faces, err := h.provider.Analyze(r.Context(), data)
	if err != nil {
		h.logger.Warn("face analysis failed",
			zap.String("provider", h.provider.Name()),
			zap.Error(err))
		resp.Error = err.Error()
		respondJSON(w, http.StatusOK, resp)
		return
	}
	resp.Faces = faces
	resp.EmotionSummary = facer.EmotionSummary(faces)

	// Matching only makes sense with detected faces and a non-empty gallery.
	if len(faces) > 0 && h.images.HasGallery(session.Username) {
		galleryRoot, err := h.images.UserGalleryDir(session.Username)
		if err == nil {
			matches, err := h.provider.Find(r.Context(), data, galleryRoot)
			if err != nil {
				h.logger.Warn("face matching failed",
					zap.String("provider", h.provider.Name()),
					zap.Error(err))
				resp.Error = err.Error()
			} else {
				resp.Matches = matches
			}
		}
	}

	respondJSON(w, http.StatusOK, resp)
}
