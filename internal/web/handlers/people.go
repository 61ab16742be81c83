package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"nautilus/internal/gallery"
	"nautilus/internal/web/middleware"
)

// PeopleHandler manages the face gallery: registering people with training
// images and removing them again.
type PeopleHandler struct {
	images *gallery.Store
	logger *zap.Logger
}

// NewPeopleHandler creates a new people handler.
func NewPeopleHandler(images *gallery.Store, logger *zap.Logger) *PeopleHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PeopleHandler{
		images: images,
		logger: logger,
	}
}

// List returns the registered people of the session user.
func (h *PeopleHandler) List(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())

	people, err := h.images.ListPeople(session.Username)
	if err != nil {
		h.logger.Error("failed to list people",
			zap.String("user", session.Username),
			zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list people")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"people": people})
}

// AddImages stores uploaded training images for a person. Files arrive in
// the "images" multipart field; an optional "camera" field marks a webcam
// capture.
func (h *PeopleHandler) AddImages(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	person := chi.URLParam(r, "person")

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	camera := r.FormValue("camera") == "true"
	files := r.MultipartForm.File["images"]

	items := make([]gallery.Item, 0, len(files))
	for _, header := range files {
		data, name, err := readMultipartFile(header)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		items = append(items, gallery.Item{Data: data, OriginalName: name, Camera: camera})
	}

	count, err := h.images.SaveGalleryImages(session.Username, person, items)
	switch {
	case errors.Is(err, gallery.ErrInvalidName):
		respondError(w, http.StatusBadRequest, "invalid person name")
		return
	case err != nil:
		h.logger.Error("failed to save gallery images",
			zap.String("user", session.Username),
			zap.String("person", sanitizeForLog(person)),
			zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to save images")
		return
	}

	if count == 0 {
		respondError(w, http.StatusBadRequest, "no images provided")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"saved":  count,
		"person": person,
	})
}

// Delete removes a person and their training images entirely.
func (h *PeopleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	person := chi.URLParam(r, "person")

	switch err := h.images.DeletePerson(session.Username, person); {
	case errors.Is(err, gallery.ErrInvalidName):
		respondError(w, http.StatusBadRequest, "invalid person name")
		return
	case err != nil:
		h.logger.Error("failed to delete person",
			zap.String("user", session.Username),
			zap.String("person", sanitizeForLog(person)),
			zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to delete person")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
