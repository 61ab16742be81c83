// Package facer defines the boundary to the external face analysis and
// matching engine. The persistence core knows nothing about the model
// behind this interface; any implementation can be swapped in.
package facer

import (
	"context"
	"strings"
)

// Region is the bounding box of a detected face.
type Region struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Face carries the attributes inferred for one detected face.
type Face struct {
	Region          Region             `json:"region"`
	DominantEmotion string             `json:"dominant_emotion"`
	Age             int                `json:"age"`
	DominantGender  string             `json:"dominant_gender"`
	Emotions        map[string]float64 `json:"emotion,omitempty"`
	Genders         map[string]float64 `json:"gender,omitempty"`
}

// Provider is the face engine contract. Both operations tolerate
// zero-face input and absent galleries by returning empty results, not
// errors.
type Provider interface {
	Name() string

	// Analyze runs detection plus emotion/age/gender inference on an image.
	Analyze(ctx context.Context, image []byte) ([]Face, error)

	// Find matches the faces in an image against the gallery rooted at
	// galleryRoot (face_db/<user>/) and returns the matched person labels.
	Find(ctx context.Context, image []byte, galleryRoot string) ([]string, error)
}

// EmotionSummary joins the dominant emotions of the detected faces into the
// comma-separated form stored on scan records. Empty when no faces were
// detected.
func EmotionSummary(faces []Face) string {
	if len(faces) == 0 {
		return ""
	}
	labels := make([]string, 0, len(faces))
	for _, f := range faces {
		label := f.DominantEmotion
		if label == "" {
			label = "N/A"
		}
		labels = append(labels, label)
	}
	return strings.Join(labels, ", ")
}
