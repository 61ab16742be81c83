package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"nautilus/internal/facer"
	"nautilus/internal/gallery"
)

// stubProvider is a controllable facer.Provider for handler tests.
type stubProvider struct {
	faces   []facer.Face
	matches []string

	analyzeErr error
	findErr    error

	findCalled bool
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Analyze(ctx context.Context, image []byte) ([]facer.Face, error) {
	if s.analyzeErr != nil {
		return nil, s.analyzeErr
	}
	return s.faces, nil
}

func (s *stubProvider) Find(ctx context.Context, image []byte, galleryRoot string) ([]string, error) {
	s.findCalled = true
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.matches, nil
}

func analyzeRequest(t *testing.T) *http.Request {
	t.Helper()
	body, contentType := multipartBody(t, "image", "selfie.jpg", []byte("image-bytes"), nil)
	req := requestWithSession(httptest.NewRequest("POST", "/api/v1/scan/analyze", body), "alice")
	req.Header.Set("Content-Type", contentType)
	return req
}

func TestAnalyzeHandler_WithMatches(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.images.SaveGalleryImages("alice", "John", []gallery.Item{
		{Data: []byte("x"), OriginalName: "a.jpg"},
	}); err != nil {
		t.Fatal(err)
	}

	provider := &stubProvider{
		faces:   []facer.Face{{DominantEmotion: "happy", Age: 30}},
		matches: []string{"John"},
	}
	handler := NewAnalyzeHandler(provider, env.images, nil)

	recorder := httptest.NewRecorder()
	handler.Analyze(recorder, analyzeRequest(t))
	assertStatusCode(t, recorder, http.StatusOK)

	var resp AnalyzeResponse
	parseJSONResponse(t, recorder, &resp)
	if len(resp.Faces) != 1 || resp.EmotionSummary != "happy" {
		t.Errorf("unexpected analysis: %+v", resp)
	}
	if len(resp.Matches) != 1 || resp.Matches[0] != "John" {
		t.Errorf("unexpected matches: %+v", resp.Matches)
	}
}

func TestAnalyzeHandler_EmptyGallerySkipsFind(t *testing.T) {
	env := newTestEnv(t)
	provider := &stubProvider{faces: []facer.Face{{DominantEmotion: "sad"}}}
	handler := NewAnalyzeHandler(provider, env.images, nil)

	recorder := httptest.NewRecorder()
	handler.Analyze(recorder, analyzeRequest(t))
	assertStatusCode(t, recorder, http.StatusOK)

	if provider.findCalled {
		t.Error("matching must be skipped when the user has no gallery")
	}
}

func TestAnalyzeHandler_NoFacesSkipsFind(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.images.SaveGalleryImages("alice", "John", []gallery.Item{
		{Data: []byte("x"), OriginalName: "a.jpg"},
	}); err != nil {
		t.Fatal(err)
	}
	provider := &stubProvider{}
	handler := NewAnalyzeHandler(provider, env.images, nil)

	recorder := httptest.NewRecorder()
	handler.Analyze(recorder, analyzeRequest(t))
	assertStatusCode(t, recorder, http.StatusOK)

	var resp AnalyzeResponse
	parseJSONResponse(t, recorder, &resp)
	if resp.EmotionSummary != "" || len(resp.Faces) != 0 {
		t.Errorf("expected empty analysis, got %+v", resp)
	}
	if provider.findCalled {
		t.Error("matching must be skipped when no faces were detected")
	}
}

func TestAnalyzeHandler_EngineFailureDegrades(t *testing.T) {
	env := newTestEnv(t)
	provider := &stubProvider{analyzeErr: errors.New("model exploded")}
	handler := NewAnalyzeHandler(provider, env.images, nil)

	recorder := httptest.NewRecorder()
	handler.Analyze(recorder, analyzeRequest(t))

	// Engine failures degrade to an empty result with an error string,
	// never an HTTP error.
	assertStatusCode(t, recorder, http.StatusOK)

	var resp AnalyzeResponse
	parseJSONResponse(t, recorder, &resp)
	if resp.Error != "model exploded" {
		t.Errorf("expected error string, got %+v", resp)
	}
	if len(resp.Faces) != 0 || len(resp.Matches) != 0 {
		t.Errorf("expected empty results, got %+v", resp)
	}
}
