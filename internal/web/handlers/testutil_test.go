package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	"nautilus/internal/config"
	"nautilus/internal/gallery"
	"nautilus/internal/scans"
	"nautilus/internal/users"
	"nautilus/internal/web/middleware"
)

// testEnv bundles temp-dir-backed stores for handler tests.
type testEnv struct {
	storage  *config.Storage
	registry *users.Registry
	history  *scans.History
	images   *gallery.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	storage := &config.Storage{
		DataDir:         dir,
		UsersFile:       filepath.Join(dir, "users.json"),
		ScansFile:       filepath.Join(dir, "scans.json"),
		ScanImagesDir:   filepath.Join(dir, "scanned_images"),
		FaceDBDir:       filepath.Join(dir, "face_db"),
		ImageExtensions: []string{".jpg", ".jpeg", ".png"},
		CacheExtensions: []string{".pkl", ".gob"},
	}
	return &testEnv{
		storage:  storage,
		registry: users.NewRegistry(storage.UsersFile, "admin", "1234", nil),
		history:  scans.NewHistory(storage.ScansFile, nil),
		images:   gallery.NewStore(storage, nil),
	}
}

// requestWithSession attaches a session for "alice" to the request context,
// the way RequireAuth would.
func requestWithSession(r *http.Request, username string) *http.Request {
	session := &middleware.Session{ID: "test-session", Username: username, Theme: "light"}
	return r.WithContext(middleware.SetSessionInContext(r.Context(), session))
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// multipartBody builds a multipart form with one file field and optional
// extra string fields. Returns the body and content type.
func multipartBody(t *testing.T, field, fileName string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if fileName != "" {
		part, err := writer.CreateFormFile(field, fileName)
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := io.Copy(part, bytes.NewReader(data)); err != nil {
			t.Fatalf("failed to write form file: %v", err)
		}
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("failed to write form field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
