package web

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"nautilus/internal/config"
	"nautilus/internal/facer"
	"nautilus/internal/gallery"
	"nautilus/internal/scans"
	"nautilus/internal/users"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Storage: config.Storage{
			DataDir:         dir,
			UsersFile:       filepath.Join(dir, "users.json"),
			ScansFile:       filepath.Join(dir, "scans.json"),
			ScanImagesDir:   filepath.Join(dir, "scanned_images"),
			FaceDBDir:       filepath.Join(dir, "face_db"),
			ImageExtensions: []string{".jpg", ".jpeg", ".png"},
			CacheExtensions: []string{".pkl", ".gob"},
		},
		Web: config.WebConfig{SessionSecret: "test-secret"},
	}

	stores := Stores{
		Registry: users.NewRegistry(cfg.Storage.UsersFile, "admin", "1234", nil),
		History:  scans.NewHistory(cfg.Storage.ScansFile, nil),
		Images:   gallery.NewStore(&cfg.Storage, nil),
	}
	server := NewServer(cfg, 0, "127.0.0.1", stores, facer.NewNoopProvider(), nil)
	t.Cleanup(func() { server.sessionManager.Stop() })
	return server
}

func doJSON(t *testing.T, router http.Handler, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestServer_HealthCheck(t *testing.T) {
	server := newTestServer(t)

	recorder := doJSON(t, server.Router(), "GET", "/api/v1/health", "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
}

func TestServer_AuthGating(t *testing.T) {
	server := newTestServer(t)

	recorder := doJSON(t, server.Router(), "GET", "/api/v1/scans", "", nil)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a session, got %d", recorder.Code)
	}
}

// TestServer_ScanLifecycle walks the whole flow: register, login, save a
// scan, list it, delete it, list again.
func TestServer_ScanLifecycle(t *testing.T) {
	server := newTestServer(t)
	router := server.Router()

	// Register alice.
	recorder := doJSON(t, router, "POST", "/api/v1/auth/register", `{"username":"alice","password":"pw1"}`, nil)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", recorder.Code, recorder.Body.String())
	}

	// Login.
	recorder = doJSON(t, router, "POST", "/api/v1/auth/login", `{"username":"alice","password":"pw1"}`, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", recorder.Code, recorder.Body.String())
	}
	cookies := recorder.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie")
	}

	// Save a scan.
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", "selfie.jpg")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("image-bytes"))
	writer.WriteField("emotion", "happy")
	writer.Close()

	req := httptest.NewRequest("POST", "/api/v1/scans", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	for _, c := range cookies {
		req.AddCookie(c)
	}
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("save failed: %d %s", recorder.Code, recorder.Body.String())
	}
	var saved struct {
		Scan struct {
			FileName string `json:"file_name"`
			Emotion  string `json:"emotion"`
		} `json:"scan"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &saved); err != nil {
		t.Fatal(err)
	}
	if saved.Scan.Emotion != "happy" {
		t.Errorf("expected emotion happy, got %q", saved.Scan.Emotion)
	}

	// List: one record.
	recorder = doJSON(t, router, "GET", "/api/v1/scans", "", cookies)
	if recorder.Code != http.StatusOK {
		t.Fatalf("list failed: %d", recorder.Code)
	}
	var list struct {
		Scans []struct {
			FileName string `json:"file_name"`
		} `json:"scans"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list.Scans) != 1 || list.Scans[0].FileName != saved.Scan.FileName {
		t.Fatalf("unexpected list: %+v", list)
	}

	// Delete.
	recorder = doJSON(t, router, "DELETE", "/api/v1/scans/"+saved.Scan.FileName, "", cookies)
	if recorder.Code != http.StatusOK {
		t.Fatalf("delete failed: %d %s", recorder.Code, recorder.Body.String())
	}

	// List: empty again.
	recorder = doJSON(t, router, "GET", "/api/v1/scans", "", cookies)
	if err := json.Unmarshal(recorder.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list.Scans) != 0 {
		t.Fatalf("expected empty history after delete, got %+v", list)
	}
}
