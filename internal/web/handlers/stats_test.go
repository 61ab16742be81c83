package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"nautilus/internal/gallery"
	"nautilus/internal/scans"
)

func TestStatsHandler_Get(t *testing.T) {
	env := newTestEnv(t)
	handler := NewStatsHandler(env.history, env.images, nil)

	if err := env.history.Append(scans.NewRecord("alice", "happy", "a1.jpg", "")); err != nil {
		t.Fatal(err)
	}
	if err := env.history.Append(scans.NewRecord("bob", "sad", "b1.jpg", "")); err != nil {
		t.Fatal(err)
	}
	if _, err := env.images.SaveGalleryImages("alice", "John", []gallery.Item{
		{Data: []byte("x"), OriginalName: "a.jpg"},
		{Data: []byte("y"), OriginalName: "b.jpg"},
	}); err != nil {
		t.Fatal(err)
	}

	req := requestWithSession(httptest.NewRequest("GET", "/api/v1/stats", nil), "alice")
	recorder := httptest.NewRecorder()
	handler.Get(recorder, req)
	assertStatusCode(t, recorder, http.StatusOK)

	var stats StatsResponse
	parseJSONResponse(t, recorder, &stats)
	if stats.Scans != 1 || stats.People != 1 || stats.GalleryImages != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}
