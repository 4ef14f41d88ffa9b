package embed

import (
	"context"
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPEmbedderEncodeImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/encode/image" {
			t.Errorf("wrong path: %s", r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "image/jpeg" {
			t.Errorf("wrong content type: %s", r.Header.Get("Content-Type"))
		}
		w.Write([]byte(`{"vector": [0.1, 0.2, 0.3]}`))
	}))
	defer srv.Close()

	e := NewHTTPEmbedder(srv.URL, 5*time.Second)
	vec, err := e.EncodeImage(context.Background(), image.NewRGBA(image.Rect(0, 0, 8, 8)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 3 {
		t.Errorf("expected 3-dim vector, got %d", len(vec))
	}
}

func TestHTTPEmbedderEncodeText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/encode/text" {
			t.Errorf("wrong path: %s", r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		if body["text"] != "velvet sofa" {
			t.Errorf("wrong text: %q", body["text"])
		}
		w.Write([]byte(`{"vector": [1, 0]}`))
	}))
	defer srv.Close()

	e := NewHTTPEmbedder(srv.URL, 5*time.Second)
	vec, err := e.EncodeText(context.Background(), "velvet sofa")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 2 {
		t.Errorf("expected 2-dim vector, got %d", len(vec))
	}
}

func TestHTTPEmbedderRejectsEmptyVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"vector": []}`))
	}))
	defer srv.Close()

	e := NewHTTPEmbedder(srv.URL, 5*time.Second)
	if _, err := e.EncodeText(context.Background(), "sofa"); err == nil {
		t.Fatal("empty vector must be an error")
	}
}
