package detect

import (
	"context"
	"image"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestBoxGeometry(t *testing.T) {
	b := Box{X: 0.2, Y: 0.3, W: 0.4, H: 0.2}

	if got := b.Area(); math.Abs(got-0.08) > 1e-12 {
		t.Errorf("Area() = %f, want 0.08", got)
	}
	cx, cy := b.Center()
	if math.Abs(cx-0.4) > 1e-12 || math.Abs(cy-0.4) > 1e-12 {
		t.Errorf("Center() = (%f, %f), want (0.4, 0.4)", cx, cy)
	}
}

func TestBoxContains(t *testing.T) {
	b := Box{X: 0.2, Y: 0.2, W: 0.6, H: 0.6}

	cases := []struct {
		x, y float64
		want bool
	}{
		{0.5, 0.5, true},
		{0.2, 0.2, true}, // edge inclusive
		{0.8, 0.8, true},
		{0.1, 0.5, false},
		{0.5, 0.81, false},
	}
	for _, c := range cases {
		if got := b.Contains(c.x, c.y); got != c.want {
			t.Errorf("Contains(%.2f, %.2f) = %v, want %v", c.x, c.y, got, c.want)
		}
	}
}

func TestHTTPDetectorParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Errorf("expected multipart upload, got %s", r.Header.Get("Content-Type"))
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("missing file part: %v", err)
		}
		w.Write([]byte(`{
			"detections": [
				{"id": "d1", "label": "sofa", "confidence": 0.92, "box": {"x": 0.1, "y": 0.2, "w": 0.5, "h": 0.4}},
				{"label": "lamp", "confidence": 0.8, "box": {"x": 0.7, "y": 0.1, "w": 0.1, "h": 0.3},
				 "mask": [{"x": 0.7, "y": 0.1}, {"x": 0.8, "y": 0.1}, {"x": 0.75, "y": 0.4}]}
			]
		}`))
	}))
	defer srv.Close()

	d := NewHTTPDetector(srv.URL, 5*time.Second)
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))

	dets, err := d.Detect(context.Background(), img)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dets) != 2 {
		t.Fatalf("expected 2 detections, got %d", len(dets))
	}
	if dets[0].ID != "d1" || dets[0].Label != "sofa" {
		t.Errorf("unexpected first detection: %+v", dets[0])
	}
	if dets[1].ID != "det_1" {
		t.Errorf("missing ID must be filled, got %q", dets[1].ID)
	}
	if len(dets[1].Mask) != 3 {
		t.Errorf("mask lost in decoding: %d points", len(dets[1].Mask))
	}
}

func TestHTTPDetectorErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	d := NewHTTPDetector(srv.URL, 5*time.Second)
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	if _, err := d.Detect(context.Background(), img); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}
