package imageio

import (
	"image"
	"image/color"
	"testing"
)

func gradient(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 128, 255})
		}
	}
	return img
}

func TestEncodeDecodeJPEGRoundTrip(t *testing.T) {
	src := gradient(64, 48)
	data, err := EncodeJPEG(src)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeBytes(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Bounds().Dx() != 64 || out.Bounds().Dy() != 48 {
		t.Errorf("dimensions changed: %v", out.Bounds())
	}
}

func TestEncodeWebP(t *testing.T) {
	data, err := EncodeWebP(gradient(32, 32), 80)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty webp payload")
	}
	// RIFF container magic
	if string(data[:4]) != "RIFF" {
		t.Errorf("not a RIFF container: %q", data[:4])
	}
}

func TestCropNorm(t *testing.T) {
	src := gradient(200, 100)

	crop, err := CropNorm(src, 0.25, 0.5, 0.5, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if crop.Bounds().Dx() != 100 || crop.Bounds().Dy() != 50 {
		t.Errorf("unexpected crop size: %v", crop.Bounds())
	}

	// Out-of-range rectangle clamps instead of failing
	crop, err = CropNorm(src, 0.9, 0.9, 0.5, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if crop.Bounds().Dx() != 20 || crop.Bounds().Dy() != 10 {
		t.Errorf("unexpected clamped size: %v", crop.Bounds())
	}

	if _, err = CropNorm(src, 0.5, 0.5, 0, 0); err == nil {
		t.Fatal("zero-area crop must fail")
	}
	if _, err = CropNorm(src, 1.0, 1.0, 0.5, 0.5); err == nil {
		t.Fatal("fully out-of-bounds crop must fail")
	}
}

func TestUpscale(t *testing.T) {
	small := gradient(100, 50)
	up := Upscale(small, 640)
	if up.Bounds().Dx() != 640 {
		t.Errorf("longer edge should reach 640, got %d", up.Bounds().Dx())
	}
	if up.Bounds().Dy() != 320 {
		t.Errorf("aspect ratio must be preserved, got %d", up.Bounds().Dy())
	}

	// Already large images pass through untouched
	big := gradient(800, 600)
	if out := Upscale(big, 640); out != big {
		t.Error("image at or above target size must not be resized")
	}
}
