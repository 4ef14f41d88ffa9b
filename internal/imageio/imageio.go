// Package imageio holds the image decode/encode/crop helpers shared by the
// resolution and matching pipeline.
package imageio

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Decode reads an image in any registered format (JPEG, PNG, GIF, WebP).
func Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// DecodeBytes decodes an in-memory image.
func DecodeBytes(data []byte) (image.Image, error) {
	return Decode(bytes.NewReader(data))
}

// EncodeJPEG encodes an image as JPEG at quality 90.
func EncodeJPEG(img image.Image) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeWebP encodes an image as lossy WebP. Used for crops uploaded to the
// public host, where small payloads matter more than fidelity.
func EncodeWebP(img image.Image, quality float32) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := webp.Encode(buf, img, &webp.Options{Lossless: false, Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

// CropNorm extracts the region given by a normalized rectangle, clamped to
// image bounds. Returns an error for zero-area rectangles.
func CropNorm(img image.Image, x, y, w, h float64) (image.Image, error) {
	bounds := img.Bounds()
	iw, ih := bounds.Dx(), bounds.Dy()

	left := clampInt(int(x*float64(iw)), 0, iw)
	top := clampInt(int(y*float64(ih)), 0, ih)
	right := clampInt(int((x+w)*float64(iw)), 0, iw)
	bottom := clampInt(int((y+h)*float64(ih)), 0, ih)

	if right <= left || bottom <= top {
		return nil, fmt.Errorf("zero-area crop rectangle (%.3f, %.3f, %.3f, %.3f)", x, y, w, h)
	}
	rect := image.Rect(left+bounds.Min.X, top+bounds.Min.Y, right+bounds.Min.X, bottom+bounds.Min.Y)
	return imaging.Crop(img, rect), nil
}

// Upscale resizes an image so its longer edge equals size, preserving aspect
// ratio. Used before micro-inference so small windows reach the detector at
// a usable resolution.
func Upscale(img image.Image, size int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w >= size || h >= size {
		return img
	}
	if w >= h {
		return imaging.Resize(img, size, 0, imaging.Lanczos)
	}
	return imaging.Resize(img, 0, size, imaging.Lanczos)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
