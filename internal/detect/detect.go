package detect

import (
	"context"
	"image"
)

// Box is an axis-aligned bounding box with coordinates normalized to [0,1]
// relative to the image it was detected on.
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Area returns the normalized box area.
func (b Box) Area() float64 {
	return b.W * b.H
}

// Center returns the normalized box center point.
func (b Box) Center() (float64, float64) {
	return b.X + b.W/2, b.Y + b.H/2
}

// Contains reports whether the normalized point (x, y) lies inside the box,
// edges included.
func (b Box) Contains(x, y float64) bool {
	return x >= b.X && x <= b.X+b.W && y >= b.Y && y <= b.Y+b.H
}

// Point is a normalized 2D point, used for polygon masks.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Detection is a single object hypothesis from the detector. Produced once
// per detector invocation; never mutated after creation.
type Detection struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Box        Box     `json:"box"`
	Mask       []Point `json:"mask,omitempty"`
}

// Detector wraps an object-detection model. Implementations must tolerate
// being called on small crops as well as full frames.
type Detector interface {
	Detect(ctx context.Context, img image.Image) ([]Detection, error)
}
