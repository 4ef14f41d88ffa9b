// Package embed wraps the vision-language embedding model behind a narrow
// interface. Vectors are fixed-length and L2-normalized by the serving side.
package embed

import (
	"context"
	"image"
	"math"
)

// Embedder produces embedding vectors for images and text and scores their
// similarity.
type Embedder interface {
	EncodeImage(ctx context.Context, img image.Image) ([]float32, error)
	EncodeText(ctx context.Context, text string) ([]float32, error)
}

// Similarity returns the cosine similarity of two vectors remapped from
// [-1,1] to [0,1]. Mismatched or empty vectors score 0.
func Similarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	cos := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return (cos + 1) / 2
}
