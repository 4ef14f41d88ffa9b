package resolve

import (
	"image"
	"math"
	"strings"

	"github.com/Alyfish/spacestest-v0-mvp/internal/detect"
	"github.com/Alyfish/spacestest-v0-mvp/internal/imageio"
)

const (
	basePadRatio    = 0.04
	aspectPadFactor = 1.6
	wideAspect      = 1.6
	tallAspect      = 0.625
	floorPadRatio   = 0.05
)

// Categories that sit on the floor; their crops keep extra space below the
// box so shadow and base context survive for matching.
var floorAnchored = []string{"sofa", "couch", "bed", "table"}

// ComputeCrop pads the resolved box proportionally to its own size, widens
// the short axis of extreme aspect ratios, and clamps to image bounds. With
// no detection it produces a blindFraction square centered on the click.
// Returns the normalized region together with the cropped pixels.
func ComputeCrop(img image.Image, det *detect.Detection, clickX, clickY, blindFraction float64) (detect.Box, image.Image, error) {
	if det == nil {
		return blindCrop(img, clickX, clickY, blindFraction)
	}

	bounds := img.Bounds()
	imgW := float64(bounds.Dx())
	imgH := float64(bounds.Dy())

	box := det.Box
	w := box.W
	h := box.H

	padL := w * basePadRatio
	padR := w * basePadRatio
	padT := h * basePadRatio
	padB := h * basePadRatio

	aspect := 1.0
	if h > 0 && imgH > 0 {
		aspect = (w * imgW) / (h * imgH)
	}
	if aspect > wideAspect {
		padT = h * basePadRatio * aspectPadFactor
		padB = h * basePadRatio * aspectPadFactor
	} else if aspect < tallAspect {
		padL = w * basePadRatio * aspectPadFactor
		padR = w * basePadRatio * aspectPadFactor
	}

	label := strings.ToLower(det.Label)
	for _, cat := range floorAnchored {
		if strings.Contains(label, cat) {
			padB += h * floorPadRatio
			break
		}
	}

	x1 := math.Max(0, box.X-padL)
	y1 := math.Max(0, box.Y-padT)
	x2 := math.Min(1, box.X+box.W+padR)
	y2 := math.Min(1, box.Y+box.H+padB)

	region := detect.Box{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
	crop, err := imageio.CropNorm(img, region.X, region.Y, region.W, region.H)
	if err != nil {
		return detect.Box{}, nil, err
	}
	return region, crop, nil
}

func blindCrop(img image.Image, clickX, clickY, fraction float64) (detect.Box, image.Image, error) {
	half := fraction / 2
	x1 := math.Max(0, clickX-half)
	y1 := math.Max(0, clickY-half)
	x2 := math.Min(1, clickX+half)
	y2 := math.Min(1, clickY+half)

	region := detect.Box{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
	crop, err := imageio.CropNorm(img, region.X, region.Y, region.W, region.H)
	if err != nil {
		return detect.Box{}, nil, err
	}
	return region, crop, nil
}
