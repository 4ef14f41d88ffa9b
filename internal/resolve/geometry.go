package resolve

import (
	"math"

	"github.com/Alyfish/spacestest-v0-mvp/internal/detect"
)

// pointInPolygon reports whether (x, y) lies inside the polygon using the
// ray-casting rule. Works in any consistent coordinate space; normalized
// mask coordinates are fine because per-axis scaling preserves containment.
func pointInPolygon(x, y float64, poly []detect.Point) bool {
	if len(poly) < 3 {
		return false
	}
	inside := false
	j := len(poly) - 1
	for i := 0; i < len(poly); i++ {
		xi, yi := poly[i].X, poly[i].Y
		xj, yj := poly[j].X, poly[j].Y
		if (yi > y) != (yj > y) &&
			x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}
	return inside
}

// centerDistanceNorm returns the pixel-space distance from the click to the
// box center, divided by the box half-diagonal and capped at 1.
func centerDistanceNorm(box detect.Box, clickX, clickY, imgW, imgH float64) float64 {
	bw := box.W * imgW
	bh := box.H * imgH
	cx, cy := box.Center()
	dx := (clickX - cx) * imgW
	dy := (clickY - cy) * imgH

	halfDiag := math.Sqrt((bw/2)*(bw/2) + (bh/2)*(bh/2))
	if halfDiag == 0 {
		halfDiag = 1
	}
	return math.Min(1, math.Sqrt(dx*dx+dy*dy)/halfDiag)
}

// nearBoundary reports whether the click lies within thresholdPx pixels of
// any edge of the box.
func nearBoundary(box detect.Box, clickX, clickY, imgW, imgH, thresholdPx float64) bool {
	px := clickX * imgW
	py := clickY * imgH
	left := box.X * imgW
	right := (box.X + box.W) * imgW
	top := box.Y * imgH
	bottom := (box.Y + box.H) * imgH

	minDist := math.Min(
		math.Min(math.Abs(px-left), math.Abs(px-right)),
		math.Min(math.Abs(py-top), math.Abs(py-bottom)),
	)
	return minDist < thresholdPx
}
