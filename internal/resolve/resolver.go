// Package resolve turns a single click on a room photo into one object
// region: candidate scoring, ambiguity detection, micro-inference and blind
// fallbacks, and the adaptive crop around the winner.
package resolve

import (
	"context"
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/Alyfish/spacestest-v0-mvp/internal/detect"
	apperrors "github.com/Alyfish/spacestest-v0-mvp/internal/errors"
	"github.com/Alyfish/spacestest-v0-mvp/internal/imageio"
	"github.com/Alyfish/spacestest-v0-mvp/internal/logger"
)

// AmbiguityReason explains why a resolution was flagged ambiguous.
type AmbiguityReason string

const (
	AmbiguityNone        AmbiguityReason = "none"
	AmbiguityCloseScores AmbiguityReason = "close_scores"
	AmbiguityBoundary    AmbiguityReason = "boundary_proximity"
)

// Method records which strategy produced the resolution.
type Method string

const (
	MethodMatched        Method = "matched"
	MethodMicroInference Method = "micro_inference"
	MethodBlindFallback  Method = "blind_fallback"
)

// Candidate is a detection under consideration for a click, with its
// computed score.
type Candidate struct {
	detect.Detection
	Score float64 `json:"score"`
}

// Result is the outcome of resolving one click. CropRegion is always set,
// even when Selected is nil (blind fallback still yields a crop).
type Result struct {
	Selected        *Candidate      `json:"selected"`
	Candidates      []Candidate     `json:"candidates"`
	Ambiguous       bool            `json:"ambiguous"`
	AmbiguityReason AmbiguityReason `json:"ambiguity_reason"`
	Options         []Candidate     `json:"options,omitempty"`
	Method          Method          `json:"method"`
	CropRegion      detect.Box      `json:"crop_region"`
	Crop            image.Image     `json:"-"`
}

// Params holds the resolution tunables. The numeric defaults are empirically
// chosen; callers override them through configuration.
type Params struct {
	ConfidenceWeight float64
	DistanceWeight   float64
	AreaWeight       float64

	// Area (pixels) at which the area penalty saturates
	ReferenceAreaPx float64

	MaskBonus   float64
	MaskPenalty float64

	ConfidenceFloor float64
	AmbiguityMargin float64
	BoundaryPx      float64

	// Micro-inference window edge in pixels, and the resolution the window
	// is upscaled to before re-detection
	MicroWindowPx  int
	MicroInputSize int

	// Blind fallback square edge as a fraction of each image dimension
	BlindFraction float64
}

// DefaultParams returns the resolution defaults.
func DefaultParams() Params {
	return Params{
		ConfidenceWeight: 0.55,
		DistanceWeight:   0.35,
		AreaWeight:       0.10,
		ReferenceAreaPx:  2000 * 2000,
		MaskBonus:        0.15,
		MaskPenalty:      0.10,
		ConfidenceFloor:  0.25,
		AmbiguityMargin:  0.08,
		BoundaryPx:       10,
		MicroWindowPx:    640,
		MicroInputSize:   640,
		BlindFraction:    0.10,
	}
}

// Resolver scores detections against click points. Deterministic given the
// same image, click and detection set.
type Resolver struct {
	detector detect.Detector
	params   Params
}

func NewResolver(detector detect.Detector, params Params) *Resolver {
	return &Resolver{detector: detector, params: params}
}

// Resolve maps a normalized click to one object region. When detections is
// nil the detector runs on the full frame first. Detector failures are
// recovered by the fallback chain and never surfaced as errors; only invalid
// input is rejected.
func (r *Resolver) Resolve(ctx context.Context, img image.Image, x, y float64, detections []detect.Detection) (Result, error) {
	if x < 0 || x > 1 || y < 0 || y > 1 {
		return Result{}, apperrors.NewValidationError(
			fmt.Sprintf("click coordinates out of range: (%.3f, %.3f)", x, y), nil)
	}

	if detections == nil {
		var err error
		detections, err = r.detector.Detect(ctx, img)
		if err != nil {
			logger.WithError(err).Warn("Full-frame detection failed, continuing with fallbacks")
			detections = nil
		}
	}

	bounds := img.Bounds()
	imgW := float64(bounds.Dx())
	imgH := float64(bounds.Dy())

	// Candidate search: every detection whose box contains the click
	var candidates []Candidate
	for _, det := range detections {
		if det.Box.Contains(x, y) {
			candidates = append(candidates, Candidate{
				Detection: det,
				Score:     r.score(det, x, y, imgW, imgH),
			})
		}
	}
	sortCandidates(candidates)

	res := Result{
		Candidates:      candidates,
		AmbiguityReason: AmbiguityNone,
		Method:          MethodMatched,
	}

	if len(candidates) > 0 {
		res.Selected = &candidates[0]

		if len(candidates) >= 2 {
			if candidates[0].Score-candidates[1].Score < r.params.AmbiguityMargin {
				res.Ambiguous = true
				res.AmbiguityReason = AmbiguityCloseScores
			}
			if nearBoundary(candidates[0].Box, x, y, imgW, imgH, r.params.BoundaryPx) ||
				nearBoundary(candidates[1].Box, x, y, imgW, imgH, r.params.BoundaryPx) {
				res.Ambiguous = true
				res.AmbiguityReason = AmbiguityBoundary
			}
			if res.Ambiguous {
				n := len(candidates)
				if n > 3 {
					n = 3
				}
				res.Options = candidates[:n]
			}
		}
	}

	// Fallback chain: micro-inference when nothing usable, then blind
	allWeak := true
	for _, c := range candidates {
		if c.Confidence >= r.params.ConfidenceFloor {
			allWeak = false
			break
		}
	}
	if len(candidates) == 0 || allWeak {
		micro := r.microInference(ctx, img, x, y)
		if len(micro) > 0 {
			// A micro-inference hit is authoritative
			res.Candidates = micro
			res.Selected = &micro[0]
			res.Method = MethodMicroInference
			res.Ambiguous = false
			res.AmbiguityReason = AmbiguityNone
			res.Options = nil
		} else if len(candidates) == 0 {
			res.Method = MethodBlindFallback
			res.Selected = nil
		}
	}

	var selectedDet *detect.Detection
	if res.Selected != nil {
		selectedDet = &res.Selected.Detection
	}
	region, crop, err := ComputeCrop(img, selectedDet, x, y, r.params.BlindFraction)
	if err != nil {
		return Result{}, apperrors.NewProcessingError("failed to compute crop", err)
	}
	res.CropRegion = region
	res.Crop = crop

	logger.WithFields(logrus.Fields{
		"method":     res.Method,
		"candidates": len(res.Candidates),
		"ambiguous":  res.Ambiguous,
		"reason":     res.AmbiguityReason,
	}).Debug("Click resolved")

	return res, nil
}

// score = Wc*confidence + Wd*(1 - center distance) + Wa*(1 - area), with a
// mask bonus/penalty and a heavy halving below the confidence floor.
func (r *Resolver) score(det detect.Detection, x, y, imgW, imgH float64) float64 {
	distNorm := centerDistanceNorm(det.Box, x, y, imgW, imgH)

	areaPx := det.Box.Area() * imgW * imgH
	areaNorm := math.Min(1, areaPx/r.params.ReferenceAreaPx)

	score := r.params.ConfidenceWeight*det.Confidence +
		r.params.DistanceWeight*(1-distNorm) +
		r.params.AreaWeight*(1-areaNorm)

	if len(det.Mask) > 0 {
		if pointInPolygon(x, y, det.Mask) {
			score += r.params.MaskBonus
		} else {
			// Click inside the bbox but outside the object silhouette
			score -= r.params.MaskPenalty
		}
	}

	if det.Confidence < r.params.ConfidenceFloor {
		score *= 0.5
	}
	return score
}

// microInference re-runs detection on a window centered on the click at
// higher resolution and remaps hits back to full-image coordinates. Detector
// failures here are swallowed; the caller falls through to the blind crop.
func (r *Resolver) microInference(ctx context.Context, img image.Image, x, y float64) []Candidate {
	bounds := img.Bounds()
	imgW := float64(bounds.Dx())
	imgH := float64(bounds.Dy())

	half := float64(r.params.MicroWindowPx) / 2
	px := x * imgW
	py := y * imgH

	wx := math.Max(0, px-half) / imgW
	wy := math.Max(0, py-half) / imgH
	wx2 := math.Min(imgW, px+half) / imgW
	wy2 := math.Min(imgH, py+half) / imgH
	ww := wx2 - wx
	wh := wy2 - wy

	window, err := imageio.CropNorm(img, wx, wy, ww, wh)
	if err != nil {
		logger.WithError(err).Warn("Micro-inference window extraction failed")
		return nil
	}

	detections, err := r.detector.Detect(ctx, imageio.Upscale(window, r.params.MicroInputSize))
	if err != nil {
		logger.WithError(err).Warn("Micro-inference detection failed")
		return nil
	}

	// Click position relative to the window
	relX := (x - wx) / ww
	relY := (y - wy) / wh

	var hits []Candidate
	for _, det := range detections {
		if !det.Box.Contains(relX, relY) {
			continue
		}
		remapped := det
		remapped.Box = detect.Box{
			X: wx + det.Box.X*ww,
			Y: wy + det.Box.Y*wh,
			W: det.Box.W * ww,
			H: det.Box.H * wh,
		}
		remapped.Mask = remapMask(det.Mask, wx, wy, ww, wh)
		hits = append(hits, Candidate{Detection: remapped, Score: remapped.Confidence})
	}
	sortCandidates(hits)
	return hits
}

func remapMask(mask []detect.Point, wx, wy, ww, wh float64) []detect.Point {
	if len(mask) == 0 {
		return nil
	}
	out := make([]detect.Point, len(mask))
	for i, p := range mask {
		out[i] = detect.Point{X: wx + p.X*ww, Y: wy + p.Y*wh}
	}
	return out
}

// sortCandidates orders by score descending; ties break by detector
// confidence, then by smaller area (prefers the more specific object).
func sortCandidates(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		return candidates[i].Box.Area() < candidates[j].Box.Area()
	})
}
