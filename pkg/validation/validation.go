// Package validation rejects malformed request inputs before they reach
// the pipeline.
package validation

import (
	"fmt"
	"net/url"
	"strings"

	apperrors "github.com/Alyfish/spacestest-v0-mvp/internal/errors"
)

// URLValidator checks image URLs supplied by callers.
type URLValidator struct {
	allowedSchemes []string
	allowedHosts   []string
}

// NewURLValidator allows http and https from any host.
func NewURLValidator() *URLValidator {
	return &URLValidator{
		allowedSchemes: []string{"http", "https"},
	}
}

// NewURLValidatorWithOptions restricts schemes and, when hosts is non-empty,
// hosts.
func NewURLValidatorWithOptions(schemes, hosts []string) *URLValidator {
	return &URLValidator{
		allowedSchemes: schemes,
		allowedHosts:   hosts,
	}
}

// ValidateImageURL rejects empty, unparseable, wrong-scheme or
// disallowed-host URLs.
func (v *URLValidator) ValidateImageURL(imageURL string) error {
	if strings.TrimSpace(imageURL) == "" {
		return apperrors.NewValidationError("URL cannot be empty", nil)
	}

	parsed, err := url.Parse(imageURL)
	if err != nil {
		return apperrors.NewValidationError("Invalid URL format", err)
	}
	if parsed.Host == "" {
		return apperrors.NewValidationError("URL must have a valid host", nil)
	}

	schemeOK := false
	for _, s := range v.allowedSchemes {
		if parsed.Scheme == s {
			schemeOK = true
			break
		}
	}
	if !schemeOK {
		return apperrors.NewValidationError(
			fmt.Sprintf("URL scheme %q is not allowed", parsed.Scheme), nil)
	}

	if len(v.allowedHosts) > 0 {
		hostOK := false
		for _, h := range v.allowedHosts {
			if strings.EqualFold(parsed.Hostname(), h) {
				hostOK = true
				break
			}
		}
		if !hostOK {
			return apperrors.NewValidationError(
				fmt.Sprintf("URL host %q is not allowed", parsed.Hostname()), nil)
		}
	}
	return nil
}

// ValidateClick rejects click coordinates outside the normalized [0,1]
// range.
func ValidateClick(x, y float64) error {
	if x < 0 || x > 1 || y < 0 || y > 1 {
		return apperrors.NewValidationError(
			fmt.Sprintf("click coordinates must lie in [0,1], got (%.3f, %.3f)", x, y), nil)
	}
	return nil
}

// ValidateRect rejects degenerate normalized rectangles.
func ValidateRect(x, y, w, h float64) error {
	if w <= 0 || h <= 0 {
		return apperrors.NewValidationError(
			fmt.Sprintf("rectangle must have positive area, got %.3fx%.3f", w, h), nil)
	}
	if x < 0 || y < 0 || x+w > 1 || y+h > 1 {
		return apperrors.NewValidationError("rectangle must lie within [0,1]", nil)
	}
	return nil
}
