package errors

import (
	"strings"
	"unicode"
)

const maxNameLength = 256

// ValidateTaxonName validates a scientific or canonical name before it is sent
// to the taxonomy service.
//
// The rules are deliberately loose since names contain spaces, hyphens, dots
// and the occasional non-ASCII letter:
//   - No empty or whitespace-only names
//   - No control characters
//   - Maximum length of 256 characters
func ValidateTaxonName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidName, "taxon name cannot be empty")
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidName, "taxon name too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "taxon name contains invalid control characters")
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// ValidatePositive returns an INVALID_CONFIG error when v is not strictly positive.
func ValidatePositive(field string, v int) error {
	if v <= 0 {
		return New(ErrCodeInvalidConfig, "%s must be positive, got %d", field, v)
	}
	return nil
}
