package errors

import (
	"strings"
	"unicode"
)

// ValidateResource checks that a resource id addresses a real canvas.
// Zero and negative ids are always caller bugs.
func ValidateResource(resource int) error {
	if resource < 1 {
		return New(ErrCodeInvalidResource, "resource must be a positive number, got %d", resource)
	}
	return nil
}

// ValidateName validates an appliance object name (router alias, port name).
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No whitespace or control characters
//   - Maximum length of 64 characters
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "name cannot be empty")
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidInput, "name too long (max 64 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "name %q contains whitespace or control characters", name)
		}
	}
	return nil
}

// ValidateURL validates an appliance base URL.
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
