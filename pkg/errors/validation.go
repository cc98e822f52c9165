package errors

import (
	"strings"
	"unicode"
)

// ValidateDocumentID validates a schematic document identifier.
// Document IDs are namespaced "group:device" strings stored as database
// keys, so anything that could break a key or a URL path is rejected.
func ValidateDocumentID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidDocument, "document id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidDocument, "document id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDocument, "document id contains control characters: %q", id)
		}
	}

	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidDocument, "document id cannot contain path separators: %q", id)
	}

	return nil
}

// ValidateSchematicName validates a top-level schematic (group) name.
// Group names become both database key prefixes and SPICE sub-circuit
// identifiers, so colons and whitespace are rejected on top of the
// document-id rules.
func ValidateSchematicName(name string) error {
	if err := ValidateDocumentID(name); err != nil {
		return err
	}

	if strings.ContainsAny(name, ": \t") {
		return New(ErrCodeInvalidName, "schematic name cannot contain colons or whitespace: %q", name)
	}

	return nil
}

// ValidateModelRef validates a bare model reference as used in device
// documents and library lookups.
func ValidateModelRef(ref string) error {
	if ref == "" {
		return New(ErrCodeInvalidModel, "model reference cannot be empty")
	}

	if len(ref) > 256 {
		return New(ErrCodeInvalidModel, "model reference too long (max 256 characters)")
	}

	for _, r := range ref {
		if unicode.IsControl(r) || r == '/' || r == '\\' {
			return New(ErrCodeInvalidModel, "model reference contains invalid characters: %q", ref)
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

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
