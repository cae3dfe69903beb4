package errors

import (
	"strings"
	"unicode"
)

// maxNodeIDLength bounds node IDs; anything longer is almost certainly
// a pasted title rather than an identifier.
const maxNodeIDLength = 128

// ValidateNodeID validates a node identifier for safety and correctness
// before it reaches the diagram emitters.
//
// The validation rules are intentionally conservative:
//   - No empty IDs
//   - No control characters
//   - No path traversal sequences (.., //)
//   - No diagram syntax characters (quotes, brackets, braces)
//   - Maximum length of 128 characters
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidNodeID, "node ID cannot be empty")
	}

	if len(id) > maxNodeIDLength {
		return New(ErrCodeInvalidNodeID, "node ID too long (max %d characters)", maxNodeIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidNodeID, "node ID contains control characters")
		}
	}

	dangerousPatterns := []string{
		"..",               // Parent directory
		"//",               // Double slash
		`"`,                // Breaks quoted labels
		"[", "]", "{", "}", // Diagram shape syntax
	}
	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidNodeID, "node ID contains invalid sequence: %q", pattern)
		}
	}

	return nil
}

// ValidateOutputPath validates an output path before an artifact is
// written to it. The path may carry directory components; it must name
// a file and must not contain control characters.
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains control characters")
		}
	}
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, `\`) {
		return New(ErrCodeInvalidPath, "output path must name a file: %q", path)
	}
	return nil
}
