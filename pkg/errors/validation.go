package errors

import (
	"strings"
	"unicode"
)

// Layout names accepted by ValidateLayoutName. Kept here rather than imported
// from pkg/chart/layout so that package stays free of outer-surface concerns.
var layoutNames = map[string]bool{
	"balanced":   true,
	"sequential": true,
	"force":      true,
}

// ValidateLayoutName checks that name is one of the known layout engines.
func ValidateLayoutName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidLayout, "layout name cannot be empty")
	}
	if !layoutNames[name] {
		return New(ErrCodeInvalidLayout, "unknown layout %q (must be one of: balanced, sequential, force)", name)
	}
	return nil
}

// ValidateNodeID validates a node id received from a client.
//
// Node ids are built from display names, so there is no length or
// character limit; request bodies are already size-capped. The rules only
// reject what the graph builder never produces:
//   - No empty ids
//   - A known kind prefix (provider-, category-, technique-)
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidNodeID, "node id cannot be empty")
	}
	for _, prefix := range []string{"provider-", "category-", "technique-"} {
		if strings.HasPrefix(id, prefix) {
			return nil
		}
	}
	return New(ErrCodeInvalidNodeID, "node id %q has no known kind prefix", id)
}

// ValidateStoreKey validates a layout store key.
// Keys end up in file names (via hashing) and redis/mongo keys, so they are
// kept to a conservative character set.
func ValidateStoreKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidKey, "store key cannot be empty")
	}
	if len(key) > 256 {
		return New(ErrCodeInvalidKey, "store key too long (max 256 characters)")
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.', r == ':':
		default:
			return New(ErrCodeInvalidKey, "store key contains invalid character %q", r)
		}
	}
	return nil
}

// ValidatePath validates a dataset or output path given on the command line
// or through the API.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	for _, part := range strings.Split(strings.ReplaceAll(path, "\\", "/"), "/") {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}

// ValidateFormat checks an output format name.
func ValidateFormat(format string) error {
	switch format {
	case "svg", "png", "pdf", "json", "dot":
		return nil
	}
	return New(ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json, dot)", format)
}
