// Package util provides shared utility functions for wirecat.
package util

import (
	"fmt"
	"unicode/utf8"
)

// MaxPreviewSize is the default maximum payload size for display (10KB).
const MaxPreviewSize = 10 * 1024

// Truncate caps a string at max bytes, appending "...(truncated)" if cut.
// If max <= 0, uses MaxPreviewSize.
func Truncate(data string, max int) string {
	if max <= 0 {
		max = MaxPreviewSize
	}
	if len(data) > max {
		return data[:max] + "...(truncated)"
	}
	return data
}

// previewHexBytes is how much of a binary payload Preview shows as hex.
const previewHexBytes = 32

// Preview renders a payload for terminal display. Valid UTF-8 passes
// through truncated; binary data becomes a length-prefixed hex preview.
func Preview(payload []byte, max int) string {
	if len(payload) == 0 {
		return "(empty)"
	}
	if utf8.Valid(payload) {
		return Truncate(string(payload), max)
	}
	if len(payload) <= previewHexBytes {
		return fmt.Sprintf("(%d bytes) %x", len(payload), payload)
	}
	return fmt.Sprintf("(%d bytes) %x...", len(payload), payload[:previewHexBytes])
}
