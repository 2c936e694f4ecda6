// Package id generates the identifiers used across the codebase.
package id

import (
	"strings"

	"github.com/google/uuid"
)

// Conn generates a unique connection ID in the form "conn-{uuid}".
// The ID is attached to every log record a connection emits.
func Conn() string {
	return "conn-" + uuid.NewString()
}

// Short generates a 12-character hex ID derived from a UUID, for
// user-facing contexts where brevity matters.
func Short() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
