package cli

import "errors"

// Common CLI errors
var (
	ErrNoURL = errors.New("no url given - pass one as an argument or create a profile with: wirecat init")
)
