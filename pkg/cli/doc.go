// Package cli provides the command-line interface for wirecat.
//
// The cli package implements all CLI commands for working with
// websocket endpoints:
//   - connect: Interactive session (REPL mode) with optional auto-reconnect
//   - send: Send a single message and exit, optionally printing replies
//   - listen: Stream incoming messages with count limits and filters
//   - init: Create a connection profile (interactive or from flags)
//   - profile: List, show, select and remove profiles
//   - version: Show wirecat version
//
// Connection settings resolve in priority order: command-line flags,
// environment variables (WIRECAT_URL, WIRECAT_PROFILE), then the selected
// profile from the config file (~/.config/wirecat/config.yaml by default,
// overridable with --config or WIRECAT_CONFIG).
//
// Listen filters are expressions over the message fields type, text,
// size and index, for example:
//
//	wirecat listen --filter 'type == "text" && text contains "error"' ws://host/feed
//
// Usage:
//
//	wirecat init
//	wirecat connect ws://localhost:8080/ws
//	wirecat send ws://localhost:8080/ws '{"action":"ping"}'
//	wirecat send --binary ws://localhost:8080/ws @payload.bin
//	wirecat listen -n 10 --json ws://localhost:8080/feed
//	wirecat profile list
package cli
