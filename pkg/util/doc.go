// Package util provides shared helpers for rendering payloads safely in
// terminal output and logs.
//
//   - Truncate — cap long strings for display
//   - Preview — render text or binary payloads without flooding the terminal
package util
