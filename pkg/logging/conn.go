package logging

import "log/slog"

// WithConn returns a logger scoped to a single connection, tagging every
// record with the connection ID and target URL. A nil logger yields a
// no-op logger, so callers never have to nil-check.
func WithConn(log *slog.Logger, id, url string) *slog.Logger {
	if log == nil {
		return Nop()
	}
	return log.With(slog.String("conn", id), slog.String("url", url))
}
