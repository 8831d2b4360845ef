// Package log builds the slog loggers used by litfeed.
//
// The Handler wraps any slog.Handler and rewrites attributes before they
// are written:
//   - Values under credential-like keys (Authorization, Cookie, api_key)
//     are masked, so request headers from the config file never leak.
//   - Long string values are clipped to MaxValueLen runes. Document bodies
//     and fetched pages are logged by reference, but a stray body attribute
//     must not flood the terminal.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	logger.Debug("fetching page", "title", title, "authorization", token)
//	// authorization=***REDACTED***
package log
