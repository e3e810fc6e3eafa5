// Package logging configures the process-wide structured logger.
//
// The gateway logs through log/slog exclusively. Setup installs the
// configured handler (JSON or text, leveled) as the slog default; individual
// components derive their loggers with slog.Default().With("component", ...).
package logging
