package logging

import (
	"log/slog"
	"time"
)

// Common field names for consistent logging.
const (
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldDuration  = "duration_ms"
	FieldError     = "error"
	FieldBackend   = "backend"
	FieldCommand   = "command"
)

// Method returns a slog attribute for the HTTP method.
func Method(method string) slog.Attr {
	return slog.String(FieldMethod, method)
}

// Path returns a slog attribute for the HTTP path.
func Path(path string) slog.Attr {
	return slog.String(FieldPath, path)
}

// Status returns a slog attribute for the HTTP status code.
func Status(code int) slog.Attr {
	return slog.Int(FieldStatus, code)
}

// Duration returns a slog attribute for an elapsed time in milliseconds.
func Duration(d time.Duration) slog.Attr {
	return slog.Int64(FieldDuration, d.Milliseconds())
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}

// Backend returns a slog attribute naming the session store backend.
func Backend(name string) slog.Attr {
	return slog.String(FieldBackend, name)
}

// Command returns a slog attribute for the CLI command path.
func Command(path string) slog.Attr {
	return slog.String(FieldCommand, path)
}
