package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/calmora/calmora-cli/internal/requestid"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		level  slog.Level
		format string
	}{
		{
			name:   "json format with info level",
			level:  slog.LevelInfo,
			format: "json",
		},
		{
			name:   "text format with debug level",
			level:  slog.LevelDebug,
			format: "text",
		},
		{
			name:   "default format (text) with error level",
			level:  slog.LevelError,
			format: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.level, tt.format)
			if logger == nil {
				t.Fatal("expected non-nil logger")
			}
			if logger.Logger == nil {
				t.Fatal("expected non-nil underlying logger")
			}
		})
	}
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelInfo, "json")

	logger.Info("hello", "k", "v")

	if !strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Errorf("expected JSON output, got: %s", buf.String())
	}
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelInfo, "json")

	tests := []struct {
		name        string
		ctx         context.Context
		expectReqID bool
	}{
		{
			name:        "context with request ID",
			ctx:         requestid.With(context.Background(), "test-req-123"),
			expectReqID: true,
		},
		{
			name:        "context without request ID",
			ctx:         context.Background(),
			expectReqID: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()

			logger.WithContext(tt.ctx).Info("test message")

			hasID := strings.Contains(buf.String(), "test-req-123")
			if hasID != tt.expectReqID {
				t.Errorf("request id present = %v, want %v; output: %s", hasID, tt.expectReqID, buf.String())
			}
		})
	}
}

func TestDebugContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelDebug, "text")

	ctx := requestid.With(context.Background(), "dbg-1")
	logger.DebugContext(ctx, "test debug message")

	output := buf.String()
	if !strings.Contains(output, "test debug message") {
		t.Errorf("expected message in output, got: %s", output)
	}
	if !strings.Contains(output, "request_id=dbg-1") {
		t.Errorf("expected request ID in output, got: %s", output)
	}
}

func TestWarnContext_FilteredBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelError, "text")

	logger.WarnContext(context.Background(), "should not appear")

	if buf.Len() != 0 {
		t.Errorf("expected no output below level, got: %s", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.ErrorContext(context.Background(), "dropped")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"error", slog.LevelError},
		{"invalid", slog.LevelWarn},
		{"", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFields(t *testing.T) {
	tests := []struct {
		name  string
		attr  slog.Attr
		key   string
		value string
	}{
		{"method", Method("PUT"), FieldMethod, "PUT"},
		{"path", Path("/account/profile"), FieldPath, "/account/profile"},
		{"status", Status(401), FieldStatus, "401"},
		{"duration", Duration(1500 * time.Millisecond), FieldDuration, "1500"},
		{"error", Error(errors.New("boom")), FieldError, "boom"},
		{"backend", Backend("redis"), FieldBackend, "redis"},
		{"command", Command("calmora login"), FieldCommand, "calmora login"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.attr.Key != tt.key {
				t.Errorf("expected key %q, got %q", tt.key, tt.attr.Key)
			}
			if tt.attr.Value.String() != tt.value {
				t.Errorf("expected value %q, got %q", tt.value, tt.attr.Value.String())
			}
		})
	}
}
