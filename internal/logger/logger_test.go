package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew(t *testing.T) {
	log := New()
	if log.GetLevel() != zerolog.InfoLevel {
		t.Errorf("Expected info level, got %v", log.GetLevel())
	}
}

func TestNewWithOptions_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithOptions(Options{Level: "warn", Format: "json", Out: buf})

	log.Info().Msg("hidden")
	log.Warn().Str("key", "lifeos.financial").Msg("visible")

	output := buf.String()
	if strings.Contains(output, "hidden") {
		t.Errorf("info message should be filtered at warn level: %s", output)
	}
	if !strings.Contains(output, `"key":"lifeos.financial"`) {
		t.Errorf("Expected JSON field in output, got: %s", output)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{" ERROR ", zerolog.ErrorLevel},
		{"nonsense", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	testLog := NewWithWriter(buf)
	ctx := WithContext(context.Background(), testLog)

	retrievedLog := FromContext(ctx)
	retrievedLog.Info().Msg("test")

	if buf.Len() == 0 {
		t.Error("Expected log output from retrieved logger")
	}
}

func TestFromContext_DefaultLogger(t *testing.T) {
	log := FromContext(context.Background())

	if log.GetLevel() == zerolog.Disabled {
		t.Error("Expected default logger to be enabled")
	}
}

func TestWithFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := WithFields(NewWithWriter(buf), map[string]interface{}{
		"habit_id": "h-1",
		"streak":   3,
	})
	log.Info().Msg("toggled")

	output := buf.String()
	if !strings.Contains(output, "habit_id") || !strings.Contains(output, "h-1") {
		t.Errorf("Expected output to contain habit_id field, got: %s", output)
	}
}
