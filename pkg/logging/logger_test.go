package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelInfo {
		t.Errorf("Expected default level to be Info, got %s", cfg.Level)
	}

	if cfg.Pretty != false {
		t.Error("Expected default pretty to be false")
	}
}

func TestSetup(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		testMsg  string
		contains string
	}{
		{
			name: "info_level",
			config: Config{
				Level:  LevelInfo,
				Pretty: false,
				Output: &bytes.Buffer{},
			},
			testMsg:  "Request handled",
			contains: "Request handled",
		},
		{
			name: "debug_level",
			config: Config{
				Level:  LevelDebug,
				Pretty: false,
				Output: &bytes.Buffer{},
			},
			testMsg:  "Async cache write failed",
			contains: "Async cache write failed",
		},
		{
			name: "warn_level",
			config: Config{
				Level:  LevelWarn,
				Pretty: false,
				Output: &bytes.Buffer{},
			},
			testMsg:  "Rate limit check failed, failing open",
			contains: "Rate limit check failed, failing open",
		},
		{
			name: "error_level",
			config: Config{
				Level:  LevelError,
				Pretty: false,
				Output: &bytes.Buffer{},
			},
			testMsg:  "Upstream fetch failed",
			contains: "Upstream fetch failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			tt.config.Output = buf

			logger := Setup(tt.config)

			// Test that logger writes to the configured output
			switch tt.config.Level {
			case LevelDebug:
				logger.Debug().Msg(tt.testMsg)
			case LevelInfo:
				logger.Info().Msg(tt.testMsg)
			case LevelWarn:
				logger.Warn().Msg(tt.testMsg)
			case LevelError:
				logger.Error().Msg(tt.testMsg)
			}

			output := buf.String()
			if !strings.Contains(output, tt.contains) {
				t.Errorf("Expected output to contain %q, got %q", tt.contains, output)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    LogLevel
		expected zerolog.Level
	}{
		{LevelDebug, zerolog.DebugLevel},
		{LevelInfo, zerolog.InfoLevel},
		{LevelWarn, zerolog.WarnLevel},
		{LevelError, zerolog.ErrorLevel},
		{"invalid", zerolog.InfoLevel}, // Should default to Info
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			result := parseLevel(tt.input)
			if result != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	Setup(Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: buf,
	})

	logger := NewLogger("ratelimit")
	logger.Info().Msg("counter window rolled")

	output := buf.String()
	if !strings.Contains(output, "ratelimit") {
		t.Errorf("Expected output to contain 'ratelimit', got %q", output)
	}
	if !strings.Contains(output, "counter window rolled") {
		t.Errorf("Expected output to contain 'counter window rolled', got %q", output)
	}
}

// Request log lines carry the standard field set so one line answers what was
// asked, who asked, and how it was served.
func TestRequestLogFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := Setup(Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: buf,
	})

	logger.Info().
		Str("method", "GET").
		Str("path", "/api/market/prices").
		Int("status", 200).
		Str("client_ip", "203.0.113.9").
		Str("cache_status", "HIT").
		Msg("Request handled")

	output := buf.String()
	for _, field := range []string{
		`"method":"GET"`,
		`"path":"/api/market/prices"`,
		`"status":200`,
		`"client_ip":"203.0.113.9"`,
		`"cache_status":"HIT"`,
	} {
		if !strings.Contains(output, field) {
			t.Errorf("Expected request log to contain %s, got %q", field, output)
		}
	}
}

func TestLogLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	Setup(Config{
		Level:  LevelWarn,
		Pretty: false,
		Output: buf,
	})

	logger := NewLogger("cache")

	// These should NOT appear (below warn level)
	logger.Debug().Msg("cache entry age computed")
	logger.Info().Msg("request handled")

	// These SHOULD appear (warn level and above)
	logger.Warn().Msg("cache read error, treating as miss")
	logger.Error().Msg("recovered handler panic")

	output := buf.String()

	if strings.Contains(output, "cache entry age computed") {
		t.Error("Debug message should be filtered out at Warn level")
	}
	if strings.Contains(output, "request handled") {
		t.Error("Info message should be filtered out at Warn level")
	}
	if !strings.Contains(output, "cache read error, treating as miss") {
		t.Error("Warn message should be included at Warn level")
	}
	if !strings.Contains(output, "recovered handler panic") {
		t.Error("Error message should be included at Warn level")
	}
}
