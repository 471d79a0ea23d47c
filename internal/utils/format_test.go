package utils_test

import (
	"testing"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/tyemirov/swrelease/internal/utils"
)

func TestFormatFileSize(t *testing.T) {
	testCases := []struct {
		name     string
		bytes    int64
		expected string
	}{
		{name: "negative", bytes: -1, expected: "0 B"},
		{name: "bytes", bytes: 512, expected: "512 B"},
		{name: "one kibibyte", bytes: 1024, expected: "1 KiB"},
		{name: "fractional kibibyte", bytes: 1536, expected: "1.5 KiB"},
		{name: "ten mebibytes", bytes: 10 * 1024 * 1024, expected: "10 MiB"},
		{name: "large archive", bytes: 123 * 1024 * 1024, expected: "123 MiB"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			result := utils.FormatFileSize(testCase.bytes)
			if result != testCase.expected {
				t.Fatalf("expected %s, got %s", testCase.expected, result)
			}
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	location := time.Now().Location()
	testCases := []struct {
		name     string
		value    time.Time
		expected string
	}{
		{
			name:     "zero time",
			value:    time.Time{},
			expected: "",
		},
		{
			name:     "local timestamp",
			value:    time.Date(2024, time.January, 2, 15, 4, 0, 0, location),
			expected: "2024-01-02 15:04",
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			result := utils.FormatTimestamp(testCase.value)
			if result != testCase.expected {
				t.Fatalf("expected %s, got %s", testCase.expected, result)
			}
		})
	}
}

func TestFormatReleaseTimestamp(t *testing.T) {
	if _, locationError := time.LoadLocation(utils.ReleaseTimeZone); locationError != nil {
		t.Skipf("time zone database unavailable: %v", locationError)
	}
	testCases := []struct {
		name     string
		value    time.Time
		expected string
	}{
		{name: "zero time", value: time.Time{}, expected: ""},
		{name: "winter offset", value: time.Date(2024, time.January, 2, 14, 4, 0, 0, time.UTC), expected: "2024-01-02 15:04"},
		{name: "summer offset", value: time.Date(2024, time.July, 2, 14, 4, 0, 0, time.UTC), expected: "2024-07-02 16:04"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			result := utils.FormatReleaseTimestamp(testCase.value)
			if result != testCase.expected {
				t.Fatalf("expected %s, got %s", testCase.expected, result)
			}
		})
	}
}

func TestNewApplicationLoggerLevels(t *testing.T) {
	quiet, err := utils.NewApplicationLogger(false)
	if err != nil {
		t.Fatalf("NewApplicationLogger: %v", err)
	}
	if quiet.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("debug must be disabled without verbose")
	}
	verbose, err := utils.NewApplicationLogger(true)
	if err != nil {
		t.Fatalf("NewApplicationLogger: %v", err)
	}
	if !verbose.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("debug must be enabled with verbose")
	}
}
