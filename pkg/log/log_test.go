// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package log

import (
	"log/slog"
	"testing"
	"time"
)

func TestLogOptionalDuration(t *testing.T) {
	tests := []struct {
		name     string
		input    *time.Duration
		expected slog.Value
	}{
		{
			name:     "nil pointer returns nil value",
			input:    nil,
			expected: slog.AnyValue(nil),
		},
		{
			name:     "zero value returns zero",
			input:    ptrDuration(0),
			expected: slog.DurationValue(0),
		},
		{
			name:     "positive value returns value",
			input:    ptrDuration(45 * time.Second),
			expected: slog.DurationValue(45 * time.Second),
		},
		{
			name:     "sub-second value returns value",
			input:    ptrDuration(250 * time.Millisecond),
			expected: slog.DurationValue(250 * time.Millisecond),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := LogOptionalDuration(tt.input)

			// Compare using Equal method for slog.Value
			if !result.Equal(tt.expected) {
				t.Errorf("LogOptionalDuration(%v) = %v, want %v", tt.input, result, tt.expected)
			}

			// Additional validation for non-nil cases
			if tt.input != nil {
				if result.Kind() != slog.KindDuration {
					t.Errorf("Expected Kind to be KindDuration, got %v", result.Kind())
				}
				if result.Duration() != *tt.input {
					t.Errorf("Expected Duration() to return %v, got %v", *tt.input, result.Duration())
				}
			}
		})
	}
}

// ptrDuration is a helper function to create duration pointers for test cases
func ptrDuration(v time.Duration) *time.Duration {
	return &v
}
