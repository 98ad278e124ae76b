package retry

import (
	"testing"
	"time"
)

func TestExponentialBackoff(t *testing.T) {
	base := 200 * time.Millisecond

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{-1, 200 * time.Millisecond},
		{0, 200 * time.Millisecond},
		{1, 400 * time.Millisecond},
		{2, 800 * time.Millisecond},
		{3, 1600 * time.Millisecond},
	}

	for _, tt := range tests {
		result := ExponentialBackoff(tt.attempt, base)
		if result != tt.expected {
			t.Errorf("attempt %d: got %v, want %v", tt.attempt, result, tt.expected)
		}
	}
}

func TestCappedBackoff(t *testing.T) {
	base := time.Second
	ceiling := 30 * time.Second

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, time.Second},
		{3, 8 * time.Second},
		{5, 30 * time.Second},
		{62, 30 * time.Second},
	}

	for _, tt := range tests {
		if got := CappedBackoff(tt.attempt, base, ceiling); got != tt.expected {
			t.Errorf("attempt %d: got %v, want %v", tt.attempt, got, tt.expected)
		}
	}
}
