package spool

import (
	"testing"
	"time"
)

func TestShouldReport(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		played   time.Duration
		want     bool
	}{
		{"short track never reports", 20 * time.Second, 20 * time.Second, false},
		{"exactly 30s at half", 30 * time.Second, 15 * time.Second, true},
		{"half played", 4 * time.Minute, 2 * time.Minute, true},
		{"under half played", 4 * time.Minute, 119 * time.Second, false},
		{"long track at 4 minute cap", 20 * time.Minute, 4 * time.Minute, true},
		{"long track under cap", 20 * time.Minute, 3 * time.Minute, false},
		{"nothing played", 3 * time.Minute, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldReport(tt.duration, tt.played); got != tt.want {
				t.Errorf("ShouldReport(%v, %v) = %v, want %v", tt.duration, tt.played, got, tt.want)
			}
		})
	}
}
