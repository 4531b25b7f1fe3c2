package spool

import (
	"time"
)

// Play-event reporting thresholds, matching the convention most
// Subsonic scrobble consumers expect
const (
	// MinimumTrackDuration is the minimum track length required for a play event (30 seconds)
	MinimumTrackDuration = 30 * time.Second

	// PlayedPercentage is the percentage of track that must be played (50%)
	PlayedPercentage = 0.5

	// MaxPlayedThreshold is the maximum time that needs to be played (4 minutes)
	MaxPlayedThreshold = 4 * time.Minute
)

// ShouldReport determines if a play should be spooled as a play event:
// 1. Track must be longer than 30 seconds
// 2. Track must have been played for at least 50% of its duration OR 4 minutes, whichever comes first
func ShouldReport(trackDuration, playedDuration time.Duration) bool {
	if trackDuration < MinimumTrackDuration {
		return false
	}

	threshold := time.Duration(float64(trackDuration) * PlayedPercentage)
	if threshold > MaxPlayedThreshold {
		threshold = MaxPlayedThreshold
	}

	return playedDuration >= threshold
}
