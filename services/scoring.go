// services/scoring.go
package services

import (
	"math"
	"time"
)

// PostMetrics is one post's engagement counts, the unit the signal-score
// calculator consumes.
type PostMetrics struct {
	Likes    int64
	Replies  int64
	Retweets int64
	PostedAt time.Time
}

// Trust bands reported alongside the signal score.
const (
	TrustBandHigh   = "high"
	TrustBandMedium = "medium"
	TrustBandLow    = "low"
)

// ComputeCtHeat scores how much crypto-twitter attention a creator is pulling
// right now, on a 0–100 scale. Volume terms are log-scaled so a handful of
// viral posts can't saturate the metric on their own.
func ComputeCtHeat(mentionsCount int64, avgLikes, avgRetweets float64, uniqueAuthors int64, influencerMentions int64) float64 {
	if mentionsCount <= 0 {
		return 0
	}
	volume := math.Log1p(float64(mentionsCount)) * 12
	engagement := math.Log1p(avgLikes+2*avgRetweets) * 8
	breadth := math.Log1p(float64(uniqueAuthors)) * 6
	influence := math.Log1p(float64(influencerMentions)) * 10

	heat := volume + engagement + breadth + influence
	if heat > 100 {
		heat = 100
	}
	return math.Round(heat*10) / 10
}

// ComputeSignalScore rates a creator's recent output quality over a window.
// Joined creators get a modest bonus (they have skin in the game), and smart
// followers weigh in logarithmically. Returns the score plus a trust band.
func ComputeSignalScore(posts []PostMetrics, window time.Duration, isJoined bool, smartFollowersCount int64) (float64, string) {
	cutoff := time.Now().Add(-window)
	var engagement float64
	var counted int
	for _, p := range posts {
		if p.PostedAt.Before(cutoff) {
			continue
		}
		engagement += float64(p.Likes + 2*p.Replies + 3*p.Retweets)
		counted++
	}

	var score float64
	if counted > 0 {
		score = math.Log1p(engagement/float64(counted)) * 14
	}
	score += math.Log1p(float64(smartFollowersCount)) * 4
	if isJoined {
		score += 5
	}
	if score > 100 {
		score = 100
	}
	score = math.Round(score*10) / 10

	band := TrustBandLow
	switch {
	case score >= 70:
		band = TrustBandHigh
	case score >= 40:
		band = TrustBandMedium
	}
	return score, band
}
