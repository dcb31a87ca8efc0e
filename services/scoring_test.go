package services

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestComputeCtHeat(t *testing.T) {
	require.Zero(t, ComputeCtHeat(0, 50, 20, 10, 3))

	modest := ComputeCtHeat(5, 10, 2, 4, 0)
	hot := ComputeCtHeat(500, 900, 400, 250, 40)
	require.Greater(t, hot, modest)
	require.LessOrEqual(t, hot, 100.0)

	// One decimal place.
	got := ComputeCtHeat(3, 7, 1, 2, 1)
	require.InDelta(t, got, math.Round(got*10)/10, 1e-9)
}

func TestComputeSignalScore_WindowAndBands(t *testing.T) {
	now := time.Now()
	posts := []PostMetrics{
		{Likes: 40, Replies: 5, Retweets: 10, PostedAt: now.Add(-time.Hour)},
		{Likes: 60, Replies: 8, Retweets: 12, PostedAt: now.Add(-48 * time.Hour)},
		// Outside any 30-day window; must not count.
		{Likes: 100000, Replies: 0, Retweets: 0, PostedAt: now.Add(-60 * 24 * time.Hour)},
	}

	windowed, _ := ComputeSignalScore(posts, 30*24*time.Hour, false, 0)
	short, _ := ComputeSignalScore(posts, 24*time.Hour, false, 0)
	require.NotZero(t, windowed)
	// Shrinking the window changes which posts count, never imports the
	// ancient viral post.
	require.NotEqual(t, windowed, short)

	_, band := ComputeSignalScore(nil, 30*24*time.Hour, false, 0)
	require.Equal(t, TrustBandLow, band)

	huge := make([]PostMetrics, 0, 10)
	for i := 0; i < 10; i++ {
		huge = append(huge, PostMetrics{Likes: 5000, Replies: 800, Retweets: 1200, PostedAt: now.Add(-time.Hour)})
	}
	score, band := ComputeSignalScore(huge, 30*24*time.Hour, true, 500000)
	require.Equal(t, TrustBandHigh, band)
	require.LessOrEqual(t, score, 100.0)
}

func TestComputeSignalScore_JoinedBonus(t *testing.T) {
	posts := []PostMetrics{{Likes: 10, Replies: 2, Retweets: 1, PostedAt: time.Now().Add(-time.Hour)}}

	plain, _ := ComputeSignalScore(posts, 30*24*time.Hour, false, 0)
	joined, _ := ComputeSignalScore(posts, 30*24*time.Hour, true, 0)
	require.InDelta(t, plain+5, joined, 0.11)
}
