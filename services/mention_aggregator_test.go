package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateMentionPoints_Weighting(t *testing.T) {
	db := setupTestDB(t)
	project := seedProject(t, db)
	now := time.Now()

	// 10 likes + 2*3 replies + 3*2 retweets = 22
	seedMention(t, db, project.ID, "alice", 10, 3, 2, false, now)

	points, err := AggregateMentionPoints(db, project.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(22), points["alice"])
}

func TestAggregateMentionPoints_NormalizesAndMergesHandles(t *testing.T) {
	db := setupTestDB(t)
	project := seedProject(t, db)
	now := time.Now()

	seedMention(t, db, project.ID, "@Alice", 5, 0, 0, false, now)
	seedMention(t, db, project.ID, " alice ", 3, 0, 0, false, now)
	seedMention(t, db, project.ID, "@", 100, 0, 0, false, now) // normalizes to nothing

	points, err := AggregateMentionPoints(db, project.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(8), points["alice"])
	assert.Len(t, points, 1)
}

func TestAggregateMentionPoints_SkipsOfficialMentions(t *testing.T) {
	db := setupTestDB(t)
	project := seedProject(t, db)
	now := time.Now()

	seedMention(t, db, project.ID, "alice", 50, 0, 0, true, now)
	seedMention(t, db, project.ID, "alice", 7, 0, 0, false, now)

	points, err := AggregateMentionPoints(db, project.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(7), points["alice"])
}

func TestAggregateMentionPoints_AsOfBound(t *testing.T) {
	db := setupTestDB(t)
	project := seedProject(t, db)
	now := time.Now()

	seedMention(t, db, project.ID, "alice", 10, 0, 0, false, now.Add(-48*time.Hour))
	seedMention(t, db, project.ID, "alice", 30, 0, 0, false, now)

	cutoff := now.Add(-24 * time.Hour)
	points, err := AggregateMentionPoints(db, project.ID, &cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(10), points["alice"])

	points, err = AggregateMentionPoints(db, project.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(40), points["alice"])
}

func TestAggregateMentionPoints_NoMentionsMeansAbsent(t *testing.T) {
	db := setupTestDB(t)
	project := seedProject(t, db)

	points, err := AggregateMentionPoints(db, project.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, points)
	_, ok := points["ghost"]
	assert.False(t, ok)
}
