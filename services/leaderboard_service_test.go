package services

import (
	"testing"
	"time"

	"arc-mindshare-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findEntry(entries []models.LeaderboardEntry, handle string) *models.LeaderboardEntry {
	for i := range entries {
		if entries[i].Handle == handle {
			return &entries[i]
		}
	}
	return nil
}

func TestCompute_VerifiedCreatorWithAdjustment(t *testing.T) {
	db := setupTestDB(t)
	project := seedProject(t, db)
	arena := seedArena(t, db, project.ID, models.ArenaStatusActive)

	profileID := uuid.NewString()
	seedCreator(t, db, arena.ID, "carol", 100, &profileID, time.Now().Add(-time.Hour))
	require.NoError(t, db.Create(&models.PointAdjustment{
		ID:        uuid.NewString(),
		ArenaID:   arena.ID,
		ProfileID: profileID,
		Delta:     -10,
	}).Error)
	seedVerification(t, db, project.ID, "carol", time.Now().Add(-time.Hour))

	resp, err := newTestLeaderboardService(db).Compute(project.ID)
	require.NoError(t, err)
	require.Len(t, resp.Entries, 1)

	entry := resp.Entries[0]
	assert.Equal(t, int64(90), entry.BasePoints)
	assert.Equal(t, 1.5, entry.Multiplier)
	assert.Equal(t, int64(135), entry.Score) // floor(90 * 1.5)
	assert.True(t, entry.FollowVerified)
	assert.True(t, entry.IsJoined)
	require.NotNil(t, resp.ArenaID)
	assert.Equal(t, arena.ID, *resp.ArenaID)
}

func TestCompute_AutoTrackedOnlyCreator(t *testing.T) {
	db := setupTestDB(t)
	project := seedProject(t, db)
	seedArena(t, db, project.ID, models.ArenaStatusActive)

	// 40 engagement points, never joined
	seedMention(t, db, project.ID, "alice", 40, 0, 0, false, time.Now())

	resp, err := newTestLeaderboardService(db).Compute(project.ID)
	require.NoError(t, err)

	entry := findEntry(resp.Entries, "alice")
	require.NotNil(t, entry)
	assert.True(t, entry.IsAutoTracked)
	assert.False(t, entry.IsJoined)
	assert.Equal(t, int64(40), entry.Score)
	assert.Equal(t, 1.0, entry.Multiplier)
}

func TestCompute_JoinedCreatorAbsorbsAutoPoints(t *testing.T) {
	db := setupTestDB(t)
	project := seedProject(t, db)
	arena := seedArena(t, db, project.ID, models.ArenaStatusActive)

	seedCreator(t, db, arena.ID, "bob", 50, nil, time.Now().Add(-time.Hour))
	seedMention(t, db, project.ID, "bob", 20, 0, 0, false, time.Now())

	resp, err := newTestLeaderboardService(db).Compute(project.ID)
	require.NoError(t, err)

	entry := findEntry(resp.Entries, "bob")
	require.NotNil(t, entry)
	assert.True(t, entry.IsJoined)
	assert.False(t, entry.IsAutoTracked)
	assert.Equal(t, int64(70), entry.BasePoints)
	assert.Equal(t, int64(70), entry.Score) // unverified: auto points get no boost
}

func TestCompute_ZeroPointAutoHandleOmitted(t *testing.T) {
	db := setupTestDB(t)
	project := seedProject(t, db)
	seedArena(t, db, project.ID, models.ArenaStatusActive)

	seedMention(t, db, project.ID, "lurker", 0, 0, 0, false, time.Now())
	seedMention(t, db, project.ID, "alice", 10, 0, 0, false, time.Now())

	resp, err := newTestLeaderboardService(db).Compute(project.ID)
	require.NoError(t, err)
	assert.Nil(t, findEntry(resp.Entries, "lurker"))
	assert.NotNil(t, findEntry(resp.Entries, "alice"))
}

func TestCompute_NoActiveArenaDegradesToAutoOnly(t *testing.T) {
	db := setupTestDB(t)
	project := seedProject(t, db)
	ended := seedArena(t, db, project.ID, models.ArenaStatusEnded)
	seedCreator(t, db, ended.ID, "oldtimer", 500, nil, time.Now().Add(-time.Hour))

	seedMention(t, db, project.ID, "alice", 15, 0, 0, false, time.Now())

	resp, err := newTestLeaderboardService(db).Compute(project.ID)
	require.NoError(t, err)

	assert.Nil(t, resp.ArenaID)
	assert.Nil(t, resp.ArenaName)
	assert.Nil(t, findEntry(resp.Entries, "oldtimer")) // ended arena doesn't count
	require.NotNil(t, findEntry(resp.Entries, "alice"))
}

func TestCompute_RankingAndContribution(t *testing.T) {
	db := setupTestDB(t)
	project := seedProject(t, db)
	arena := seedArena(t, db, project.ID, models.ArenaStatusActive)

	seedCreator(t, db, arena.ID, "first", 300, nil, time.Now().Add(-time.Hour))
	seedCreator(t, db, arena.ID, "second", 200, nil, time.Now().Add(-time.Hour))
	seedMention(t, db, project.ID, "third", 100, 0, 0, false, time.Now())

	resp, err := newTestLeaderboardService(db).Compute(project.ID)
	require.NoError(t, err)
	require.Len(t, resp.Entries, 3)

	// Sorted by rank ascending, scores non-increasing
	var pctSum float64
	for i, entry := range resp.Entries {
		assert.Equal(t, i+1, entry.Rank)
		if i > 0 {
			assert.GreaterOrEqual(t, resp.Entries[i-1].Score, entry.Score)
		}
		require.NotNil(t, entry.ContributionPct)
		pctSum += *entry.ContributionPct
	}
	assert.InDelta(t, 100.0, pctSum, 1e-9)

	assert.Equal(t, "first", resp.Entries[0].Handle)
	assert.Equal(t, "second", resp.Entries[1].Handle)
	assert.Equal(t, "third", resp.Entries[2].Handle)
}

func TestCompute_ZeroTotalNullsContribution(t *testing.T) {
	db := setupTestDB(t)
	project := seedProject(t, db)
	arena := seedArena(t, db, project.ID, models.ArenaStatusActive)

	seedCreator(t, db, arena.ID, "zero", 0, nil, time.Now().Add(-time.Hour))

	resp, err := newTestLeaderboardService(db).Compute(project.ID)
	require.NoError(t, err)
	require.Len(t, resp.Entries, 1)
	assert.Nil(t, resp.Entries[0].ContributionPct)
}

func TestCompute_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	project := seedProject(t, db)
	arena := seedArena(t, db, project.ID, models.ArenaStatusActive)

	seedCreator(t, db, arena.ID, "bob", 50, nil, time.Now().Add(-2*time.Hour))
	seedCreator(t, db, arena.ID, "carol", 80, nil, time.Now().Add(-time.Hour))
	seedMention(t, db, project.ID, "alice", 30, 2, 1, false, time.Now())

	svc := newTestLeaderboardService(db)
	first, err := svc.Compute(project.ID)
	require.NoError(t, err)
	second, err := svc.Compute(project.ID)
	require.NoError(t, err)

	require.Equal(t, len(first.Entries), len(second.Entries))
	for i := range first.Entries {
		assert.Equal(t, first.Entries[i].Handle, second.Entries[i].Handle)
		assert.Equal(t, first.Entries[i].Score, second.Entries[i].Score)
		assert.Equal(t, first.Entries[i].Rank, second.Entries[i].Rank)
	}
}

func TestRankEntries_DeterministicTieBreak(t *testing.T) {
	early := time.Now().Add(-2 * time.Hour)
	late := time.Now().Add(-1 * time.Hour)
	entries := []models.LeaderboardEntry{
		{Handle: "zeta", Score: 10, IsAutoTracked: true},
		{Handle: "beta", Score: 10, IsJoined: true, JoinedAt: &late},
		{Handle: "alpha", Score: 10, IsJoined: true, JoinedAt: &early},
	}
	rankEntries(entries)

	// Earliest joiner first, auto-tracked (no join time) last
	assert.Equal(t, "alpha", entries[0].Handle)
	assert.Equal(t, "beta", entries[1].Handle)
	assert.Equal(t, "zeta", entries[2].Handle)
}

func TestMergeEntries_ScoreFloorAndMultiplierDomain(t *testing.T) {
	joined := time.Now()
	participation := &participationData{
		Creators: []models.ArenaCreator{
			{Handle: "odd", Points: 33, JoinedAt: joined},
		},
		AdjustmentTotals: map[string]int64{},
		Verified:         map[string]bool{"odd": true},
	}
	entries := mergeEntries(participation, map[string]int64{})
	require.Len(t, entries, 1)
	assert.Equal(t, int64(49), entries[0].Score) // floor(33 * 1.5) = 49
	assert.Contains(t, []float64{1.0, 1.5}, entries[0].Multiplier)
}
