package services

import (
	"testing"
	"time"

	"arc-mindshare-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoricalDeltas_NewcomerGainsFullShare(t *testing.T) {
	db := setupTestDB(t)
	project := seedProject(t, db)
	seedArena(t, db, project.ID, models.ArenaStatusActive)

	// All engagement is recent: a week ago the board was empty.
	seedMention(t, db, project.ID, "alice", 40, 0, 0, false, time.Now().Add(-time.Hour))

	resp, err := newTestLeaderboardService(db).Compute(project.ID)
	require.NoError(t, err)

	entry := findEntry(resp.Entries, "alice")
	require.NotNil(t, entry)
	// 100% now vs 0% then = +10000 bps across every window
	require.NotNil(t, entry.Delta7d)
	assert.Equal(t, 10000, *entry.Delta7d)
	require.NotNil(t, entry.Delta1m)
	assert.Equal(t, 10000, *entry.Delta1m)
	require.NotNil(t, entry.Delta3m)
	assert.Equal(t, 10000, *entry.Delta3m)
}

func TestHistoricalDeltas_ShareShift(t *testing.T) {
	db := setupTestDB(t)
	project := seedProject(t, db)
	seedArena(t, db, project.ID, models.ArenaStatusActive)

	tenDaysAgo := time.Now().AddDate(0, 0, -10)

	// Ten days ago: alice 60, bob 40 → alice held 60%.
	seedMention(t, db, project.ID, "alice", 60, 0, 0, false, tenDaysAgo)
	seedMention(t, db, project.ID, "bob", 40, 0, 0, false, tenDaysAgo)
	// Since: bob gains 100 → now alice 60/200 = 30%.
	seedMention(t, db, project.ID, "bob", 100, 0, 0, false, time.Now().Add(-time.Hour))

	resp, err := newTestLeaderboardService(db).Compute(project.ID)
	require.NoError(t, err)

	alice := findEntry(resp.Entries, "alice")
	require.NotNil(t, alice)
	require.NotNil(t, alice.Delta7d)
	assert.Equal(t, -3000, *alice.Delta7d) // 30% − 60% = −3000 bps

	bob := findEntry(resp.Entries, "bob")
	require.NotNil(t, bob)
	require.NotNil(t, bob.Delta7d)
	assert.Equal(t, 3000, *bob.Delta7d)
}

func TestHistoricalDeltas_NullWhenNoSignalEitherSide(t *testing.T) {
	db := setupTestDB(t)
	project := seedProject(t, db)
	arena := seedArena(t, db, project.ID, models.ArenaStatusActive)

	// Joined with zero points, no mentions ever: 0% now and 0% then.
	seedCreator(t, db, arena.ID, "quiet", 0, nil, time.Now().Add(-48*time.Hour))
	seedMention(t, db, project.ID, "alice", 50, 0, 0, false, time.Now().Add(-time.Hour))

	resp, err := newTestLeaderboardService(db).Compute(project.ID)
	require.NoError(t, err)

	quiet := findEntry(resp.Entries, "quiet")
	require.NotNil(t, quiet)
	assert.Nil(t, quiet.Delta7d)
	assert.Nil(t, quiet.Delta1m)
	assert.Nil(t, quiet.Delta3m)
}

func TestHistoricalReplay_RestrictsJoinsAndVerifications(t *testing.T) {
	db := setupTestDB(t)
	project := seedProject(t, db)
	arena := seedArena(t, db, project.ID, models.ArenaStatusActive)

	// Joined and verified only yesterday; ten days ago neither held.
	seedCreator(t, db, arena.ID, "carol", 100, nil, time.Now().AddDate(0, 0, -1))
	seedVerification(t, db, project.ID, "carol", time.Now().AddDate(0, 0, -1))

	cutoff := time.Now().AddDate(0, 0, -10)
	pcts, err := contributionAt(newTestLeaderboardService(db), project.ID, cutoff)
	require.NoError(t, err)
	assert.Empty(t, pcts)

	// Replayed at now the creator is present, verified.
	now := time.Now()
	pcts, err = contributionAt(newTestLeaderboardService(db), project.ID, now)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, pcts["carol"], 1e-9)
}
