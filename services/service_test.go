package services

import (
	"testing"
	"time"

	"arc-mindshare-system/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// One shared connection: a pooled :memory: DB is otherwise a fresh,
	// empty database per connection.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Project{},
		&models.Arena{},
		&models.ArenaAccessRequest{},
		&models.ArenaCreator{},
		&models.PointAdjustment{},
		&models.FollowVerification{},
		&models.Mention{},
		&models.CreatorProfile{},
		&models.TrackedProfile{},
	))
	return db
}

func seedProject(t *testing.T, db *gorm.DB) *models.Project {
	t.Helper()
	project := &models.Project{
		ID:      uuid.NewString(),
		Name:    "Testnet Labs",
		Slug:    "testnet-labs-" + uuid.NewString()[:8],
		XHandle: "testnetlabs",
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

func seedArena(t *testing.T, db *gorm.DB, projectID, status string) *models.Arena {
	t.Helper()
	arena := &models.Arena{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Name:      "Season Arena",
		Slug:      "season-arena-" + uuid.NewString()[:8],
		Kind:      "leaderboard",
		Status:    status,
	}
	require.NoError(t, db.Create(arena).Error)
	return arena
}

func seedCreator(t *testing.T, db *gorm.DB, arenaID, handle string, points int64, profileID *string, joinedAt time.Time) *models.ArenaCreator {
	t.Helper()
	creator := &models.ArenaCreator{
		ID:        uuid.NewString(),
		ArenaID:   arenaID,
		ProfileID: profileID,
		Handle:    handle,
		Points:    points,
		Ring:      models.RingDiscovery,
		JoinedAt:  joinedAt,
	}
	require.NoError(t, db.Create(creator).Error)
	return creator
}

func seedMention(t *testing.T, db *gorm.DB, projectID, author string, likes, replies, retweets int64, official bool, createdAt time.Time) *models.Mention {
	t.Helper()
	mention := &models.Mention{
		ID:           uuid.NewString(),
		ProjectID:    projectID,
		AuthorHandle: author,
		Likes:        likes,
		Replies:      replies,
		Retweets:     retweets,
		IsOfficial:   official,
		CreatedAt:    createdAt,
	}
	require.NoError(t, db.Create(mention).Error)
	return mention
}

func seedVerification(t *testing.T, db *gorm.DB, projectID, handle string, verifiedAt time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&models.FollowVerification{
		ID:         uuid.NewString(),
		ProjectID:  projectID,
		Handle:     handle,
		VerifiedAt: &verifiedAt,
	}).Error)
}

func newTestLeaderboardService(db *gorm.DB) *LeaderboardService {
	svc := NewLeaderboardService(db, nil)
	svc.EnrichBatchDelay = 0
	return svc
}
