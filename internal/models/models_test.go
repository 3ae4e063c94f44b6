package models

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
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

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // each :memory: connection is its own database
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return db
}

func TestBaseModel_GeneratesULID(t *testing.T) {
	db := setupTestDB(t)

	user := &User{Email: "e@x.com", PasswordHash: "x", FullName: "Jo"}
	require.NoError(t, db.Create(user).Error)

	assert.Len(t, user.ID, 26)
	assert.False(t, user.CreatedAt.IsZero())

	var found User
	require.NoError(t, FindByID(db, user.ID, &found))
	assert.Equal(t, "e@x.com", found.Email)
}

func TestPrediction_ModelPredictionsRoundTrip(t *testing.T) {
	db := setupTestDB(t)

	user := &User{Email: "e@x.com", PasswordHash: "x", FullName: "Jo"}
	require.NoError(t, db.Create(user).Error)

	p := &Prediction{
		UserID:        user.ID,
		PredictedCrop: "rice",
		BestModel:     "cosine",
		Predictions:   map[string]string{"cosine": "rice", "manhattan": "jute"},
	}
	require.NoError(t, db.Create(p).Error)

	var found Prediction
	require.NoError(t, FindByID(db, p.ID, &found))
	assert.Equal(t, map[string]string{"cosine": "rice", "manhattan": "jute"}, found.Predictions)
}

func TestIsTokenRevoked(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Create(&RevokedToken{TokenID: "jti-1", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}).Error)

	revoked, err := IsTokenRevoked(db, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = IsTokenRevoked(db, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestPurgeExpired(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now()

	user := &User{Email: "e@x.com", PasswordHash: "x", FullName: "Jo"}
	require.NoError(t, db.Create(user).Error)

	used := now.Add(-time.Minute)
	require.NoError(t, db.Create(&RevokedToken{TokenID: "old", UserID: user.ID, ExpiresAt: now.Add(-time.Hour)}).Error)
	require.NoError(t, db.Create(&RevokedToken{TokenID: "live", UserID: user.ID, ExpiresAt: now.Add(time.Hour)}).Error)
	require.NoError(t, db.Create(&PasswordReset{UserID: user.ID, TokenHash: "h1", ExpiresAt: now.Add(-time.Hour)}).Error)
	require.NoError(t, db.Create(&PasswordReset{UserID: user.ID, TokenHash: "h2", ExpiresAt: now.Add(time.Hour), UsedAt: &used}).Error)
	require.NoError(t, db.Create(&PasswordReset{UserID: user.ID, TokenHash: "h3", ExpiresAt: now.Add(time.Hour)}).Error)

	removed, err := PurgeExpired(db, now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	var tokens, resets int64
	db.Model(&RevokedToken{}).Count(&tokens)
	db.Model(&PasswordReset{}).Count(&resets)
	assert.Equal(t, int64(1), tokens)
	assert.Equal(t, int64(1), resets)
}
