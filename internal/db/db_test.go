package db

import (
	"path/filepath"
	"testing"

	"ideaboard/internal/config"
	"ideaboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DatabaseURL:   "sqlite://" + filepath.Join(t.TempDir(), "test.db"),
		AdminEmail:    "admin@example.com",
		AdminPassword: "admin123",
	}
}

func initTestDB(t *testing.T) (*gorm.DB, *config.Config) {
	t.Helper()
	cfg := testConfig(t)
	g, err := Init(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := g.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return g, cfg
}

func TestInit_Idempotent(t *testing.T) {
	g, cfg := initTestDB(t)

	// a second startup against the same store changes nothing
	require.NoError(t, Migrate(g))
	require.NoError(t, SeedCategories(g))
	require.NoError(t, EnsureAdmin(g, cfg.AdminEmail, cfg.AdminPassword))

	var cats, admins int64
	g.Model(&models.Category{}).Count(&cats)
	g.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&admins)
	assert.Equal(t, int64(len(PredefinedCategories)), cats)
	assert.Equal(t, int64(1), admins)
}

func TestSeedCategories_FillsMissing(t *testing.T) {
	g, _ := initTestDB(t)

	require.NoError(t, g.Where("name = ?", "Sustainability").Delete(&models.Category{}).Error)
	require.NoError(t, SeedCategories(g))

	var c models.Category
	require.NoError(t, g.Where("name = ?", "Sustainability").First(&c).Error)
	assert.Equal(t, "🌱", c.Icon)
	assert.Equal(t, "#22c55e", c.Color)
	assert.True(t, c.IsPredefined)
}

func TestEnsureAdmin(t *testing.T) {
	g, cfg := initTestDB(t)

	var admin models.User
	require.NoError(t, g.Where("username = ?", "admin").First(&admin).Error)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.Equal(t, cfg.AdminEmail, admin.Email)
	assert.Equal(t, "#ef4444", admin.AvatarColor)
	assert.NotEqual(t, cfg.AdminPassword, admin.PasswordHash)
}

func TestVoteUniqueConstraint(t *testing.T) {
	g, _ := initTestDB(t)

	var admin models.User
	require.NoError(t, g.Where("role = ?", models.RoleAdmin).First(&admin).Error)
	var cat models.Category
	require.NoError(t, g.First(&cat).Error)
	idea := models.Idea{Title: "Unique votes", Description: "Only one vote per user and idea", CategoryID: cat.ID, SubmitterID: admin.ID}
	require.NoError(t, g.Create(&idea).Error)

	require.NoError(t, g.Create(&models.Vote{IdeaID: idea.ID, UserID: admin.ID, VoteType: models.Upvote}).Error)
	err := g.Create(&models.Vote{IdeaID: idea.ID, UserID: admin.ID, VoteType: models.Downvote}).Error
	require.Error(t, err)
}

func TestCascadeDeleteIdea(t *testing.T) {
	g, _ := initTestDB(t)

	var admin models.User
	require.NoError(t, g.Where("role = ?", models.RoleAdmin).First(&admin).Error)
	var cat models.Category
	require.NoError(t, g.First(&cat).Error)
	idea := models.Idea{Title: "Cascade me", Description: "Rows below this idea go with it", CategoryID: cat.ID, SubmitterID: admin.ID}
	require.NoError(t, g.Create(&idea).Error)
	require.NoError(t, g.Create(&models.Vote{IdeaID: idea.ID, UserID: admin.ID, VoteType: models.Upvote}).Error)
	require.NoError(t, g.Create(&models.Comment{IdeaID: idea.ID, UserID: admin.ID, Content: "hello"}).Error)

	require.NoError(t, g.Delete(&models.Idea{}, idea.ID).Error)

	var votes, comments int64
	g.Model(&models.Vote{}).Where("idea_id = ?", idea.ID).Count(&votes)
	g.Model(&models.Comment{}).Where("idea_id = ?", idea.ID).Count(&comments)
	assert.Zero(t, votes)
	assert.Zero(t, comments)
}

func TestOpen_UnsupportedURL(t *testing.T) {
	_, err := Open("mysql://localhost/ideas")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported DATABASE_URL")
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "ideas.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", sqliteDSN("ideas.db"))
	assert.Equal(t, "ideas.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", sqliteDSN("ideas.db?mode=rwc"))
}
