package services

import (
	"path/filepath"
	"strings"
	"testing"

	"ideaboard/internal/db"
	"ideaboard/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	g, err := db.Open("sqlite://" + filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(g))
	require.NoError(t, db.SeedCategories(g))
	t.Cleanup(func() {
		if sqlDB, err := g.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return g
}

func createUser(t *testing.T, g *gorm.DB, role models.Role) *models.User {
	t.Helper()
	u := models.User{
		Username:     gofakeit.Username() + gofakeit.DigitN(6),
		Email:        gofakeit.DigitN(6) + gofakeit.Email(),
		PasswordHash: "x",
		Role:         role,
		AvatarColor:  "#6366f1",
	}
	require.NoError(t, g.Create(&u).Error)
	return &u
}

func firstCategory(t *testing.T, g *gorm.DB) models.Category {
	t.Helper()
	var c models.Category
	require.NoError(t, g.Order("id asc").First(&c).Error)
	return c
}

func createIdea(t *testing.T, g *gorm.DB, submitter *models.User, categoryID uint) *models.Idea {
	t.Helper()
	idea, err := NewIdeaService(g).Submit(
		"Idea "+gofakeit.LoremIpsumWord()+" "+gofakeit.DigitN(4),
		strings.Repeat("a thoughtful description ", 2),
		categoryID,
		submitter,
	)
	require.NoError(t, err)
	return idea
}

func addComments(t *testing.T, g *gorm.DB, ideaID uint, author *models.User, n int) {
	t.Helper()
	svc := NewCommentService(g)
	for i := 0; i < n; i++ {
		_, err := svc.Add(ideaID, "comment "+gofakeit.Word(), author, nil)
		require.NoError(t, err)
	}
}
