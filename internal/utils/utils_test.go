package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	assert.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)
	assert.True(t, CheckPasswordHash("s3cret!", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)))
	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: votes.idea_id, votes.user_id")))
	assert.True(t, IsUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "idx_vote_idea_user" (SQLSTATE 23505)`)))
	assert.False(t, IsUniqueViolation(errors.New("connection refused")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestParseID(t *testing.T) {
	id, ok := ParseID("42")
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)

	for _, in := range []string{"", "0", "-3", "abc", "1.5"} {
		_, ok := ParseID(in)
		assert.False(t, ok, in)
	}
	assert.Equal(t, 0, StringToInt("x"))
	assert.Equal(t, 7, StringToInt("7"))
}

func TestRandomAvatarColor(t *testing.T) {
	for i := 0; i < 20; i++ {
		assert.Contains(t, AvatarColors, RandomAvatarColor())
	}
}
