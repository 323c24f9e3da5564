package services

import (
	"strings"
	"testing"

	"ideaboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentService_Add(t *testing.T) {
	g := setupTestDB(t)
	user := createUser(t, g, models.RoleSubmitter)
	idea := createIdea(t, g, user, firstCategory(t, g).ID)
	svc := NewCommentService(g)

	c, err := svc.Add(idea.ID, "  Looks useful  ", user, nil)
	require.NoError(t, err)
	assert.Equal(t, "Looks useful", c.Content)
	assert.False(t, c.IsReply())
	assert.Equal(t, user.Username, c.User.Username)

	reply, err := svc.Add(idea.ID, "Agreed", user, &c.ID)
	require.NoError(t, err)
	assert.True(t, reply.IsReply())

	replies, err := svc.Replies(c.ID)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, reply.ID, replies[0].ID)

	top, err := svc.TopLevel(idea.ID)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, c.ID, top[0].ID)
}

func TestCommentService_Add_Validation(t *testing.T) {
	g := setupTestDB(t)
	user := createUser(t, g, models.RoleSubmitter)
	idea := createIdea(t, g, user, firstCategory(t, g).ID)
	svc := NewCommentService(g)

	for _, content := range []string{"", "x", "   y   ", strings.Repeat("z", 1001)} {
		_, err := svc.Add(idea.ID, content, user, nil)
		assert.True(t, models.IsValidation(err), "content %q", content)
	}

	_, err := svc.Add(idea.ID, strings.Repeat("z", 1000), user, nil)
	assert.NoError(t, err)

	_, err = svc.Add(idea.ID+1, "hello", user, nil)
	assert.True(t, models.IsNotFound(err))

	missing := uint(4242)
	_, err = svc.Add(idea.ID, "hello", user, &missing)
	assert.True(t, models.IsValidation(err))
}

func TestCommentService_Add_ReplyAcrossIdeas(t *testing.T) {
	g := setupTestDB(t)
	user := createUser(t, g, models.RoleSubmitter)
	cat := firstCategory(t, g).ID
	first := createIdea(t, g, user, cat)
	second := createIdea(t, g, user, cat)
	svc := NewCommentService(g)

	parent, err := svc.Add(first.ID, "on the first idea", user, nil)
	require.NoError(t, err)

	// a parent on another idea is accepted
	reply, err := svc.Add(second.ID, "posted on the second idea", user, &parent.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, reply.IdeaID)

	// deleting the parent's idea detaches the reply instead of deleting it
	require.NoError(t, NewIdeaService(g).Delete(first.ID, user))
	var survived models.Comment
	require.NoError(t, g.First(&survived, reply.ID).Error)
	assert.Nil(t, survived.ParentID)
}
