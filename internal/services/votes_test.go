package services

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ideaboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func countVoteRows(t *testing.T, svc *VoteService, ideaID, userID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, svc.db.Model(&models.Vote{}).
		Where("idea_id = ? AND user_id = ?", ideaID, userID).Count(&n).Error)
	return n
}

func TestVoteService_Cast_Toggle(t *testing.T) {
	g := setupTestDB(t)
	user := createUser(t, g, models.RoleSubmitter)
	idea := createIdea(t, g, user, firstCategory(t, g).ID)
	svc := NewVoteService(g)

	res, err := svc.Cast(idea.ID, user, models.Upvote)
	require.NoError(t, err)
	assert.Equal(t, &VoteResult{VoteCount: 1, Upvotes: 1, Downvotes: 0, UserVote: 1}, res)

	// same type again removes the vote
	res, err = svc.Cast(idea.ID, user, models.Upvote)
	require.NoError(t, err)
	assert.Equal(t, &VoteResult{}, res)
	assert.Equal(t, int64(0), countVoteRows(t, svc, idea.ID, user.ID))
}

func TestVoteService_Cast_Switch(t *testing.T) {
	g := setupTestDB(t)
	user := createUser(t, g, models.RoleSubmitter)
	idea := createIdea(t, g, user, firstCategory(t, g).ID)
	svc := NewVoteService(g)

	_, err := svc.Cast(idea.ID, user, models.Upvote)
	require.NoError(t, err)
	res, err := svc.Cast(idea.ID, user, models.Downvote)
	require.NoError(t, err)

	assert.Equal(t, -1, res.UserVote)
	assert.Equal(t, int64(-1), res.VoteCount)
	assert.Equal(t, int64(0), res.Upvotes)
	assert.Equal(t, int64(1), res.Downvotes)
	assert.Equal(t, int64(1), countVoteRows(t, svc, idea.ID, user.ID))
}

func TestVoteService_Cast_MultipleUsers(t *testing.T) {
	g := setupTestDB(t)
	owner := createUser(t, g, models.RoleSubmitter)
	idea := createIdea(t, g, owner, firstCategory(t, g).ID)
	svc := NewVoteService(g)

	for i := 0; i < 3; i++ {
		_, err := svc.Cast(idea.ID, createUser(t, g, models.RoleSubmitter), models.Upvote)
		require.NoError(t, err)
	}
	res, err := svc.Cast(idea.ID, owner, models.Downvote)
	require.NoError(t, err)

	assert.Equal(t, int64(3), res.Upvotes)
	assert.Equal(t, int64(1), res.Downvotes)
	assert.Equal(t, res.Upvotes-res.Downvotes, res.VoteCount)
	assert.Equal(t, -1, res.UserVote)
}

func TestVoteService_Cast_Invalid(t *testing.T) {
	g := setupTestDB(t)
	user := createUser(t, g, models.RoleSubmitter)
	idea := createIdea(t, g, user, firstCategory(t, g).ID)
	svc := NewVoteService(g)

	_, err := svc.Cast(idea.ID, user, 2)
	assert.True(t, models.IsValidation(err))

	_, err = svc.Cast(idea.ID+100, user, models.Upvote)
	assert.True(t, models.IsNotFound(err))
}

func TestVoteService_Cast_ConcurrentToggles(t *testing.T) {
	g := setupTestDB(t)
	user := createUser(t, g, models.RoleSubmitter)
	idea := createIdea(t, g, user, firstCategory(t, g).ID)
	svc := NewVoteService(g)

	errs := make([]error, 4)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Cast(idea.ID, user, models.Upvote)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	// an even number of identical toggles cancels out
	assert.Equal(t, int64(0), countVoteRows(t, svc, idea.ID, user.ID))
	v, err := NewTallyService(g).UserVote(idea.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, v)
}

func TestVoteService_Cast_RetriesAfterInsertConflict(t *testing.T) {
	g := setupTestDB(t)
	user := createUser(t, g, models.RoleSubmitter)
	idea := createIdea(t, g, user, firstCategory(t, g).ID)
	svc := NewVoteService(g)

	// Before the first vote insert, write the same (idea, user) row inside the
	// same transaction, as a concurrent request would have.
	var inserts atomic.Int32
	var conflicted atomic.Bool
	require.NoError(t, g.Callback().Create().Before("gorm:create").Register("test:vote_conflict", func(tx *gorm.DB) {
		vote, ok := tx.Statement.Model.(*models.Vote)
		if !ok {
			return
		}
		inserts.Add(1)
		if !conflicted.CompareAndSwap(false, true) {
			return
		}
		_, err := tx.Statement.ConnPool.ExecContext(tx.Statement.Context,
			"INSERT INTO votes (idea_id, user_id, vote_type, created_at) VALUES (?, ?, ?, ?)",
			vote.IdeaID, vote.UserID, vote.VoteType, time.Now())
		require.NoError(t, err)
	}))

	res, err := svc.Cast(idea.ID, user, models.Upvote)
	require.NoError(t, err)
	assert.Equal(t, &VoteResult{VoteCount: 1, Upvotes: 1, Downvotes: 0, UserVote: 1}, res)
	assert.True(t, conflicted.Load())
	assert.Equal(t, int32(2), inserts.Load())
	assert.Equal(t, int64(1), countVoteRows(t, svc, idea.ID, user.ID))
}

func TestVoteService_Cast_GivesUpAfterRepeatedConflicts(t *testing.T) {
	g := setupTestDB(t)
	user := createUser(t, g, models.RoleSubmitter)
	idea := createIdea(t, g, user, firstCategory(t, g).ID)
	svc := NewVoteService(g)

	var inserts atomic.Int32
	require.NoError(t, g.Callback().Create().Before("gorm:create").Register("test:vote_conflict", func(tx *gorm.DB) {
		vote, ok := tx.Statement.Model.(*models.Vote)
		if !ok {
			return
		}
		inserts.Add(1)
		_, err := tx.Statement.ConnPool.ExecContext(tx.Statement.Context,
			"INSERT INTO votes (idea_id, user_id, vote_type, created_at) VALUES (?, ?, ?, ?)",
			vote.IdeaID, vote.UserID, vote.VoteType, time.Now())
		require.NoError(t, err)
	}))

	_, err := svc.Cast(idea.ID, user, models.Upvote)
	require.Error(t, err)
	assert.Equal(t, models.CodeInternal, models.ErrorCode(err))
	assert.Equal(t, int32(maxVoteAttempts), inserts.Load())
	assert.Equal(t, int64(0), countVoteRows(t, svc, idea.ID, user.ID))
}
