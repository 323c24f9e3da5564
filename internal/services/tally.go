package services

import (
	"errors"

	"ideaboard/internal/models"

	"gorm.io/gorm"
)

// Tally is the live vote and comment state of one idea.
type Tally struct {
	Upvotes      int64
	Downvotes    int64
	CommentCount int64
}

// VoteCount is upvotes minus downvotes and may be negative.
func (t Tally) VoteCount() int64 {
	return t.Upvotes - t.Downvotes
}

// TallyService answers aggregate questions about ideas.
// Nothing is cached: every call counts the current rows.
type TallyService struct {
	db *gorm.DB
}

func NewTallyService(db *gorm.DB) *TallyService {
	return &TallyService{db: db}
}

func (s *TallyService) requireIdea(ideaID uint) error {
	var n int64
	if err := s.db.Model(&models.Idea{}).Where("id = ?", ideaID).Count(&n).Error; err != nil {
		return models.NewInternalError(err)
	}
	if n == 0 {
		return models.NewNotFoundError("Idea", ideaID)
	}
	return nil
}

func (s *TallyService) countVotes(ideaID uint, voteType int) (int64, error) {
	if err := s.requireIdea(ideaID); err != nil {
		return 0, err
	}
	var n int64
	err := s.db.Model(&models.Vote{}).
		Where("idea_id = ? AND vote_type = ?", ideaID, voteType).
		Count(&n).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (s *TallyService) Upvotes(ideaID uint) (int64, error) {
	return s.countVotes(ideaID, models.Upvote)
}

func (s *TallyService) Downvotes(ideaID uint) (int64, error) {
	return s.countVotes(ideaID, models.Downvote)
}

// VoteCount returns upvotes minus downvotes for the idea.
func (s *TallyService) VoteCount(ideaID uint) (int64, error) {
	t, err := s.Get(ideaID)
	if err != nil {
		return 0, err
	}
	return t.VoteCount(), nil
}

// UserVote returns the user's vote on the idea: 1, -1, or 0 when none is recorded.
func (s *TallyService) UserVote(ideaID, userID uint) (int, error) {
	if err := s.requireIdea(ideaID); err != nil {
		return 0, err
	}
	var v models.Vote
	err := s.db.Where("idea_id = ? AND user_id = ?", ideaID, userID).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return v.VoteType, nil
}

// CommentCount counts every comment on the idea, replies included.
func (s *TallyService) CommentCount(ideaID uint) (int64, error) {
	if err := s.requireIdea(ideaID); err != nil {
		return 0, err
	}
	var n int64
	if err := s.db.Model(&models.Comment{}).Where("idea_id = ?", ideaID).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

// Get returns the full tally of a single idea.
func (s *TallyService) Get(ideaID uint) (Tally, error) {
	if err := s.requireIdea(ideaID); err != nil {
		return Tally{}, err
	}
	m, err := s.Batch([]uint{ideaID})
	if err != nil {
		return Tally{}, err
	}
	return m[ideaID], nil
}

// Batch computes tallies for many ideas with two grouped queries.
// Ideas without votes or comments are present with zero values.
func (s *TallyService) Batch(ideaIDs []uint) (map[uint]Tally, error) {
	out := make(map[uint]Tally, len(ideaIDs))
	if len(ideaIDs) == 0 {
		return out, nil
	}
	for _, id := range ideaIDs {
		out[id] = Tally{}
	}

	type voteRow struct {
		IdeaID    uint
		Upvotes   int64
		Downvotes int64
	}
	var votes []voteRow
	err := s.db.Model(&models.Vote{}).
		Select("idea_id, "+
			"SUM(CASE WHEN vote_type = ? THEN 1 ELSE 0 END) AS upvotes, "+
			"SUM(CASE WHEN vote_type = ? THEN 1 ELSE 0 END) AS downvotes",
			models.Upvote, models.Downvote).
		Where("idea_id IN ?", ideaIDs).
		Group("idea_id").
		Scan(&votes).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, r := range votes {
		t := out[r.IdeaID]
		t.Upvotes, t.Downvotes = r.Upvotes, r.Downvotes
		out[r.IdeaID] = t
	}

	type commentRow struct {
		IdeaID uint
		Count  int64
	}
	var comments []commentRow
	err = s.db.Model(&models.Comment{}).
		Select("idea_id, COUNT(*) AS count").
		Where("idea_id IN ?", ideaIDs).
		Group("idea_id").
		Scan(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, r := range comments {
		t := out[r.IdeaID]
		t.CommentCount = r.Count
		out[r.IdeaID] = t
	}

	return out, nil
}
