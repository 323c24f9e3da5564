package services

import (
	"errors"

	"ideaboard/internal/metrics"
	"ideaboard/internal/models"
	"ideaboard/internal/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// maxVoteAttempts bounds retries after losing an insert race on idx_vote_idea_user.
const maxVoteAttempts = 3

const (
	voteCreated  = "created"
	voteRemoved  = "removed"
	voteSwitched = "switched"
)

// VoteResult is the idea's state after a toggle, as seen by the voter.
type VoteResult struct {
	VoteCount int64 `json:"vote_count"`
	Upvotes   int64 `json:"upvotes"`
	Downvotes int64 `json:"downvotes"`
	UserVote  int   `json:"user_vote"`
}

type VoteService struct {
	db    *gorm.DB
	tally *TallyService
}

func NewVoteService(db *gorm.DB) *VoteService {
	return &VoteService{db: db, tally: NewTallyService(db)}
}

// Cast toggles the user's vote on an idea.
// No vote: one is created. Same type: it is removed. Other type: it is switched.
func (s *VoteService) Cast(ideaID uint, user *models.User, voteType int) (*VoteResult, error) {
	if voteType != models.Upvote && voteType != models.Downvote {
		return nil, models.NewValidationError("vote_type", "Vote type must be 1 or -1")
	}
	if err := s.tally.requireIdea(ideaID); err != nil {
		return nil, err
	}

	var outcome string
	for attempt := 1; ; attempt++ {
		var err error
		outcome, err = s.toggle(ideaID, user.ID, voteType)
		if err == nil {
			break
		}
		if utils.IsUniqueViolation(err) && attempt < maxVoteAttempts {
			logrus.WithFields(logrus.Fields{
				"idea_id": ideaID,
				"user_id": user.ID,
				"attempt": attempt,
			}).Debug("Concurrent vote detected, retrying toggle")
			continue
		}
		return nil, models.NewInternalError(err)
	}

	metrics.VotesCast.WithLabelValues(outcome).Inc()
	logrus.WithFields(logrus.Fields{
		"idea_id":   ideaID,
		"user_id":   user.ID,
		"vote_type": voteType,
		"outcome":   outcome,
	}).Info("Vote cast")

	t, err := s.tally.Get(ideaID)
	if err != nil {
		return nil, err
	}
	userVote, err := s.tally.UserVote(ideaID, user.ID)
	if err != nil {
		return nil, err
	}
	return &VoteResult{
		VoteCount: t.VoteCount(),
		Upvotes:   t.Upvotes,
		Downvotes: t.Downvotes,
		UserVote:  userVote,
	}, nil
}

func (s *VoteService) toggle(ideaID, userID uint, voteType int) (string, error) {
	var outcome string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Vote
		err := tx.Where("idea_id = ? AND user_id = ?", ideaID, userID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			outcome = voteCreated
			return tx.Create(&models.Vote{IdeaID: ideaID, UserID: userID, VoteType: voteType}).Error
		case err != nil:
			return err
		case existing.VoteType == voteType:
			outcome = voteRemoved
			return tx.Delete(&existing).Error
		default:
			outcome = voteSwitched
			return tx.Model(&existing).Update("vote_type", voteType).Error
		}
	})
	return outcome, err
}
