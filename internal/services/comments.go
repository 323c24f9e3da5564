package services

import (
	"errors"
	"strings"
	"unicode/utf8"

	"ideaboard/internal/metrics"
	"ideaboard/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	minCommentLen = 2
	maxCommentLen = 1000
)

// CommentThread is a top-level comment with its direct replies.
type CommentThread struct {
	Comment models.Comment
	Replies []models.Comment
}

type CommentService struct {
	db    *gorm.DB
	tally *TallyService
}

func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{db: db, tally: NewTallyService(db)}
}

// Add appends a comment, or a reply when parentID is set.
// The parent may belong to any idea.
func (s *CommentService) Add(ideaID uint, content string, author *models.User, parentID *uint) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if n := utf8.RuneCountInString(content); n < minCommentLen || n > maxCommentLen {
		return nil, models.NewValidationError("content", "Comment must be between 2 and 1000 characters")
	}
	if err := s.tally.requireIdea(ideaID); err != nil {
		return nil, err
	}
	if parentID != nil {
		var parent models.Comment
		err := s.db.Select("id").First(&parent, *parentID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewValidationError("parent_id", "The comment you replied to does not exist")
		}
		if err != nil {
			return nil, models.NewInternalError(err)
		}
	}

	comment := models.Comment{
		IdeaID:   ideaID,
		UserID:   author.ID,
		ParentID: parentID,
		Content:  content,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	comment.User = *author

	metrics.CommentsPosted.Inc()
	logrus.WithFields(logrus.Fields{
		"comment_id": comment.ID,
		"idea_id":    ideaID,
		"user_id":    author.ID,
		"reply":      comment.IsReply(),
	}).Info("Comment posted")
	return &comment, nil
}

// TopLevel lists the idea's comments without a parent, newest first.
func (s *CommentService) TopLevel(ideaID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.Preload("User").
		Where("idea_id = ? AND parent_id IS NULL", ideaID).
		Order("created_at desc, id desc").
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

// Replies lists direct replies to a comment, oldest first.
func (s *CommentService) Replies(commentID uint) ([]models.Comment, error) {
	var replies []models.Comment
	err := s.db.Preload("User").
		Where("parent_id = ?", commentID).
		Order("created_at asc, id asc").
		Find(&replies).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return replies, nil
}

// Threads builds the two-level view of an idea's discussion.
func (s *CommentService) Threads(ideaID uint) ([]CommentThread, error) {
	top, err := s.TopLevel(ideaID)
	if err != nil {
		return nil, err
	}
	if len(top) == 0 {
		return []CommentThread{}, nil
	}

	ids := make([]uint, len(top))
	for i, c := range top {
		ids[i] = c.ID
	}
	var replies []models.Comment
	err = s.db.Preload("User").
		Where("parent_id IN ?", ids).
		Order("created_at asc, id asc").
		Find(&replies).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	byParent := make(map[uint][]models.Comment, len(top))
	for _, r := range replies {
		byParent[*r.ParentID] = append(byParent[*r.ParentID], r)
	}

	threads := make([]CommentThread, len(top))
	for i, c := range top {
		threads[i] = CommentThread{Comment: c, Replies: byParent[c.ID]}
	}
	return threads, nil
}
