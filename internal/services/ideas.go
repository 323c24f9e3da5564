package services

import (
	"errors"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"ideaboard/internal/metrics"
	"ideaboard/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PageSize is the number of ideas on one listing page.
const PageSize = 9

type SortMode string

const (
	SortNewest    SortMode = "newest"
	SortPopular   SortMode = "popular"
	SortDiscussed SortMode = "discussed"
)

// ParseSort maps a query value to a sort mode; anything unknown means newest.
func ParseSort(s string) SortMode {
	switch m := SortMode(s); m {
	case SortPopular, SortDiscussed:
		return m
	}
	return SortNewest
}

// ListParams selects a listing page. CategoryID 0 means all categories.
type ListParams struct {
	CategoryID uint
	Sort       SortMode
	Page       int
}

// IdeaSummary is an idea with its live tallies.
type IdeaSummary struct {
	models.Idea
	VoteCount    int64
	Upvotes      int64
	Downvotes    int64
	CommentCount int64
}

type ListResult struct {
	Ideas      []IdeaSummary
	Page       int
	TotalPages int
	Total      int64
}

// IdeaDetail is everything the idea page shows.
type IdeaDetail struct {
	IdeaSummary
	UserVote int
	Threads  []CommentThread
}

type IdeaService struct {
	db       *gorm.DB
	tally    *TallyService
	comments *CommentService
}

func NewIdeaService(db *gorm.DB) *IdeaService {
	return &IdeaService{
		db:       db,
		tally:    NewTallyService(db),
		comments: NewCommentService(db),
	}
}

// Submit validates and stores a new pending idea.
func (s *IdeaService) Submit(title, description string, categoryID uint, submitter *models.User) (*models.Idea, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)

	if n := utf8.RuneCountInString(title); n < 5 || n > 200 {
		return nil, models.NewValidationError("title", "Title must be between 5 and 200 characters")
	}
	if utf8.RuneCountInString(description) < 20 {
		return nil, models.NewValidationError("description", "Description must be at least 20 characters")
	}

	var n int64
	if err := s.db.Model(&models.Category{}).Where("id = ?", categoryID).Count(&n).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if n == 0 {
		return nil, models.NewValidationError("category_id", "Please choose a valid category")
	}

	idea := models.Idea{
		Title:       title,
		Description: description,
		CategoryID:  categoryID,
		SubmitterID: submitter.ID,
		Status:      models.StatusPending,
	}
	if err := s.db.Create(&idea).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	metrics.IdeasSubmitted.Inc()
	logrus.WithFields(logrus.Fields{
		"idea_id":     idea.ID,
		"user_id":     submitter.ID,
		"category_id": categoryID,
	}).Info("Idea submitted")
	return &idea, nil
}

// Get loads an idea with its category and submitter.
func (s *IdeaService) Get(id uint) (*models.Idea, error) {
	var idea models.Idea
	err := s.db.Preload("Category").Preload("Submitter").First(&idea, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Idea", id)
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &idea, nil
}

// Delete removes an idea with its votes and comments.
// Only the submitter or an admin may delete.
func (s *IdeaService) Delete(id uint, actor *models.User) error {
	var idea models.Idea
	err := s.db.First(&idea, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError("Idea", id)
	}
	if err != nil {
		return models.NewInternalError(err)
	}

	if idea.SubmitterID != actor.ID && !actor.IsAdmin() {
		return models.NewForbiddenError("You do not have permission to delete this idea.")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("idea_id = ?", id).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("idea_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&idea).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}

	logrus.WithFields(logrus.Fields{
		"idea_id":  id,
		"actor_id": actor.ID,
	}).Info("Idea deleted")
	return nil
}

// ChangeStatus moves an idea to a new status. Reviewers and admins only.
func (s *IdeaService) ChangeStatus(id uint, status string, actor *models.User) (*models.Idea, error) {
	if !actor.IsReviewer() {
		return nil, models.NewForbiddenError("Access denied")
	}

	var idea models.Idea
	err := s.db.First(&idea, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Idea", id)
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	newStatus, ok := models.ParseStatus(status)
	if !ok {
		return nil, models.NewValidationError("status", "Invalid status")
	}

	if err := s.db.Model(&idea).Update("status", newStatus).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	idea.Status = newStatus

	logrus.WithFields(logrus.Fields{
		"idea_id":  id,
		"actor_id": actor.ID,
		"status":   newStatus,
	}).Info("Idea status changed")
	return &idea, nil
}

// List returns one page of ideas.
//
// Newest pages at the database. Popular and discussed load every matching
// idea in id order, stable-sort by the live count and slice in memory, so
// ties keep insertion order. A page past the end is empty.
func (s *IdeaService) List(p ListParams) (*ListResult, error) {
	page := p.Page
	if page < 1 {
		page = 1
	}
	filter := func(tx *gorm.DB) *gorm.DB {
		if p.CategoryID != 0 {
			return tx.Where("category_id = ?", p.CategoryID)
		}
		return tx
	}

	var total int64
	if err := s.db.Model(&models.Idea{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	res := &ListResult{
		Page:       page,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(PageSize))),
	}

	offset := (page - 1) * PageSize
	var ideas []models.Idea

	if ParseSort(string(p.Sort)) == SortNewest {
		err := s.db.Scopes(filter).
			Preload("Category").Preload("Submitter").
			Order("created_at desc, id desc").
			Offset(offset).Limit(PageSize).
			Find(&ideas).Error
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		res.Ideas, err = s.summarize(ideas)
		if err != nil {
			return nil, err
		}
		return res, nil
	}

	err := s.db.Scopes(filter).
		Preload("Category").Preload("Submitter").
		Order("id asc").
		Find(&ideas).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	all, err := s.summarize(ideas)
	if err != nil {
		return nil, err
	}

	key := func(i int) int64 { return all[i].VoteCount }
	if p.Sort == SortDiscussed {
		key = func(i int) int64 { return all[i].CommentCount }
	}
	sort.SliceStable(all, func(i, j int) bool { return key(i) > key(j) })

	if offset >= len(all) {
		res.Ideas = []IdeaSummary{}
		return res, nil
	}
	end := offset + PageSize
	if end > len(all) {
		end = len(all)
	}
	res.Ideas = all[offset:end]
	return res, nil
}

// ListBySubmitter returns a user's ideas, newest first.
func (s *IdeaService) ListBySubmitter(userID uint) ([]IdeaSummary, error) {
	var ideas []models.Idea
	err := s.db.Preload("Category").Preload("Submitter").
		Where("submitter_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&ideas).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.summarize(ideas)
}

// Recent returns the newest ideas without tallies.
func (s *IdeaService) Recent(limit int) ([]models.Idea, error) {
	var ideas []models.Idea
	err := s.db.Preload("Category").Preload("Submitter").
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&ideas).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ideas, nil
}

// ListAll returns every idea, newest first, for the admin dashboard.
func (s *IdeaService) ListAll() ([]IdeaSummary, error) {
	var ideas []models.Idea
	err := s.db.Preload("Category").Preload("Submitter").
		Order("created_at desc, id desc").
		Find(&ideas).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.summarize(ideas)
}

// Detail loads the idea page. viewerID 0 is an anonymous visitor.
func (s *IdeaService) Detail(id, viewerID uint) (*IdeaDetail, error) {
	idea, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	sums, err := s.summarize([]models.Idea{*idea})
	if err != nil {
		return nil, err
	}
	d := &IdeaDetail{IdeaSummary: sums[0]}

	if viewerID != 0 {
		if d.UserVote, err = s.tally.UserVote(id, viewerID); err != nil {
			return nil, err
		}
	}
	if d.Threads, err = s.comments.Threads(id); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *IdeaService) summarize(ideas []models.Idea) ([]IdeaSummary, error) {
	ids := make([]uint, len(ideas))
	for i, idea := range ideas {
		ids[i] = idea.ID
	}
	tallies, err := s.tally.Batch(ids)
	if err != nil {
		return nil, err
	}

	out := make([]IdeaSummary, len(ideas))
	for i, idea := range ideas {
		t := tallies[idea.ID]
		out[i] = IdeaSummary{
			Idea:         idea,
			VoteCount:    t.VoteCount(),
			Upvotes:      t.Upvotes,
			Downvotes:    t.Downvotes,
			CommentCount: t.CommentCount,
		}
	}
	return out, nil
}
