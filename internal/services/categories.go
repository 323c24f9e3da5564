package services

import (
	"errors"
	"strings"
	"unicode/utf8"

	"ideaboard/internal/models"
	"ideaboard/internal/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const msgCategoryExists = "A category with this name already exists."

type CategoryService struct {
	db *gorm.DB
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

func (s *CategoryService) List() ([]models.Category, error) {
	var cats []models.Category
	if err := s.db.Order("id asc").Find(&cats).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return cats, nil
}

func (s *CategoryService) Get(id uint) (*models.Category, error) {
	var cat models.Category
	err := s.db.First(&cat, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Category", id)
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &cat, nil
}

// Create adds a custom category. Admins only.
func (s *CategoryService) Create(name, icon string, actor *models.User) (*models.Category, error) {
	if !actor.IsAdmin() {
		return nil, models.NewForbiddenError("Access denied")
	}
	name = strings.TrimSpace(name)
	icon = strings.TrimSpace(icon)
	if n := utf8.RuneCountInString(name); n < 2 || n > 100 {
		return nil, models.NewValidationError("name", "Name must be between 2 and 100 characters")
	}
	if icon == "" || utf8.RuneCountInString(icon) > 50 {
		return nil, models.NewValidationError("icon", "Icon is required")
	}

	var n int64
	if err := s.db.Model(&models.Category{}).Where("name = ?", name).Count(&n).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if n > 0 {
		return nil, models.NewConflictError("name", msgCategoryExists)
	}

	cat := models.Category{Name: name, Icon: icon, Color: "#6366f1"}
	if err := s.db.Create(&cat).Error; err != nil {
		if utils.IsUniqueViolation(err) {
			return nil, models.NewConflictError("name", msgCategoryExists)
		}
		return nil, models.NewInternalError(err)
	}

	logrus.WithFields(logrus.Fields{
		"category_id": cat.ID,
		"name":        cat.Name,
		"actor_id":    actor.ID,
	}).Info("Category created")
	return &cat, nil
}
