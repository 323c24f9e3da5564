package services

import (
	"errors"
	"strings"
	"unicode/utf8"

	"ideaboard/internal/metrics"
	"ideaboard/internal/models"
	"ideaboard/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	msgUsernameTaken   = "Username already taken. Please choose a different one."
	msgEmailRegistered = "Email already registered. Please use a different one."
	msgBadCredentials  = "Invalid email or password"
)

var validate = validator.New()

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

func (in *RegisterInput) validate() error {
	if n := utf8.RuneCountInString(in.Username); n < 3 || n > 80 {
		return models.NewValidationError("username", "Username must be between 3 and 80 characters")
	}
	if err := validate.Var(in.Email, "required,email,max=120"); err != nil {
		return models.NewValidationError("email", "Please enter a valid email address")
	}
	if len(in.Password) < 6 {
		return models.NewValidationError("password", "Password must be at least 6 characters")
	}
	if in.Password != in.ConfirmPassword {
		return models.NewValidationError("confirm_password", "Passwords must match")
	}
	return nil
}

// Register creates a submitter account.
func (s *UserService) Register(in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkAvailable(in.Username, in.Email); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user := models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         models.RoleSubmitter,
		AvatarColor:  utils.RandomAvatarColor(),
	}
	if err := s.db.Create(&user).Error; err != nil {
		if utils.IsUniqueViolation(err) {
			// Lost a race with a concurrent sign-up; report which field collided.
			if cerr := s.checkAvailable(in.Username, in.Email); cerr != nil {
				return nil, cerr
			}
			return nil, models.NewConflictError("username", msgUsernameTaken)
		}
		return nil, models.NewInternalError(err)
	}

	metrics.RegisterSuccess.Inc()
	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User registered")
	return &user, nil
}

func (s *UserService) checkAvailable(username, email string) error {
	var n int64
	if err := s.db.Model(&models.User{}).Where("username = ?", username).Count(&n).Error; err != nil {
		return models.NewInternalError(err)
	}
	if n > 0 {
		return models.NewConflictError("username", msgUsernameTaken)
	}
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return models.NewInternalError(err)
	}
	if n > 0 {
		return models.NewConflictError("email", msgEmailRegistered)
	}
	return nil
}

// Authenticate checks credentials. Unknown email and wrong password fail the same way.
func (s *UserService) Authenticate(email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		metrics.LoginFailure.WithLabelValues("missing_fields").Inc()
		return nil, models.NewValidationError("email", msgBadCredentials)
	}

	var user models.User
	err := s.db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.LoginFailure.WithLabelValues("unknown_email").Inc()
		return nil, models.NewValidationError("email", msgBadCredentials)
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		metrics.LoginFailure.WithLabelValues("bad_password").Inc()
		return nil, models.NewValidationError("email", msgBadCredentials)
	}

	metrics.LoginSuccess.Inc()
	return &user, nil
}

func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("User", id)
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// List returns all users in sign-up order.
func (s *UserService) List() ([]models.User, error) {
	var users []models.User
	if err := s.db.Order("id asc").Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// ChangeRole assigns a role to a user. Admins only.
func (s *UserService) ChangeRole(userID uint, role string, actor *models.User) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, models.NewForbiddenError("Access denied")
	}
	user, err := s.GetByID(userID)
	if err != nil {
		return nil, err
	}
	newRole, ok := models.ParseRole(role)
	if !ok {
		return nil, models.NewValidationError("role", "Invalid role")
	}

	if err := s.db.Model(user).Update("role", newRole).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	user.Role = newRole

	logrus.WithFields(logrus.Fields{
		"user_id":  userID,
		"actor_id": actor.ID,
		"role":     newRole,
	}).Info("User role changed")
	return user, nil
}
