package db

import (
	"errors"
	"fmt"
	"strings"

	"ideaboard/internal/config"
	"ideaboard/internal/models"
	"ideaboard/internal/utils"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Init opens the database and runs the one-time startup routine:
// schema migration, category seeding and the default admin account.
// Every step is idempotent.
func Init(cfg *config.Config) (*gorm.DB, error) {
	g, err := Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := Migrate(g); err != nil {
		return nil, err
	}
	if err := SeedCategories(g); err != nil {
		return nil, err
	}
	if err := EnsureAdmin(g, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return nil, err
	}
	return g, nil
}

// Open selects a dialector from the DATABASE_URL scheme.
// sqlite://path opens a SQLite file with foreign keys enforced;
// postgres URLs and key=value DSNs go to the postgres driver.
func Open(databaseURL string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch {
	case strings.HasPrefix(databaseURL, "sqlite://"):
		path := strings.TrimPrefix(databaseURL, "sqlite://")
		dialector = sqlite.Open(sqliteDSN(path))
		logrus.WithField("path", path).Info("Connecting to SQLite database")
	case strings.HasPrefix(databaseURL, "postgres://"),
		strings.HasPrefix(databaseURL, "postgresql://"),
		strings.Contains(databaseURL, "host="):
		dialector = postgres.Open(databaseURL)
		logrus.Info("Connecting to PostgreSQL database")
	default:
		return nil, fmt.Errorf("unsupported DATABASE_URL %q: must start with sqlite:// or postgres://", databaseURL)
	}

	g, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := g.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	logrus.Info("Database connection established")
	return g, nil
}

func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Migrate creates or updates the five tables. Existing rows are untouched.
func Migrate(g *gorm.DB) error {
	err := g.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Idea{},
		&models.Vote{},
		&models.Comment{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	logrus.Info("Database migration completed")
	return nil
}

// PredefinedCategories are seeded at startup when missing.
var PredefinedCategories = []models.Category{
	{Name: "Technology", Icon: "💻", Color: "#6366f1", IsPredefined: true},
	{Name: "Process Improvement", Icon: "⚙️", Color: "#10b981", IsPredefined: true},
	{Name: "Customer Experience", Icon: "🎯", Color: "#f59e0b", IsPredefined: true},
	{Name: "Sustainability", Icon: "🌱", Color: "#22c55e", IsPredefined: true},
	{Name: "Cost Reduction", Icon: "💰", Color: "#eab308", IsPredefined: true},
	{Name: "Product Innovation", Icon: "🚀", Color: "#8b5cf6", IsPredefined: true},
	{Name: "Employee Wellness", Icon: "❤️", Color: "#ef4444", IsPredefined: true},
	{Name: "Digital Transformation", Icon: "🔄", Color: "#3b82f6", IsPredefined: true},
}

// SeedCategories inserts each predefined category whose name is not present yet.
func SeedCategories(g *gorm.DB) error {
	created := 0
	err := g.Transaction(func(tx *gorm.DB) error {
		for _, c := range PredefinedCategories {
			var n int64
			if err := tx.Model(&models.Category{}).Where("name = ?", c.Name).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				continue
			}
			cat := c
			if err := tx.Create(&cat).Error; err != nil {
				return fmt.Errorf("seed category %s: %w", c.Name, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return err
	}
	if created == 0 {
		logrus.Debug("Categories already seeded, skipping")
	} else {
		logrus.WithField("created", created).Info("Predefined categories seeded")
	}
	return nil
}

// EnsureAdmin creates the "admin" account when no admin exists.
// A non-admin user already holding the admin username or email is left alone.
func EnsureAdmin(g *gorm.DB, email, password string) error {
	var count int64
	if err := g.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	admin := models.User{
		Username:     "admin",
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		AvatarColor:  "#ef4444",
	}
	if err := g.Create(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || utils.IsUniqueViolation(err) {
			logrus.WithField("email", email).Warn("Cannot create default admin: username or email already in use")
			return nil
		}
		return fmt.Errorf("create admin user: %w", err)
	}

	logrus.WithField("email", email).Warn("Default admin account created; rotate its password before production use")
	return nil
}
