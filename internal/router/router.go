package router

import (
	"net/http"
	"time"

	"ideaboard/internal/config"
	"ideaboard/internal/handlers"
	"ideaboard/internal/metrics"
	"ideaboard/internal/middleware"
	"ideaboard/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const sessionName = "ideaboard_session"

// New builds the engine with the full middleware stack and every route.
func New(cfg *config.Config, db *gorm.DB) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(metrics.Instrument())
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	if cfg.CORSOrigin != "" {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{cfg.CORSOrigin},
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
			ExposeHeaders:    []string{middleware.RequestIDHeader},
			AllowCredentials: true,
		}))
	}

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	tmpl, err := handlers.LoadTemplates(cfg.TemplatesDir)
	if err != nil {
		return nil, err
	}
	r.HTMLRender = tmpl

	r.Static("/static", cfg.StaticDir)
	r.Static("/docs", cfg.DocsDir)

	r.Use(middleware.LoadUser(services.NewUserService(db)))

	RegisterRoutes(r, cfg, db)
	return r, nil
}

func RegisterRoutes(r *gin.Engine, cfg *config.Config, db *gorm.DB) {
	// Handlers
	authHandler := handlers.NewAuthHandler(db)
	ideaHandler := handlers.NewIdeaHandler(db)
	voteHandler := handlers.NewVoteHandler(db)
	adminHandler := handlers.NewAdminHandler(db)
	healthHandler := handlers.NewHealthHandler(db)
	feedHandler := handlers.NewFeedHandler(db, cfg.SiteURL)

	limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	// Eviction runs for the life of the process.
	limiter.StartCleanup(10*time.Minute, 10*time.Minute)
	limited := middleware.RateLimit(limiter)

	// Public Routes
	r.GET("/", ideaHandler.List)
	r.GET("/idea/:id", ideaHandler.Detail)
	r.GET("/healthz", healthHandler.Health)
	r.GET("/metrics", middleware.AuthRequired(), middleware.AdminRequired(), metrics.Handler())
	r.GET("/robots.txt", feedHandler.RobotsTxt)
	r.GET("/feed.xml", feedHandler.RSSFeed)

	r.GET("/register", authHandler.ShowRegister)
	r.POST("/register", limited, authHandler.Register)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", limited, authHandler.Login)

	// Protected Routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/logout", authHandler.Logout)
		authorized.GET("/idea/new", ideaHandler.ShowSubmit)
		authorized.POST("/idea/new", ideaHandler.Submit)
		authorized.POST("/idea/:id/comment", ideaHandler.Comment)
		authorized.POST("/idea/:id/vote", voteHandler.Vote)
		authorized.POST("/idea/:id/delete", ideaHandler.Delete)
		authorized.GET("/my-ideas", ideaHandler.MyIdeas)
	}

	// Admin Routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthRequired())
	{
		admin.GET("", middleware.AdminRequired(), adminHandler.Dashboard)
		admin.POST("/user/:id/role", middleware.AdminRequired(), adminHandler.ChangeRole)
		admin.POST("/category", middleware.AdminRequired(), adminHandler.CreateCategory)
		admin.POST("/idea/:id/status", middleware.ReviewerRequired(), adminHandler.ChangeStatus)
	}

	r.NoRoute(handlers.NotFound)
}
