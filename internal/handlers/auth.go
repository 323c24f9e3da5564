package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"ideaboard/internal/middleware"
	"ideaboard/internal/models"
	"ideaboard/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AuthHandler struct {
	users *services.UserService
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{users: services.NewUserService(db)}
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	Render(c, http.StatusOK, "auth/register.html", nil)
}

func (h *AuthHandler) Register(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	in := services.RegisterInput{
		Username:        c.PostForm("username"),
		Email:           c.PostForm("email"),
		Password:        c.PostForm("password"),
		ConfirmPassword: c.PostForm("confirm_password"),
	}
	if _, err := h.users.Register(in); err != nil {
		var appErr *models.AppError
		if !errors.As(err, &appErr) || appErr.Code == models.CodeInternal {
			PageError(c, err)
			return
		}
		Render(c, statusFor(err), "auth/register.html", gin.H{
			"Error":    appErr.Message,
			"Field":    appErr.Field,
			"Username": in.Username,
			"Email":    in.Email,
		})
		return
	}

	addFlash(c, FlashSuccess, "Account created successfully! Please log in.")
	c.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	Render(c, http.StatusOK, "auth/login.html", gin.H{"Next": c.Query("next")})
}

func (h *AuthHandler) Login(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	email := c.PostForm("email")
	next := c.DefaultPostForm("next", c.Query("next"))

	user, err := h.users.Authenticate(email, c.PostForm("password"))
	if err != nil {
		if models.IsValidation(err) {
			Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{
				"Error": errMessage(err),
				"Email": email,
				"Next":  next,
			})
			return
		}
		PageError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, user.ID)
	session.AddFlash(fmt.Sprintf("Welcome back, %s!", user.Username), FlashSuccess)
	if err := session.Save(); err != nil {
		PageError(c, models.NewInternalError(err))
		return
	}

	logrus.WithField("user_id", user.ID).Info("User logged in")
	c.Redirect(http.StatusFound, safeNext(next))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Delete(middleware.SessionUserKey)
	session.AddFlash("You have been logged out.", FlashInfo)
	_ = session.Save()
	c.Redirect(http.StatusFound, "/")
}
