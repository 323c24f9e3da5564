package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"ideaboard/internal/models"
	"ideaboard/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const CheckUserKey = "user"

// SessionUserKey is the session field holding the logged-in user's ID.
const SessionUserKey = "user_id"

// FlashInfo is the flash bucket used for login prompts.
const FlashInfo = "info"

// CurrentUser returns the user loaded by LoadUser, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CheckUserKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// WantsJSON reports whether the client talks JSON rather than HTML forms.
func WantsJSON(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "application/json") ||
		strings.Contains(c.GetHeader("Accept"), "application/json") ||
		c.GetHeader("X-Requested-With") == "XMLHttpRequest"
}

// LoadUser retrieves user from session and sets to context
func LoadUser(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if id, ok := session.Get(SessionUserKey).(uint); ok {
			user, err := users.GetByID(id)
			switch {
			case err == nil:
				c.Set(CheckUserKey, user)
			case models.IsNotFound(err):
				// account vanished; drop the stale session
				session.Delete(SessionUserKey)
				_ = session.Save()
			default:
				logrus.WithError(err).WithField("user_id", id).Error("Failed to load session user")
			}
		}
		c.Next()
	}
}

// AuthRequired ensures a user is logged in.
// Pages redirect to /login?next=...; JSON clients get 401.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) != nil {
			c.Next()
			return
		}

		if WantsJSON(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Login required",
			})
			return
		}

		session := sessions.Default(c)
		session.AddFlash("Please log in to access this page.", FlashInfo)
		_ = session.Save()

		c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
		c.Abort()
	}
}

// AdminRequired lets admins through. Others get 403 JSON or a redirect home.
func AdminRequired() gin.HandlerFunc {
	return requireCapability(func(u *models.User) bool { return u.IsAdmin() })
}

// ReviewerRequired lets reviewers and admins through.
func ReviewerRequired() gin.HandlerFunc {
	return requireCapability(func(u *models.User) bool { return u.IsReviewer() })
}

func requireCapability(allowed func(*models.User) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user != nil && allowed(user) {
			c.Next()
			return
		}

		if WantsJSON(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Access denied",
			})
			return
		}

		session := sessions.Default(c)
		session.AddFlash("Access denied.", "error")
		_ = session.Save()
		c.Redirect(http.StatusFound, "/")
		c.Abort()
	}
}
