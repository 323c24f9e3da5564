package handlers

import (
	"errors"
	"net/http"
	"strings"

	"ideaboard/internal/middleware"
	"ideaboard/internal/models"
	"ideaboard/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Flash buckets, rendered with matching alert styles.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = middleware.FlashInfo
)

var flashCategories = []string{FlashSuccess, FlashError, FlashInfo}

type Flash struct {
	Category string
	Message  string
}

// Render helper to inject common variables like 'current user'
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	if user := middleware.CurrentUser(c); user != nil {
		obj["CurrentUser"] = user
	}
	obj["CurrentPath"] = c.Request.URL.Path
	obj["Flashes"] = popFlashes(c)

	c.HTML(code, name, obj)
}

// RenderError shows the error page.
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Code": code, "Error": message})
}

func addFlash(c *gin.Context, category, message string) {
	session := sessions.Default(c)
	session.AddFlash(message, category)
	if err := session.Save(); err != nil {
		logrus.WithError(err).Warn("Failed to save flash message")
	}
}

func popFlashes(c *gin.Context) []Flash {
	session := sessions.Default(c)
	var out []Flash
	for _, cat := range flashCategories {
		for _, f := range session.Flashes(cat) {
			if s, ok := f.(string); ok {
				out = append(out, Flash{Category: cat, Message: s})
			}
		}
	}
	if len(out) > 0 {
		_ = session.Save()
	}
	return out
}

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	switch models.ErrorCode(err) {
	case models.CodeValidation:
		return http.StatusBadRequest
	case models.CodeForbidden:
		return http.StatusForbidden
	case models.CodeNotFound:
		return http.StatusNotFound
	case models.CodeConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func errMessage(err error) string {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Internal server error"
}

func logIfInternal(c *gin.Context, err error) {
	if statusFor(err) == http.StatusInternalServerError {
		_ = c.Error(err)
		logrus.WithError(err).
			WithField("request_id", c.GetString(middleware.RequestIDKey)).
			Error("Request failed")
	}
}

// JSONError answers {success:false, message} with the mapped status.
func JSONError(c *gin.Context, err error) {
	logIfInternal(c, err)
	c.JSON(statusFor(err), gin.H{"success": false, "message": errMessage(err)})
}

// PageError renders the error page for a failed page request.
func PageError(c *gin.Context, err error) {
	logIfInternal(c, err)
	code := statusFor(err)
	msg := errMessage(err)
	if code == http.StatusNotFound {
		msg = "The page you are looking for does not exist."
	}
	RenderError(c, code, msg)
}

// idParam parses a positive numeric route parameter. Invalid ids render 404.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, ok := utils.ParseID(c.Param(name))
	if !ok {
		if middleware.WantsJSON(c) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Not found"})
		} else {
			RenderError(c, http.StatusNotFound, "The page you are looking for does not exist.")
		}
	}
	return id, ok
}

// safeNext accepts only same-site absolute paths as post-login targets.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
