package handlers

import (
	"net/http"

	"ideaboard/internal/middleware"
	"ideaboard/internal/models"
	"ideaboard/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AdminHandler struct {
	admin      *services.AdminService
	users      *services.UserService
	ideas      *services.IdeaService
	categories *services.CategoryService
}

func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{
		admin:      services.NewAdminService(db),
		users:      services.NewUserService(db),
		ideas:      services.NewIdeaService(db),
		categories: services.NewCategoryService(db),
	}
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.admin.Stats()
	if err != nil {
		PageError(c, err)
		return
	}
	users, err := h.users.List()
	if err != nil {
		PageError(c, err)
		return
	}
	ideas, err := h.ideas.ListAll()
	if err != nil {
		PageError(c, err)
		return
	}
	cats, err := h.categories.List()
	if err != nil {
		PageError(c, err)
		return
	}

	Render(c, http.StatusOK, "admin/dashboard.html", gin.H{
		"Stats":      stats,
		"Users":      users,
		"Ideas":      ideas,
		"Categories": cats,
		"Roles":      []models.Role{models.RoleSubmitter, models.RoleReviewer, models.RoleAdmin},
		"Statuses":   []models.Status{models.StatusPending, models.StatusApproved, models.StatusRejected, models.StatusImplemented},
	})
}

type roleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h *AdminHandler) ChangeRole(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, models.NewValidationError("role", "Invalid role"))
		return
	}

	if _, err := h.users.ChangeRole(id, req.Role, middleware.CurrentUser(c)); err != nil {
		JSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *AdminHandler) ChangeStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, models.NewValidationError("status", "Invalid status"))
		return
	}

	if _, err := h.ideas.ChangeStatus(id, req.Status, middleware.CurrentUser(c)); err != nil {
		JSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CreateCategory handles the dashboard's new-category form.
func (h *AdminHandler) CreateCategory(c *gin.Context) {
	cat, err := h.categories.Create(c.PostForm("name"), c.PostForm("icon"), middleware.CurrentUser(c))
	switch {
	case err == nil:
		addFlash(c, FlashSuccess, "Category \""+cat.Name+"\" created.")
	case models.IsValidation(err), models.IsConflict(err):
		addFlash(c, FlashError, errMessage(err))
	default:
		PageError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/admin")
}
