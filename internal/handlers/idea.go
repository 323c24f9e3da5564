package handlers

import (
	"fmt"
	"net/http"

	"ideaboard/internal/middleware"
	"ideaboard/internal/models"
	"ideaboard/internal/services"
	"ideaboard/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type IdeaHandler struct {
	ideas      *services.IdeaService
	comments   *services.CommentService
	categories *services.CategoryService
}

func NewIdeaHandler(db *gorm.DB) *IdeaHandler {
	return &IdeaHandler{
		ideas:      services.NewIdeaService(db),
		comments:   services.NewCommentService(db),
		categories: services.NewCategoryService(db),
	}
}

// List is the home page: ?category=&sort=&page=
func (h *IdeaHandler) List(c *gin.Context) {
	page := utils.StringToInt(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	categoryID, _ := utils.ParseID(c.Query("category"))
	sortMode := services.ParseSort(c.Query("sort"))

	res, err := h.ideas.List(services.ListParams{
		CategoryID: categoryID,
		Sort:       sortMode,
		Page:       page,
	})
	if err != nil {
		PageError(c, err)
		return
	}
	cats, err := h.categories.List()
	if err != nil {
		PageError(c, err)
		return
	}

	Render(c, http.StatusOK, "ideas/list.html", gin.H{
		"Ideas":           res.Ideas,
		"Categories":      cats,
		"CurrentCategory": categoryID,
		"CurrentSort":     string(sortMode),
		"Page":            res.Page,
		"TotalPages":      res.TotalPages,
		"Total":           res.Total,
	})
}

func (h *IdeaHandler) ShowSubmit(c *gin.Context) {
	cats, err := h.categories.List()
	if err != nil {
		PageError(c, err)
		return
	}
	Render(c, http.StatusOK, "ideas/submit.html", gin.H{"Categories": cats, "CategoryID": uint(0)})
}

func (h *IdeaHandler) Submit(c *gin.Context) {
	user := middleware.CurrentUser(c)
	title := c.PostForm("title")
	description := c.PostForm("description")
	categoryID, _ := utils.ParseID(c.PostForm("category_id"))

	idea, err := h.ideas.Submit(title, description, categoryID, user)
	if err != nil {
		if !models.IsValidation(err) {
			PageError(c, err)
			return
		}
		cats, cerr := h.categories.List()
		if cerr != nil {
			PageError(c, cerr)
			return
		}
		Render(c, http.StatusBadRequest, "ideas/submit.html", gin.H{
			"Categories":  cats,
			"Error":       errMessage(err),
			"Title":       title,
			"Description": description,
			"CategoryID":  categoryID,
		})
		return
	}

	addFlash(c, FlashSuccess, "Your idea has been submitted!")
	c.Redirect(http.StatusFound, fmt.Sprintf("/idea/%d", idea.ID))
}

func (h *IdeaHandler) Detail(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var viewerID uint
	if u := middleware.CurrentUser(c); u != nil {
		viewerID = u.ID
	}

	detail, err := h.ideas.Detail(id, viewerID)
	if err != nil {
		PageError(c, err)
		return
	}
	Render(c, http.StatusOK, "ideas/detail.html", gin.H{
		"Idea":     detail,
		"Statuses": []models.Status{models.StatusPending, models.StatusApproved, models.StatusRejected, models.StatusImplemented},
	})
}

func (h *IdeaHandler) Comment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var parentID *uint
	if pid, ok := utils.ParseID(c.PostForm("parent_id")); ok {
		parentID = &pid
	}

	_, err := h.comments.Add(id, c.PostForm("content"), middleware.CurrentUser(c), parentID)
	switch {
	case err == nil:
		addFlash(c, FlashSuccess, "Comment posted!")
	case models.IsValidation(err):
		addFlash(c, FlashError, errMessage(err))
	default:
		PageError(c, err)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/idea/%d", id))
}

func (h *IdeaHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	err := h.ideas.Delete(id, middleware.CurrentUser(c))
	switch {
	case err == nil:
		addFlash(c, FlashSuccess, "Idea deleted successfully.")
		c.Redirect(http.StatusFound, "/")
	case models.IsForbidden(err):
		addFlash(c, FlashError, errMessage(err))
		c.Redirect(http.StatusFound, fmt.Sprintf("/idea/%d", id))
	default:
		PageError(c, err)
	}
}

func (h *IdeaHandler) MyIdeas(c *gin.Context) {
	ideas, err := h.ideas.ListBySubmitter(middleware.CurrentUser(c).ID)
	if err != nil {
		PageError(c, err)
		return
	}
	Render(c, http.StatusOK, "ideas/my_ideas.html", gin.H{"Ideas": ideas})
}
