package handlers

import (
	"errors"
	"io"
	"net/http"

	"ideaboard/internal/middleware"
	"ideaboard/internal/models"
	"ideaboard/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

type VoteHandler struct {
	votes *services.VoteService
}

func NewVoteHandler(db *gorm.DB) *VoteHandler {
	return &VoteHandler{votes: services.NewVoteService(db)}
}

type voteRequest struct {
	VoteType *int `json:"vote_type" binding:"omitempty,oneof=-1 1"`
}

// Vote toggles the current user's vote. A missing vote_type counts as an upvote.
func (h *VoteHandler) Vote(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		msg := "Invalid request body"
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msg = "Vote type must be 1 or -1"
		}
		JSONError(c, models.NewValidationError("vote_type", msg))
		return
	}
	voteType := models.Upvote
	if req.VoteType != nil {
		voteType = *req.VoteType
	}

	res, err := h.votes.Cast(id, middleware.CurrentUser(c), voteType)
	if err != nil {
		JSONError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"vote_count": res.VoteCount,
		"upvotes":    res.Upvotes,
		"downvotes":  res.Downvotes,
		"user_vote":  res.UserVote,
	})
}
