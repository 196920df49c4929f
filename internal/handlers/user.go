package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"forumvote/internal/middleware"
	"forumvote/internal/models"
)

type KarmaFeed interface {
	KarmaFeed(ctx context.Context, userID string, limit int) ([]models.KarmaChange, error)
}

type UserHandler struct {
	karma KarmaFeed
}

func NewUserHandler(karma KarmaFeed) *UserHandler {
	return &UserHandler{karma: karma}
}

// KarmaChanges - karma 明细
func (h *UserHandler) KarmaChanges(c *gin.Context) {
	user := middleware.CurrentUser(c)

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 100
	}

	changes, err := h.karma.KarmaFeed(c.Request.Context(), user.ID, limit)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"karma":   user.Karma,
		"changes": changes,
	})
}
