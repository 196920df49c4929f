package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"forumvote/internal/middleware"
	"forumvote/internal/votes"
)

type AdminHandler struct {
	votes *votes.Service
}

func NewAdminHandler(svc *votes.Service) *AdminHandler {
	return &AdminHandler{votes: svc}
}

// NullifyVotes 作废某用户的全部投票
func (h *AdminHandler) NullifyVotes(c *gin.Context) {
	n, err := h.votes.NullifyVotes(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": n})
}
