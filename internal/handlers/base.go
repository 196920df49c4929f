package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"forumvote/internal/models"
	"forumvote/internal/votes"
)

// statusFor 投票错误类别 -> HTTP 状态码
func statusFor(err error) int {
	switch {
	case errors.Is(err, votes.ErrInvalidVoteType):
		return http.StatusBadRequest
	case errors.Is(err, votes.ErrNotLoggedIn):
		return http.StatusUnauthorized
	case errors.Is(err, votes.ErrPermissionDenied),
		errors.Is(err, votes.ErrVotingDisabled),
		errors.Is(err, votes.ErrDebateResponse),
		errors.Is(err, votes.ErrUnsupportedTarget),
		errors.Is(err, votes.ErrExtendedVoteRejected):
		return http.StatusForbidden
	case errors.Is(err, votes.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, votes.ErrRateLimited):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// RenderError 面向用户的错误原样返回文案，其余只返回通用提示
func RenderError(c *gin.Context, err error) {
	code := statusFor(err)
	message := "Internal server error"
	var verr *votes.Error
	if errors.As(err, &verr) {
		message = verr.Error()
	}
	if code == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(code, gin.H{"error": message})
}

// parseCollection 路径里的集合名不区分大小写，如 posts -> Posts
func parseCollection(s string) (models.CollectionName, bool) {
	for _, c := range []models.CollectionName{
		models.CollectionPosts,
		models.CollectionComments,
		models.CollectionRevisions,
		models.CollectionTags,
	} {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}
