package middleware

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"forumvote/internal/models"
)

const CheckUserKey = "user"

// SessionUserKey 会话中保存的用户 ID
const SessionUserKey = "user_id"

// UserLoader 按 ID 读取用户；不存在时返回 nil, nil
type UserLoader interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// LoadUser retrieves user from session and sets to context
func LoadUser(users UserLoader, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, _ := session.Get(SessionUserKey).(string)

		if userID != "" {
			user, err := users.GetUser(c.Request.Context(), userID)
			if err != nil {
				log.Error().Err(err).Str("user_id", userID).Msg("load session user")
			} else if user != nil {
				c.Set(CheckUserKey, user)
			}
		}
		c.Next()
	}
}

// CurrentUser 未登录时返回 nil
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(CheckUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// AuthRequired ensures a user is logged in
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "You must be logged in"})
			return
		}
		c.Next()
	}
}

// ModeratorRequired 仅管理员与版主
func ModeratorRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "You must be logged in"})
			return
		}
		if !user.IsModerator() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Moderators only"})
			return
		}
		c.Next()
	}
}
