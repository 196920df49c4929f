package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"forumvote/internal/handlers"
	"forumvote/internal/middleware"
	"forumvote/internal/utils"
	"forumvote/internal/votes"
)

// Store 路由层用到的读接口
type Store interface {
	handlers.VoteReader
	handlers.PostReader
}

type Deps struct {
	Votes    *votes.Service
	Store    Store
	Karma    handlers.KarmaFeed
	Cache    *utils.Cache
	Gatherer prometheus.Gatherer
}

func RegisterRoutes(r *gin.Engine, deps Deps) {
	// Handlers
	voteHandler := handlers.NewVoteHandler(deps.Votes, deps.Store)
	postHandler := handlers.NewPostHandler(deps.Store, deps.Cache)
	userHandler := handlers.NewUserHandler(deps.Karma)
	adminHandler := handlers.NewAdminHandler(deps.Votes)

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))

	api := r.Group("/api")

	// 公共路由 (Public Routes)
	api.GET("/posts/:id", postHandler.Get)                  // 帖子详情（缓存）
	api.GET("/posts/:id/toc", postHandler.TOC)              // 帖子目录
	api.GET("/votes/:collection/:id", voteHandler.ListVotes) // 内容上的有效投票

	// 受保护路由 (Protected Routes)
	authorized := api.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/vote", voteHandler.Vote)          // 投票/改票/取消
		authorized.GET("/karma", userHandler.KarmaChanges) // karma 明细
	}

	// 管理路由 (Moderation Routes)
	admin := api.Group("/admin")
	admin.Use(middleware.ModeratorRequired())
	{
		admin.POST("/users/:id/nullify-votes", adminHandler.NullifyVotes) // 作废用户全部投票
	}
}
