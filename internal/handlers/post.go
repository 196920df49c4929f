package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"forumvote/internal/models"
	"forumvote/internal/toc"
	"forumvote/internal/utils"
)

type PostReader interface {
	GetPost(ctx context.Context, id string) (*models.Post, error)
}

type PostHandler struct {
	store PostReader
	cache *utils.Cache
}

func NewPostHandler(store PostReader, cache *utils.Cache) *PostHandler {
	return &PostHandler{store: store, cache: cache}
}

type postView struct {
	Post *models.Post `json:"post"`
	HTML string       `json:"html"`
}

// load 先查缓存；投票后缓存由副作用失效
func (h *PostHandler) load(c *gin.Context) (*postView, bool) {
	id := c.Param("id")
	key := utils.PostCacheKey(id)
	if cached, ok := h.cache.Get(key).(*postView); ok {
		return cached, true
	}

	post, err := h.store.GetPost(c.Request.Context(), id)
	if err != nil {
		RenderError(c, err)
		return nil, false
	}
	if post == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return nil, false
	}

	html, err := utils.RenderMarkdown(post.Content)
	if err != nil {
		RenderError(c, err)
		return nil, false
	}
	view := &postView{Post: post, HTML: html}
	h.cache.Set(key, view)
	return view, true
}

// Get 帖子详情（含分数）
func (h *PostHandler) Get(c *gin.Context) {
	view, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, view)
}

// TOC 帖子目录
func (h *PostHandler) TOC(c *gin.Context) {
	view, ok := h.load(c)
	if !ok {
		return
	}
	contents, err := toc.ExtractHTML(view.HTML)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, contents)
}
