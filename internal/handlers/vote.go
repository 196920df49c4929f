package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"forumvote/internal/middleware"
	"forumvote/internal/models"
	"forumvote/internal/votes"
)

// VoteReader 读取内容与其上的有效投票
type VoteReader interface {
	GetDocument(ctx context.Context, collection models.CollectionName, id string) (*models.Document, error)
	FindActiveVotes(ctx context.Context, documentID string) ([]models.Vote, error)
}

type VoteHandler struct {
	votes *votes.Service
	store VoteReader
}

func NewVoteHandler(svc *votes.Service, store VoteReader) *VoteHandler {
	return &VoteHandler{votes: svc, store: store}
}

type voteRequest struct {
	DocumentID     string                `json:"documentId" binding:"required"`
	CollectionName models.CollectionName `json:"collectionName" binding:"required"`
	VoteType       models.VoteType       `json:"voteType" binding:"required"`
	ExtendedVote   models.JSONMap        `json:"extendedVote"`
	// 缺省时按切换语义处理
	Toggle *bool `json:"toggle"`
}

// Vote 投票 / 改票 / 取消投票
func (h *VoteHandler) Vote(c *gin.Context) {
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	collection, ok := parseCollection(string(req.CollectionName))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown collection: " + string(req.CollectionName)})
		return
	}

	toggle := true
	if req.Toggle != nil {
		toggle = *req.Toggle
	}

	res, err := h.votes.PerformVote(c.Request.Context(), votes.PerformVoteInput{
		DocumentID:   req.DocumentID,
		Collection:   collection,
		VoteType:     req.VoteType,
		ExtendedVote: req.ExtendedVote,
		User:         middleware.CurrentUser(c),
		Toggle:       toggle,
	})
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type voteView struct {
	UserID           string          `json:"userId"`
	VoteType         models.VoteType `json:"voteType"`
	ExtendedVoteType models.JSONMap  `json:"extendedVoteType,omitempty"`
	VotedAt          time.Time       `json:"votedAt"`
}

// ListVotes 内容上的有效投票，按投票时间升序
func (h *VoteHandler) ListVotes(c *gin.Context) {
	collection, ok := parseCollection(c.Param("collection"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown collection"})
		return
	}
	id := c.Param("id")
	ctx := c.Request.Context()

	doc, err := h.store.GetDocument(ctx, collection, id)
	if err != nil {
		RenderError(c, err)
		return
	}
	if doc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	active, err := h.store.FindActiveVotes(ctx, id)
	if err != nil {
		RenderError(c, err)
		return
	}
	out := make([]voteView, 0, len(active))
	for _, v := range active {
		// 零效果的作者自投票不展示
		if v.Power == 0 && v.ExtendedVoteType == nil {
			continue
		}
		out = append(out, voteView{
			UserID:           v.UserID,
			VoteType:         v.VoteType,
			ExtendedVoteType: v.ExtendedVoteType,
			VotedAt:          v.VotedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"votes": out})
}
