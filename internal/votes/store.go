package votes

import (
	"context"
	"time"

	"forumvote/internal/models"
)

// VoteStore 投票流水的持久化。查不到时返回 nil, nil。
type VoteStore interface {
	InsertVote(ctx context.Context, vote *models.Vote) error
	FindActiveVote(ctx context.Context, documentID, userID string) (*models.Vote, error)
	// FindActiveVotes 按 votedAt 升序返回
	FindActiveVotes(ctx context.Context, documentID string) ([]models.Vote, error)
	FindActiveVotesByUser(ctx context.Context, documentID, userID string) ([]models.Vote, error)
	FindActiveVotesCastBy(ctx context.Context, userID string) ([]models.Vote, error)
	// CancelAtomically 将 cancelled 从 false 置为 true，返回修改前的记录；
	// 已被其他请求取消时返回 nil, nil。
	CancelAtomically(ctx context.Context, voteID string) (*models.Vote, error)
	// FindRecentByUser 和 FindRecentOnPost 只返回未取消的投票
	FindRecentByUser(ctx context.Context, userID string, since time.Time, excludeSelfAuthored bool) ([]models.Vote, error)
	FindRecentOnPost(ctx context.Context, userID, postID, excludeDocumentID string) ([]models.Vote, error)
}

type DocumentStore interface {
	GetDocument(ctx context.Context, collection models.CollectionName, id string) (*models.Document, error)
	// ApplyScores 单条 update 覆盖全部分数字段
	ApplyScores(ctx context.Context, collection models.CollectionName, id string, scores models.Scores) error
	CountComments(ctx context.Context, postID string) (int, error)
}

type UserStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUsers(ctx context.Context, ids []string) (map[string]*models.User, error)
}

type ModeratorActionStore interface {
	CreateModeratorAction(ctx context.Context, action *models.ModeratorAction) error
	LatestModeratorAction(ctx context.Context, userID string, actionType models.ModeratorActionType) (*models.ModeratorAction, error)
}

// Store 投票引擎依赖的全部存储
type Store interface {
	VoteStore
	DocumentStore
	UserStore
	ModeratorActionStore
}
