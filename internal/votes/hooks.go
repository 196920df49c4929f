package votes

import (
	"context"

	"forumvote/internal/models"
)

// Dispatcher 异步执行不影响投票结果的副作用；实现不得阻塞调用方。
// 相同 key 的任务在排队期间可被合并。
type Dispatcher interface {
	Dispatch(key string, fn func(ctx context.Context) error)
}

// VoteEvent 传给回调的投票上下文。取消时 Vote 为 power 取反后的 unvote 记录。
type VoteEvent struct {
	Vote     *models.Vote
	Document *models.Document
	User     *models.User
}

// Callbacks 投票生效/取消后的下游处理（通知、karma 等）
type Callbacks interface {
	OnCastVoteAsync(ctx context.Context, ev VoteEvent) error
	OnVoteCancel(ctx context.Context, ev VoteEvent) error
}

type SearchIndexer interface {
	Sync(ctx context.Context, collection models.CollectionName, documentID string) error
}

type CacheInvalidator interface {
	InvalidatePost(postID string)
}

var searchIndexed = map[models.CollectionName]bool{
	models.CollectionPosts:    true,
	models.CollectionComments: true,
	models.CollectionTags:     true,
}
