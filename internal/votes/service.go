// Package votes 投票流水、限流与计分引擎。
//
// 每次投票：查现有投票 -> (切换取消) -> 限流检查 -> 写入投票 -> 重算分数
// -> 清理并发产生的重复投票 -> 再次重算 -> 异步副作用。
package votes

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"forumvote/internal/models"
	"forumvote/internal/utils"
)

type Options struct {
	Weights         Weights
	Gravity         float64
	WarningCooldown time.Duration
	HistoryWindow   time.Duration
	// Rules 为空时使用 RulesFor
	Rules      func(*models.User) []Rule
	Systems    *Registry
	Dispatcher Dispatcher
	Indexer    SearchIndexer
	Cache      CacheInvalidator
	Callbacks  []Callbacks
	Metrics    *Metrics
	Logger     zerolog.Logger
	Now        func() time.Time
}

type Service struct {
	store           Store
	weights         Weights
	gravity         float64
	warningCooldown time.Duration
	historyWindow   time.Duration
	rules           func(*models.User) []Rule
	systems         *Registry
	dispatcher      Dispatcher
	indexer         SearchIndexer
	cache           CacheInvalidator
	callbacks       []Callbacks
	metrics         *Metrics
	log             zerolog.Logger
	now             func() time.Time
}

func New(store Store, opts Options) *Service {
	s := &Service{
		store:           store,
		weights:         opts.Weights,
		gravity:         opts.Gravity,
		warningCooldown: opts.WarningCooldown,
		historyWindow:   opts.HistoryWindow,
		rules:           opts.Rules,
		systems:         opts.Systems,
		dispatcher:      opts.Dispatcher,
		indexer:         opts.Indexer,
		cache:           opts.Cache,
		callbacks:       opts.Callbacks,
		metrics:         opts.Metrics,
		log:             opts.Logger,
		now:             opts.Now,
	}
	if s.weights.Small == 0 {
		s.weights = DefaultWeights()
	}
	if s.gravity == 0 {
		s.gravity = utils.DefaultGravity
	}
	if s.warningCooldown == 0 {
		s.warningCooldown = 60 * time.Minute
	}
	if s.historyWindow == 0 {
		s.historyWindow = 24 * time.Hour
	}
	if s.rules == nil {
		s.rules = RulesFor
	}
	if s.systems == nil {
		s.systems = NewRegistry(nil)
	}
	if s.dispatcher == nil {
		s.dispatcher = goDispatcher{log: s.log}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

type PerformVoteInput struct {
	// Document 已加载时直接使用，否则按 Collection + DocumentID 查询
	Document     *models.Document
	DocumentID   string
	Collection   models.CollectionName
	VoteType     models.VoteType
	ExtendedVote models.JSONMap
	User         *models.User

	// Toggle 与现有投票相同时取消投票
	Toggle bool
	// SkipRateLimits 系统内部调用
	SkipRateLimits bool
	// SelfVote 作者在自己内容上的零权重标记票，不受账号状态限制
	SelfVote bool
}

type PerformVoteResult struct {
	Document                 *models.Document `json:"document"`
	ShowVotingPatternWarning bool             `json:"showVotingPatternWarning"`
}

// PerformVote 投票入口。所有前置校验失败都在写入之前返回。
func (s *Service) PerformVote(ctx context.Context, in PerformVoteInput) (*PerformVoteResult, error) {
	user := in.User
	if user == nil {
		return nil, newError(ErrNotLoggedIn, "You must be logged in to vote")
	}

	doc := in.Document
	if doc == nil {
		var err error
		doc, err = s.store.GetDocument(ctx, in.Collection, in.DocumentID)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			return nil, newError(ErrNotFound, "Document not found")
		}
	}
	collection := doc.Collection

	// 作者在自己内容上投票不受账号状态限制
	if !in.SelfVote && !doc.IsAuthor(user.ID) {
		if ok, reason := CanVote(user, s.now()); !ok {
			return nil, newError(ErrVotingDisabled, reason)
		}
	}

	if !in.VoteType.Valid() {
		return nil, newError(ErrInvalidVoteType, "Invalid vote type: "+string(in.VoteType))
	}

	extendedOnly := in.ExtendedVote != nil && in.VoteType == models.VoteNeutral
	if !extendedOnly && !CanCastVoteType(user, collection, in.VoteType) {
		return nil, newError(ErrPermissionDenied, "You don't have permission to cast this vote")
	}

	if collection == models.CollectionRevisions && doc.OwnerCollection != models.CollectionTags {
		return nil, newError(ErrUnsupportedTarget, "Revisions are only voteable if they're revisions of tags")
	}

	if collection == models.CollectionComments && doc.DebateResponse {
		if err := s.checkDebateParticipant(ctx, doc, user); err != nil {
			return nil, err
		}
	}

	existing, err := s.store.FindActiveVote(ctx, doc.ID, user.ID)
	if err != nil {
		return nil, err
	}

	if existing != nil && existing.VoteType == in.VoteType && in.ExtendedVote == nil && in.Toggle {
		updated, err := s.ClearVotes(ctx, ClearVotesInput{Document: doc, User: user})
		if err != nil {
			return nil, err
		}
		s.resync(updated)
		return s.result(updated, false), nil
	}

	showWarning := false
	if !in.SkipRateLimits {
		showWarning, err = s.checkRateLimits(ctx, user, doc, in.VoteType)
		if err != nil {
			return nil, err
		}
	}

	system := s.systems.For(collection)
	extended := in.ExtendedVote
	if extended != nil {
		if !system.SupportsExtendedVotes() {
			extended = nil
		} else if ok, reason := system.IsAllowedExtendedVote(user, doc, doc.ExtendedScore, extended); !ok {
			if reason == "" {
				reason = "This vote is not allowed"
			}
			return nil, newError(ErrExtendedVoteRejected, reason)
		}
	}

	vote := s.newVote(doc, user, in.VoteType, extended, in.SelfVote)
	if err := s.store.InsertVote(ctx, vote); err != nil {
		return nil, err
	}
	s.metrics.voteCast(string(collection), string(in.VoteType))

	updated, err := s.updateScores(ctx, doc)
	if err != nil {
		return nil, err
	}

	updated, err = s.ClearVotes(ctx, ClearVotesInput{Document: updated, User: user, ExcludeLatest: true})
	if err != nil {
		return nil, err
	}

	s.afterVote(vote, updated, user)

	return s.result(updated, showWarning), nil
}

// CastSelfVote 作者发布内容后自动登记的标记票
func (s *Service) CastSelfVote(ctx context.Context, doc *models.Document, author *models.User) (*models.Document, error) {
	res, err := s.PerformVote(ctx, PerformVoteInput{
		Document:       doc,
		VoteType:       models.VoteSmallUpvote,
		User:           author,
		SkipRateLimits: true,
		SelfVote:       true,
	})
	if err != nil {
		return nil, err
	}
	return res.Document, nil
}

func (s *Service) newVote(doc *models.Document, user *models.User, voteType models.VoteType, extended models.JSONMap, selfVote bool) *models.Vote {
	authors := doc.AuthorIDs
	if len(authors) == 0 {
		authors = []string{doc.UserID}
	}
	vote := &models.Vote{
		ID:               newID(),
		DocumentID:       doc.ID,
		CollectionName:   doc.Collection,
		UserID:           user.ID,
		VoteType:         voteType,
		ExtendedVoteType: extended,
		VotedAt:          s.now(),
		AuthorIDs:        append([]string(nil), authors...),
		DocumentIsAF:     doc.AF,
	}
	if !selfVote {
		vote.Power = s.weights.Power(user, voteType)
		vote.AFPower = s.weights.AFPower(user, voteType)
	}
	return vote
}

func (s *Service) checkDebateParticipant(ctx context.Context, comment *models.Document, user *models.User) error {
	denied := newError(ErrDebateResponse, "Only participants of the debate can vote on debate responses")
	if comment.PostID == "" {
		return denied
	}
	post, err := s.store.GetDocument(ctx, models.CollectionPosts, comment.PostID)
	if err != nil {
		return err
	}
	if post == nil || !post.IsAuthor(user.ID) {
		return denied
	}
	return nil
}

func (s *Service) result(doc *models.Document, showWarning bool) *PerformVoteResult {
	out := *doc
	out.TypeName = doc.Collection.TypeName()
	return &PerformVoteResult{Document: &out, ShowVotingPatternWarning: showWarning}
}

func newID() string {
	return uuid.NewString()
}

// afterVote 异步副作用，失败只记日志
func (s *Service) afterVote(vote *models.Vote, doc *models.Document, user *models.User) {
	s.resync(doc)

	ev := VoteEvent{Vote: vote, Document: doc, User: user}
	for i, cb := range s.callbacks {
		s.dispatch("callback", fmt.Sprintf("cast:%s:%d", vote.ID, i), doc, func(ctx context.Context) error {
			return cb.OnCastVoteAsync(ctx, ev)
		})
	}
}

// resync 分数变化后同步搜索索引并让帖子缓存失效
func (s *Service) resync(doc *models.Document) {
	collection := doc.Collection

	if s.indexer != nil && searchIndexed[collection] {
		s.dispatch("search", "search:"+string(collection)+":"+doc.ID, doc, func(ctx context.Context) error {
			return s.indexer.Sync(ctx, collection, doc.ID)
		})
	}

	if s.cache != nil && collection == models.CollectionPosts {
		s.dispatch("cache", "cache:post:"+doc.ID, doc, func(context.Context) error {
			s.cache.InvalidatePost(doc.ID)
			return nil
		})
	}
}

func (s *Service) dispatch(kind, key string, doc *models.Document, fn func(ctx context.Context) error) {
	s.dispatcher.Dispatch(key, func(ctx context.Context) error {
		err := fn(ctx)
		if err != nil {
			s.metrics.sideEffectFailed(kind)
			s.log.Error().Err(err).
				Str("kind", kind).
				Str("collection", string(doc.Collection)).
				Str("document_id", doc.ID).
				Msg("vote side effect failed")
		}
		return nil
	})
}

// goDispatcher 未配置任务队列时的兜底：每个任务一个 goroutine
type goDispatcher struct {
	log zerolog.Logger
}

func (d goDispatcher) Dispatch(key string, fn func(ctx context.Context) error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				d.log.Error().Interface("panic", r).Str("key", key).Msg("side effect panicked")
			}
		}()
		_ = fn(context.Background())
	}()
}
