package votes

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"forumvote/internal/models"
)

// checkRateLimits 是投票写入前唯一的限流关口。
// deny 直接返回错误；flag 异步记录版主操作；warn 在冷却期外记录并返回 true。
func (s *Service) checkRateLimits(ctx context.Context, user *models.User, doc *models.Document, voteType models.VoteType) (bool, error) {
	rules := s.rules(user)
	if len(rules) == 0 || doc.IsAuthor(user.ID) {
		return false, nil
	}

	now := s.now()
	in := EvaluationInput{
		User:     user,
		Document: doc,
		VoteType: voteType,
		Rules:    rules,
		Now:      now,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		votes, err := s.store.FindRecentByUser(gctx, user.ID, now.Add(-s.historyWindow), true)
		if err != nil {
			return fmt.Errorf("recent votes: %w", err)
		}
		in.RecentVotes = votes
		return nil
	})
	if doc.Collection == models.CollectionComments && doc.PostID != "" {
		in.HasPost = true
		g.Go(func() error {
			votes, err := s.store.FindRecentOnPost(gctx, user.ID, doc.PostID, doc.ID)
			if err != nil {
				return fmt.Errorf("votes on post: %w", err)
			}
			in.PostVotes = votes
			return nil
		})
		g.Go(func() error {
			n, err := s.store.CountComments(gctx, doc.PostID)
			if err != nil {
				return fmt.Errorf("count comments: %w", err)
			}
			in.PostCommentCount = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}

	d := Evaluate(in)
	if len(d.Exceeded) == 0 {
		return false, nil
	}

	switch {
	case d.Has(DenyThisVote):
		s.metrics.rateLimited(DenyThisVote)
		msg := d.Message
		if msg == "" {
			msg = genericRateLimitMessage
		}
		s.log.Info().Str("user_id", user.ID).Str("document_id", doc.ID).Msg(msg)
		return false, newError(ErrRateLimited, msg)

	case d.Has(FlagForModeration):
		s.metrics.rateLimited(FlagForModeration)
		action := &models.ModeratorAction{
			ID:        newID(),
			UserID:    user.ID,
			Type:      models.ModeratorActionTargetedDownvoting,
			CreatedAt: now,
		}
		s.dispatch("moderation", "modaction:"+action.ID, doc, func(ctx context.Context) error {
			return s.store.CreateModeratorAction(ctx, action)
		})
		return false, nil

	case d.Has(WarningPopup):
		return s.issueWarning(ctx, user, now), nil
	}
	return false, nil
}

// issueWarning 冷却期内已警告过则不再提示。记录失败只记日志，不影响投票。
func (s *Service) issueWarning(ctx context.Context, user *models.User, now time.Time) bool {
	last, err := s.store.LatestModeratorAction(ctx, user.ID, models.ModeratorActionWarningIssued)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("lookup previous voting warning")
		return false
	}
	if last != nil && now.Sub(last.CreatedAt) < s.warningCooldown {
		return false
	}

	s.metrics.rateLimited(WarningPopup)
	action := &models.ModeratorAction{
		ID:        newID(),
		UserID:    user.ID,
		Type:      models.ModeratorActionWarningIssued,
		CreatedAt: now,
	}
	if err := s.store.CreateModeratorAction(ctx, action); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("record voting warning")
	}
	return true
}
