package votes

import (
	"context"
	"fmt"

	"forumvote/internal/models"
)

type ClearVotesInput struct {
	Document *models.Document
	User     *models.User
	// ExcludeLatest 保留最近一次投票（并发去重时使用）
	ExcludeLatest bool
	// SilenceNotification 版主作废投票时不通知作者
	SilenceNotification bool
}

// ClearVotes 取消该用户在该内容上的有效投票。
// 每条被取消的投票追加一条 power 取反的 unvote 记录，最后统一重算一次分数。
func (s *Service) ClearVotes(ctx context.Context, in ClearVotesInput) (*models.Document, error) {
	doc, user := in.Document, in.User

	votes, err := s.store.FindActiveVotesByUser(ctx, doc.ID, user.ID)
	if err != nil {
		return nil, fmt.Errorf("find votes to clear: %w", err)
	}
	if len(votes) == 0 {
		return doc, nil
	}

	// 按 votedAt 升序，最后一条即最新
	if in.ExcludeLatest {
		votes = votes[:len(votes)-1]
	}

	for i := range votes {
		if err := s.cancelVote(ctx, doc, user, votes[i].ID, in.SilenceNotification); err != nil {
			return nil, err
		}
	}

	return s.updateScores(ctx, doc)
}

func (s *Service) cancelVote(ctx context.Context, doc *models.Document, user *models.User, voteID string, silence bool) error {
	prev, err := s.store.CancelAtomically(ctx, voteID)
	if err != nil {
		return fmt.Errorf("cancel vote %s: %w", voteID, err)
	}
	if prev == nil {
		// 已被并发请求取消
		return nil
	}

	unvote := *prev
	unvote.ID = newID()
	unvote.Power = -prev.Power
	unvote.AFPower = -prev.AFPower
	unvote.IsUnvote = true
	unvote.Cancelled = true
	unvote.VotedAt = s.now()
	unvote.SilenceNotification = silence
	unvote.AuthorIDs = append([]string(nil), prev.AuthorIDs...)
	if err := s.store.InsertVote(ctx, &unvote); err != nil {
		return fmt.Errorf("insert unvote for %s: %w", voteID, err)
	}
	s.metrics.voteCancelled(string(doc.Collection))

	ev := VoteEvent{Vote: &unvote, Document: doc, User: user}
	for _, cb := range s.callbacks {
		if err := cb.OnVoteCancel(ctx, ev); err != nil {
			s.metrics.sideEffectFailed("cancel_callback")
			s.log.Error().Err(err).
				Str("vote_id", voteID).
				Str("document_id", doc.ID).
				Msg("vote cancel callback failed")
		}
	}
	return nil
}

// NullifyVotes 版主作废某用户的全部有效投票，不通知被投票的作者
func (s *Service) NullifyVotes(ctx context.Context, moderator *models.User, targetUserID string) (int, error) {
	if !moderator.IsModerator() {
		return 0, newError(ErrPermissionDenied, "Only moderators can nullify votes")
	}
	target, err := s.store.GetUser(ctx, targetUserID)
	if err != nil {
		return 0, err
	}
	if target == nil {
		return 0, newError(ErrNotFound, "User not found")
	}

	votes, err := s.store.FindActiveVotesCastBy(ctx, targetUserID)
	if err != nil {
		return 0, fmt.Errorf("find votes cast by %s: %w", targetUserID, err)
	}

	type docKey struct {
		collection models.CollectionName
		id         string
	}
	seen := make(map[docKey]bool)
	cleared := 0
	for _, v := range votes {
		key := docKey{v.CollectionName, v.DocumentID}
		if seen[key] {
			continue
		}
		seen[key] = true

		doc, err := s.store.GetDocument(ctx, v.CollectionName, v.DocumentID)
		if err != nil {
			return cleared, err
		}
		if doc == nil {
			s.log.Warn().Str("document_id", v.DocumentID).Msg("vote points at missing document, skipping")
			continue
		}
		updated, err := s.ClearVotes(ctx, ClearVotesInput{Document: doc, User: target, SilenceNotification: true})
		if err != nil {
			return cleared, err
		}
		cleared++
		s.resync(updated)
	}

	s.log.Info().
		Str("moderator_id", moderator.ID).
		Str("user_id", targetUserID).
		Int("documents", cleared).
		Msg("nullified votes")
	return cleared, nil
}
