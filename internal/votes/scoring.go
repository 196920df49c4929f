package votes

import (
	"context"
	"fmt"

	"forumvote/internal/models"
	"forumvote/internal/utils"
)

// hasAnyEffect 计入 voteCount 的投票：权重非零，或在扩展维度上非空
func hasAnyEffect(system VotingSystem, vote *models.Vote) bool {
	if vote.Power != 0 {
		return true
	}
	if system.IsNonblankExtendedVote(vote) {
		return true
	}
	return false
}

// ComputeScores 从当前全部有效投票重新计算分数，从不做增量更新
func (s *Service) ComputeScores(ctx context.Context, doc *models.Document) (models.Scores, error) {
	votes, err := s.store.FindActiveVotes(ctx, doc.ID)
	if err != nil {
		return models.Scores{}, fmt.Errorf("find active votes: %w", err)
	}

	seen := make(map[string]bool, len(votes))
	voterIDs := make([]string, 0, len(votes))
	for _, v := range votes {
		if !seen[v.UserID] {
			seen[v.UserID] = true
			voterIDs = append(voterIDs, v.UserID)
		}
	}
	voters, err := s.store.GetUsers(ctx, voterIDs)
	if err != nil {
		return models.Scores{}, fmt.Errorf("get voters: %w", err)
	}

	afVotes := make([]models.Vote, 0, len(votes))
	for _, v := range votes {
		if CanVoteAlignment(voters[v.UserID]) {
			afVotes = append(afVotes, v)
		}
	}

	system := s.systems.For(doc.Collection)
	scores := models.Scores{}
	for i := range votes {
		scores.BaseScore += votes[i].Power
		if hasAnyEffect(system, &votes[i]) {
			scores.VoteCount++
		}
	}
	for i := range afVotes {
		scores.AFBaseScore += afVotes[i].AFPower
		if hasAnyEffect(system, &afVotes[i]) {
			scores.AFVoteCount++
		}
	}

	if scores.ExtendedScore, err = system.ComputeExtendedScore(votes); err != nil {
		return models.Scores{}, fmt.Errorf("compute extended score: %w", err)
	}
	if scores.AFExtendedScore, err = system.ComputeExtendedScore(afVotes); err != nil {
		return models.Scores{}, fmt.Errorf("compute af extended score: %w", err)
	}

	scores.Score = utils.TimeDecayScore(scores.BaseScore, doc.PostedAt, s.now(), s.gravity)
	scores.Inactive = false
	return scores, nil
}

// updateScores 重新计算并以单次写入持久化，返回带新分数的文档副本
func (s *Service) updateScores(ctx context.Context, doc *models.Document) (*models.Document, error) {
	scores, err := s.ComputeScores(ctx, doc)
	if err != nil {
		return nil, err
	}
	if err := s.store.ApplyScores(ctx, doc.Collection, doc.ID, scores); err != nil {
		return nil, fmt.Errorf("apply scores: %w", err)
	}
	updated := *doc
	updated.Scores = scores
	return &updated, nil
}
