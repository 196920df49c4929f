package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"forumvote/internal/models"
	"forumvote/internal/votes"
)

// KarmaCallbacks 投票生效/取消时调整作者 karma 并记录明细
type KarmaCallbacks struct {
	db *gorm.DB
}

func NewKarmaCallbacks(conn *gorm.DB) *KarmaCallbacks {
	return &KarmaCallbacks{db: conn}
}

func (k *KarmaCallbacks) OnCastVoteAsync(ctx context.Context, ev votes.VoteEvent) error {
	return k.apply(ctx, ev.Vote)
}

// OnVoteCancel 收到的是 power 已取反的 unvote 记录
func (k *KarmaCallbacks) OnVoteCancel(ctx context.Context, ev votes.VoteEvent) error {
	return k.apply(ctx, ev.Vote)
}

// apply 使用事务为每位作者（投票者本人除外）添加 karma 并记录明细
func (k *KarmaCallbacks) apply(ctx context.Context, vote *models.Vote) error {
	if vote.Power == 0 {
		return nil
	}
	return k.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, authorID := range vote.AuthorIDs {
			if authorID == vote.UserID {
				continue
			}
			change := models.KarmaChange{
				ID:             uuid.NewString(),
				UserID:         authorID,
				VoteID:         vote.ID,
				DocumentID:     vote.DocumentID,
				CollectionName: vote.CollectionName,
				Amount:         vote.Power,
				Silenced:       vote.SilenceNotification,
			}
			if err := tx.Create(&change).Error; err != nil {
				return fmt.Errorf("record karma change: %w", err)
			}

			if err := tx.Model(&models.User{}).
				Where("id = ?", authorID).
				UpdateColumn("karma", gorm.Expr("karma + ?", vote.Power)).
				Error; err != nil {
				return fmt.Errorf("update karma of %s: %w", authorID, err)
			}
		}
		return nil
	})
}

// KarmaFeed 作者可见的 karma 变动（不含被静默的记录）
func (k *KarmaCallbacks) KarmaFeed(ctx context.Context, userID string, limit int) ([]models.KarmaChange, error) {
	var changes []models.KarmaChange
	err := k.db.WithContext(ctx).
		Where("user_id = ? AND silenced = ?", userID, false).
		Order("created_at DESC").
		Limit(limit).
		Find(&changes).Error
	return changes, err
}
