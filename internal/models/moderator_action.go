package models

import (
	"time"
)

type ModeratorActionType string

const (
	ModeratorActionWarningIssued      ModeratorActionType = "votingPatternWarningDelivered"
	ModeratorActionTargetedDownvoting ModeratorActionType = "potentialTargetedDownvoting"
)

// ModeratorAction 版主操作记录：既用于"60 分钟内不重复警告"，也供人工审核
type ModeratorAction struct {
	ID        string              `gorm:"primaryKey;size:36" json:"_id"`
	UserID    string              `gorm:"size:36;not null;index:idx_modaction_user_type" json:"userId"`
	Type      ModeratorActionType `gorm:"size:64;not null;index:idx_modaction_user_type" json:"type"`
	CreatedAt time.Time           `gorm:"index" json:"createdAt"`
}
