package models

import (
	"time"
)

// KarmaChange 作者 karma 变动明细
type KarmaChange struct {
	ID             string         `gorm:"primaryKey;size:36" json:"_id"`
	UserID         string         `gorm:"size:36;not null;index" json:"userId"` // 被投票内容的作者
	VoteID         string         `gorm:"size:36;not null;index" json:"voteId"`
	DocumentID     string         `gorm:"size:36;not null" json:"documentId"`
	CollectionName CollectionName `gorm:"size:32;not null" json:"collectionName"`
	Amount         float64        `gorm:"not null" json:"amount"` // 正数为增加，负数为扣除
	Silenced       bool           `gorm:"not null;default:false" json:"silenced"`
	CreatedAt      time.Time      `json:"createdAt"`
}
