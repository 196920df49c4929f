package models

import (
	"time"
)

// SearchDocument 搜索索引中的冗余行，由投票后的异步同步维护
type SearchDocument struct {
	CollectionName CollectionName `gorm:"primaryKey;size:32" json:"collectionName"`
	DocumentID     string         `gorm:"primaryKey;size:36" json:"documentId"`
	BaseScore      float64        `json:"baseScore"`
	Score          float64        `json:"score"`
	VoteCount      int            `json:"voteCount"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}
