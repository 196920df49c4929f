package models

import (
	"time"
)

// VoteType 投票强度/方向
type VoteType string

const (
	VoteNeutral       VoteType = "neutral"
	VoteSmallUpvote   VoteType = "smallUpvote"
	VoteSmallDownvote VoteType = "smallDownvote"
	VoteBigUpvote     VoteType = "bigUpvote"
	VoteBigDownvote   VoteType = "bigDownvote"
)

// Valid 是否为已知的投票类型
func (t VoteType) Valid() bool {
	switch t {
	case VoteNeutral, VoteSmallUpvote, VoteSmallDownvote, VoteBigUpvote, VoteBigDownvote:
		return true
	}
	return false
}

func (t VoteType) IsStrong() bool {
	return t == VoteBigUpvote || t == VoteBigDownvote
}

func (t VoteType) IsDownvote() bool {
	return t == VoteSmallDownvote || t == VoteBigDownvote
}

// JSONMap 不透明的结构化数据（扩展投票、扩展分数）
type JSONMap map[string]any

// Vote 投票流水：只追加，除 cancelled false->true 外不做修改。
// 取消投票时会追加一条 IsUnvote=true、power 取反的镜像记录。
type Vote struct {
	ID                  string         `gorm:"primaryKey;size:36" json:"_id"`
	DocumentID          string         `gorm:"size:36;not null;index:idx_vote_doc_user" json:"documentId"`
	CollectionName      CollectionName `gorm:"size:32;not null" json:"collectionName"`
	UserID              string         `gorm:"size:36;not null;index:idx_vote_doc_user;index:idx_vote_user_time" json:"userId"`
	VoteType            VoteType       `gorm:"size:20;not null" json:"voteType"`
	ExtendedVoteType    JSONMap        `gorm:"type:text;serializer:json" json:"extendedVoteType,omitempty"`
	Power               float64        `gorm:"not null;default:0" json:"power"`
	AFPower             float64        `gorm:"not null;default:0" json:"afPower"`
	VotedAt             time.Time      `gorm:"not null;index:idx_vote_user_time" json:"votedAt"`
	AuthorIDs           []string       `gorm:"type:text;serializer:json" json:"authorIds"`
	Cancelled           bool           `gorm:"not null;default:false;index" json:"cancelled"`
	IsUnvote            bool           `gorm:"not null;default:false" json:"isUnvote"`
	DocumentIsAF        bool           `gorm:"not null;default:false" json:"documentIsAf"`
	SilenceNotification bool           `gorm:"not null;default:false" json:"silenceNotification"`
}

// HasAuthor 投票的目标内容是否由该用户撰写
func (v *Vote) HasAuthor(userID string) bool {
	for _, id := range v.AuthorIDs {
		if id == userID {
			return true
		}
	}
	return false
}
