package models

import (
	"time"
)

// CollectionName 被投票内容所属集合
type CollectionName string

const (
	CollectionPosts     CollectionName = "Posts"
	CollectionComments  CollectionName = "Comments"
	CollectionRevisions CollectionName = "Revisions"
	CollectionTags      CollectionName = "Tags"
)

var typeNames = map[CollectionName]string{
	CollectionPosts:     "Post",
	CollectionComments:  "Comment",
	CollectionRevisions: "Revision",
	CollectionTags:      "Tag",
}

// Voteable 是否是可投票的集合
func (c CollectionName) Voteable() bool {
	_, ok := typeNames[c]
	return ok
}

// TypeName 对应的 GraphQL 类型名
func (c CollectionName) TypeName() string {
	return typeNames[c]
}

// Scores 可投票内容上的冗余分数字段
type Scores struct {
	BaseScore       float64 `gorm:"not null;default:0" json:"baseScore"`
	AFBaseScore     float64 `gorm:"not null;default:0" json:"afBaseScore"`
	Score           float64 `gorm:"not null;default:0" json:"score"`
	VoteCount       int     `gorm:"not null;default:0" json:"voteCount"`
	AFVoteCount     int     `gorm:"not null;default:0" json:"afVoteCount"`
	ExtendedScore   JSONMap `gorm:"type:text;serializer:json" json:"extendedScore,omitempty"`
	AFExtendedScore JSONMap `gorm:"type:text;serializer:json" json:"afExtendedScore,omitempty"`
	Inactive        bool    `gorm:"not null;default:false" json:"inactive"`
}

// Document 投票引擎看到的统一内容视图，不对应任何一张表
type Document struct {
	ID              string         `json:"_id"`
	Collection      CollectionName `json:"collectionName"`
	UserID          string         `json:"userId"`
	AuthorIDs       []string       `json:"authorIds"`
	PostID          string         `json:"postId,omitempty"`
	OwnerCollection CollectionName `json:"ownerCollectionName,omitempty"` // 仅 Revision
	DebateResponse  bool           `json:"debateResponse,omitempty"`
	AF              bool           `json:"af"`
	PostedAt        time.Time      `json:"postedAt"`
	Scores
	TypeName string `json:"__typename,omitempty"`
}

// IsAuthor 该用户是否为作者之一
func (d *Document) IsAuthor(userID string) bool {
	if userID == "" {
		return false
	}
	if d.UserID == userID {
		return true
	}
	for _, id := range d.AuthorIDs {
		if id == userID {
			return true
		}
	}
	return false
}
