package models

import (
	"time"
)

type Post struct {
	ID           string    `gorm:"primaryKey;size:36" json:"_id"`
	UserID       string    `gorm:"size:36;not null;index" json:"userId"`
	Title        string    `gorm:"not null" json:"title"`
	Content      string    `gorm:"type:text" json:"content"` // markdown
	CoauthorIDs  []string  `gorm:"type:text;serializer:json" json:"coauthorUserIds"`
	CommentCount int       `gorm:"not null;default:0" json:"commentCount"`
	AF           bool      `gorm:"not null;default:false" json:"af"`
	Scores       Scores    `gorm:"embedded" json:"scores"`
	PostedAt     time.Time `gorm:"index" json:"postedAt"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// AuthorIDs 作者与已确认的共同作者
func (p *Post) AuthorIDs() []string {
	ids := make([]string, 0, 1+len(p.CoauthorIDs))
	ids = append(ids, p.UserID)
	ids = append(ids, p.CoauthorIDs...)
	return ids
}

func (p *Post) Document() *Document {
	return &Document{
		ID:         p.ID,
		Collection: CollectionPosts,
		UserID:     p.UserID,
		AuthorIDs:  p.AuthorIDs(),
		AF:         p.AF,
		PostedAt:   p.PostedAt,
		Scores:     p.Scores,
	}
}
