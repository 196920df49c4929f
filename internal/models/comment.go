package models

import (
	"time"
)

type Comment struct {
	ID             string    `gorm:"primaryKey;size:36" json:"_id"`
	PostID         string    `gorm:"size:36;index" json:"postId"`
	UserID         string    `gorm:"size:36;not null;index" json:"userId"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	DebateResponse bool      `gorm:"not null;default:false" json:"debateResponse"`
	AF             bool      `gorm:"not null;default:false" json:"af"`
	Scores         Scores    `gorm:"embedded" json:"scores"`
	PostedAt       time.Time `json:"postedAt"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (c *Comment) Document() *Document {
	return &Document{
		ID:             c.ID,
		Collection:     CollectionComments,
		UserID:         c.UserID,
		AuthorIDs:      []string{c.UserID},
		PostID:         c.PostID,
		DebateResponse: c.DebateResponse,
		AF:             c.AF,
		PostedAt:       c.PostedAt,
		Scores:         c.Scores,
	}
}
