package models

import (
	"time"
)

// Revision 内容的某个历史版本；只有 Tag（wiki 页面）的版本可以被投票
type Revision struct {
	ID             string         `gorm:"primaryKey;size:36" json:"_id"`
	DocumentID     string         `gorm:"size:36;not null;index" json:"documentId"`
	CollectionName CollectionName `gorm:"size:32;not null" json:"collectionName"`
	UserID         string         `gorm:"size:36;not null;index" json:"userId"`
	Version        string         `gorm:"size:20" json:"version"`
	Scores         Scores         `gorm:"embedded" json:"scores"`
	EditedAt       time.Time      `json:"editedAt"`
}

func (r *Revision) Document() *Document {
	return &Document{
		ID:              r.ID,
		Collection:      CollectionRevisions,
		UserID:          r.UserID,
		AuthorIDs:       []string{r.UserID},
		OwnerCollection: r.CollectionName,
		PostedAt:        r.EditedAt,
		Scores:          r.Scores,
	}
}

// Tag wiki 页面
type Tag struct {
	ID        string    `gorm:"primaryKey;size:36" json:"_id"`
	Name      string    `gorm:"not null;uniqueIndex" json:"name"`
	UserID    string    `gorm:"size:36;index" json:"userId"`
	Scores    Scores    `gorm:"embedded" json:"scores"`
	CreatedAt time.Time `json:"createdAt"`
}

func (t *Tag) Document() *Document {
	return &Document{
		ID:         t.ID,
		Collection: CollectionTags,
		UserID:     t.UserID,
		AuthorIDs:  []string{t.UserID},
		PostedAt:   t.CreatedAt,
		Scores:     t.Scores,
	}
}
