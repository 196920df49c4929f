package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"forumvote/internal/db"
	"forumvote/internal/models"
)

// SearchIndexer 把内容的最新分数同步到搜索表
type SearchIndexer struct {
	db    *gorm.DB
	store *db.Store
}

func NewSearchIndexer(conn *gorm.DB, store *db.Store) *SearchIndexer {
	return &SearchIndexer{db: conn, store: store}
}

func (s *SearchIndexer) Sync(ctx context.Context, collection models.CollectionName, documentID string) error {
	doc, err := s.store.GetDocument(ctx, collection, documentID)
	if err != nil {
		return err
	}
	if doc == nil {
		// 内容已删除，移出索引
		return s.db.WithContext(ctx).
			Where("collection_name = ? AND document_id = ?", collection, documentID).
			Delete(&models.SearchDocument{}).Error
	}

	row := models.SearchDocument{
		CollectionName: collection,
		DocumentID:     documentID,
		BaseScore:      doc.BaseScore,
		Score:          doc.Score,
		VoteCount:      doc.VoteCount,
		UpdatedAt:      time.Now(),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection_name"}, {Name: "document_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"base_score", "score", "vote_count", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert search document: %w", err)
	}
	return nil
}
