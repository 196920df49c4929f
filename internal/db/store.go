package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"forumvote/internal/models"
)

// Store 基于 gorm 的投票存储；查不到时返回 nil, nil
type Store struct {
	db *gorm.DB
}

func NewStore(conn *gorm.DB) *Store {
	return &Store{db: conn}
}

var errAlreadyCancelled = errors.New("vote already cancelled")

func (s *Store) InsertVote(ctx context.Context, vote *models.Vote) error {
	if err := s.db.WithContext(ctx).Create(vote).Error; err != nil {
		return fmt.Errorf("insert vote: %w", err)
	}
	return nil
}

func (s *Store) active(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.Vote{}).Where("cancelled = ?", false)
}

func (s *Store) FindActiveVote(ctx context.Context, documentID, userID string) (*models.Vote, error) {
	var vote models.Vote
	err := s.active(ctx).
		Where("document_id = ? AND user_id = ?", documentID, userID).
		Order("voted_at DESC").
		First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

func (s *Store) FindActiveVotes(ctx context.Context, documentID string) ([]models.Vote, error) {
	var votes []models.Vote
	err := s.active(ctx).
		Where("document_id = ?", documentID).
		Order("voted_at ASC, id ASC").
		Find(&votes).Error
	return votes, err
}

func (s *Store) FindActiveVotesByUser(ctx context.Context, documentID, userID string) ([]models.Vote, error) {
	var votes []models.Vote
	err := s.active(ctx).
		Where("document_id = ? AND user_id = ?", documentID, userID).
		Order("voted_at ASC, id ASC").
		Find(&votes).Error
	return votes, err
}

func (s *Store) FindActiveVotesCastBy(ctx context.Context, userID string) ([]models.Vote, error) {
	var votes []models.Vote
	err := s.active(ctx).
		Where("user_id = ?", userID).
		Order("voted_at ASC, id ASC").
		Find(&votes).Error
	return votes, err
}

// CancelAtomically 条件更新 cancelled=false -> true，只有一个调用方能成功
func (s *Store) CancelAtomically(ctx context.Context, voteID string) (*models.Vote, error) {
	var prev models.Vote
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND cancelled = ?", voteID, false).First(&prev).Error; err != nil {
			return err
		}
		res := tx.Model(&models.Vote{}).
			Where("id = ? AND cancelled = ?", voteID, false).
			Update("cancelled", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errAlreadyCancelled
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, errAlreadyCancelled) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &prev, nil
}

func (s *Store) FindRecentByUser(ctx context.Context, userID string, since time.Time, excludeSelfAuthored bool) ([]models.Vote, error) {
	var votes []models.Vote
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND voted_at > ? AND cancelled = ?", userID, since, false).
		Order("voted_at ASC").
		Find(&votes).Error
	if err != nil {
		return nil, err
	}
	if !excludeSelfAuthored {
		return votes, nil
	}
	// author_ids 以 JSON 文本存储，在内存中过滤
	out := votes[:0]
	for _, v := range votes {
		if !v.HasAuthor(userID) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *Store) FindRecentOnPost(ctx context.Context, userID, postID, excludeDocumentID string) ([]models.Vote, error) {
	commentIDs := s.db.WithContext(ctx).Model(&models.Comment{}).Select("id").Where("post_id = ?", postID)

	var votes []models.Vote
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND cancelled = ? AND document_id <> ?", userID, false, excludeDocumentID).
		Where("document_id IN (?)", commentIDs).
		Order("voted_at ASC").
		Find(&votes).Error
	return votes, err
}

func (s *Store) GetDocument(ctx context.Context, collection models.CollectionName, id string) (*models.Document, error) {
	q := s.db.WithContext(ctx)
	var err error
	var doc *models.Document
	switch collection {
	case models.CollectionPosts:
		var p models.Post
		if err = q.First(&p, "id = ?", id).Error; err == nil {
			doc = p.Document()
		}
	case models.CollectionComments:
		var c models.Comment
		if err = q.First(&c, "id = ?", id).Error; err == nil {
			doc = c.Document()
		}
	case models.CollectionRevisions:
		var r models.Revision
		if err = q.First(&r, "id = ?", id).Error; err == nil {
			doc = r.Document()
		}
	case models.CollectionTags:
		var t models.Tag
		if err = q.First(&t, "id = ?", id).Error; err == nil {
			doc = t.Document()
		}
	default:
		return nil, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// GetPost 读取帖子完整记录
func (s *Store) GetPost(ctx context.Context, id string) (*models.Post, error) {
	var p models.Post
	err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func tableFor(collection models.CollectionName) (any, error) {
	switch collection {
	case models.CollectionPosts:
		return &models.Post{}, nil
	case models.CollectionComments:
		return &models.Comment{}, nil
	case models.CollectionRevisions:
		return &models.Revision{}, nil
	case models.CollectionTags:
		return &models.Tag{}, nil
	}
	return nil, fmt.Errorf("collection %q is not voteable", collection)
}

func jsonColumn(m models.JSONMap) (any, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// ApplyScores 单条 UPDATE 覆盖所有分数字段
func (s *Store) ApplyScores(ctx context.Context, collection models.CollectionName, id string, scores models.Scores) error {
	model, err := tableFor(collection)
	if err != nil {
		return err
	}
	extended, err := jsonColumn(scores.ExtendedScore)
	if err != nil {
		return fmt.Errorf("encode extended score: %w", err)
	}
	afExtended, err := jsonColumn(scores.AFExtendedScore)
	if err != nil {
		return fmt.Errorf("encode af extended score: %w", err)
	}

	res := s.db.WithContext(ctx).Model(model).Where("id = ?", id).UpdateColumns(map[string]any{
		"base_score":        scores.BaseScore,
		"af_base_score":     scores.AFBaseScore,
		"score":             scores.Score,
		"vote_count":        scores.VoteCount,
		"af_vote_count":     scores.AFVoteCount,
		"extended_score":    extended,
		"af_extended_score": afExtended,
		"inactive":          scores.Inactive,
	})
	if res.Error != nil {
		return fmt.Errorf("apply scores to %s %s: %w", collection, id, res.Error)
	}
	return nil
}

func (s *Store) CountComments(ctx context.Context, postID string) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Comment{}).Where("post_id = ?", postID).Count(&count).Error
	return int(count), err
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetUsers(ctx context.Context, ids []string) (map[string]*models.User, error) {
	out := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out, nil
}

func (s *Store) CreateModeratorAction(ctx context.Context, action *models.ModeratorAction) error {
	return s.db.WithContext(ctx).Create(action).Error
}

func (s *Store) LatestModeratorAction(ctx context.Context, userID string, actionType models.ModeratorActionType) (*models.ModeratorAction, error) {
	var a models.ModeratorAction
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND type = ?", userID, actionType).
		Order("created_at DESC").
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
