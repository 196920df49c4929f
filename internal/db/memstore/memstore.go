// Package memstore 内存版投票存储，用于测试和本地调试
package memstore

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"forumvote/internal/models"
)

type docKey struct {
	collection models.CollectionName
	id         string
}

type Store struct {
	mu      sync.Mutex
	votes   []*models.Vote
	docs    map[docKey]*models.Document
	users   map[string]*models.User
	actions []*models.ModeratorAction
}

func New() *Store {
	return &Store{
		docs:  make(map[docKey]*models.Document),
		users: make(map[string]*models.User),
	}
}

// PutDocument 写入或覆盖内容
func (s *Store) PutDocument(doc *models.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *doc
	s.docs[docKey{doc.Collection, doc.ID}] = &cp
}

func (s *Store) PutUser(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *user
	s.users[user.ID] = &cp
}

// Votes 全部流水记录（含已取消与 unvote），按写入顺序
func (s *Store) Votes() []models.Vote {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Vote, 0, len(s.votes))
	for _, v := range s.votes {
		out = append(out, cloneVote(v))
	}
	return out
}

func (s *Store) ModeratorActions() []models.ModeratorAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ModeratorAction, 0, len(s.actions))
	for _, a := range s.actions {
		out = append(out, *a)
	}
	return out
}

func (s *Store) InsertVote(_ context.Context, vote *models.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := cloneVote(vote)
	s.votes = append(s.votes, &cp)
	return nil
}

// cloneVote 复制切片和扩展投票，避免与调用方共享
func cloneVote(v *models.Vote) models.Vote {
	cp := *v
	cp.AuthorIDs = slices.Clone(v.AuthorIDs)
	cp.ExtendedVoteType = cloneJSON(v.ExtendedVoteType)
	return cp
}

func cloneJSON(m models.JSONMap) models.JSONMap {
	if m == nil {
		return nil
	}
	out := make(models.JSONMap, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return map[string]any(cloneJSON(t))
	case models.JSONMap:
		return cloneJSON(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	default:
		return v
	}
}

// filter 按 votedAt 升序（相同时按写入顺序）返回副本
func (s *Store) filter(keep func(v *models.Vote) bool) []models.Vote {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Vote
	for _, v := range s.votes {
		if keep(v) {
			out = append(out, cloneVote(v))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].VotedAt.Before(out[j].VotedAt) })
	return out
}

func (s *Store) FindActiveVote(_ context.Context, documentID, userID string) (*models.Vote, error) {
	votes := s.filter(func(v *models.Vote) bool {
		return !v.Cancelled && v.DocumentID == documentID && v.UserID == userID
	})
	if len(votes) == 0 {
		return nil, nil
	}
	return &votes[len(votes)-1], nil
}

func (s *Store) FindActiveVotes(_ context.Context, documentID string) ([]models.Vote, error) {
	return s.filter(func(v *models.Vote) bool {
		return !v.Cancelled && v.DocumentID == documentID
	}), nil
}

func (s *Store) FindActiveVotesByUser(_ context.Context, documentID, userID string) ([]models.Vote, error) {
	return s.filter(func(v *models.Vote) bool {
		return !v.Cancelled && v.DocumentID == documentID && v.UserID == userID
	}), nil
}

func (s *Store) FindActiveVotesCastBy(_ context.Context, userID string) ([]models.Vote, error) {
	return s.filter(func(v *models.Vote) bool {
		return !v.Cancelled && v.UserID == userID
	}), nil
}

func (s *Store) CancelAtomically(_ context.Context, voteID string) (*models.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.votes {
		if v.ID != voteID {
			continue
		}
		if v.Cancelled {
			return nil, nil
		}
		prev := cloneVote(v)
		v.Cancelled = true
		return &prev, nil
	}
	return nil, nil
}

func (s *Store) FindRecentByUser(_ context.Context, userID string, since time.Time, excludeSelfAuthored bool) ([]models.Vote, error) {
	return s.filter(func(v *models.Vote) bool {
		if v.UserID != userID || v.Cancelled || !v.VotedAt.After(since) {
			return false
		}
		return !excludeSelfAuthored || !v.HasAuthor(userID)
	}), nil
}

func (s *Store) FindRecentOnPost(_ context.Context, userID, postID, excludeDocumentID string) ([]models.Vote, error) {
	s.mu.Lock()
	comments := make(map[string]bool)
	for k, d := range s.docs {
		if k.collection == models.CollectionComments && d.PostID == postID {
			comments[k.id] = true
		}
	}
	s.mu.Unlock()

	return s.filter(func(v *models.Vote) bool {
		return v.UserID == userID && !v.Cancelled && v.DocumentID != excludeDocumentID && comments[v.DocumentID]
	}), nil
}

func (s *Store) GetDocument(_ context.Context, collection models.CollectionName, id string) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[docKey{collection, id}]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (s *Store) ApplyScores(_ context.Context, collection models.CollectionName, id string, scores models.Scores) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.docs[docKey{collection, id}]; ok {
		d.Scores = scores
	}
	return nil
}

func (s *Store) CountComments(_ context.Context, postID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, d := range s.docs {
		if k.collection == models.CollectionComments && d.PostID == postID {
			n++
		}
	}
	return n, nil
}

func (s *Store) GetUser(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUsers(_ context.Context, ids []string) (map[string]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*models.User, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			cp := *u
			out[id] = &cp
		}
	}
	return out, nil
}

func (s *Store) CreateModeratorAction(_ context.Context, action *models.ModeratorAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *action
	s.actions = append(s.actions, &cp)
	return nil
}

func (s *Store) LatestModeratorAction(_ context.Context, userID string, actionType models.ModeratorActionType) (*models.ModeratorAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *models.ModeratorAction
	for _, a := range s.actions {
		if a.UserID == userID && a.Type == actionType && (latest == nil || !a.CreatedAt.Before(latest.CreatedAt)) {
			latest = a
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}
