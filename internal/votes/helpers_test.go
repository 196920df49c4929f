package votes

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"forumvote/internal/db/memstore"
	"forumvote/internal/models"
)

// fakeClock 每次读取自动前进 1ms，保证 votedAt 严格递增
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type syncDispatcher struct{}

func (syncDispatcher) Dispatch(_ string, fn func(ctx context.Context) error) {
	_ = fn(context.Background())
}

type recordingCallbacks struct {
	mu        sync.Mutex
	cast      []VoteEvent
	cancelled []VoteEvent
	err       error
}

func (r *recordingCallbacks) OnCastVoteAsync(_ context.Context, ev VoteEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cast = append(r.cast, ev)
	return r.err
}

func (r *recordingCallbacks) OnVoteCancel(_ context.Context, ev VoteEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelled = append(r.cancelled, ev)
	return r.err
}

type fakeIndexer struct {
	mu     sync.Mutex
	synced []string
	err    error
}

func (f *fakeIndexer) Sync(_ context.Context, collection models.CollectionName, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.synced = append(f.synced, string(collection)+":"+id)
	return f.err
}

type fakeCache struct {
	mu          sync.Mutex
	invalidated []string
}

func (f *fakeCache) InvalidatePost(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, id)
}

type fixture struct {
	store     *memstore.Store
	clock     *fakeClock
	callbacks *recordingCallbacks
	indexer   *fakeIndexer
	cache     *fakeCache
	svc       *Service
}

type fixtureOption func(*Options)

func withRules(rules ...Rule) fixtureOption {
	return func(o *Options) {
		o.Rules = func(u *models.User) []Rule {
			if u != nil && u.IsAdmin {
				return nil
			}
			return rules
		}
	}
}

func withSystems(r *Registry) fixtureOption {
	return func(o *Options) { o.Systems = r }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	f := &fixture{
		store:     memstore.New(),
		clock:     newFakeClock(),
		callbacks: &recordingCallbacks{},
		indexer:   &fakeIndexer{},
		cache:     &fakeCache{},
	}
	o := Options{
		Weights:    DefaultWeights(),
		Gravity:    1.15,
		Rules:      func(*models.User) []Rule { return nil },
		Dispatcher: syncDispatcher{},
		Indexer:    f.indexer,
		Cache:      f.cache,
		Callbacks:  []Callbacks{f.callbacks},
		Metrics:    NewMetrics(prometheus.NewRegistry()),
		Logger:     zerolog.Nop(),
		Now:        f.clock.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	f.svc = New(f.store, o)
	return f
}

func (f *fixture) user(id string, mutate ...func(*models.User)) *models.User {
	u := &models.User{ID: id, Username: id, Karma: 10}
	for _, m := range mutate {
		m(u)
	}
	f.store.PutUser(u)
	return u
}

func (f *fixture) post(id, authorID string) *models.Document {
	d := &models.Document{
		ID:         id,
		Collection: models.CollectionPosts,
		UserID:     authorID,
		AuthorIDs:  []string{authorID},
		PostedAt:   f.clock.Now(),
	}
	f.store.PutDocument(d)
	return d
}

func (f *fixture) comment(id, postID, authorID string) *models.Document {
	d := &models.Document{
		ID:         id,
		Collection: models.CollectionComments,
		UserID:     authorID,
		AuthorIDs:  []string{authorID},
		PostID:     postID,
		PostedAt:   f.clock.Now(),
	}
	f.store.PutDocument(d)
	return d
}

func (f *fixture) vote(t *testing.T, doc *models.Document, user *models.User, voteType models.VoteType, toggle bool) (*PerformVoteResult, error) {
	t.Helper()
	return f.svc.PerformVote(context.Background(), PerformVoteInput{
		DocumentID: doc.ID,
		Collection: doc.Collection,
		VoteType:   voteType,
		User:       user,
		Toggle:     toggle,
	})
}

func (f *fixture) activeVotes(t *testing.T, docID, userID string) []models.Vote {
	t.Helper()
	votes, err := f.store.FindActiveVotesByUser(context.Background(), docID, userID)
	if err != nil {
		t.Fatalf("find active votes: %v", err)
	}
	return votes
}

func (f *fixture) document(t *testing.T, doc *models.Document) *models.Document {
	t.Helper()
	d, err := f.store.GetDocument(context.Background(), doc.Collection, doc.ID)
	if err != nil || d == nil {
		t.Fatalf("get document %s: %v", doc.ID, err)
	}
	return d
}
