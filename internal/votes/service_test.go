package votes

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forumvote/internal/models"
)

func sumPower(votes []models.Vote) float64 {
	var total float64
	for _, v := range votes {
		total += v.Power
	}
	return total
}

func TestPerformVote_SmallUpvote(t *testing.T) {
	f := newFixture(t)
	author := f.user("x")
	voter := f.user("u")
	doc := f.post("p1", author.ID)

	res, err := f.vote(t, doc, voter, models.VoteSmallUpvote, false)
	require.NoError(t, err)

	active := f.activeVotes(t, doc.ID, voter.ID)
	require.Len(t, active, 1)
	assert.Equal(t, 1.0, active[0].Power)
	assert.Equal(t, []string{"x"}, active[0].AuthorIDs)

	assert.Equal(t, 1.0, res.Document.BaseScore)
	assert.Equal(t, 1, res.Document.VoteCount)
	assert.Equal(t, "Post", res.Document.TypeName)
	assert.False(t, res.ShowVotingPatternWarning)

	stored := f.document(t, doc)
	assert.Equal(t, 1.0, stored.BaseScore)
	assert.Equal(t, 1, stored.VoteCount)
	assert.Greater(t, stored.Score, 0.0)
}

func TestPerformVote_ToggleSameTypeCancels(t *testing.T) {
	f := newFixture(t)
	voter := f.user("u")
	doc := f.post("p1", f.user("x").ID)

	_, err := f.vote(t, doc, voter, models.VoteSmallUpvote, true)
	require.NoError(t, err)
	res, err := f.vote(t, doc, voter, models.VoteSmallUpvote, true)
	require.NoError(t, err)

	assert.Empty(t, f.activeVotes(t, doc.ID, voter.ID))
	assert.Equal(t, 0.0, res.Document.BaseScore)
	assert.Equal(t, 0, res.Document.VoteCount)

	require.Len(t, f.callbacks.cancelled, 1)
	assert.Equal(t, -1.0, f.callbacks.cancelled[0].Vote.Power)
	assert.True(t, f.callbacks.cancelled[0].Vote.IsUnvote)
}

func TestPerformVote_SameTypeWithoutToggleKeepsOneVote(t *testing.T) {
	f := newFixture(t)
	voter := f.user("u")
	doc := f.post("p1", f.user("x").ID)

	_, err := f.vote(t, doc, voter, models.VoteSmallUpvote, false)
	require.NoError(t, err)
	res, err := f.vote(t, doc, voter, models.VoteSmallUpvote, false)
	require.NoError(t, err)

	assert.Len(t, f.activeVotes(t, doc.ID, voter.ID), 1)
	assert.Equal(t, 1.0, res.Document.BaseScore)
}

func TestPerformVote_ChangeTypeReplacesVote(t *testing.T) {
	f := newFixture(t)
	voter := f.user("u")
	doc := f.post("p1", f.user("x").ID)

	_, err := f.vote(t, doc, voter, models.VoteSmallUpvote, true)
	require.NoError(t, err)
	res, err := f.vote(t, doc, voter, models.VoteBigUpvote, true)
	require.NoError(t, err)

	active := f.activeVotes(t, doc.ID, voter.ID)
	require.Len(t, active, 1)
	assert.Equal(t, models.VoteBigUpvote, active[0].VoteType)
	assert.Equal(t, 2.0, active[0].Power)
	assert.Equal(t, 2.0, res.Document.BaseScore)
	assert.Equal(t, 1, res.Document.VoteCount)

	var original, unvote *models.Vote
	all := f.store.Votes()
	for i := range all {
		v := &all[i]
		switch {
		case v.VoteType == models.VoteSmallUpvote && !v.IsUnvote:
			original = v
		case v.IsUnvote:
			unvote = v
		}
	}
	require.NotNil(t, original, "cancelled vote must be kept")
	require.NotNil(t, unvote)
	assert.True(t, original.Cancelled)
	assert.True(t, unvote.Cancelled)
	assert.Equal(t, -1.0, unvote.Power)
	assert.Equal(t, models.VoteSmallUpvote, unvote.VoteType)
	assert.True(t, unvote.VotedAt.After(original.VotedAt))
	assert.Len(t, all, 3)
}

func TestPerformVote_RevisionOfPostRejected(t *testing.T) {
	f := newFixture(t)
	voter := f.user("u")
	rev := &models.Document{
		ID:              "r1",
		Collection:      models.CollectionRevisions,
		UserID:          "x",
		OwnerCollection: models.CollectionPosts,
	}
	f.store.PutDocument(rev)

	_, err := f.vote(t, rev, voter, models.VoteSmallUpvote, false)
	require.ErrorIs(t, err, ErrUnsupportedTarget)
	assert.Empty(t, f.store.Votes())

	tagRev := &models.Document{
		ID:              "r2",
		Collection:      models.CollectionRevisions,
		UserID:          "x",
		OwnerCollection: models.CollectionTags,
	}
	f.store.PutDocument(tagRev)
	res, err := f.vote(t, tagRev, voter, models.VoteSmallUpvote, false)
	require.NoError(t, err)
	assert.Equal(t, "Revision", res.Document.TypeName)
	assert.Empty(t, f.indexer.synced, "revisions are not indexed")
}

func TestPerformVote_Validation(t *testing.T) {
	f := newFixture(t)
	doc := f.post("p1", f.user("x").ID)
	voter := f.user("u")
	banned := f.clock.Now().Add(time.Hour)

	tests := []struct {
		name    string
		in      PerformVoteInput
		wantErr error
	}{
		{
			name:    "not logged in",
			in:      PerformVoteInput{DocumentID: doc.ID, Collection: doc.Collection, VoteType: models.VoteSmallUpvote},
			wantErr: ErrNotLoggedIn,
		},
		{
			name:    "missing document",
			in:      PerformVoteInput{DocumentID: "nope", Collection: models.CollectionPosts, VoteType: models.VoteSmallUpvote, User: voter},
			wantErr: ErrNotFound,
		},
		{
			name:    "invalid vote type",
			in:      PerformVoteInput{DocumentID: doc.ID, Collection: doc.Collection, VoteType: "hugeUpvote", User: voter},
			wantErr: ErrInvalidVoteType,
		},
		{
			name:    "voting disabled",
			in:      PerformVoteInput{DocumentID: doc.ID, Collection: doc.Collection, VoteType: models.VoteSmallUpvote, User: f.user("d", func(u *models.User) { u.VotingDisabled = true })},
			wantErr: ErrVotingDisabled,
		},
		{
			name:    "banned",
			in:      PerformVoteInput{DocumentID: doc.ID, Collection: doc.Collection, VoteType: models.VoteSmallUpvote, User: f.user("b", func(u *models.User) { u.BannedUntil = &banned })},
			wantErr: ErrVotingDisabled,
		},
		{
			name: "collection without vote permission",
			in: PerformVoteInput{
				Document: &models.Document{ID: "s1", Collection: "Sequences", UserID: "x"},
				VoteType: models.VoteSmallUpvote,
				User:     voter,
			},
			wantErr: ErrPermissionDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.PerformVote(context.Background(), tt.in)
			require.ErrorIs(t, err, tt.wantErr)

			var verr *Error
			require.True(t, errors.As(err, &verr))
			assert.NotEmpty(t, verr.Error())
		})
	}
	assert.Empty(t, f.store.Votes())
}

func TestPerformVote_DebateResponse(t *testing.T) {
	f := newFixture(t)
	postAuthor := f.user("a")
	f.post("p1", postAuthor.ID)
	reply := f.comment("c1", "p1", "b")
	reply.DebateResponse = true
	f.store.PutDocument(reply)

	_, err := f.vote(t, reply, f.user("c"), models.VoteSmallUpvote, false)
	require.ErrorIs(t, err, ErrDebateResponse)

	_, err = f.vote(t, reply, postAuthor, models.VoteSmallUpvote, false)
	require.NoError(t, err)
}

func TestPerformVote_SelfVoteIgnoresLimits(t *testing.T) {
	f := newFixture(t, withRules(Rule{
		VoteCount:    1,
		Consequences: []Consequence{DenyThisVote},
		Message:      "no votes at all",
	}))
	author := f.user("x", func(u *models.User) { u.VotingDisabled = true })
	doc := f.post("p1", author.ID)

	updated, err := f.svc.CastSelfVote(context.Background(), doc, author)
	require.NoError(t, err)
	assert.Equal(t, 0.0, updated.BaseScore)
	assert.Equal(t, 0, updated.VoteCount, "zero-power self vote has no effect")

	active := f.activeVotes(t, doc.ID, author.ID)
	require.Len(t, active, 1)
	assert.Equal(t, 0.0, active[0].Power)
	assert.Equal(t, 0.0, active[0].AFPower)

	// 作者在自己内容上的普通投票同样不受限流，也不受禁投状态影响
	_, err = f.vote(t, doc, author, models.VoteBigUpvote, false)
	require.NoError(t, err)
	active = f.activeVotes(t, doc.ID, author.ID)
	require.Len(t, active, 1)
	assert.Equal(t, models.VoteBigUpvote, active[0].VoteType)

	_, err = f.vote(t, f.post("p2", "y"), author, models.VoteSmallUpvote, false)
	require.ErrorIs(t, err, ErrVotingDisabled, "disabled voter is still rejected elsewhere")

	_, err = f.vote(t, doc, f.user("u"), models.VoteSmallUpvote, false)
	require.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, "no votes at all", err.Error())
}

func TestPerformVote_ThresholdBoundary(t *testing.T) {
	f := newFixture(t, withRules(Rule{
		VoteCount:    10,
		Period:       3 * time.Minute,
		Consequences: []Consequence{DenyThisVote},
		Message:      "slow down",
	}))
	voter := f.user("u")

	for i := 1; i <= 9; i++ {
		doc := f.post(fmt.Sprintf("p%d", i), fmt.Sprintf("author%d", i))
		_, err := f.vote(t, doc, voter, models.VoteSmallUpvote, false)
		require.NoError(t, err, "vote %d", i)
		f.clock.Advance(5 * time.Second)
	}

	tenth := f.post("p10", "author10")
	_, err := f.vote(t, tenth, voter, models.VoteSmallUpvote, false)
	require.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, "slow down", err.Error())
	assert.Empty(t, f.activeVotes(t, tenth.ID, voter.ID), "denied vote must not be written")
	assert.Len(t, f.store.Votes(), 9)

	f.clock.Advance(3 * time.Minute)
	_, err = f.vote(t, tenth, voter, models.VoteSmallUpvote, false)
	require.NoError(t, err)
}

func TestPerformVote_RepeatedVotesOnOneDocumentCountOnce(t *testing.T) {
	f := newFixture(t)
	f.svc.rules = RulesFor
	voter := f.user("u")
	doc := f.post("p1", "x")

	for i := 0; i < 5; i++ {
		_, err := f.vote(t, doc, voter, models.VoteSmallDownvote, true)
		require.NoError(t, err, "cast %d", i)
		_, err = f.vote(t, doc, voter, models.VoteSmallDownvote, true)
		require.NoError(t, err, "toggle off %d", i)
	}
	_, err := f.vote(t, doc, voter, models.VoteSmallDownvote, true)
	require.NoError(t, err)

	require.Len(t, f.activeVotes(t, doc.ID, voter.ID), 1)
	assert.Empty(t, f.store.ModeratorActions(), "toggling one downvote is not targeted downvoting")
}

func TestPerformVote_ChangeTypeCountsOnce(t *testing.T) {
	f := newFixture(t, withRules(Rule{
		VoteCount:    2,
		Period:       time.Hour,
		Consequences: []Consequence{DenyThisVote},
		Message:      "slow down",
	}))
	voter := f.user("u")
	doc := f.post("p1", "x")

	_, err := f.vote(t, doc, voter, models.VoteSmallUpvote, false)
	require.NoError(t, err)
	_, err = f.vote(t, doc, voter, models.VoteBigUpvote, false)
	require.NoError(t, err, "replacing a vote is not a second vote")

	active := f.activeVotes(t, doc.ID, voter.ID)
	require.Len(t, active, 1)
	assert.Equal(t, models.VoteBigUpvote, active[0].VoteType)

	_, err = f.vote(t, f.post("p2", "y"), voter, models.VoteSmallUpvote, false)
	require.ErrorIs(t, err, ErrRateLimited)
}

func TestPerformVote_AdminExemptFromDefaultRules(t *testing.T) {
	f := newFixture(t)
	f.svc.rules = RulesFor
	admin := f.user("admin", func(u *models.User) { u.IsAdmin = true })

	for i := 0; i < 40; i++ {
		doc := f.post(fmt.Sprintf("p%d", i), "x")
		_, err := f.vote(t, doc, admin, models.VoteBigDownvote, false)
		require.NoError(t, err)
	}
	assert.Empty(t, f.store.ModeratorActions())
}

func TestPerformVote_WarningSuppression(t *testing.T) {
	f := newFixture(t, withRules(Rule{
		VoteCount:    10,
		Period:       3 * time.Minute,
		Users:        UsersSingleUser,
		Consequences: []Consequence{WarningPopup},
	}))
	voter := f.user("u")
	n := 0
	cast := func() bool {
		n++
		doc := f.post(fmt.Sprintf("p%d", n), "x")
		res, err := f.vote(t, doc, voter, models.VoteSmallUpvote, false)
		require.NoError(t, err)
		f.clock.Advance(10 * time.Second)
		return res.ShowVotingPatternWarning
	}

	for i := 1; i <= 9; i++ {
		assert.False(t, cast(), "vote %d", i)
	}
	assert.True(t, cast(), "10th vote warns")
	assert.False(t, cast(), "11th vote inside the cooldown stays quiet")
	require.Len(t, f.store.ModeratorActions(), 1)

	f.clock.Advance(61 * time.Minute)
	for i := 1; i <= 9; i++ {
		assert.False(t, cast(), "vote %d after cooldown", i)
	}
	assert.True(t, cast(), "warning returns once the cooldown has elapsed")

	actions := f.store.ModeratorActions()
	require.Len(t, actions, 2)
	for _, a := range actions {
		assert.Equal(t, models.ModeratorActionWarningIssued, a.Type)
		assert.Equal(t, voter.ID, a.UserID)
	}
}

func TestPerformVote_FlagForModeration(t *testing.T) {
	f := newFixture(t, withRules(Rule{
		VoteCount:    3,
		Period:       24 * time.Hour,
		Types:        TypesOnlyDownvotes,
		Users:        UsersSingleUser,
		Consequences: []Consequence{FlagForModeration},
	}))
	voter := f.user("u")

	for i := 1; i <= 3; i++ {
		doc := f.post(fmt.Sprintf("p%d", i), "x")
		res, err := f.vote(t, doc, voter, models.VoteSmallDownvote, false)
		require.NoError(t, err)
		assert.False(t, res.ShowVotingPatternWarning)
	}

	actions := f.store.ModeratorActions()
	require.Len(t, actions, 1)
	assert.Equal(t, models.ModeratorActionTargetedDownvoting, actions[0].Type)
	assert.Len(t, f.store.Votes(), 3, "flagged vote is still recorded")
}

func TestPerformVote_DenyTakesPrecedence(t *testing.T) {
	f := newFixture(t, withRules(
		Rule{VoteCount: 2, Period: time.Hour, Consequences: []Consequence{WarningPopup}, Message: "warn"},
		Rule{VoteCount: 2, Period: time.Hour, Consequences: []Consequence{DenyThisVote}, Message: "deny"},
	))
	voter := f.user("u")

	_, err := f.vote(t, f.post("p1", "x"), voter, models.VoteSmallUpvote, false)
	require.NoError(t, err)
	_, err = f.vote(t, f.post("p2", "y"), voter, models.VoteSmallUpvote, false)
	require.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, "warn", err.Error(), "message comes from the first exceeded rule")
	assert.Empty(t, f.store.ModeratorActions(), "deny short-circuits the warning")
}

func TestPerformVote_ToggleOffIsNotRateLimited(t *testing.T) {
	f := newFixture(t, withRules(Rule{VoteCount: 2, Period: time.Hour, Consequences: []Consequence{DenyThisVote}}))
	voter := f.user("u")
	doc := f.post("p1", "x")

	_, err := f.vote(t, doc, voter, models.VoteSmallUpvote, true)
	require.NoError(t, err)
	_, err = f.vote(t, doc, voter, models.VoteSmallUpvote, true)
	require.NoError(t, err)
	assert.Empty(t, f.activeVotes(t, doc.ID, voter.ID))
}

func TestPerformVote_AlignmentScores(t *testing.T) {
	f := newFixture(t)
	doc := f.post("p1", "x")
	doc.AF = true
	f.store.PutDocument(doc)

	afVoter := f.user("af", func(u *models.User) {
		u.Groups = []string{models.GroupAlignmentVoters}
		u.AFKarma = 2000
	})
	plain := f.user("u")

	_, err := f.vote(t, doc, afVoter, models.VoteBigUpvote, false)
	require.NoError(t, err)
	res, err := f.vote(t, doc, plain, models.VoteSmallUpvote, false)
	require.NoError(t, err)

	assert.Equal(t, 3.0, res.Document.BaseScore)
	assert.Equal(t, 2, res.Document.VoteCount)
	assert.Equal(t, 3.0, res.Document.AFBaseScore, "AF power follows AF karma tiers")
	assert.Equal(t, 1, res.Document.AFVoteCount)

	active := f.activeVotes(t, doc.ID, plain.ID)
	require.Len(t, active, 1)
	assert.Equal(t, 0.0, active[0].AFPower)
	assert.True(t, active[0].DocumentIsAF)
}

func TestPerformVote_ExtendedVotes(t *testing.T) {
	registry := NewRegistry(nil).Register(models.CollectionComments, TwoAxisVotingSystem{Weights: DefaultWeights()})
	f := newFixture(t, withSystems(registry))
	f.post("p1", "x")
	comment := f.comment("c1", "p1", "x")
	voter := f.user("u")

	res, err := f.svc.PerformVote(context.Background(), PerformVoteInput{
		DocumentID:   comment.ID,
		Collection:   comment.Collection,
		VoteType:     models.VoteNeutral,
		ExtendedVote: models.JSONMap{"agreement": "smallUpvote"},
		User:         voter,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Document.BaseScore)
	assert.Equal(t, 1, res.Document.VoteCount, "non-blank agreement vote counts")
	assert.Equal(t, 1.0, res.Document.ExtendedScore["agreement"])
	assert.Equal(t, 1, res.Document.ExtendedScore["agreementVoteCount"])

	_, err = f.svc.PerformVote(context.Background(), PerformVoteInput{
		DocumentID:   comment.ID,
		Collection:   comment.Collection,
		VoteType:     models.VoteSmallUpvote,
		ExtendedVote: models.JSONMap{"agreement": "enthusiastic"},
		User:         voter,
	})
	require.ErrorIs(t, err, ErrExtendedVoteRejected)
	assert.Len(t, f.activeVotes(t, comment.ID, voter.ID), 1)
}

func TestPerformVote_ExtendedVoteDroppedWhenUnsupported(t *testing.T) {
	f := newFixture(t)
	doc := f.post("p1", "x")
	voter := f.user("u")

	_, err := f.svc.PerformVote(context.Background(), PerformVoteInput{
		Document:     doc,
		VoteType:     models.VoteSmallUpvote,
		ExtendedVote: models.JSONMap{"agreement": "smallUpvote"},
		User:         voter,
	})
	require.NoError(t, err)

	active := f.activeVotes(t, doc.ID, voter.ID)
	require.Len(t, active, 1)
	assert.Nil(t, active[0].ExtendedVoteType)
}

func TestPerformVote_SideEffects(t *testing.T) {
	f := newFixture(t)
	voter := f.user("u")
	post := f.post("p1", "x")
	comment := f.comment("c1", "p1", "x")

	_, err := f.vote(t, post, voter, models.VoteSmallUpvote, false)
	require.NoError(t, err)
	_, err = f.vote(t, comment, voter, models.VoteSmallUpvote, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"Posts:p1", "Comments:c1"}, f.indexer.synced)
	assert.Equal(t, []string{"p1"}, f.cache.invalidated, "only posts are cached")
	require.Len(t, f.callbacks.cast, 2)
	assert.Equal(t, "p1", f.callbacks.cast[0].Document.ID)
	assert.Equal(t, voter.ID, f.callbacks.cast[0].User.ID)
}

func TestPerformVote_SideEffectFailureDoesNotFailVote(t *testing.T) {
	f := newFixture(t)
	f.indexer.err = errors.New("search cluster down")
	f.callbacks.err = errors.New("karma store down")
	voter := f.user("u")
	doc := f.post("p1", "x")

	res, err := f.vote(t, doc, voter, models.VoteSmallUpvote, true)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Document.BaseScore)

	res, err = f.vote(t, doc, voter, models.VoteSmallUpvote, true)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Document.BaseScore)
}

func TestPerformVote_SequenceKeepsSingleActiveVote(t *testing.T) {
	f := newFixture(t)
	voter := f.user("u")
	other := f.user("o", func(u *models.User) { u.Karma = 5000 })
	doc := f.post("p1", "x")
	ctx := context.Background()

	_, err := f.vote(t, doc, other, models.VoteBigDownvote, false)
	require.NoError(t, err)

	steps := []struct {
		voteType models.VoteType
		toggle   bool
	}{
		{models.VoteSmallUpvote, true},
		{models.VoteSmallUpvote, true},
		{models.VoteBigUpvote, true},
		{models.VoteSmallDownvote, false},
		{models.VoteSmallDownvote, true},
		{models.VoteBigDownvote, true},
		{models.VoteBigDownvote, false},
		{models.VoteNeutral, true},
		{models.VoteSmallUpvote, false},
	}
	for i, step := range steps {
		res, err := f.vote(t, doc, voter, step.voteType, step.toggle)
		require.NoError(t, err, "step %d", i)

		active := f.activeVotes(t, doc.ID, voter.ID)
		assert.LessOrEqual(t, len(active), 1, "step %d", i)

		all, err := f.store.FindActiveVotes(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, sumPower(all), res.Document.BaseScore, "step %d", i)
		assert.Equal(t, sumPower(all), f.document(t, doc).BaseScore, "step %d", i)
	}

	first, err := f.svc.ComputeScores(ctx, f.document(t, doc))
	require.NoError(t, err)
	second, err := f.svc.ComputeScores(ctx, f.document(t, doc))
	require.NoError(t, err)
	assert.Equal(t, first.BaseScore, second.BaseScore)
	assert.Equal(t, first.VoteCount, second.VoteCount)
	assert.Equal(t, first.AFBaseScore, second.AFBaseScore)
}

func TestPerformVote_ConcurrentVotesConverge(t *testing.T) {
	f := newFixture(t)
	voter := f.user("u", func(u *models.User) { u.Karma = 1500 })
	doc := f.post("p1", "x")
	types := []models.VoteType{
		models.VoteSmallUpvote,
		models.VoteBigUpvote,
		models.VoteSmallDownvote,
		models.VoteBigDownvote,
	}

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(vt models.VoteType) {
			defer wg.Done()
			if _, err := f.vote(t, doc, voter, vt, false); err != nil {
				errs <- err
			}
		}(types[i%len(types)])
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	active := f.activeVotes(t, doc.ID, voter.ID)
	require.Len(t, active, 1)

	var latest models.Vote
	for _, v := range f.store.Votes() {
		if !v.IsUnvote && v.VotedAt.After(latest.VotedAt) {
			latest = v
		}
	}
	assert.Equal(t, latest.ID, active[0].ID, "the last inserted vote survives")

	scores, err := f.svc.ComputeScores(context.Background(), f.document(t, doc))
	require.NoError(t, err)
	assert.Equal(t, active[0].Power, scores.BaseScore)
	assert.Equal(t, 1, scores.VoteCount)
}

func TestNullifyVotes(t *testing.T) {
	f := newFixture(t)
	voter := f.user("u")
	moderator := f.user("mod", func(u *models.User) { u.Groups = []string{models.GroupSunshineRegiment} })
	p1 := f.post("p1", "x")
	p2 := f.post("p2", "y")

	_, err := f.vote(t, p1, voter, models.VoteSmallDownvote, false)
	require.NoError(t, err)
	_, err = f.vote(t, p2, voter, models.VoteBigDownvote, false)
	require.NoError(t, err)

	_, err = f.svc.NullifyVotes(context.Background(), f.user("nobody"), voter.ID)
	require.ErrorIs(t, err, ErrPermissionDenied)

	_, err = f.svc.NullifyVotes(context.Background(), moderator, "ghost")
	require.ErrorIs(t, err, ErrNotFound)

	n, err := f.svc.NullifyVotes(context.Background(), moderator, voter.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Empty(t, f.activeVotes(t, p1.ID, voter.ID))
	assert.Empty(t, f.activeVotes(t, p2.ID, voter.ID))
	assert.Equal(t, 0.0, f.document(t, p1).BaseScore)
	assert.Equal(t, 0.0, f.document(t, p2).BaseScore)

	unvotes := 0
	for _, v := range f.store.Votes() {
		if v.IsUnvote {
			unvotes++
			assert.True(t, v.SilenceNotification)
		}
	}
	assert.Equal(t, 2, unvotes)
	assert.Len(t, f.callbacks.cast, 2, "nullifying does not replay cast callbacks")
	assert.Len(t, f.callbacks.cancelled, 2)
}
