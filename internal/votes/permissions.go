package votes

import (
	"strings"
	"time"

	"forumvote/internal/models"
)

const actionVotesAlignment = "votes.alignment"

var voteTypesAll = []models.VoteType{
	models.VoteNeutral,
	models.VoteSmallUpvote,
	models.VoteSmallDownvote,
	models.VoteBigUpvote,
	models.VoteBigDownvote,
}

// 用户组 -> 允许的动作
var groupActions = map[string]map[string]bool{
	models.GroupGuests:          {},
	models.GroupMembers:         voteActions(models.CollectionPosts, models.CollectionComments, models.CollectionRevisions, models.CollectionTags),
	models.GroupAlignmentVoters: {actionVotesAlignment: true},
	models.GroupAlignmentForum:  {actionVotesAlignment: true},
	models.GroupAlignmentAdmins: {actionVotesAlignment: true},
}

func voteActions(collections ...models.CollectionName) map[string]bool {
	actions := make(map[string]bool)
	for _, c := range collections {
		for _, t := range voteTypesAll {
			actions[voteAction(c, t)] = true
		}
	}
	return actions
}

func voteAction(collection models.CollectionName, voteType models.VoteType) string {
	return strings.ToLower(string(collection)) + "." + string(voteType)
}

// UserCanDo 管理员可以做任何事
func UserCanDo(user *models.User, action string) bool {
	if user != nil && user.IsAdmin {
		return true
	}
	for group, actions := range groupActions {
		if actions[action] && user.InGroup(group) {
			return true
		}
	}
	return false
}

func CanVoteAlignment(user *models.User) bool {
	return user != nil && UserCanDo(user, actionVotesAlignment)
}

// CanCastVoteType 该用户能否对该集合投出该类型的票
func CanCastVoteType(user *models.User, collection models.CollectionName, voteType models.VoteType) bool {
	return UserCanDo(user, voteAction(collection, voteType))
}

// CanVote 账号状态层面的投票资格，不满足时返回原因
func CanVote(user *models.User, now time.Time) (bool, string) {
	if user == nil {
		return false, "You must be logged in to vote"
	}
	if user.VotingDisabled {
		return false, "Voting has been disabled for your account"
	}
	if user.BannedUntil != nil && user.BannedUntil.After(now) {
		return false, "You are currently banned"
	}
	return true, ""
}
