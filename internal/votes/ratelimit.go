package votes

import (
	"math"
	"time"

	"forumvote/internal/models"
)

type RuleScope int

const (
	ScopeAllDocuments RuleScope = iota
	ScopeSamePost               // 只统计同一帖子下评论上的投票
)

type RuleTypes int

const (
	TypesAll RuleTypes = iota
	TypesOnlyStrong
	TypesOnlyDownvotes
)

type RuleUsers int

const (
	UsersAll        RuleUsers = iota
	UsersSingleUser           // 只统计投给本内容作者的票
)

type Consequence string

const (
	DenyThisVote      Consequence = "denyThisVote"
	WarningPopup      Consequence = "warningPopup"
	FlagForModeration Consequence = "flagForModeration"
)

// Rule 一条限流规则，定义在代码里，不可变
type Rule struct {
	VoteCount int
	// CountFunc 非空时阈值由帖子评论数决定
	CountFunc    func(postCommentCount int) int
	Period       time.Duration // 0 表示不限时间窗口
	Scope        RuleScope
	Types        RuleTypes
	Users        RuleUsers
	Consequences []Consequence
	Message      string
}

func (r Rule) threshold(commentCount int) int {
	if r.CountFunc != nil {
		return r.CountFunc(commentCount)
	}
	return r.VoteCount
}

func (r Rule) matchesType(t models.VoteType) bool {
	switch r.Types {
	case TypesOnlyStrong:
		return t.IsStrong()
	case TypesOnlyDownvotes:
		return t.IsDownvote()
	}
	return t != models.VoteNeutral
}

// DownvotesOnPostThreshold 5 + 评论数的 5%
func DownvotesOnPostThreshold(commentCount int) int {
	return 5 + int(math.Round(0.05*float64(commentCount)))
}

const genericRateLimitMessage = "Voting rate limit exceeded"

// DefaultRules 规则声明顺序决定提示文案取自哪一条
var DefaultRules = []Rule{
	{
		VoteCount:    100,
		Period:       24 * time.Hour,
		Consequences: []Consequence{DenyThisVote},
		Message:      "Voting rate limit exceeded: too many votes today",
	},
	{
		VoteCount:    30,
		Period:       time.Hour,
		Consequences: []Consequence{DenyThisVote},
		Message:      "Voting rate limit exceeded: too many votes in one hour",
	},
	{
		VoteCount:    20,
		Period:       time.Hour,
		Types:        TypesOnlyStrong,
		Consequences: []Consequence{DenyThisVote},
		Message:      "Voting rate limit exceeded: too many strong votes in one hour",
	},
	{
		VoteCount:    10,
		Period:       3 * time.Minute,
		Users:        UsersSingleUser,
		Consequences: []Consequence{WarningPopup},
		Message:      "You've cast many votes on one user's content in a short time. Please vote on content, not on people.",
	},
	{
		VoteCount:    5,
		Period:       24 * time.Hour,
		Types:        TypesOnlyDownvotes,
		Users:        UsersSingleUser,
		Consequences: []Consequence{FlagForModeration},
	},
	{
		CountFunc:    DownvotesOnPostThreshold,
		Scope:        ScopeSamePost,
		Types:        TypesOnlyDownvotes,
		Consequences: []Consequence{WarningPopup},
		Message:      "You've downvoted many comments on this post.",
	},
}

// RulesFor 管理员不受限流
func RulesFor(user *models.User) []Rule {
	if user != nil && user.IsAdmin {
		return nil
	}
	return DefaultRules
}

// EvaluationInput 历史窗口由调用方预先拉取
type EvaluationInput struct {
	User     *models.User
	Document *models.Document
	VoteType models.VoteType
	Rules    []Rule
	// RecentVotes 最近一段时间内该用户的有效投票（不含自己内容上的）
	RecentVotes []models.Vote
	// PostVotes 该用户在同一帖子其他评论上的投票；HasPost 为 false 时未拉取
	PostVotes        []models.Vote
	HasPost          bool
	PostCommentCount int
	Now              time.Time
}

type Decision struct {
	Exempt       bool
	Exceeded     []int // 触发的规则下标
	Consequences map[Consequence]bool
	Message      string
}

func (d Decision) Has(c Consequence) bool {
	return d.Consequences[c]
}

// Evaluate 逐条检查全部规则（不短路），合并所有被触发规则的后果。
// 待投的这一票本身也计入计数，并代替该用户在同一内容上的旧票，
// 每个 (内容, 用户) 只计一次。
func Evaluate(in EvaluationInput) Decision {
	d := Decision{Consequences: make(map[Consequence]bool)}
	if in.User != nil && in.Document.IsAuthor(in.User.ID) {
		d.Exempt = true
		return d
	}

	for i, rule := range in.Rules {
		history := in.RecentVotes
		if rule.Scope == ScopeSamePost {
			if !in.HasPost {
				continue
			}
			history = in.PostVotes
		}

		var since time.Time
		if rule.Period > 0 {
			since = in.Now.Add(-rule.Period)
		}

		count := 0
		for j := range history {
			v := &history[j]
			if v.DocumentID == in.Document.ID {
				continue
			}
			if rule.Period > 0 && !v.VotedAt.After(since) {
				continue
			}
			if !rule.matchesType(v.VoteType) {
				continue
			}
			if rule.Users == UsersSingleUser && !v.HasAuthor(in.Document.UserID) {
				continue
			}
			count++
		}
		if rule.matchesType(in.VoteType) {
			count++
		}

		if count < rule.threshold(in.PostCommentCount) {
			continue
		}

		d.Exceeded = append(d.Exceeded, i)
		for _, c := range rule.Consequences {
			d.Consequences[c] = true
		}
		if len(d.Exceeded) == 1 {
			d.Message = rule.Message
		}
	}
	return d
}
