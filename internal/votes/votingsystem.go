package votes

import (
	"fmt"

	"forumvote/internal/models"
)

// VotingSystem 按内容类型可插拔的计分策略
type VotingSystem interface {
	Name() string
	SupportsExtendedVotes() bool
	// IsAllowedExtendedVote 不允许时返回原因
	IsAllowedExtendedVote(user *models.User, doc *models.Document, previous models.JSONMap, proposed models.JSONMap) (bool, string)
	// IsNonblankExtendedVote 该投票是否在扩展维度上有效
	IsNonblankExtendedVote(vote *models.Vote) bool
	ComputeExtendedScore(votes []models.Vote) (models.JSONMap, error)
}

// Registry 集合 -> 投票系统
type Registry struct {
	fallback VotingSystem
	systems  map[models.CollectionName]VotingSystem
}

func NewRegistry(fallback VotingSystem) *Registry {
	if fallback == nil {
		fallback = DefaultVotingSystem{}
	}
	return &Registry{
		fallback: fallback,
		systems:  make(map[models.CollectionName]VotingSystem),
	}
}

// Register 应在启动时完成，运行期只读
func (r *Registry) Register(collection models.CollectionName, system VotingSystem) *Registry {
	r.systems[collection] = system
	return r
}

func (r *Registry) For(collection models.CollectionName) VotingSystem {
	if s, ok := r.systems[collection]; ok {
		return s
	}
	return r.fallback
}

// DefaultVotingSystem 只有主投票维度
type DefaultVotingSystem struct{}

func (DefaultVotingSystem) Name() string                { return "default" }
func (DefaultVotingSystem) SupportsExtendedVotes() bool { return false }

func (DefaultVotingSystem) IsAllowedExtendedVote(*models.User, *models.Document, models.JSONMap, models.JSONMap) (bool, string) {
	return false, "This content does not support extended votes"
}

func (DefaultVotingSystem) IsNonblankExtendedVote(*models.Vote) bool { return false }

func (DefaultVotingSystem) ComputeExtendedScore([]models.Vote) (models.JSONMap, error) {
	return nil, nil
}

const agreementAxis = "agreement"

// TwoAxisVotingSystem 在主维度之外增加一个"同意/不同意"维度。
// 扩展投票形如 {"agreement": "smallUpvote"}。
type TwoAxisVotingSystem struct {
	Weights Weights
}

func (TwoAxisVotingSystem) Name() string                { return "twoAxis" }
func (TwoAxisVotingSystem) SupportsExtendedVotes() bool { return true }

func (s TwoAxisVotingSystem) IsAllowedExtendedVote(user *models.User, _ *models.Document, _ models.JSONMap, proposed models.JSONMap) (bool, string) {
	for axis, value := range proposed {
		if axis != agreementAxis {
			return false, fmt.Sprintf("Unknown vote axis: %s", axis)
		}
		str, ok := value.(string)
		if !ok || !models.VoteType(str).Valid() {
			return false, fmt.Sprintf("Invalid agreement vote: %v", value)
		}
		if models.VoteType(str).IsStrong() && (user == nil || user.Karma < 0) {
			return false, "Strong agreement votes require non-negative karma"
		}
	}
	return true, ""
}

func agreementOf(vote *models.Vote) models.VoteType {
	if vote.ExtendedVoteType == nil {
		return models.VoteNeutral
	}
	str, _ := vote.ExtendedVoteType[agreementAxis].(string)
	if str == "" {
		return models.VoteNeutral
	}
	return models.VoteType(str)
}

func (TwoAxisVotingSystem) IsNonblankExtendedVote(vote *models.Vote) bool {
	return agreementOf(vote) != models.VoteNeutral
}

func (s TwoAxisVotingSystem) ComputeExtendedScore(votes []models.Vote) (models.JSONMap, error) {
	var agreement float64
	count := 0
	for i := range votes {
		t := agreementOf(&votes[i])
		if t == models.VoteNeutral {
			continue
		}
		if !t.Valid() {
			return nil, fmt.Errorf("vote %s: invalid agreement type %q", votes[i].ID, t)
		}
		// 同意维度不按 karma 分档，强投票固定为小投票的两倍
		p := s.Weights.Small
		if t.IsStrong() {
			p *= 2
		}
		if t.IsDownvote() {
			p = -p
		}
		agreement += p
		count++
	}
	return models.JSONMap{
		"agreement":          agreement,
		"agreementVoteCount": count,
	}, nil
}
