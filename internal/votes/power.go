package votes

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"forumvote/internal/models"
)

// PowerTier karma 达到 MinKarma 时强投票的权重
type PowerTier struct {
	MinKarma float64
	Power    float64
}

// Weights 投票权重在投票时计算并写入流水
type Weights struct {
	Small float64
	Big   []PowerTier // 按 MinKarma 升序
}

func DefaultWeights() Weights {
	return Weights{
		Small: 1,
		Big: []PowerTier{
			{0, 2}, {1000, 3}, {2500, 4}, {5000, 5}, {10000, 6},
			{25000, 7}, {50000, 8}, {75000, 9}, {100000, 10},
		},
	}
}

// ParseTiers 解析 "0:2,1000:3" 形式的配置
func ParseTiers(s string) ([]PowerTier, error) {
	var tiers []PowerTier
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, p, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("invalid power tier %q", part)
		}
		karma, err := strconv.ParseFloat(strings.TrimSpace(k), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid karma in tier %q: %w", part, err)
		}
		power, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid power in tier %q: %w", part, err)
		}
		tiers = append(tiers, PowerTier{MinKarma: karma, Power: power})
	}
	if len(tiers) == 0 {
		return nil, fmt.Errorf("no power tiers in %q", s)
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].MinKarma < tiers[j].MinKarma })
	return tiers, nil
}

func (w Weights) bigPower(karma float64) float64 {
	power := w.Small
	for _, t := range w.Big {
		if karma >= t.MinKarma {
			power = t.Power
		}
	}
	return power
}

func (w Weights) power(karma float64, voteType models.VoteType) float64 {
	switch voteType {
	case models.VoteSmallUpvote:
		return w.Small
	case models.VoteSmallDownvote:
		return -w.Small
	case models.VoteBigUpvote:
		return w.bigPower(karma)
	case models.VoteBigDownvote:
		return -w.bigPower(karma)
	}
	return 0
}

// Power 普通分数权重
func (w Weights) Power(user *models.User, voteType models.VoteType) float64 {
	if user == nil {
		return 0
	}
	return w.power(user.Karma, voteType)
}

// AFPower 只有 alignment 投票者才有非零的 AF 权重
func (w Weights) AFPower(user *models.User, voteType models.VoteType) float64 {
	if !CanVoteAlignment(user) {
		return 0
	}
	return w.power(user.AFKarma, voteType)
}
