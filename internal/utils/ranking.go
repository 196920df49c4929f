package utils

import (
	"math"
	"time"
)

// DefaultGravity 时间重力
const DefaultGravity = 1.15

// TimeDecayScore 随时间衰减的排序分数：baseScore / (小时数 + 2)^gravity。
// 对 baseScore 单调递增，对内容年龄单调递减（baseScore > 0 时）。
func TimeDecayScore(baseScore float64, postedAt, now time.Time, gravity float64) float64 {
	hours := now.Sub(postedAt).Hours()
	if hours < 0 || postedAt.IsZero() {
		hours = 0
	}

	// 时间衰减 (分母)
	decay := math.Pow(hours+2, gravity)

	return baseScore / decay
}
