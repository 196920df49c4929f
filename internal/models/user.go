package models

import (
	"time"
)

// 用户组
const (
	GroupGuests           = "guests"
	GroupMembers          = "members"
	GroupAlignmentVoters  = "alignmentVoters"
	GroupAlignmentForum   = "alignmentForum"
	GroupAlignmentAdmins  = "alignmentForumAdmins"
	GroupSunshineRegiment = "sunshineRegiment" // 版主
)

type User struct {
	ID             string     `gorm:"primaryKey;size:36" json:"_id"`
	Username       string     `gorm:"not null" json:"username"`
	Karma          float64    `gorm:"not null;default:0" json:"karma"`
	AFKarma        float64    `gorm:"not null;default:0" json:"afKarma"`
	Groups         []string   `gorm:"type:text;serializer:json" json:"groups"`
	IsAdmin        bool       `gorm:"not null;default:false" json:"isAdmin"`
	VotingDisabled bool       `gorm:"not null;default:false" json:"votingDisabled"`
	BannedUntil    *time.Time `json:"banned,omitempty"` // 封禁到期时间
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// InGroup 用户是否在指定组内；登录用户默认属于 members
func (u *User) InGroup(group string) bool {
	if u == nil {
		return group == GroupGuests
	}
	if group == GroupMembers {
		return true
	}
	for _, g := range u.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// IsModerator 管理员或版主
func (u *User) IsModerator() bool {
	return u != nil && (u.IsAdmin || u.InGroup(GroupSunshineRegiment))
}
