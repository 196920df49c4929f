package votes

import (
	"errors"
)

var (
	// ErrNotLoggedIn 未登录
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrNotFound 目标内容不存在
	ErrNotFound = errors.New("document not found")
	// ErrInvalidVoteType 未知的投票类型
	ErrInvalidVoteType = errors.New("invalid vote type")
	// ErrVotingDisabled 账号被禁止投票
	ErrVotingDisabled = errors.New("voting disabled")
	// ErrPermissionDenied 无权投出该类型的票
	ErrPermissionDenied = errors.New("permission denied")
	// ErrUnsupportedTarget 不支持投票的内容（例如非 wiki 页面的版本）
	ErrUnsupportedTarget = errors.New("unsupported vote target")
	// ErrDebateResponse 辩论回复只允许辩论参与者投票
	ErrDebateResponse = errors.New("debate response restricted")
	// ErrRateLimited 触发限流规则
	ErrRateLimited = errors.New("rate limited")
	// ErrExtendedVoteRejected 投票系统拒绝了扩展投票
	ErrExtendedVoteRejected = errors.New("extended vote rejected")
)

// Error 面向用户的错误：Error() 返回可直接展示的文案，Unwrap() 返回错误类别。
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}
