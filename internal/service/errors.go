package service

import "errors"

var (
	ErrMissingFields = errors.New("missing required fields")

	// 身份
	ErrEmailInUse         = errors.New("email already in use")
	ErrEmailUnverified    = errors.New("email already registered but not verified")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInvalidCode        = errors.New("invalid or expired code")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotVerified        = errors.New("email not verified")
	ErrUserNotFound       = errors.New("user not found")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")

	// 社区
	ErrCommunityNameRequired = errors.New("community name is required")
	ErrInvalidCommunityType  = errors.New("invalid community type")
	ErrCommunityNotFound     = errors.New("community not found")
	ErrInvalidJoinCode       = errors.New("invalid code")
	ErrJoinCodeRequired      = errors.New("code is required")
	ErrAlreadyJoined         = errors.New("already joined this community")
	ErrJoinCodeExhausted     = errors.New("could not allocate a unique join code")

	// 帖子
	ErrPostNotFound = errors.New("post not found")
	ErrNotAuthor    = errors.New("only the author can edit this post")
	ErrNoPermission = errors.New("not authorized to delete this post")
	ErrNotMember    = errors.New("not a member of this community")

	// 投票
	ErrMissingVoteTarget = errors.New("missing userId or postId")
	ErrInvalidVoteValue  = errors.New("invalid vote value")
	ErrVoteForbidden     = errors.New("cannot vote on behalf of another user")
	ErrVoteConflict      = errors.New("concurrent vote detected, please retry")

	// 图片
	ErrNoImage          = errors.New("no file uploaded")
	ErrUnsupportedImage = errors.New("only jpg/jpeg/png/webp/gif allowed")
	ErrImageTooLarge    = errors.New("file too large (max 5MB)")
)
