package moderation

import "errors"

var (
	ErrItemNotFound    = errors.New("moderation item not found")
	ErrAlreadyReviewed = errors.New("moderation item already reviewed")
	ErrInvalidAction   = errors.New("invalid moderation action")
	ErrSelfAction      = errors.New("admins cannot sanction their own content")
)
