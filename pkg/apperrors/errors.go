package apperrors

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidPlaylistURL = errors.New("invalid playlist URL")
	ErrNoVideosFound      = errors.New("no videos found in playlist")
	ErrEmptySheet         = errors.New("sheet has no problems")
)
