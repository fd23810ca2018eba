package usecase

import "errors"

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInternal        = errors.New("internal error")
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidFilter   = errors.New("invalid filter")
	ErrMatchNotFound   = errors.New("match not found")
)
