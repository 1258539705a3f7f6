package biz

import (
	"errors"
)

var (
	ErrInvalidJWT       = errors.New("invalid jwt token")
	ErrInvalidPassword  = errors.New("invalid username or password")
	ErrUnauthenticated  = errors.New("authentication required")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("resource not found")
	ErrMethodNotAllowed = errors.New("action not allowed for this resource")
	ErrInternal         = errors.New("server internal error, please try again later")
)
