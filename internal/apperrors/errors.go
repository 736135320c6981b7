package apperrors

import "errors"

var (
	ErrUserNotFound = errors.New("user not found")
	ErrMissingEmail = errors.New("missing user email")
	ErrMissingPhone = errors.New("missing user phone")
)
