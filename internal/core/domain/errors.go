package domain

import "errors"

var (
	ErrUserExists        = errors.New("user already registered")
	ErrUserNotFound      = errors.New("user not found")
	ErrBadCredentials    = errors.New("incorrect password")
	ErrCategoryExists    = errors.New("category already exists")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrSweetNotFound     = errors.New("sweet not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrDuplicateRequest  = errors.New("duplicate request")
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token expired")
	ErrForbidden         = errors.New("not authorized")
)

// ValidationError reports malformed or out-of-range input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Invalid(msg string) error { return &ValidationError{Msg: msg} }
