package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("forbidden")

	// Chat errors
	ErrThreadNotFound  = errors.New("thread not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrNotParticipant  = errors.New("sender is not a thread participant")
	ErrEmptyMessage    = errors.New("message requires text or an image")

	// Message request errors
	ErrRequestNotFound  = errors.New("message request not found")
	ErrRequestResolved  = errors.New("message request already resolved")
	ErrDuplicateRequest = errors.New("a pending request already exists")
	ErrMutualFollow     = errors.New("mutual followers can message directly")

	// Auth errors
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")

	// Transient backend errors (eligible for the retry helper)
	ErrUnavailable = errors.New("backend temporarily unavailable")
)
