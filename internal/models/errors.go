package models

import "errors"

var (
	ErrNoRecord          = errors.New("models: no matching record found")
	ErrValidation        = errors.New("models: invalid input")
	ErrInvalidTransition = errors.New("models: invalid status transition")
	ErrForbidden         = errors.New("models: forbidden")
	ErrAuthentication    = errors.New("models: authentication failed")
	ErrFeedbackRecorded  = errors.New("models: feedback already recorded")
	ErrSessionExpired    = errors.New("models: session expired")
)
