package domain

import "errors"

var (
	// Common domain errors
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrRemoteUnavailable = errors.New("remote backend unavailable")
	ErrInputLocked       = errors.New("input surface is locked")
	ErrConsentRequired   = errors.New("user consent has not been recorded")
)
