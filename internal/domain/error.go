package domain

import "errors"

var (
	// Common domain errors
	ErrDetectionFailed    = errors.New("face detection failed")
	ErrSubmissionFailed   = errors.New("job submission failed")
	ErrChannelDown        = errors.New("notification channel unreachable")
	ErrRemoteJobFailed    = errors.New("remote job reported failure")
	ErrNoActiveJob        = errors.New("no active job")
	ErrAgeDeltaOutOfRange = errors.New("age delta out of range")
	ErrMissingTarget      = errors.New("missing target media locator")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrTokenExpired       = errors.New("bearer token expired")
)
