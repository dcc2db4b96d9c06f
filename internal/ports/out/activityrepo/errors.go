package activityrepo

import "errors"

var (
	// ErrNotFound indicates the requested activity does not exist.
	ErrNotFound = errors.New("activity not found")

	// ErrAlreadyRegistered indicates the email is already a participant of the activity.
	ErrAlreadyRegistered = errors.New("participant already registered")

	// ErrNotRegistered indicates the email is not a participant of the activity.
	ErrNotRegistered = errors.New("participant not registered")
)
