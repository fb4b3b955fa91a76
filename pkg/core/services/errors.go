package services

import "errors"

var (
	// ErrUnknownStream is returned for an upload to a stream that does not exist
	ErrUnknownStream = errors.New("unknown stream")
	// ErrNoAvailability is returned when no week has any availability stored
	ErrNoAvailability = errors.New("no availability stored for any week")
	// ErrWeekNotFound is returned when the requested week has no availability
	ErrWeekNotFound = errors.New("week not found")
)
