package models

import "errors"

var (
	// ErrNotFound is returned by stores when a record does not exist
	ErrNotFound = errors.New("not found")
	// ErrUnknownTeam is returned when a team has no history and no stored form
	ErrUnknownTeam = errors.New("unknown team")
)
