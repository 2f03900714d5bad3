package store

import "errors"

var (
	// ErrRecordNotFound is returned for a missing CSV file or export run
	ErrRecordNotFound = errors.New("record not found")

	// ErrEmptyUserID is returned when a CSV file is written without an owner.
	ErrEmptyUserID = errors.New("user id must not be empty")
)
