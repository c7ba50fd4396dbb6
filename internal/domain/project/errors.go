package project

import "errors"

var (
	// ErrProjectNotFound indicates no persisted record exists for the id.
	ErrProjectNotFound = errors.New("project not found")
	// ErrMalformedProject indicates the persisted record could not be decoded.
	ErrMalformedProject = errors.New("malformed project record")
)
