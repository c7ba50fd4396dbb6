package catalog

import "errors"

var (
	// ErrInvalidDefinition indicates a catalog entry violates a catalog invariant.
	ErrInvalidDefinition = errors.New("invalid equipment definition")
	// ErrDuplicateType indicates two entries share the same type key.
	ErrDuplicateType = errors.New("duplicate equipment type")
	// ErrTypeNotFound indicates the requested equipment type is not in the catalog.
	ErrTypeNotFound = errors.New("equipment type not found")
)
