package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/hvacquote/internal/domain/activity"
	"github.com/rpggio/hvacquote/internal/domain/catalog"
	"github.com/rpggio/hvacquote/internal/domain/project"
)

var (
	// ErrEmptyName rejects a blank project name.
	ErrEmptyName = errors.New("project name is empty")
	// ErrMissingType rejects an item without an equipment type.
	ErrMissingType = errors.New("equipment type is required")
	// ErrItemNotFound indicates no item in the active project has the id.
	ErrItemNotFound = errors.New("item not found")
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
	err          error
}

func (e *APIError) Error() string {
	if e.RecoveryHint == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
}

func (e *APIError) Unwrap() error {
	return e.err
}

// MapError maps domain errors to MCP error codes. It returns nil for errors
// without a mapping.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, project.ErrProjectNotFound):
		apiErr = &APIError{Code: "PROJECT_NOT_FOUND", Message: "project not found", RecoveryHint: "Call list_projects for saved ids"}
	case errors.Is(err, project.ErrMalformedProject):
		apiErr = &APIError{Code: "MALFORMED_PROJECT", Message: "saved project could not be read", RecoveryHint: "The active project is unchanged"}
	case errors.Is(err, catalog.ErrTypeNotFound):
		apiErr = &APIError{Code: "TYPE_NOT_FOUND", Message: "equipment type not found", RecoveryHint: "Call list_equipment_types"}
	case errors.Is(err, catalog.ErrInvalidDefinition), errors.Is(err, catalog.ErrDuplicateType):
		apiErr = &APIError{Code: "INVALID_CATALOG", Message: err.Error(), RecoveryHint: "Fix the definition; the current catalog is unchanged"}
	case errors.Is(err, ErrEmptyName):
		apiErr = &APIError{Code: "EMPTY_NAME", Message: "project name must not be empty"}
	case errors.Is(err, ErrMissingType):
		apiErr = &APIError{Code: "MISSING_TYPE", Message: "equipment type is required", RecoveryHint: "Call list_equipment_types"}
	case errors.Is(err, ErrItemNotFound):
		apiErr = &APIError{Code: "ITEM_NOT_FOUND", Message: "item not found", RecoveryHint: "Call get_project for item ids"}
	case errors.Is(err, activity.ErrInvalidInput):
		apiErr = &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	default:
		return nil
	}
	apiErr.err = err
	return apiErr
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
