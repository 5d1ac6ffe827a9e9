package core

import (
	"errors"
	"fmt"
)

// Error taxonomy surfaced to callers. The HTTP layer maps these to
// status codes; storage backends wrap their failures into them.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
)

// Validation sentinels. Each wraps ErrInvalidArgument so callers can
// match either the specific failure or the broad class.
var (
	ErrInvalidAmount      = fmt.Errorf("invalid amount: %w", ErrInvalidArgument)
	ErrInvalidDate        = fmt.Errorf("invalid date: %w", ErrInvalidArgument)
	ErrEmptyName          = fmt.Errorf("empty name: %w", ErrInvalidArgument)
	ErrInvalidType        = fmt.Errorf("invalid type: %w", ErrInvalidArgument)
	ErrMissingCategory    = fmt.Errorf("missing category: %w", ErrInvalidArgument)
	ErrUnexpectedCategory = fmt.Errorf("transfer must not carry a category: %w", ErrInvalidArgument)
	ErrMissingAccount     = fmt.Errorf("transfer requires source and destination accounts: %w", ErrInvalidArgument)
	ErrInvalidPeriod      = fmt.Errorf("invalid period parameters: %w", ErrInvalidArgument)
	ErrLimitWrongType     = fmt.Errorf("budget limit allowed on expense categories only: %w", ErrInvalidArgument)
	ErrTargetWrongType    = fmt.Errorf("investment target allowed on investment categories only: %w", ErrInvalidArgument)
)
