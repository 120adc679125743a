package service

import (
	"errors"
	"fmt"

	"routine-planner/internal/repository"
)

var (
	// ErrUnauthenticated means there is no current user.
	ErrUnauthenticated = errors.New("no authenticated user")
	// ErrValidation wraps every input rejection; it is checked before any write.
	ErrValidation = errors.New("validation failed")

	ErrEmptyTitle        = fmt.Errorf("%w: title is required", ErrValidation)
	ErrInvalidPriority   = fmt.Errorf("%w: priority must be high, medium or low", ErrValidation)
	ErrInvalidColor      = fmt.Errorf("%w: color is not in the palette", ErrValidation)
	ErrInvalidTime       = fmt.Errorf("%w: time must be HH:MM", ErrValidation)
	ErrInvalidDate       = fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	ErrUnknownCategory   = fmt.Errorf("%w: unknown category", ErrValidation)
	ErrInvalidOrder      = fmt.Errorf("%w: order must list tasks of the day once each", ErrValidation)
	ErrDuplicateCategory = fmt.Errorf("%w: category name already used", ErrValidation)
	ErrInvalidRecurrence = fmt.Errorf("%w: invalid recurrence", ErrValidation)
	ErrEmptyPatch        = fmt.Errorf("%w: nothing to update", ErrValidation)
	ErrInvalidEmail      = fmt.Errorf("%w: email is malformed", ErrValidation)

	ErrNotFound        = repository.ErrNotFound
	ErrDuplicate       = repository.ErrDuplicate
	ErrDefaultCategory = errors.New("default category cannot be deleted")
	ErrDefaultWishList = errors.New("default wish list cannot be deleted")
	// ErrStaleView is returned when the user opened another view before this
	// one finished loading; the result must not be shown.
	ErrStaleView = errors.New("view superseded")
)

func invalidRecurrence(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidRecurrence, err)
}
