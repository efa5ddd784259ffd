package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNoCurrentKey      = errors.New("no current key")
	ErrIllegalTransition = errors.New("illegal transition")
	ErrUnknownAction     = errors.New("unknown action")
	ErrActionUnavailable = errors.New("action unavailable")
)

// CheckTransition returns an ErrIllegalTransition-wrapped error naming the
// rejected edge, or nil when from -> to is in the transition table.
func CheckTransition(from, to State) error {
	if err := to.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrIllegalTransition, err)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	return nil
}
