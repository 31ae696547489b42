package types

import (
	"errors"
	"fmt"
)

var (
	// Open attempted from a channel that is not a configured panel
	ErrUnauthorizedPanel = errors.New("this panel is not authorized to open tickets")

	// Operation invoked on a channel handle of the wrong kind
	ErrInvalidChannel = errors.New("invalid channel for this operation")

	// A close request is already in flight for this ticket
	ErrTicketClosing = errors.New("ticket is already being closed")

	// No disclosure gate is known for the hosting message
	ErrUnknownTranscript = errors.New("transcript not found")

	// The disclosure gate was already triggered
	ErrAlreadyRevealed = errors.New("transcript was already opened")
)

// PlatformError is a rejected call on the chat platform
type PlatformError struct {
	Op  string
	Err error
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("platform error during %s: %v", e.Op, e.Err)
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

func NewPlatformError(op string, err error) error {
	if err == nil {
		return nil
	}

	return &PlatformError{Op: op, Err: err}
}
