package services

import "errors"

// Precondition failures the handlers map to 403.
var (
	ErrNotSender      = errors.New("only the sender can modify this message")
	ErrNotParticipant = errors.New("not a conversation participant")
)

// ValidationError is an expected precondition failure surfaced as a 400.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationf(reason string) error {
	return &ValidationError{Reason: reason}
}
