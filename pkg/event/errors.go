package event

import (
	"errors"
	"fmt"
)

// Sentinel errors for the router.
var (
	// ErrMailboxClosed is returned when delivering to a mailbox that was closed.
	ErrMailboxClosed = errors.New("event: mailbox closed")

	// ErrRouterClosed is returned by publish operations after Router.Close.
	ErrRouterClosed = errors.New("event: router closed")

	// ErrHandlerPanic matches every *PanicError through errors.Is.
	ErrHandlerPanic = errors.New("event: handler panicked")
)

// HandlerError wraps an error returned by a subscriber's handler.
type HandlerError struct {
	// MailboxID identifies the subscription whose handler failed.
	MailboxID string

	// Topic is the topic of the event being handled.
	Topic Topic

	// Err is the error returned by the handler.
	Err error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler error for mailbox %s on topic %q: %v", e.MailboxID, e.Topic, e.Err)
}

// Unwrap returns the underlying error.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// PanicError wraps a value recovered from a panicking handler.
type PanicError struct {
	MailboxID string
	Topic     Topic

	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace captured at recovery.
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("handler panic for mailbox %s on topic %q: %v", e.MailboxID, e.Topic, e.Value)
}

// Is allows errors.Is to match PanicError with ErrHandlerPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrHandlerPanic
}

// IsHandlerFailure reports whether err came from a subscriber's handler.
func IsHandlerFailure(err error) bool {
	var he *HandlerError
	return errors.As(err, &he) || errors.Is(err, ErrHandlerPanic)
}
