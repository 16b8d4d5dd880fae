package protocol

import "errors"

var (
	// ErrMissingType is returned for a message without a type field.
	ErrMissingType = errors.New("protocol: message has no type")

	// ErrNoData is returned when a payload is requested from an empty message.
	ErrNoData = errors.New("protocol: message has no data")

	// ErrUnexpectedType is returned when a payload getter is used on the wrong message type.
	ErrUnexpectedType = errors.New("protocol: unexpected message type")
)
