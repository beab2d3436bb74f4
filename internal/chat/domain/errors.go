package domain

import "errors"

var (
	// ErrUnauthenticated credential missing or unknown
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNotFound channel or message does not exist
	ErrNotFound = errors.New("not found")
	// ErrForbidden user is not a member of the channel
	ErrForbidden = errors.New("forbidden")
	// ErrMalformedEvent inbound payload can not be decoded
	ErrMalformedEvent = errors.New("malformed event")
	// ErrInvalidState operation not allowed in the connection state
	ErrInvalidState = errors.New("invalid connection state")
)

// IsAuthorizationFailure errors that end a connect attempt with CloseForbidden
func IsAuthorizationFailure(err error) bool {
	return errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden)
}
