package domain

import "fmt"

const (
	// CloseNormal graceful disconnect
	CloseNormal = 1000
	// CloseForbidden authentication or membership check failed, 對應 HTTP 403
	CloseForbidden = 4403
)

// ConnState per connection lifecycle, transitions only move forward
type ConnState int

const (
	// StateUnauthenticated nothing checked yet
	StateUnauthenticated ConnState = iota
	// StateAuthorized credential and membership accepted
	StateAuthorized
	// StateSubscribed registered for channel broadcasts
	StateSubscribed
	// StateClosed terminal
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthorized:
		return "authorized"
	case StateSubscribed:
		return "subscribed"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("ConnState(%d)", int(s))
}
