package session

import (
	"errors"
	"fmt"
)

var (
	// ErrProtocolViolation marks a message that arrived in a state where it
	// has no meaning. Callers log it and carry on.
	ErrProtocolViolation = errors.New("protocol violation")

	ErrClosed      = errors.New("session closed")
	ErrUnknownPeer = fmt.Errorf("%w: no session for sender", ErrProtocolViolation)
)
