package errors

import "fmt"

var (
	ErrWorkerPanic         = fmt.Errorf("worker panic")
	ErrInvalidName         = fmt.Errorf("invalid channel name")
	ErrInvalidNick         = fmt.Errorf("invalid nick")
	ErrFilterParse         = fmt.Errorf("filter parse error")
	ErrMalformedMessage    = fmt.Errorf("malformed message payload")
	ErrUnknownChannel      = fmt.Errorf("unknown channel")
	ErrUnknownSocket       = fmt.Errorf("unknown socket")
	ErrNoActiveChannel     = fmt.Errorf("no active channel")
	ErrNotBound            = fmt.Errorf("channel is not bound")
	ErrUnauthorizedCommand = fmt.Errorf("command not allowed from remote peer")
	ErrLoopStopped         = fmt.Errorf("event loop stopped")
	ErrNotJoined           = fmt.Errorf("channel is not joined")
	ErrHubClosed           = fmt.Errorf("hub closed")
	ErrHubUnavailable      = fmt.Errorf("hub unavailable")
	ErrAlreadyListening    = fmt.Errorf("socket is already listened to")
)
