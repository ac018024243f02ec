// Package domain contains core concepts of the chat session.
// This file defines channel identifiers and the canonical channel name.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"chat-session/errors"
	"fmt"
	"strings"
)

const (
	// ChannelMarker prefixes every canonical channel name.
	ChannelMarker = "#"
	// DefaultChannel is joined when nothing has been cached yet.
	DefaultChannel = "#welcome"
	// DefaultNick is suggested when the user has never chosen one.
	DefaultNick = "guest"

	minChannelNameLength = 2
)

type SocketID string

type ChannelID string

// CanonicalChannelName trims, prefixes with the marker when absent and lower-cases name.
// Names shorter than two characters (marker included) are rejected.
func CanonicalChannelName(name string) (string, error) {
	canonical := strings.TrimSpace(name)
	if !strings.HasPrefix(canonical, ChannelMarker) {
		canonical = ChannelMarker + canonical
	}
	canonical = strings.ToLower(canonical)
	if len(canonical) < minChannelNameLength {
		return "", fmt.Errorf("%w: %q", errors.ErrInvalidName, name)
	}
	return canonical, nil
}
