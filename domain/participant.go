// Package domain contains core concepts of the chat session.
// This file defines User entities seen in a channel.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

// NickRule is the validator tag every nick must satisfy.
// Markers are excluded so legacy "<nick> text" lines stay parseable.
const NickRule = "required,max=32,excludesall=<>#/"

// User is created on the first sighting of a nick in a channel.
// Later sightings update it in place.
type User struct {
	Nick       string
	LastSeenAt time.Time
	Parted     bool
}
