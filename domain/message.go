// Package domain contains core concepts of the chat session.
// This file defines Message events and their session envelope.
// The concrete shape of a message is decided once, when it is decoded.
package domain

import (
	"bytes"
	"chat-session/errors"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

type MessageType string

const (
	Chat MessageType = "chat"
	Join MessageType = "join"
	Part MessageType = "part"
)

// Message is either a ChatMessage or a Presence.
type Message interface {
	Type() MessageType
	Sender() string
}

// ChatMessage is a line of text said by Nick.
// Text may itself be a command line received from a peer.
type ChatMessage struct {
	Nick      string
	Text      string
	Timestamp int64 // nanoseconds, assigned by the transport
}

func (m ChatMessage) Type() MessageType { return Chat }
func (m ChatMessage) Sender() string    { return m.Nick }

// Presence announces that Nick joined or left a channel.
// Heartbeats are join presences.
type Presence struct {
	Nick      string
	Kind      MessageType
	Timestamp int64
}

func (p Presence) Type() MessageType { return p.Kind }
func (p Presence) Sender() string    { return p.Nick }

type envelope struct {
	Nick string      `json:"nick"`
	Text string      `json:"text,omitempty"`
	Type MessageType `json:"type"`
}

// legacy peers send "<nick> text"
var legacyLine = regexp.MustCompile(`^<([^>\s]+)>\s+(.*)$`)

// EncodeMessage serializes a message into its session envelope.
func EncodeMessage(m Message) ([]byte, error) {
	switch msg := m.(type) {
	case ChatMessage:
		return json.Marshal(envelope{Nick: msg.Nick, Text: msg.Text, Type: Chat})
	case Presence:
		if msg.Kind != Join && msg.Kind != Part {
			return nil, fmt.Errorf("%w: presence kind %q", errors.ErrMalformedMessage, msg.Kind)
		}
		return json.Marshal(envelope{Nick: msg.Nick, Type: msg.Kind})
	default:
		return nil, fmt.Errorf("%w: unsupported message %T", errors.ErrMalformedMessage, m)
	}
}

// DecodeMessage turns a raw payload into a ChatMessage or a Presence.
// JSON envelopes are tried first. Anything else follows the plain text
// convention: "<nick> text" or a bare line without a sender.
func DecodeMessage(payload []byte, timestamp int64) (Message, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty payload", errors.ErrMalformedMessage)
	}
	if trimmed[0] == '{' {
		return decodeEnvelope(trimmed, timestamp)
	}
	line := strings.TrimRight(string(payload), "\r\n")
	if match := legacyLine.FindStringSubmatch(line); match != nil {
		return ChatMessage{Nick: match[1], Text: match[2], Timestamp: timestamp}, nil
	}
	return ChatMessage{Text: line, Timestamp: timestamp}, nil
}

func decodeEnvelope(payload []byte, timestamp int64) (Message, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrMalformedMessage, err)
	}
	switch env.Type {
	case Chat:
		return ChatMessage{Nick: env.Nick, Text: env.Text, Timestamp: timestamp}, nil
	case Join, Part:
		if env.Nick == "" {
			return nil, fmt.Errorf("%w: %s without nick", errors.ErrMalformedMessage, env.Type)
		}
		return Presence{Nick: env.Nick, Kind: env.Type, Timestamp: timestamp}, nil
	default:
		return nil, fmt.Errorf("%w: unknown type %q", errors.ErrMalformedMessage, env.Type)
	}
}
