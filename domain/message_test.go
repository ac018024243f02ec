package domain

import (
	"chat-session/errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeMessage_Envelope(t *testing.T) {
	req := require.New(t)

	// Given a chat envelope sent by a peer
	payload, err := EncodeMessage(ChatMessage{Nick: "alice", Text: "hello"})
	req.NoError(err)

	// When it is decoded
	msg, err := DecodeMessage(payload, 42)
	req.NoError(err)

	// Then the shape is a chat message carrying the transport timestamp
	req.Equal(ChatMessage{Nick: "alice", Text: "hello", Timestamp: 42}, msg)
	req.Equal(Chat, msg.Type())
}

func TestDecodeMessage_Presence(t *testing.T) {
	req := require.New(t)

	msg, err := DecodeMessage([]byte(`{"nick":"bob","type":"join"}`), 7)
	req.NoError(err)
	req.Equal(Presence{Nick: "bob", Kind: Join, Timestamp: 7}, msg)

	msg, err = DecodeMessage([]byte(`{"nick":"bob","type":"part"}`), 8)
	req.NoError(err)
	req.Equal(Part, msg.Type())
	req.Equal("bob", msg.Sender())
}

func TestDecodeMessage_Legacy(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected Message
	}{
		{"Nick prefixed line", "<alice>  hi there", ChatMessage{Nick: "alice", Text: "hi there"}},
		{"Verbatim command", "/sysmsg hello", ChatMessage{Text: "/sysmsg hello"}},
		{"Bare text", "just words", ChatMessage{Text: "just words"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := DecodeMessage([]byte(tt.payload), 0)
			require.NoError(t, err)
			require.Equal(t, tt.expected, msg)
		})
	}
}

func TestDecodeMessage_Malformed(t *testing.T) {
	payloads := []string{
		"",
		"   ",
		`{"nick":"alice","type":"chat"`,
		`{"nick":"alice","type":"shout"}`,
		`{"type":"join"}`,
	}
	for _, p := range payloads {
		_, err := DecodeMessage([]byte(p), 0)
		require.ErrorIs(t, err, errors.ErrMalformedMessage, "payload %q", p)
	}
}

func TestEncodeMessage_PresenceKind(t *testing.T) {
	req := require.New(t)

	payload, err := EncodeMessage(Presence{Nick: "alice", Kind: Join})
	req.NoError(err)
	req.JSONEq(`{"nick":"alice","type":"join"}`, string(payload))

	_, err = EncodeMessage(Presence{Nick: "alice", Kind: Chat})
	req.ErrorIs(err, errors.ErrMalformedMessage)
}
