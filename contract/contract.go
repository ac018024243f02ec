//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-session/domain"
	"chat-session/domain/search"
	"context"
	"iter"
	"time"
)

// Cache is the local key-value persistence of the session.
type Cache interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Clear() error
}

// Prompter asks the user to choose a nick.
// ok is false when the user dismissed the prompt.
type Prompter interface {
	Prompt(ctx context.Context, suggestion string) (nick string, ok bool)
}

// View renders what the session layer produces.
// An empty channel targets whatever pane is currently shown.
type View interface {
	System(channel, text string)
	Message(channel string, msg domain.ChatMessage, history bool)
	Topic(channel, topic string)
	ChannelAdded(channel string, id domain.ChannelID)
	ChannelRemapped(channel string, previous, current domain.ChannelID)
	ChannelRemoved(channel string)
	// ChannelActivated follows the active channel, empty when there is none.
	ChannelActivated(channel string)
	Users(channel string, users []domain.User)
	ToggleRTL() bool
}

// Channels is what commands can do with the bound channels.
type Channels interface {
	Join(ctx context.Context, name string, activate bool) error
	Part(ctx context.Context, name string) error
	Broadcast(line string) error
	SetTopic(channel, topic string, publish bool) error
	Search(filter search.Filter) error
	Users(channel string) (iter.Seq2[string, time.Time], error)
	Active() (string, bool)
}

// SessionStore is the persisted part of the session used by commands.
type SessionStore interface {
	Nick() string
	SetNick(nick string)
	Reset() error
}
