package contract

import (
	"chat-session/domain"
	"chat-session/domain/search"
)

type Op int

const (
	OpMessage Op = iota
	OpSetValue
)

// Delivery is one item of a socket's inbound feed.
// Deliveries of one socket arrive in order. Sender is the socket the
// sending channel is bound to.
type Delivery struct {
	Op        Op
	Channel   domain.ChannelID
	Sender    domain.SocketID
	Key       string // OpSetValue only
	Payload   []byte
	Timestamp int64 // nanoseconds
}

// StoredMessage is a message returned by a history query.
type StoredMessage struct {
	Payload   []byte
	Timestamp int64
}

// Transport is the socket/channel layer the session is built on.
// Every method returns immediately; completions are reported through the
// callbacks, possibly from another goroutine. Sends and parts issued on one
// transport complete in the order they were issued.
type Transport interface {
	CreateSocket(done func(domain.SocketID, error))
	CreateChannel(name string, done func(domain.ChannelID, error))
	Bind(socket domain.SocketID, channel domain.ChannelID, done func(error))
	Join(channel domain.ChannelID, done func(error))
	Part(channel domain.ChannelID, done func(error))
	Send(channel domain.ChannelID, payload []byte, done func(error))
	Listen(socket domain.SocketID, handler func(Delivery), done func(error))
	GetValue(channel domain.ChannelID, key string, done func(string, error))
	SetValue(channel domain.ChannelID, key, value string, done func(error))
	GetMessages(channel domain.ChannelID, filter search.Filter, done func([]StoredMessage, error))
}
