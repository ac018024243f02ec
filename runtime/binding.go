package runtime

import (
	"chat-session/domain"
	"context"
)

// State of a channel handshake. A channel walks these in order,
// Failed and Parted end it early.
type State int

const (
	Requested State = iota
	Pending
	BothReady
	Bound
	Joined
	TopicFetched
	Active
	Parted
	Failed
)

var stateNames = map[State]string{
	Requested:    "requested",
	Pending:      "pending",
	BothReady:    "both-ready",
	Bound:        "bound",
	Joined:       "joined",
	TopicFetched: "topic-fetched",
	Active:       "active",
	Parted:       "parted",
	Failed:       "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// ChannelBinding pairs one channel with the socket it is bound to.
// It is created once both are ready and bound, and owns the users seen on it.
type ChannelBinding struct {
	Name                 string
	SocketID             domain.SocketID
	ChannelID            domain.ChannelID
	Topic                string
	LastHistoryTimestamp *int64

	state         State
	users         map[string]*domain.User
	order         []string // first sighting order
	stopHeartbeat context.CancelFunc
}

func newChannelBinding(name string, socket domain.SocketID, channel domain.ChannelID) *ChannelBinding {
	return &ChannelBinding{
		Name:      name,
		SocketID:  socket,
		ChannelID: channel,
		state:     Bound,
		users:     make(map[string]*domain.User),
	}
}

func (b *ChannelBinding) State() State {
	return b.state
}

// live reports whether the channel has been joined and not parted.
func (b *ChannelBinding) live() bool {
	return b.state >= Joined && b.state <= Active
}

// observe moves LastHistoryTimestamp forward, never backward.
func (b *ChannelBinding) observe(ts int64) {
	if b.LastHistoryTimestamp == nil || ts > *b.LastHistoryTimestamp {
		b.LastHistoryTimestamp = &ts
	}
}

// cancelHeartbeat may be called any number of times.
func (b *ChannelBinding) cancelHeartbeat() {
	if b.stopHeartbeat != nil {
		b.stopHeartbeat()
	}
}

func (b *ChannelBinding) user(nick string) (*domain.User, bool) {
	if user, ok := b.users[nick]; ok {
		return user, false
	}
	user := &domain.User{Nick: nick}
	b.users[nick] = user
	b.order = append(b.order, nick)
	return user, true
}
