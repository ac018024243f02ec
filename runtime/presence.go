package runtime

import (
	"chat-session/contract"
	"chat-session/domain"
	"fmt"
	"iter"
	"time"
)

// PresenceTracker maintains the users of a binding and tells the view
// when someone arrives or leaves.
// It is only touched from the event loop, so it holds no lock.
type PresenceTracker struct {
	view contract.View
	now  func() time.Time
}

func NewPresenceTracker(view contract.View, now func() time.Time) *PresenceTracker {
	if now == nil {
		now = time.Now
	}
	return &PresenceTracker{view: view, now: now}
}

// UserJoin records a sighting of nick.
// Only an unknown or parted nick produces a "joined" notification, heartbeats
// from a known user just refresh LastSeenAt.
func (p *PresenceTracker) UserJoin(channel *ChannelBinding, nick string) {
	user, created := channel.user(nick)
	user.LastSeenAt = p.now()
	if created || user.Parted {
		user.Parted = false
		p.view.System(channel.Name, fmt.Sprintf("%s has joined %s", nick, channel.Name))
	}
}

// UserPart notifies "left" once per join. A nick never seen before is
// recorded as parted, with its single notification.
func (p *PresenceTracker) UserPart(channel *ChannelBinding, nick string) {
	user, created := channel.user(nick)
	user.LastSeenAt = p.now()
	if created || !user.Parted {
		user.Parted = true
		p.view.System(channel.Name, fmt.Sprintf("%s has left %s", nick, channel.Name))
	}
}

// ListUsers yields present users in first sighting order.
// The sequence is lazy and can be ranged over again.
func (p *PresenceTracker) ListUsers(channel *ChannelBinding) iter.Seq2[string, time.Time] {
	return func(yield func(string, time.Time) bool) {
		for _, nick := range channel.order {
			user := channel.users[nick]
			if user.Parted {
				continue
			}
			if !yield(user.Nick, user.LastSeenAt) {
				return
			}
		}
	}
}

// Users returns a snapshot of the present users.
func (p *PresenceTracker) Users(channel *ChannelBinding) []domain.User {
	var users []domain.User
	for nick, seen := range p.ListUsers(channel) {
		users = append(users, domain.User{Nick: nick, LastSeenAt: seen})
	}
	return users
}
