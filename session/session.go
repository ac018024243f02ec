// Package session holds the user's nick, the channels to rejoin and the active channel.
// Every mutation is written to the cache before the next user action.
package session

import (
	"chat-session/contract"
	"chat-session/domain"
	"context"
	"encoding/json"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// Cache keys
const (
	KeyNick          = "nick"
	KeyChannels      = "channels"
	KeyActiveChannel = "activeChannel"
)

type Session struct {
	log            *slog.Logger
	cache          contract.Cache
	prompter       contract.Prompter
	validate       *validator.Validate
	defaultChannel string
	defaultNick    string

	nick       string
	channels   []string // insertion ordered, no duplicates
	activeName string
	activeID   *domain.ChannelID
	memoryOnly bool
}

func NewSession(log *slog.Logger, cache contract.Cache, prompter contract.Prompter, defaultChannel, defaultNick string) *Session {
	return &Session{
		log:            log,
		cache:          cache,
		prompter:       prompter,
		validate:       validator.New(),
		defaultChannel: defaultChannel,
		defaultNick:    defaultNick,
		nick:           defaultNick,
	}
}

// Load restores nick, channels and active channel from the cache.
// An empty cache seeds the default channel as the active one and asks for a nick.
// A dismissed prompt or an invalid answer keeps the default nick.
func (s *Session) Load(ctx context.Context) {
	if raw, ok := s.read(KeyChannels); ok {
		var names []string
		if err := json.Unmarshal([]byte(raw), &names); err != nil {
			s.log.Warn("No channels loaded", "error", err)
		}
		for _, name := range names {
			canonical, err := domain.CanonicalChannelName(name)
			if err != nil {
				s.log.Warn("Ignoring cached channel", "channel", name, "error", err)
				continue
			}
			s.addChannel(canonical)
		}
	}

	if raw, ok := s.read(KeyActiveChannel); ok {
		if canonical, err := domain.CanonicalChannelName(raw); err == nil {
			s.activeName = canonical
		}
	}

	if len(s.channels) == 0 {
		s.channels = []string{s.defaultChannel}
		s.activeName = s.defaultChannel
		s.write(KeyActiveChannel, s.activeName)
	}

	if nick, ok := s.read(KeyNick); ok && nick != "" {
		s.nick = nick
	} else {
		nick, ok := s.prompter.Prompt(ctx, s.defaultNick)
		if !ok {
			nick = s.defaultNick
		} else if err := s.validate.Var(nick, domain.NickRule); err != nil {
			s.log.Warn("Prompted nick rejected, keeping the default", "nick", nick, "error", err)
			nick = s.defaultNick
		}
		s.SetNick(nick)
	}
	s.log.Info("Session loaded", "nick", s.nick, "channels", s.channels, "active", s.activeName)
}

func (s *Session) Nick() string {
	return s.nick
}

func (s *Session) SetNick(nick string) {
	s.nick = nick
	s.write(KeyNick, nick)
}

// ChannelNames returns a copy of the known channels in insertion order.
func (s *Session) ChannelNames() []string {
	return append([]string(nil), s.channels...)
}

// AddChannel registers a canonical channel name, returns false when already known.
func (s *Session) AddChannel(name string) bool {
	if !s.addChannel(name) {
		return false
	}
	s.saveChannels()
	return true
}

func (s *Session) RemoveChannel(name string) bool {
	if !lo.Contains(s.channels, name) {
		return false
	}
	s.channels = lo.Without(s.channels, name)
	s.saveChannels()
	return true
}

// ActiveChannel returns the id of the active bound channel, if any.
func (s *Session) ActiveChannel() (domain.ChannelID, bool) {
	if s.activeID == nil {
		return "", false
	}
	return *s.activeID, true
}

// ActiveChannelName is the persisted canonical name of the active channel.
// It may name a channel that is not bound yet.
func (s *Session) ActiveChannelName() string {
	return s.activeName
}

// SetActiveChannel is a no-op when id is already active.
func (s *Session) SetActiveChannel(id domain.ChannelID, name string) {
	if s.activeID != nil && *s.activeID == id {
		return
	}
	s.activeID = lo.ToPtr(id)
	if s.activeName != name {
		s.activeName = name
		s.write(KeyActiveChannel, name)
	}
}

// RemapActiveChannel follows a channel that was bound again under a new id.
func (s *Session) RemapActiveChannel(previous, current domain.ChannelID) {
	if s.activeID != nil && *s.activeID == previous {
		s.activeID = lo.ToPtr(current)
	}
}

func (s *Session) ClearActiveChannel() {
	s.activeID = nil
}

// Reset wipes everything persisted. In-memory state stays for this process.
func (s *Session) Reset() error {
	if err := s.cache.Clear(); err != nil {
		s.degrade(err)
		return err
	}
	s.log.Info("Local storage wiped")
	return nil
}

// MemoryOnly reports whether persistence has been abandoned after a cache failure.
func (s *Session) MemoryOnly() bool {
	return s.memoryOnly
}

func (s *Session) addChannel(name string) bool {
	if lo.Contains(s.channels, name) {
		return false
	}
	s.channels = append(s.channels, name)
	return true
}

func (s *Session) saveChannels() {
	bytes, err := json.Marshal(s.channels)
	if err != nil {
		s.log.Error("Cannot encode channels", "error", err)
		return
	}
	s.write(KeyChannels, string(bytes))
}

func (s *Session) read(key string) (string, bool) {
	if s.memoryOnly {
		return "", false
	}
	value, ok, err := s.cache.Get(key)
	if err != nil {
		s.degrade(err)
		return "", false
	}
	return value, ok
}

func (s *Session) write(key, value string) {
	if s.memoryOnly {
		return
	}
	if err := s.cache.Set(key, value); err != nil {
		s.degrade(err)
	}
}

func (s *Session) degrade(err error) {
	if s.memoryOnly {
		return
	}
	s.memoryOnly = true
	s.log.Warn("Cache unavailable, session kept in memory only", "error", err)
}
