package runtime

import (
	"chat-session/contract"
	"chat-session/domain"
	"chat-session/domain/search"
	"chat-session/errors"
	"chat-session/runtime/workers"
	"chat-session/session"
	"context"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/samber/lo"
)

const topicKey = "topic"

type socketState int

const (
	socketIdle socketState = iota
	socketPending
	socketReady
	socketFailed
)

// WorkerStarter runs a worker until its context is canceled.
type WorkerStarter interface {
	Start(ctx context.Context, worker contract.Worker)
}

// handshake is the state machine of one requested channel, until it is active.
type handshake struct {
	ctx          context.Context
	name         string
	activate     bool
	state        State
	channelID    domain.ChannelID
	channelReady bool
	binding      *ChannelBinding
}

func (h *handshake) enter(s State) {
	h.state = s
	if h.binding != nil {
		h.binding.state = s
	}
}

// ChatHandler receives every chat line read on a binding.
// own is set when the line was sent from this pane's socket.
type ChatHandler func(binding *ChannelBinding, msg domain.ChatMessage, own bool)

// Binder drives the socket and channel handshake of every channel of a pane.
// All channels share one socket. Every method and every completion runs on
// the event loop; transport callbacks are posted back to it through the dispatcher.
type Binder struct {
	log               *slog.Logger
	transport         contract.Transport
	dispatcher        contract.Dispatcher
	starter           WorkerStarter
	session           *session.Session
	presence          *PresenceTracker
	view              contract.View
	heartbeatInterval time.Duration
	onChat            ChatHandler

	socketState socketState
	socket      domain.SocketID
	handshakes  map[string]*handshake
	bindings    map[domain.ChannelID]*ChannelBinding
	byName      map[string]*ChannelBinding
}

func NewBinder(
	log *slog.Logger,
	transport contract.Transport,
	dispatcher contract.Dispatcher,
	starter WorkerStarter,
	session *session.Session,
	presence *PresenceTracker,
	view contract.View,
	heartbeatInterval time.Duration,
) *Binder {
	b := &Binder{
		log:               log,
		transport:         transport,
		dispatcher:        dispatcher,
		starter:           starter,
		session:           session,
		presence:          presence,
		view:              view,
		heartbeatInterval: heartbeatInterval,
		handshakes:        make(map[string]*handshake),
		bindings:          make(map[domain.ChannelID]*ChannelBinding),
		byName:            make(map[string]*ChannelBinding),
	}
	b.onChat = func(binding *ChannelBinding, msg domain.ChatMessage, _ bool) {
		b.view.Message(binding.Name, msg, false)
	}
	return b
}

// OnChat replaces what happens to inbound chat lines.
func (b *Binder) OnChat(handler ChatHandler) {
	b.onChat = handler
}

// Join starts the handshake of a channel. ctx bounds the lifetime of the
// binding's heartbeat. Joining a bound channel only switches to it when
// activate is set.
func (b *Binder) Join(ctx context.Context, name string, activate bool) error {
	canonical, err := domain.CanonicalChannelName(name)
	if err != nil {
		return err
	}

	if binding, ok := b.byName[canonical]; ok {
		b.log.Debug("Already joined to channel", "channel", canonical)
		if activate {
			b.activate(binding)
		}
		return nil
	}
	if h, ok := b.handshakes[canonical]; ok {
		h.activate = h.activate || activate
		return nil
	}

	b.start(&handshake{ctx: ctx, name: canonical, activate: activate})
	return nil
}

// Reconnect binds every channel again on a fresh socket.
// Existing bindings are remapped to their new identifiers once bound.
func (b *Binder) Reconnect(ctx context.Context) {
	b.log.Info("Reconnecting", "channels", len(b.byName))
	b.socketState = socketIdle
	active, _ := b.Active()
	for name := range b.byName {
		if _, ok := b.handshakes[name]; ok {
			continue
		}
		b.start(&handshake{ctx: ctx, name: name, activate: name == active})
	}
}

func (b *Binder) start(h *handshake) {
	h.enter(Requested)
	b.handshakes[h.name] = h
	b.requestSocket()

	h.enter(Pending)
	b.transport.CreateChannel(h.name, func(id domain.ChannelID, err error) {
		b.dispatcher.Post(func() { b.channelReady(h, id, err) })
	})
}

func (b *Binder) requestSocket() {
	if b.socketState == socketPending || b.socketState == socketReady {
		return
	}
	b.socketState = socketPending
	b.transport.CreateSocket(func(id domain.SocketID, err error) {
		b.dispatcher.Post(func() { b.socketCreated(id, err) })
	})
}

// socketCreated starts listening; the socket is ready once the feed is open.
func (b *Binder) socketCreated(id domain.SocketID, err error) {
	if err != nil {
		b.socketReady(id, err)
		return
	}
	b.transport.Listen(id, func(d contract.Delivery) {
		b.dispatcher.Post(func() { b.deliver(d) })
	}, func(err error) {
		b.dispatcher.Post(func() { b.socketReady(id, err) })
	})
}

func (b *Binder) socketReady(id domain.SocketID, err error) {
	if err != nil {
		b.log.Error("Socket creation failed", "error", err)
		b.socketState = socketFailed
		for _, h := range b.handshakes {
			if h.state == Pending {
				b.fail(h, err)
			}
		}
		return
	}

	b.log.Debug("Socket ready", "socket", id)
	b.socket = id
	b.socketState = socketReady
	for _, h := range b.handshakes {
		if h.state == Pending && h.channelReady {
			b.bothReady(h)
		}
	}
}

func (b *Binder) channelReady(h *handshake, id domain.ChannelID, err error) {
	if h.state != Pending {
		return
	}
	if err != nil {
		b.fail(h, err)
		return
	}
	b.log.Debug("Channel ready", "channel", h.name, "id", id)
	h.channelID = id
	h.channelReady = true
	if b.socketState == socketReady {
		b.bothReady(h)
	}
}

func (b *Binder) bothReady(h *handshake) {
	h.enter(BothReady)
	socket := b.socket
	b.transport.Bind(socket, h.channelID, func(err error) {
		b.dispatcher.Post(func() { b.bound(h, socket, err) })
	})
}

func (b *Binder) bound(h *handshake, socket domain.SocketID, err error) {
	if h.state != BothReady {
		return
	}
	if err != nil {
		b.fail(h, err)
		return
	}

	h.binding = b.bind(h.name, socket, h.channelID)
	h.enter(Bound)
	b.startHeartbeat(h.ctx, h.binding)
	if h.activate || (!b.hasActive() && !b.activationPending()) {
		b.activate(h.binding)
	}

	b.transport.Join(h.channelID, func(err error) {
		b.dispatcher.Post(func() { b.joined(h, err) })
	})
}

// bind creates the binding of name, or remaps the existing one to new identifiers.
func (b *Binder) bind(name string, socket domain.SocketID, channel domain.ChannelID) *ChannelBinding {
	existing, ok := b.byName[name]
	if !ok {
		binding := newChannelBinding(name, socket, channel)
		b.bindings[channel] = binding
		b.byName[name] = binding
		b.view.ChannelAdded(name, channel)
		return binding
	}

	previous := existing.ChannelID
	existing.cancelHeartbeat()
	delete(b.bindings, previous)
	existing.SocketID = socket
	existing.ChannelID = channel
	b.bindings[channel] = existing
	b.session.RemapActiveChannel(previous, channel)
	b.view.ChannelRemapped(name, previous, channel)
	b.log.Info("Channel rebound", "channel", name, "previous", previous, "current", channel)
	return existing
}

func (b *Binder) joined(h *handshake, err error) {
	if h.state != Bound {
		return
	}
	if err != nil {
		b.fail(h, err)
		return
	}

	h.enter(Joined)
	binding := h.binding
	b.session.AddChannel(binding.Name)
	b.presence.UserJoin(binding, b.session.Nick())
	b.publish(binding, domain.Presence{Nick: b.session.Nick(), Kind: domain.Join})

	b.transport.GetValue(binding.ChannelID, topicKey, func(topic string, err error) {
		b.dispatcher.Post(func() { b.topicFetched(h, topic, err) })
	})
}

func (b *Binder) topicFetched(h *handshake, topic string, err error) {
	if h.state != Joined {
		return
	}
	if err != nil {
		b.fail(h, err)
		return
	}

	h.enter(TopicFetched)
	binding := h.binding
	binding.Topic = topic
	b.view.Topic(binding.Name, topic)

	// Only what is strictly newer than the last message seen
	filter := search.NewerThan(lo.FromPtr(binding.LastHistoryTimestamp))
	b.transport.GetMessages(binding.ChannelID, filter, func(messages []contract.StoredMessage, err error) {
		b.dispatcher.Post(func() { b.historyFetched(h, messages, err) })
	})
}

func (b *Binder) historyFetched(h *handshake, messages []contract.StoredMessage, err error) {
	if h.state != TopicFetched {
		return
	}
	if err != nil {
		b.fail(h, err)
		return
	}

	binding := h.binding
	for _, stored := range messages {
		msg, err := domain.DecodeMessage(stored.Payload, stored.Timestamp)
		if err != nil {
			b.log.Warn("Dropping malformed history message", "channel", binding.Name, "error", err)
			continue
		}
		binding.observe(stored.Timestamp)
		if chat, ok := msg.(domain.ChatMessage); ok {
			b.view.Message(binding.Name, chat, true)
		}
	}

	h.enter(Active)
	delete(b.handshakes, h.name)
	b.log.Info("Channel active", "channel", binding.Name, "history", len(messages))
}

// fail ends the handshake of one channel. Siblings and the socket are unaffected.
func (b *Binder) fail(h *handshake, err error) {
	b.log.Error("Channel handshake failed", "channel", h.name, "state", h.state, "error", err)
	if current, ok := b.handshakes[h.name]; ok && current == h {
		delete(b.handshakes, h.name)
	}
	binding := h.binding
	h.enter(Failed)
	if binding != nil {
		b.teardown(binding)
	}
}

// Part leaves a bound channel, or abandons one still in its handshake.
func (b *Binder) Part(_ context.Context, name string) error {
	canonical, err := domain.CanonicalChannelName(name)
	if err != nil {
		return err
	}

	h, pending := b.handshakes[canonical]
	binding, bound := b.byName[canonical]
	if !pending && !bound {
		return fmt.Errorf("%w: %s", errors.ErrUnknownChannel, canonical)
	}

	if pending {
		delete(b.handshakes, canonical)
		h.enter(Parted)
	}
	if bound {
		if binding.live() {
			b.publish(binding, domain.Presence{Nick: b.session.Nick(), Kind: domain.Part})
		}
		b.transport.Part(binding.ChannelID, func(err error) {
			if err != nil {
				b.dispatcher.Post(func() { b.log.Warn("Transport part failed", "channel", canonical, "error", err) })
			}
		})
		b.teardown(binding)
	}
	b.session.RemoveChannel(canonical)
	b.log.Info("Channel parted", "channel", canonical)
	return nil
}

func (b *Binder) teardown(binding *ChannelBinding) {
	binding.cancelHeartbeat()
	binding.state = Parted
	if b.bindings[binding.ChannelID] == binding {
		delete(b.bindings, binding.ChannelID)
	}
	if b.byName[binding.Name] == binding {
		delete(b.byName, binding.Name)
	}
	b.view.ChannelRemoved(binding.Name)

	if id, ok := b.session.ActiveChannel(); ok && id == binding.ChannelID {
		b.session.ClearActiveChannel()
		for _, name := range b.session.ChannelNames() {
			if next, ok := b.byName[name]; ok {
				b.activate(next)
				return
			}
		}
		b.view.ChannelActivated("")
	}
}

func (b *Binder) startHeartbeat(ctx context.Context, binding *ChannelBinding) {
	heartbeatCtx, cancel := context.WithCancel(ctx)
	binding.stopHeartbeat = cancel
	b.starter.Start(heartbeatCtx, workers.NewHeartbeatWorker(
		b.log, binding.Name, b.heartbeatInterval, b.dispatcher,
		func() {
			if binding.live() {
				b.publish(binding, domain.Presence{Nick: b.session.Nick(), Kind: domain.Join})
			}
		},
	))
}

func (b *Binder) activate(binding *ChannelBinding) {
	if id, ok := b.session.ActiveChannel(); ok && id == binding.ChannelID {
		return
	}
	b.session.SetActiveChannel(binding.ChannelID, binding.Name)
	b.view.ChannelActivated(binding.Name)
}

func (b *Binder) hasActive() bool {
	_, ok := b.session.ActiveChannel()
	return ok
}

func (b *Binder) activationPending() bool {
	return lo.SomeBy(lo.Values(b.handshakes), func(h *handshake) bool {
		return h.activate && h.state < Bound
	})
}

func (b *Binder) publish(binding *ChannelBinding, msg domain.Message) {
	payload, err := domain.EncodeMessage(msg)
	if err != nil {
		b.log.Error("Cannot encode message", "channel", binding.Name, "error", err)
		return
	}
	name := binding.Name
	b.transport.Send(binding.ChannelID, payload, func(err error) {
		if err != nil {
			b.dispatcher.Post(func() { b.log.Warn("Send failed", "channel", name, "error", err) })
		}
	})
}

// deliver handles one item of the socket feed.
func (b *Binder) deliver(d contract.Delivery) {
	binding, ok := b.bindings[d.Channel]
	if !ok {
		b.log.Debug("Delivery for unknown channel dropped", "channel", d.Channel)
		return
	}

	switch d.Op {
	case contract.OpMessage:
		msg, err := domain.DecodeMessage(d.Payload, d.Timestamp)
		if err != nil {
			b.log.Warn("Dropping malformed message", "channel", binding.Name, "error", err)
			return
		}
		binding.observe(d.Timestamp)
		switch m := msg.(type) {
		case domain.Presence:
			if m.Kind == domain.Join {
				b.presence.UserJoin(binding, m.Nick)
			} else {
				b.presence.UserPart(binding, m.Nick)
			}
		case domain.ChatMessage:
			b.onChat(binding, m, d.Sender != "" && d.Sender == binding.SocketID)
		}
	case contract.OpSetValue:
		if d.Key != topicKey {
			b.log.Debug("Ignoring unknown key", "channel", binding.Name, "key", d.Key)
			return
		}
		binding.Topic = string(d.Payload)
		b.view.Topic(binding.Name, binding.Topic)
	}
}

// Broadcast sends line as a chat message of the local user on the active channel.
// It returns once the line is queued; a failed send is reported on the view.
func (b *Binder) Broadcast(line string) error {
	binding, err := b.activeBinding()
	if err != nil {
		return err
	}
	payload, err := domain.EncodeMessage(domain.ChatMessage{Nick: b.session.Nick(), Text: line})
	if err != nil {
		return err
	}
	name := binding.Name
	b.transport.Send(binding.ChannelID, payload, func(err error) {
		if err != nil {
			b.dispatcher.Post(func() {
				b.log.Warn("Line not sent", "channel", name, "error", err)
				b.view.System(name, "not sent: "+err.Error())
			})
		}
	})
	return nil
}

// SetTopic updates the topic of channel, the active one when empty.
// publish also stores it on the channel for every peer.
func (b *Binder) SetTopic(channel, topic string, publish bool) error {
	binding, err := b.lookup(channel)
	if err != nil {
		return err
	}
	binding.Topic = topic
	b.view.Topic(binding.Name, topic)
	if !publish {
		return nil
	}
	name := binding.Name
	b.transport.SetValue(binding.ChannelID, topicKey, topic, func(err error) {
		if err != nil {
			b.dispatcher.Post(func() { b.log.Warn("Topic not stored", "channel", name, "error", err) })
		}
	})
	return nil
}

// Search queries the history of the active channel and renders the matches.
func (b *Binder) Search(filter search.Filter) error {
	binding, err := b.activeBinding()
	if err != nil {
		return err
	}
	name := binding.Name
	b.transport.GetMessages(binding.ChannelID, filter, func(messages []contract.StoredMessage, err error) {
		b.dispatcher.Post(func() { b.searchDone(name, filter, messages, err) })
	})
	return nil
}

func (b *Binder) searchDone(channel string, filter search.Filter, messages []contract.StoredMessage, err error) {
	if err != nil {
		b.log.Warn("Search failed", "channel", channel, "filter", filter.String(), "error", err)
		b.view.System(channel, fmt.Sprintf("search %q failed", filter.Arg))
		return
	}
	b.view.System(channel, fmt.Sprintf("%d message(s) matching %q", len(messages), filter.Arg))
	for _, stored := range messages {
		msg, err := domain.DecodeMessage(stored.Payload, stored.Timestamp)
		if err != nil {
			continue
		}
		if chat, ok := msg.(domain.ChatMessage); ok {
			b.view.Message(channel, chat, true)
		}
	}
}

// Users lists who is present on channel, the active one when empty.
func (b *Binder) Users(channel string) (iter.Seq2[string, time.Time], error) {
	binding, err := b.lookup(channel)
	if err != nil {
		return nil, err
	}
	return b.presence.ListUsers(binding), nil
}

// Active returns the name of the active bound channel.
func (b *Binder) Active() (string, bool) {
	binding, err := b.activeBinding()
	if err != nil {
		return "", false
	}
	return binding.Name, true
}

// Binding returns the binding of a canonical channel name.
func (b *Binder) Binding(name string) (*ChannelBinding, bool) {
	binding, ok := b.byName[name]
	return binding, ok
}

// Bindings returns the number of bound channels.
func (b *Binder) Bindings() int {
	return len(b.bindings)
}

// Close stops every heartbeat.
func (b *Binder) Close() {
	for _, binding := range b.byName {
		binding.cancelHeartbeat()
	}
}

func (b *Binder) lookup(channel string) (*ChannelBinding, error) {
	if channel == "" {
		return b.activeBinding()
	}
	binding, ok := b.byName[channel]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownChannel, channel)
	}
	return binding, nil
}

func (b *Binder) activeBinding() (*ChannelBinding, error) {
	id, ok := b.session.ActiveChannel()
	if !ok {
		return nil, errors.ErrNoActiveChannel
	}
	binding, ok := b.bindings[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrNotBound, id)
	}
	return binding, nil
}
