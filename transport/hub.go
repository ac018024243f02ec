// Package transport provides an in-process implementation of the socket and
// channel layer: channels sharing a name form one multicast group.
package transport

import (
	"chat-session/contract"
	"chat-session/domain"
	"chat-session/domain/search"
	"chat-session/errors"
	"chat-session/repositories"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// handle is one CreateChannel result. It joins the group of its name once
// bound to a socket and joined.
type handle struct {
	id     domain.ChannelID
	name   string
	socket *socket
	joined bool
}

func (ch *handle) socketID() domain.SocketID {
	if ch.socket == nil {
		return ""
	}
	return ch.socket.id
}

// Hub multicasts what is sent on a channel to every joined handle of the same
// name, including the sender, and records chat lines in the message repository.
type Hub struct {
	mu         sync.Mutex
	log        *slog.Logger
	repository repositories.IMessageRepository
	supervisor contract.ISupervisor
	now        func() time.Time
	ctx        context.Context
	cancel     context.CancelFunc

	sockets  map[domain.SocketID]*socket
	handles  map[domain.ChannelID]*handle
	values   map[string]map[string]string // channel name, key
	lastTime int64
}

func NewHub(log *slog.Logger, repository repositories.IMessageRepository, supervisor contract.ISupervisor) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		log:        log,
		repository: repository,
		supervisor: supervisor,
		now:        time.Now,
		ctx:        ctx,
		cancel:     cancel,
		sockets:    make(map[domain.SocketID]*socket),
		handles:    make(map[domain.ChannelID]*handle),
		values:     make(map[string]map[string]string),
	}
}

// Close stops every socket pump. Later calls fail with ErrHubClosed.
func (h *Hub) Close() {
	h.cancel()
}

func (h *Hub) CreateSocket(done func(domain.SocketID, error)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.ctx.Err(); err != nil {
		go done("", errors.ErrHubClosed)
		return
	}
	id := domain.SocketID(uuid.NewString())
	h.sockets[id] = newSocket(id)
	h.log.Debug("Socket created", "socket", id)
	go done(id, nil)
}

func (h *Hub) CreateChannel(name string, done func(domain.ChannelID, error)) {
	canonical, err := domain.CanonicalChannelName(name)
	if err != nil {
		go done("", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	id := domain.ChannelID(uuid.NewString())
	h.handles[id] = &handle{id: id, name: canonical}
	h.log.Debug("Channel created", "channel", canonical, "id", id)
	go done(id, nil)
}

func (h *Hub) Bind(socketID domain.SocketID, channelID domain.ChannelID, done func(error)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sockets[socketID]
	if !ok {
		go done(fmt.Errorf("%w: %s", errors.ErrUnknownSocket, socketID))
		return
	}
	ch, ok := h.handles[channelID]
	if !ok {
		go done(fmt.Errorf("%w: %s", errors.ErrUnknownChannel, channelID))
		return
	}
	ch.socket = s
	go done(nil)
}

func (h *Hub) Join(channelID domain.ChannelID, done func(error)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch, err := h.handle(channelID)
	if err != nil {
		go done(err)
		return
	}
	if ch.socket == nil {
		go done(fmt.Errorf("%w: %s", errors.ErrNotBound, ch.name))
		return
	}
	ch.joined = true
	go done(nil)
}

func (h *Hub) Part(channelID domain.ChannelID, done func(error)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := h.handle(channelID); err != nil {
		go done(err)
		return
	}
	delete(h.handles, channelID)
	go done(nil)
}

// Send stamps payload and queues it on every member of the group.
// Members are queued before Send returns, done runs once the line is recorded.
func (h *Hub) Send(channelID domain.ChannelID, payload []byte, done func(error)) {
	h.mu.Lock()
	ch, err := h.handle(channelID)
	if err == nil && !ch.joined {
		err = fmt.Errorf("%w: %s", errors.ErrNotJoined, ch.name)
	}
	if err != nil {
		h.mu.Unlock()
		go done(err)
		return
	}
	at := h.timestamp()
	for _, member := range h.members(ch.name) {
		member.socket.push(contract.Delivery{
			Op:        contract.OpMessage,
			Channel:   member.id,
			Sender:    ch.socketID(),
			Payload:   payload,
			Timestamp: at,
		})
	}
	name := ch.name
	h.mu.Unlock()

	go func() {
		h.record(name, payload, at)
		done(nil)
	}()
}

// Listen starts the pump of a socket. Deliveries reach handler one at a time, in order.
// A socket has at most one listener, until CloseSocket.
func (h *Hub) Listen(socketID domain.SocketID, handler func(contract.Delivery), done func(error)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.ctx.Err(); err != nil {
		go done(errors.ErrHubClosed)
		return
	}
	s, ok := h.sockets[socketID]
	if !ok {
		go done(fmt.Errorf("%w: %s", errors.ErrUnknownSocket, socketID))
		return
	}
	if s.stop != nil {
		go done(fmt.Errorf("%w: %s", errors.ErrAlreadyListening, socketID))
		return
	}
	ctx, cancel := context.WithCancel(h.ctx)
	s.stop = cancel
	h.supervisor.Start(ctx, newPumpWorker(h.log, s, handler))
	go done(nil)
}

// CloseSocket stops the pump of a socket and forgets every channel bound to it.
// The pane that owned it is gone, its members receive nothing more.
func (h *Hub) CloseSocket(socketID domain.SocketID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sockets[socketID]
	if !ok {
		return
	}
	if s.stop != nil {
		s.stop()
	}
	delete(h.sockets, socketID)
	for id, ch := range h.handles {
		if ch.socket == s {
			delete(h.handles, id)
		}
	}
	h.log.Debug("Socket closed", "socket", socketID)
}

func (h *Hub) GetValue(channelID domain.ChannelID, key string, done func(string, error)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch, err := h.handle(channelID)
	if err != nil {
		go done("", err)
		return
	}
	value := h.values[ch.name][key]
	go done(value, nil)
}

// SetValue stores a value for the group and notifies the other members.
func (h *Hub) SetValue(channelID domain.ChannelID, key, value string, done func(error)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch, err := h.handle(channelID)
	if err != nil {
		go done(err)
		return
	}
	if _, ok := h.values[ch.name]; !ok {
		h.values[ch.name] = make(map[string]string)
	}
	h.values[ch.name][key] = value

	at := h.timestamp()
	for _, member := range h.members(ch.name) {
		if member.id == channelID {
			continue
		}
		member.socket.push(contract.Delivery{
			Op:        contract.OpSetValue,
			Channel:   member.id,
			Sender:    ch.socketID(),
			Key:       key,
			Payload:   []byte(value),
			Timestamp: at,
		})
	}
	go done(nil)
}

func (h *Hub) GetMessages(channelID domain.ChannelID, filter search.Filter, done func([]contract.StoredMessage, error)) {
	h.mu.Lock()
	ch, err := h.handle(channelID)
	h.mu.Unlock()
	if err != nil {
		go done(nil, err)
		return
	}

	go func() {
		messages, err := h.repository.GetMessages(h.ctx, ch.name, filter)
		if err != nil {
			done(nil, err)
			return
		}
		done(lo.Map(messages, func(m repositories.DiskMessage, _ int) contract.StoredMessage {
			return contract.StoredMessage{Payload: m.Payload, Timestamp: m.At}
		}), nil)
	}()
}

// record keeps chat lines only, presence is not history.
func (h *Hub) record(channel string, payload []byte, at int64) {
	msg, err := domain.DecodeMessage(payload, at)
	if err != nil {
		h.log.Debug("Not recording malformed payload", "channel", channel, "error", err)
		return
	}
	chat, ok := msg.(domain.ChatMessage)
	if !ok {
		return
	}
	err = h.repository.StoreMessage(repositories.DiskMessage{
		ID:      uuid.New(),
		Channel: channel,
		Nick:    chat.Nick,
		Text:    chat.Text,
		Payload: payload,
		At:      at,
	})
	if err != nil {
		h.log.Error("Message not recorded", "channel", channel, "error", err)
	}
}

func (h *Hub) handle(channelID domain.ChannelID) (*handle, error) {
	ch, ok := h.handles[channelID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownChannel, channelID)
	}
	return ch, nil
}

func (h *Hub) members(name string) []*handle {
	return lo.Filter(lo.Values(h.handles), func(ch *handle, _ int) bool {
		return ch.name == name && ch.joined && ch.socket != nil
	})
}

// timestamp is strictly increasing, history keys never collide on time alone.
func (h *Hub) timestamp() int64 {
	at := h.now().UnixNano()
	if at <= h.lastTime {
		at = h.lastTime + 1
	}
	h.lastTime = at
	return at
}
