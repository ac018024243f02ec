package runtime

import (
	"chat-session/contract"
	"chat-session/domain"
	"chat-session/domain/search"
	"context"
	"fmt"
	"sync"
)

// fakeTransport records requests and lets tests decide when and how each completes.
type fakeTransport struct {
	socketRequests  []func(domain.SocketID, error)
	channelRequests map[string][]func(domain.ChannelID, error)
	binds           map[domain.ChannelID]func(error)
	joins           map[domain.ChannelID]func(error)
	values          map[domain.ChannelID]func(string, error)
	histories       map[domain.ChannelID]func([]contract.StoredMessage, error)
	filters         map[domain.ChannelID]search.Filter
	stored          map[domain.ChannelID]map[string]string
	sent            []sentPayload
	parted          []domain.ChannelID
	listener        func(contract.Delivery)
	listenErr       error
	sendErr         error

	// held completions, answered by the test
	holdListen   bool
	listenDone   func(error)
	holdSends    bool
	pendingSends []func(error)
}

type sentPayload struct {
	channel domain.ChannelID
	payload []byte
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		channelRequests: make(map[string][]func(domain.ChannelID, error)),
		binds:           make(map[domain.ChannelID]func(error)),
		joins:           make(map[domain.ChannelID]func(error)),
		values:          make(map[domain.ChannelID]func(string, error)),
		histories:       make(map[domain.ChannelID]func([]contract.StoredMessage, error)),
		filters:         make(map[domain.ChannelID]search.Filter),
		stored:          make(map[domain.ChannelID]map[string]string),
	}
}

func (f *fakeTransport) CreateSocket(done func(domain.SocketID, error)) {
	f.socketRequests = append(f.socketRequests, done)
}

func (f *fakeTransport) CreateChannel(name string, done func(domain.ChannelID, error)) {
	f.channelRequests[name] = append(f.channelRequests[name], done)
}

func (f *fakeTransport) Bind(_ domain.SocketID, channel domain.ChannelID, done func(error)) {
	f.binds[channel] = done
}

func (f *fakeTransport) Join(channel domain.ChannelID, done func(error)) {
	f.joins[channel] = done
}

func (f *fakeTransport) Part(channel domain.ChannelID, done func(error)) {
	f.parted = append(f.parted, channel)
	done(nil)
}

func (f *fakeTransport) Send(channel domain.ChannelID, payload []byte, done func(error)) {
	if f.sendErr != nil {
		done(f.sendErr)
		return
	}
	f.sent = append(f.sent, sentPayload{channel: channel, payload: payload})
	if f.holdSends {
		f.pendingSends = append(f.pendingSends, done)
		return
	}
	done(nil)
}

func (f *fakeTransport) Listen(_ domain.SocketID, handler func(contract.Delivery), done func(error)) {
	if f.listenErr != nil {
		done(f.listenErr)
		return
	}
	f.listener = handler
	if f.holdListen {
		f.listenDone = done
		return
	}
	done(nil)
}

func (f *fakeTransport) GetValue(channel domain.ChannelID, _ string, done func(string, error)) {
	f.values[channel] = done
}

func (f *fakeTransport) SetValue(channel domain.ChannelID, key, value string, done func(error)) {
	if f.stored[channel] == nil {
		f.stored[channel] = make(map[string]string)
	}
	f.stored[channel][key] = value
	done(nil)
}

func (f *fakeTransport) GetMessages(channel domain.ChannelID, filter search.Filter, done func([]contract.StoredMessage, error)) {
	f.filters[channel] = filter
	f.histories[channel] = done
}

// completeSocket answers the n-th socket request.
func (f *fakeTransport) completeSocket(n int, id domain.SocketID, err error) {
	f.socketRequests[n](id, err)
}

// completeChannel answers the last CreateChannel request for name.
func (f *fakeTransport) completeChannel(name string, id domain.ChannelID, err error) {
	requests := f.channelRequests[name]
	requests[len(requests)-1](id, err)
}

// messages decodes what was sent on channel.
func (f *fakeTransport) messages(channel domain.ChannelID) []domain.Message {
	var messages []domain.Message
	for _, s := range f.sent {
		if s.channel != channel {
			continue
		}
		msg, err := domain.DecodeMessage(s.payload, 0)
		if err != nil {
			panic(fmt.Sprintf("undecodable payload %q", s.payload))
		}
		messages = append(messages, msg)
	}
	return messages
}

// inlineDispatcher runs posted tasks right away, the test goroutine plays the loop.
type inlineDispatcher struct{}

func (inlineDispatcher) Post(task func()) { task() }

type startedWorker struct {
	ctx    context.Context
	worker contract.Worker
}

// recordingStarter keeps workers without running them.
type recordingStarter struct {
	started []startedWorker
}

func (s *recordingStarter) Start(ctx context.Context, worker contract.Worker) {
	s.started = append(s.started, startedWorker{ctx: ctx, worker: worker})
}

type shownMessage struct {
	channel string
	msg     domain.ChatMessage
	history bool
}

// recordingView keeps everything rendered.
type recordingView struct {
	mu       sync.Mutex
	system   []string
	messages []shownMessage
	topics   map[string]string
	added    []string
	remapped []string
	removed  []string
	active   []string
	rtl      bool
}

func newRecordingView() *recordingView {
	return &recordingView{topics: make(map[string]string)}
}

func (v *recordingView) System(channel, text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.system = append(v.system, channel+" "+text)
}

func (v *recordingView) Message(channel string, msg domain.ChatMessage, history bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.messages = append(v.messages, shownMessage{channel: channel, msg: msg, history: history})
}

func (v *recordingView) Topic(channel, topic string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.topics[channel] = topic
}

func (v *recordingView) ChannelAdded(channel string, _ domain.ChannelID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.added = append(v.added, channel)
}

func (v *recordingView) ChannelRemapped(channel string, _, _ domain.ChannelID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.remapped = append(v.remapped, channel)
}

func (v *recordingView) ChannelRemoved(channel string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.removed = append(v.removed, channel)
}

func (v *recordingView) ChannelActivated(channel string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.active = append(v.active, channel)
}

func (v *recordingView) Users(channel string, users []domain.User) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.system = append(v.system, fmt.Sprintf("%s %d user(s)", channel, len(users)))
}

func (v *recordingView) ToggleRTL() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rtl = !v.rtl
	return v.rtl
}

func (v *recordingView) systemLines() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.system...)
}

func (v *recordingView) shown() []shownMessage {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]shownMessage(nil), v.messages...)
}
