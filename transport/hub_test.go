package transport

import (
	"chat-session/contract"
	"chat-session/domain"
	"chat-session/domain/search"
	"chat-session/errors"
	"chat-session/mocks"
	"chat-session/repositories"
	"chat-session/runtime/workers"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const waitFor = time.Second

func newTestHub(t *testing.T) *Hub {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	writer, err := bluge.OpenWriter(bluge.InMemoryOnlyConfig())
	req.NoError(err)

	supervisor := workers.NewSupervisor(log, 0)
	hub := NewHub(log, repositories.NewMessageRepository(db, writer, log, nil), supervisor)
	t.Cleanup(func() {
		hub.Close()
		supervisor.Wait()
		_ = writer.Close()
		_ = db.Close()
	})
	return hub
}

type member struct {
	socket     domain.SocketID
	channel    domain.ChannelID
	deliveries chan contract.Delivery
}

// connect runs the whole socket and channel sequence synchronously.
func connect(t *testing.T, hub *Hub, name string) member {
	req := require.New(t)
	m := member{deliveries: make(chan contract.Delivery, 128)}

	sockets := make(chan domain.SocketID, 1)
	hub.CreateSocket(func(id domain.SocketID, err error) {
		req.NoError(err)
		sockets <- id
	})
	m.socket = <-sockets
	errs := make(chan error, 1)
	hub.Listen(m.socket, func(d contract.Delivery) { m.deliveries <- d }, func(err error) { errs <- err })
	req.NoError(<-errs)

	channels := make(chan domain.ChannelID, 1)
	hub.CreateChannel(name, func(id domain.ChannelID, err error) {
		req.NoError(err)
		channels <- id
	})
	m.channel = <-channels

	hub.Bind(m.socket, m.channel, func(err error) { errs <- err })
	req.NoError(<-errs)
	hub.Join(m.channel, func(err error) { errs <- err })
	req.NoError(<-errs)
	return m
}

// send waits for the completion of one Send.
func send(hub *Hub, channel domain.ChannelID, payload []byte) error {
	errs := make(chan error, 1)
	hub.Send(channel, payload, func(err error) { errs <- err })
	return <-errs
}

func part(hub *Hub, channel domain.ChannelID) error {
	errs := make(chan error, 1)
	hub.Part(channel, func(err error) { errs <- err })
	return <-errs
}

func receive(t *testing.T, m member) contract.Delivery {
	select {
	case d := <-m.deliveries:
		return d
	case <-time.After(waitFor):
		require.FailNow(t, "no delivery")
		return contract.Delivery{}
	}
}

func TestHub_Send_MulticastsToGroupIncludingSender(t *testing.T) {
	req := require.New(t)
	hub := newTestHub(t)

	// Given alice and bob on #dev, carol on #ops
	alice := connect(t, hub, "#dev")
	bob := connect(t, hub, "#Dev")
	carol := connect(t, hub, "#ops")

	// When alice sends a line
	payload := []byte(`{"nick":"alice","text":"hi","type":"chat"}`)
	req.NoError(send(hub, alice.channel, payload))

	// Then both members of #dev receive it on their own channel id, with one timestamp
	got := receive(t, alice)
	req.Equal(contract.OpMessage, got.Op)
	req.Equal(alice.channel, got.Channel)
	req.Equal(payload, got.Payload)
	req.Equal(alice.socket, got.Sender)

	other := receive(t, bob)
	req.Equal(bob.channel, other.Channel)
	req.Equal(alice.socket, other.Sender)
	req.Equal(got.Timestamp, other.Timestamp)

	// And nothing reaches #ops
	select {
	case d := <-carol.deliveries:
		req.Fail("unexpected delivery", "%+v", d)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_Send_PreservesOrderPerSocket(t *testing.T) {
	req := require.New(t)
	hub := newTestHub(t)
	alice := connect(t, hub, "#dev")

	for i := 0; i < 50; i++ {
		req.NoError(send(hub, alice.channel, []byte(fmt.Sprintf("line %d", i))))
	}

	var last int64
	for i := 0; i < 50; i++ {
		d := receive(t, alice)
		req.Equal(fmt.Sprintf("line %d", i), string(d.Payload))
		req.Greater(d.Timestamp, last)
		last = d.Timestamp
	}
}

func TestHub_Send_NotJoined(t *testing.T) {
	req := require.New(t)
	hub := newTestHub(t)

	channels := make(chan domain.ChannelID, 1)
	hub.CreateChannel("#dev", func(id domain.ChannelID, err error) { channels <- id })
	id := <-channels

	req.ErrorIs(send(hub, id, []byte("hi")), errors.ErrNotJoined)
	req.ErrorIs(send(hub, "nope", []byte("hi")), errors.ErrUnknownChannel)

	errs := make(chan error, 1)
	hub.Join(id, func(err error) { errs <- err })
	req.ErrorIs(<-errs, errors.ErrNotBound)
	hub.Bind("nope", id, func(err error) { errs <- err })
	req.ErrorIs(<-errs, errors.ErrUnknownSocket)
}

func TestHub_CreateChannel_InvalidName(t *testing.T) {
	hub := newTestHub(t)

	errs := make(chan error, 1)
	hub.CreateChannel("#", func(_ domain.ChannelID, err error) { errs <- err })

	require.ErrorIs(t, <-errs, errors.ErrInvalidName)
}

func TestHub_SetValue_NotifiesOthers(t *testing.T) {
	req := require.New(t)
	hub := newTestHub(t)
	alice := connect(t, hub, "#dev")
	bob := connect(t, hub, "#dev")

	// When alice stores a topic
	errs := make(chan error, 1)
	hub.SetValue(alice.channel, "topic", "release friday", func(err error) { errs <- err })
	req.NoError(<-errs)

	// Then bob is told, alice is not
	d := receive(t, bob)
	req.Equal(contract.OpSetValue, d.Op)
	req.Equal("topic", d.Key)
	req.Equal("release friday", string(d.Payload))
	select {
	case d := <-alice.deliveries:
		req.Fail("setter notified", "%+v", d)
	case <-time.After(50 * time.Millisecond):
	}

	// And anyone can read it back
	values := make(chan string, 1)
	hub.GetValue(bob.channel, "topic", func(v string, err error) {
		req.NoError(err)
		values <- v
	})
	req.Equal("release friday", <-values)
	hub.GetValue(bob.channel, "missing", func(v string, err error) { values <- v })
	req.Equal("", <-values)
}

func TestHub_GetMessages_RecordsChatOnly(t *testing.T) {
	req := require.New(t)
	hub := newTestHub(t)
	alice := connect(t, hub, "#dev")

	chat, err := domain.EncodeMessage(domain.ChatMessage{Nick: "alice", Text: "deploy done"})
	req.NoError(err)
	presence, err := domain.EncodeMessage(domain.Presence{Nick: "alice", Kind: domain.Join})
	req.NoError(err)

	req.NoError(send(hub, alice.channel, presence))
	req.NoError(send(hub, alice.channel, chat))
	receive(t, alice)
	sent := receive(t, alice)

	results := make(chan []contract.StoredMessage, 1)
	hub.GetMessages(alice.channel, search.NewerThan(0), func(messages []contract.StoredMessage, err error) {
		req.NoError(err)
		results <- messages
	})
	messages := <-results
	req.Len(messages, 1)
	req.Equal(chat, messages[0].Payload)
	req.Equal(sent.Timestamp, messages[0].Timestamp)

	// Strictly newer than the last one seen: nothing
	hub.GetMessages(alice.channel, search.NewerThan(sent.Timestamp), func(messages []contract.StoredMessage, err error) {
		req.NoError(err)
		results <- messages
	})
	req.Empty(<-results)

	keyword, err := search.ParseFilter("deploy")
	req.NoError(err)
	hub.GetMessages(alice.channel, keyword, func(messages []contract.StoredMessage, err error) {
		req.NoError(err)
		results <- messages
	})
	req.Len(<-results, 1)
}

func TestHub_Part_StopsDeliveries(t *testing.T) {
	req := require.New(t)
	hub := newTestHub(t)
	alice := connect(t, hub, "#dev")
	bob := connect(t, hub, "#dev")

	req.NoError(part(hub, bob.channel))
	req.ErrorIs(part(hub, bob.channel), errors.ErrUnknownChannel)

	req.NoError(send(hub, alice.channel, []byte("anyone?")))
	receive(t, alice)
	select {
	case d := <-bob.deliveries:
		req.Fail("parted member received", "%+v", d)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_GetMessages_RepositoryFailure(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIMessageRepository(ctrl)
	supervisor := workers.NewSupervisor(log, 0)
	hub := NewHub(log, repository, supervisor)
	defer hub.Close()

	channels := make(chan domain.ChannelID, 1)
	hub.CreateChannel("#dev", func(id domain.ChannelID, _ error) { channels <- id })
	id := <-channels

	// Given the history store is broken
	repository.EXPECT().GetMessages(gomock.Any(), "#dev", search.NewerThan(0)).Return(nil, fmt.Errorf("disk gone"))

	// Then the failure reaches the caller
	errs := make(chan error, 1)
	hub.GetMessages(id, search.NewerThan(0), func(_ []contract.StoredMessage, err error) { errs <- err })
	req.EqualError(<-errs, "disk gone")
}

func TestHub_Listen_OncePerSocket(t *testing.T) {
	req := require.New(t)
	hub := newTestHub(t)
	alice := connect(t, hub, "#dev")

	// When a second listener is attached to the same socket
	errs := make(chan error, 1)
	hub.Listen(alice.socket, func(contract.Delivery) {}, func(err error) { errs <- err })

	// Then it is refused, and the first one keeps every delivery
	req.ErrorIs(<-errs, errors.ErrAlreadyListening)
	req.NoError(send(hub, alice.channel, []byte("mine")))
	req.Equal("mine", string(receive(t, alice).Payload))

	hub.Listen("nope", func(contract.Delivery) {}, func(err error) { errs <- err })
	req.ErrorIs(<-errs, errors.ErrUnknownSocket)
}

func TestHub_CloseSocket_ForgetsItsMembers(t *testing.T) {
	req := require.New(t)
	hub := newTestHub(t)
	alice := connect(t, hub, "#dev")
	bob := connect(t, hub, "#dev")

	// Given bob's pane went away
	hub.CloseSocket(bob.socket)
	hub.CloseSocket(bob.socket)

	// Then his channel is unknown and nothing is queued for him
	req.ErrorIs(send(hub, bob.channel, []byte("hi")), errors.ErrUnknownChannel)
	req.NoError(send(hub, alice.channel, []byte("still here")))
	receive(t, alice)
	select {
	case d := <-bob.deliveries:
		req.Fail("closed socket received", "%+v", d)
	case <-time.After(50 * time.Millisecond):
	}
	hub.mu.Lock()
	req.Len(hub.members("#dev"), 1)
	req.NotContains(hub.sockets, bob.socket)
	hub.mu.Unlock()

	// And a socket id cannot be listened to again
	errs := make(chan error, 1)
	hub.Listen(bob.socket, func(contract.Delivery) {}, func(err error) { errs <- err })
	req.ErrorIs(<-errs, errors.ErrUnknownSocket)
}
