package runtime

import (
	"chat-session/commands"
	"chat-session/contract"
	"chat-session/domain"
	"chat-session/mocks"
	"chat-session/repositories"
	"chat-session/runtime/workers"
	"chat-session/session"
	"chat-session/transport"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const eventually = 2 * time.Second

func newTestHub(t *testing.T) *transport.Hub {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	writer, err := bluge.OpenWriter(bluge.InMemoryOnlyConfig())
	req.NoError(err)

	supervisor := workers.NewSupervisor(log, 0)
	hub := transport.NewHub(log, repositories.NewMessageRepository(db, writer, log, nil), supervisor)
	t.Cleanup(func() {
		hub.Close()
		supervisor.Wait()
		_ = writer.Close()
		_ = db.Close()
	})
	return hub
}

// startClient starts a pane on hub. A nil prompter needs nick to be cached.
func startClient(t *testing.T, hub contract.Transport, cache *repositories.MemoryCache, prompter *mocks.MockPrompter) (*Client, *recordingView) {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	view := newRecordingView()
	var p contract.Prompter
	if prompter != nil {
		p = prompter
	}
	client := NewClient(log, hub, cache, p, view, ClientConfig{
		DefaultChannel:    domain.DefaultChannel,
		DefaultNick:       domain.DefaultNick,
		HeartbeatInterval: 20 * time.Millisecond,
		LoopBufferSize:    64,
		RestartInterval:   0,
		RemoteCommands:    commands.RemoteCommands,
	})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, client.Start(ctx))
	t.Cleanup(func() {
		client.Stop()
		cancel()
	})
	return client, view
}

func activeChannel(t *testing.T, client *Client) string {
	var name string
	require.NoError(t, client.Inspect(context.Background(), func(b *Binder, _ *session.Session) {
		name, _ = b.Active()
	}))
	return name
}

func waitActive(t *testing.T, client *Client, name string) {
	require.Eventually(t, func() bool {
		var state State
		_ = client.Inspect(context.Background(), func(b *Binder, _ *session.Session) {
			if binding, ok := b.Binding(name); ok {
				state = binding.State()
			}
		})
		return state == Active
	}, eventually, 5*time.Millisecond)
}

func cachedNick(nick string) *repositories.MemoryCache {
	cache := repositories.NewMemoryCache()
	_ = cache.Set(session.KeyNick, nick)
	return cache
}

func TestClient_Start_EmptyCache(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	prompter := mocks.NewMockPrompter(ctrl)
	cache := repositories.NewMemoryCache()

	// Then the nick is asked exactly once
	prompter.EXPECT().Prompt(gomock.Any(), "guest").Return("alice", true).Times(1)

	// When a first start finds nothing cached
	client, view := startClient(t, newTestHub(t), cache, prompter)

	// Then the default channel is joined and active
	waitActive(t, client, "#welcome")
	req.Equal("#welcome", activeChannel(t, client))
	req.Contains(view.systemLines(), "#welcome alice has joined #welcome")

	// And everything was persisted
	nick, ok, err := cache.Get(session.KeyNick)
	req.NoError(err)
	req.True(ok)
	req.Equal("alice", nick)
	channels, _, _ := cache.Get(session.KeyChannels)
	req.Equal(`["#welcome"]`, channels)
}

func TestClient_Start_RestoresCachedChannels(t *testing.T) {
	req := require.New(t)
	cache := cachedNick("alice")
	req.NoError(cache.Set(session.KeyChannels, `["#a","#b"]`))
	req.NoError(cache.Set(session.KeyActiveChannel, "#b"))

	client, _ := startClient(t, newTestHub(t), cache, nil)

	waitActive(t, client, "#a")
	waitActive(t, client, "#b")
	req.Equal("#b", activeChannel(t, client))
}

func TestClient_Submit_ChatIsEchoed(t *testing.T) {
	req := require.New(t)
	client, view := startClient(t, newTestHub(t), cachedNick("alice"), nil)
	waitActive(t, client, "#welcome")

	// Blank lines are ignored
	req.NoError(client.Submit(context.Background(), "   "))
	req.NoError(client.Submit(context.Background(), "hello"))

	req.Eventually(func() bool {
		return lo.SomeBy(view.shown(), func(m shownMessage) bool {
			return m.channel == "#welcome" && m.msg.Nick == "alice" && m.msg.Text == "hello" && !m.history
		})
	}, eventually, 5*time.Millisecond)
	req.Len(view.shown(), 1)
}

func TestClient_Submit_RemoteCommandRunsOnPeer(t *testing.T) {
	req := require.New(t)
	hub := newTestHub(t)
	alice, aliceView := startClient(t, hub, cachedNick("alice"), nil)
	bob, bobView := startClient(t, hub, cachedNick("bob"), nil)
	waitActive(t, alice, "#welcome")
	waitActive(t, bob, "#welcome")

	req.NoError(alice.Submit(context.Background(), "/sysmsg deploy done"))

	// Then bob shows it as a system line of the channel
	req.Eventually(func() bool {
		return lo.Contains(bobView.systemLines(), "#welcome deploy done")
	}, eventually, 5*time.Millisecond)

	// And alice showed it once, without rendering the raw command
	req.Eventually(func() bool {
		return lo.Count(aliceView.systemLines(), " deploy done") == 1
	}, eventually, 5*time.Millisecond)
	req.Empty(aliceView.shown())
	req.Empty(bobView.shown())
}

func TestClient_Submit_RemoteCommandFromPeerWithSameNick(t *testing.T) {
	req := require.New(t)
	hub := newTestHub(t)
	// Given two panes that both kept the default nick
	first, firstView := startClient(t, hub, cachedNick("guest"), nil)
	second, secondView := startClient(t, hub, cachedNick("guest"), nil)
	waitActive(t, first, "#welcome")
	waitActive(t, second, "#welcome")

	// When the first one sends a whitelisted command
	req.NoError(first.Submit(context.Background(), "/sysmsg deploy done"))

	// Then the second one runs it as coming from a peer
	req.Eventually(func() bool {
		return lo.Contains(secondView.systemLines(), "#welcome deploy done")
	}, eventually, 5*time.Millisecond)

	// And the first one does not run its own echo again
	req.Never(func() bool {
		return lo.Contains(firstView.systemLines(), "#welcome deploy done")
	}, 100*time.Millisecond, 10*time.Millisecond)
	req.Equal(1, lo.Count(firstView.systemLines(), " deploy done"))
}

// stalledSends never completes a Send, nor delivers it.
type stalledSends struct {
	contract.Transport
	mu      sync.Mutex
	pending int
}

func (s *stalledSends) Send(domain.ChannelID, []byte, func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending++
}

func TestClient_Submit_LoopStaysResponsiveWhileSending(t *testing.T) {
	req := require.New(t)
	stalled := &stalledSends{Transport: newTestHub(t)}
	client, _ := startClient(t, stalled, cachedNick("alice"), nil)
	waitActive(t, client, "#welcome")

	// When a line is sent on a transport that never answers
	req.NoError(client.Submit(context.Background(), "hello"))

	// Then the loop is immediately available again
	start := time.Now()
	req.NoError(client.Inspect(context.Background(), func(*Binder, *session.Session) {}))
	req.Less(time.Since(start), 100*time.Millisecond)

	stalled.mu.Lock()
	defer stalled.mu.Unlock()
	req.Positive(stalled.pending)
}

func TestClient_Submit_ResetIsNeverForwarded(t *testing.T) {
	req := require.New(t)
	hub := newTestHub(t)
	aliceCache := cachedNick("alice")
	bobCache := cachedNick("bob")
	alice, _ := startClient(t, hub, aliceCache, nil)
	bob, bobView := startClient(t, hub, bobCache, nil)
	waitActive(t, alice, "#welcome")
	waitActive(t, bob, "#welcome")

	req.NoError(alice.Submit(context.Background(), "/reset"))
	req.NoError(alice.Submit(context.Background(), "after reset"))

	// Bob sees the chat that followed, never the reset
	req.Eventually(func() bool {
		return lo.SomeBy(bobView.shown(), func(m shownMessage) bool { return m.msg.Text == "after reset" })
	}, eventually, 5*time.Millisecond)
	req.False(lo.SomeBy(bobView.shown(), func(m shownMessage) bool { return m.msg.Text == "/reset" }))

	_, ok, _ := aliceCache.Get(session.KeyNick)
	req.False(ok)
	nick, ok, _ := bobCache.Get(session.KeyNick)
	req.True(ok)
	req.Equal("bob", nick)
}

func TestClient_Recall(t *testing.T) {
	req := require.New(t)
	client, _ := startClient(t, newTestHub(t), cachedNick("alice"), nil)
	waitActive(t, client, "#welcome")

	req.NoError(client.Submit(context.Background(), "first"))
	req.NoError(client.Submit(context.Background(), "second"))

	line, err := client.Recall(context.Background(), commands.Older, "draft")
	req.NoError(err)
	req.Equal("second", line)
	line, err = client.Recall(context.Background(), commands.Older, line)
	req.NoError(err)
	req.Equal("first", line)
	line, err = client.Recall(context.Background(), commands.Newer, line)
	req.NoError(err)
	req.Equal("second", line)
	line, err = client.Recall(context.Background(), commands.Newer, line)
	req.NoError(err)
	req.Equal("draft", line)
}

func TestClient_Reconnect_KeepsOneBindingPerChannel(t *testing.T) {
	req := require.New(t)
	client, view := startClient(t, newTestHub(t), cachedNick("alice"), nil)
	waitActive(t, client, "#welcome")

	var before domain.ChannelID
	req.NoError(client.Inspect(context.Background(), func(b *Binder, _ *session.Session) {
		binding, _ := b.Binding("#welcome")
		before = binding.ChannelID
	}))

	req.NoError(client.Reconnect(context.Background()))

	req.Eventually(func() bool {
		var rebound bool
		_ = client.Inspect(context.Background(), func(b *Binder, _ *session.Session) {
			binding, ok := b.Binding("#welcome")
			rebound = ok && b.Bindings() == 1 && binding.ChannelID != before && binding.State() == Active
		})
		return rebound
	}, eventually, 5*time.Millisecond)
	req.Equal("#welcome", activeChannel(t, client))

	view.mu.Lock()
	defer view.mu.Unlock()
	req.Equal([]string{"#welcome"}, view.added)
	req.Equal([]string{"#welcome"}, view.remapped)
}
