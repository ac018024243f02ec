// Package runtime binds channels over a transport and keeps their users.
// It orchestrates the session without containing rendering or storage logic.
package runtime

import (
	"chat-session/commands"
	"chat-session/contract"
	"chat-session/domain"
	"chat-session/runtime/workers"
	"chat-session/session"
	"context"
	"log/slog"
	"strings"
	"time"
)

// ClientConfig holds the tunables of a Client.
type ClientConfig struct {
	DefaultChannel    string
	DefaultNick       string
	HeartbeatInterval time.Duration
	LoopBufferSize    int
	RestartInterval   time.Duration
	RemoteCommands    []string
}

// Client is one chat pane: a session, the channels it is bound to, and the
// commands typed into it. Everything runs on a single event loop.
type Client struct {
	log        *slog.Logger
	loop       *workers.EventLoop
	supervisor *workers.Supervisor
	session    *session.Session
	presence   *PresenceTracker
	binder     *Binder
	router     *commands.Router
	history    *commands.History
	view       contract.View
	ctx        context.Context
}

func NewClient(
	log *slog.Logger,
	transport contract.Transport,
	cache contract.Cache,
	prompter contract.Prompter,
	view contract.View,
	cfg ClientConfig,
) *Client {
	loop := workers.NewEventLoop(log, cfg.LoopBufferSize)
	supervisor := workers.NewSupervisor(log, cfg.RestartInterval)
	sess := session.NewSession(log, cache, prompter, cfg.DefaultChannel, cfg.DefaultNick)
	presence := NewPresenceTracker(view, time.Now)
	binder := NewBinder(log, transport, loop, supervisor, sess, presence, view, cfg.HeartbeatInterval)
	router := commands.NewRouter(log, sess, binder, view, cfg.RemoteCommands)

	c := &Client{
		log:        log,
		loop:       loop,
		supervisor: supervisor,
		session:    sess,
		presence:   presence,
		binder:     binder,
		router:     router,
		history:    commands.NewHistory(),
		view:       view,
		ctx:        context.Background(),
	}
	binder.OnChat(c.onChat)
	return c
}

// Start runs the event loop under supervision, loads the session and
// joins every known channel. It returns once the handshakes are started;
// the loop keeps running until ctx is canceled.
func (c *Client) Start(ctx context.Context) error {
	c.ctx = ctx
	c.supervisor.Add(c.loop)
	go c.supervisor.Run(ctx)

	return c.loop.Call(ctx, func() {
		c.session.Load(ctx)
		active := c.session.ActiveChannelName()
		for _, name := range c.session.ChannelNames() {
			if err := c.binder.Join(ctx, name, name == active); err != nil {
				c.log.Warn("Cannot rejoin channel", "channel", name, "error", err)
			}
		}
	})
}

// Stop cancels every heartbeat and the loop, then waits for them.
func (c *Client) Stop() {
	c.log.Info("Requesting client shutdown")
	_ = c.loop.Call(context.Background(), c.binder.Close)
	c.supervisor.Stop()
	c.supervisor.Wait()
}

// Submit handles one line of user input: a command, or chat for the active channel.
func (c *Client) Submit(ctx context.Context, line string) error {
	return c.loop.Call(ctx, func() {
		if strings.TrimSpace(line) == "" {
			return
		}
		c.history.Push(line)
		c.history.Reset()

		if c.router.HandleLocal(ctx, line) {
			return
		}
		if err := c.binder.Broadcast(line); err != nil {
			c.log.Debug("Line not sent", "error", err)
			c.view.System("", "not sent: join a channel first")
		}
	})
}

// Recall walks the input history. current is what is being typed.
func (c *Client) Recall(ctx context.Context, direction commands.Direction, current string) (string, error) {
	var line string
	err := c.loop.Call(ctx, func() {
		line = c.history.Navigate(direction, current)
	})
	return line, err
}

// Reconnect binds every channel again on a new socket.
func (c *Client) Reconnect(ctx context.Context) error {
	return c.loop.Call(ctx, func() { c.binder.Reconnect(ctx) })
}

// Inspect runs fn on the event loop with read access to the binder and session.
func (c *Client) Inspect(ctx context.Context, fn func(*Binder, *session.Session)) error {
	return c.loop.Call(ctx, func() { fn(c.binder, c.session) })
}

// onChat runs whitelisted command lines sent by peers, and renders the rest.
// Command lines sent from our own socket already ran when they were typed.
func (c *Client) onChat(binding *ChannelBinding, msg domain.ChatMessage, own bool) {
	if _, ok := commands.Parse(msg.Text); ok && own {
		return
	}
	if c.router.HandleRemote(c.ctx, binding.Name, msg.Nick, msg.Text) {
		return
	}
	c.view.Message(binding.Name, msg, false)
}
