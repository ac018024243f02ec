// Package commands parses "/command" lines and decides who may run them.
package commands

import (
	"chat-session/contract"
	"chat-session/errors"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// Marker starts every command line.
const Marker = "/"

const (
	CmdHelp   = "help"
	CmdNick   = "nick"
	CmdJoin   = "join"
	CmdPart   = "part"
	CmdTopic  = "topic"
	CmdSysmsg = "sysmsg"
	CmdSearch = "search"
	CmdRTL    = "rtl"
	CmdWho    = "who"
	CmdReset  = "reset"
)

var (
	// RemoteCommands may be run when received from a channel.
	// Locally typed, they are also forwarded to the active channel.
	RemoteCommands = []string{CmdSysmsg, CmdTopic}
	// LegacyRemoteCommands is what older peers accept.
	LegacyRemoteCommands = []string{CmdSysmsg}
)

// Command is one parsed command line.
type Command struct {
	Name   string
	Args   []string // positional arguments, Args[0] is the command token itself
	Line   string
	Remote bool
	Origin string // channel a remote command was read on
	Sender string
}

// Text joins the arguments, as typed.
func (c Command) Text() string {
	return strings.Join(c.Args[1:], " ")
}

// Arg returns the i-th positional argument, empty when missing.
func (c Command) Arg(i int) string {
	if i < len(c.Args) {
		return c.Args[i]
	}
	return ""
}

// Parse splits line on single spaces. ok is false when line is not a command.
func Parse(line string) (Command, bool) {
	if !strings.HasPrefix(line, Marker) {
		return Command{}, false
	}
	args := strings.Split(line, " ")
	return Command{
		Name: strings.TrimPrefix(args[0], Marker),
		Args: args,
		Line: line,
	}, true
}

type handler func(ctx context.Context, cmd Command) error

// Router runs commands typed locally or received from peers.
type Router struct {
	log       *slog.Logger
	session   contract.SessionStore
	channels  contract.Channels
	view      contract.View
	validate  *validator.Validate
	whitelist []string
	handlers  map[string]handler
}

func NewRouter(
	log *slog.Logger,
	session contract.SessionStore,
	channels contract.Channels,
	view contract.View,
	whitelist []string,
) *Router {
	r := &Router{
		log:       log,
		session:   session,
		channels:  channels,
		view:      view,
		validate:  validator.New(),
		whitelist: lo.Intersect(RemoteCommands, whitelist),
	}
	r.handlers = map[string]handler{
		CmdHelp:   r.help,
		CmdNick:   r.nick,
		CmdJoin:   r.join,
		CmdPart:   r.part,
		CmdTopic:  r.topic,
		CmdSysmsg: r.sysmsg,
		CmdSearch: r.search,
		CmdRTL:    r.rtl,
		CmdWho:    r.who,
		CmdReset:  r.reset,
	}
	return r
}

// HandleLocal runs a line typed by the user.
// It returns false when the line is not a command and must be sent as chat.
// Unknown commands are swallowed.
func (r *Router) HandleLocal(ctx context.Context, line string) bool {
	cmd, ok := Parse(line)
	if !ok {
		return false
	}

	if r.forwarded(cmd.Name) {
		if _, active := r.channels.Active(); active {
			if err := r.channels.Broadcast(cmd.Line); err != nil {
				r.log.Warn("Command not forwarded", "command", cmd.Name, "error", err)
			}
		}
	}

	r.dispatch(ctx, cmd)
	return true
}

// HandleRemote runs a line read on channel origin.
// Only whitelisted commands run, anything else is logged and dropped.
// Commands run here are never forwarded again.
func (r *Router) HandleRemote(ctx context.Context, origin, sender, line string) bool {
	cmd, ok := Parse(line)
	if !ok {
		return false
	}
	cmd.Remote = true
	cmd.Origin = origin
	cmd.Sender = sender

	if !r.forwarded(cmd.Name) {
		r.log.Warn("Bad remote command received", "command", cmd.Name, "channel", origin, "sender", sender,
			"error", errors.ErrUnauthorizedCommand)
		return true
	}

	r.dispatch(ctx, cmd)
	return true
}

// reset is destructive and local, it never leaves this client.
func (r *Router) forwarded(name string) bool {
	return name != CmdReset && lo.Contains(r.whitelist, name)
}

func (r *Router) dispatch(ctx context.Context, cmd Command) {
	h, ok := r.handlers[cmd.Name]
	if !ok {
		r.log.Debug("Unknown command ignored", "command", cmd.Name)
		return
	}
	if err := h(ctx, cmd); err != nil {
		r.log.Warn("Command failed", "command", cmd.Name, "remote", cmd.Remote, "error", err)
		if !cmd.Remote {
			r.view.System("", fmt.Sprintf("%s%s: %v", Marker, cmd.Name, err))
		}
	}
}
