package commands

import (
	"chat-session/domain"
	"chat-session/domain/search"
	"chat-session/errors"
	"context"
	"fmt"
)

var helpLines = []string{
	"/help",
	"  commands: ",
	"  /help                       - displays this help message",
	"  /nick nickname              - changes your channel nick",
	"  /join channel               - join channel",
	"  /part [channel]             - leave active or specified channel",
	"  /topic text                 - set channel topic",
	"  /sysmsg text                - display a system message",
	"  /search filter              - search channel history (key=word, time>2017-12-08)",
	"  /who                        - list users of the active channel",
	"  /rtl                        - toggle right-to-left text",
	"  /reset                      - delete all local storage",
	"",
}

func (r *Router) help(_ context.Context, _ Command) error {
	for _, line := range helpLines {
		r.view.System("", line)
	}
	return nil
}

func (r *Router) nick(_ context.Context, cmd Command) error {
	nick := cmd.Arg(1)
	if err := r.validate.Var(nick, domain.NickRule); err != nil {
		return fmt.Errorf("%w %q: usage /nick nickname", errors.ErrInvalidNick, nick)
	}

	previous := r.session.Nick()
	if previous == nick {
		return nil
	}
	if _, active := r.channels.Active(); active && previous != "" {
		announce := fmt.Sprintf("%s%s %s is now known as %s", Marker, CmdSysmsg, previous, nick)
		if err := r.channels.Broadcast(announce); err != nil {
			r.log.Warn("Nick change not announced", "error", err)
		}
	}
	r.session.SetNick(nick)
	r.view.System("", fmt.Sprintf("you are now known as %s", nick))
	return nil
}

func (r *Router) join(ctx context.Context, cmd Command) error {
	channel := cmd.Arg(1)
	if channel == "" {
		return fmt.Errorf("%w: usage /join channel", errors.ErrInvalidName)
	}
	r.view.System("", fmt.Sprintf("changing channels to %q", channel))
	return r.channels.Join(ctx, channel, true)
}

func (r *Router) part(ctx context.Context, cmd Command) error {
	channel := cmd.Arg(1)
	if channel == "" {
		active, ok := r.channels.Active()
		if !ok {
			return errors.ErrNoActiveChannel
		}
		channel = active
	}
	return r.channels.Part(ctx, channel)
}

// topic is forwarded, so the peer that typed it is the only one storing it.
func (r *Router) topic(_ context.Context, cmd Command) error {
	topic := cmd.Text()
	if err := r.channels.SetTopic(cmd.Origin, topic, !cmd.Remote); err != nil {
		return err
	}
	r.view.System(cmd.Origin, fmt.Sprintf("channel topic changed to %q", topic))
	return nil
}

func (r *Router) sysmsg(_ context.Context, cmd Command) error {
	r.view.System(cmd.Origin, cmd.Text())
	return nil
}

func (r *Router) search(_ context.Context, cmd Command) error {
	filter, err := search.ParseFilter(cmd.Text())
	if err != nil {
		return err
	}
	return r.channels.Search(filter)
}

func (r *Router) rtl(_ context.Context, _ Command) error {
	if r.view.ToggleRTL() {
		r.view.System("", "right-to-left text enabled")
	} else {
		r.view.System("", "right-to-left text disabled")
	}
	return nil
}

func (r *Router) who(_ context.Context, _ Command) error {
	channel, ok := r.channels.Active()
	if !ok {
		return errors.ErrNoActiveChannel
	}
	users, err := r.channels.Users(channel)
	if err != nil {
		return err
	}
	var list []domain.User
	for nick, seen := range users {
		list = append(list, domain.User{Nick: nick, LastSeenAt: seen})
	}
	r.view.Users(channel, list)
	return nil
}

func (r *Router) reset(_ context.Context, _ Command) error {
	if err := r.session.Reset(); err != nil {
		return err
	}
	r.view.System("", "local storage wiped")
	return nil
}
