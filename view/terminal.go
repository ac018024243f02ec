// Package view renders the session on a terminal.
package view

import (
	"chat-session/domain"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

const (
	timeLayout  = "2006-01-02 15:04:05"
	rtlEmbed    = "\u202b"
	popEmbed    = "\u202c"
	systemMark  = "***"
	historyMark = "~"
)

var (
	systemStyle  = color.New(color.FgYellow)
	topicStyle   = color.New(color.FgCyan, color.OpBold)
	nickStyle    = color.New(color.FgGreen)
	historyStyle = color.New(color.FgDarkGray)
)

// Terminal writes one line per event. It is safe for concurrent use but is
// normally only called from the event loop.
type Terminal struct {
	mu      sync.Mutex
	out     io.Writer
	colours bool
	rtl     bool
	current string
	topics  map[string]string
}

func NewTerminal(out io.Writer, colours bool) *Terminal {
	return &Terminal{out: out, colours: colours, topics: make(map[string]string)}
}

func (t *Terminal) System(channel, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.line(channel, t.paint(systemStyle, systemMark+" "+text))
}

func (t *Terminal) Message(channel string, msg domain.ChatMessage, history bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	at := time.Now()
	if msg.Timestamp > 0 {
		at = time.Unix(0, msg.Timestamp)
	}
	text := msg.Text
	if msg.Nick != "" {
		text = fmt.Sprintf("%s %s", t.paint(nickStyle, "<"+msg.Nick+">"), msg.Text)
	}
	stamp := at.Local().Format(timeLayout)
	if history {
		t.line(channel, t.paint(historyStyle, historyMark+" "+stamp)+" "+text)
		return
	}
	t.line(channel, stamp+" "+text)
}

func (t *Terminal) Topic(channel, topic string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.topics[channel] == topic {
		return
	}
	t.topics[channel] = topic
	if topic == "" {
		return
	}
	t.line(channel, t.paint(topicStyle, "topic: "+topic))
}

func (t *Terminal) ChannelAdded(channel string, _ domain.ChannelID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.line(channel, t.paint(systemStyle, systemMark+" bound to "+channel))
}

// ChannelActivated labels lines without a channel with the active one.
func (t *Terminal) ChannelActivated(channel string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = channel
}

func (t *Terminal) ChannelRemapped(channel string, _, _ domain.ChannelID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.line(channel, t.paint(systemStyle, systemMark+" reconnected to "+channel))
}

func (t *Terminal) ChannelRemoved(channel string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.topics, channel)
	t.line(channel, t.paint(systemStyle, systemMark+" left "+channel))
	if t.current == channel {
		t.current = ""
	}
}

// Users prints a table of nicks and when they were last seen.
func (t *Terminal) Users(channel string, users []domain.User) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.line(channel, t.paint(systemStyle, fmt.Sprintf("%s %d user(s)", systemMark, len(users))))
	table := tablewriter.NewWriter(t.out)
	table.SetHeader([]string{"Nick", "Last seen"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetTablePadding("\t")
	for _, user := range users {
		table.Append([]string{user.Nick, user.LastSeenAt.Local().Format(timeLayout)})
	}
	table.Render()
}

func (t *Terminal) ToggleRTL() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rtl = !t.rtl
	return t.rtl
}

func (t *Terminal) line(channel, text string) {
	if channel == "" {
		channel = t.current
	}
	if t.rtl {
		text = rtlEmbed + text + popEmbed
	}
	if channel != "" {
		text = "[" + channel + "] " + text
	}
	_, _ = fmt.Fprintln(t.out, text)
}

func (t *Terminal) paint(style color.Style, text string) string {
	if !t.colours {
		return text
	}
	return style.Render(text)
}
