package view

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// LinePrompter asks for a nick on the terminal, reading from the same
// scanner as the input loop.
type LinePrompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func NewLinePrompter(scanner *bufio.Scanner, out io.Writer) *LinePrompter {
	return &LinePrompter{scanner: scanner, out: out}
}

// Prompt returns suggestion on an empty answer. ok is false once input is closed.
func (p *LinePrompter) Prompt(_ context.Context, suggestion string) (string, bool) {
	_, _ = fmt.Fprintf(p.out, "choose a nick [%s]: ", suggestion)
	if !p.scanner.Scan() {
		return "", false
	}
	nick := strings.TrimSpace(p.scanner.Text())
	if nick == "" {
		return suggestion, true
	}
	return nick, true
}
