package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

var (
	red   = color.New(color.FgHiRed, color.Bold).SprintFunc()
	green = color.New(color.FgHiGreen).SprintFunc()
	cyan  = color.New(color.FgHiCyan).SprintFunc()
)

// Terminal rewrites the ongoing message on one line and prints clearable messages below it.
type Terminal struct {
	mu      sync.Mutex
	w       io.Writer
	pending bool
}

func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

func (t *Terminal) InitialiseOngoing(msg Message) {
	t.ongoing(msg)
}

func (t *Terminal) ShowOngoing(msg Message) {
	t.ongoing(msg)
}

func (t *Terminal) ShowClearable(msg Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	text := msg.Text()
	switch msg.(type) {
	case MsgFailure:
		text = red(text)
	case MsgSuccess:
		text = green(text)
	}
	if t.pending {
		fmt.Fprint(t.w, "\r\033[K")
		t.pending = false
	}
	fmt.Fprintln(t.w, text)
}

func (t *Terminal) ongoing(msg Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprint(t.w, "\r\033[K", cyan(msg.Text()))
	t.pending = true
}
