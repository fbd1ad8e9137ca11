// Package notify reports synchronisation progress. A notifier has two slots: an ongoing
// message that is replaced while a run is active, and a clearable message with the outcome.
package notify

import (
	"fmt"
)

type Notifier interface {
	InitialiseOngoing(msg Message)
	ShowOngoing(msg Message)
	ShowClearable(msg Message)
}

type Message interface {
	Text() string
}

// MsgStart is shown when a run begins.
type MsgStart struct{}

func (MsgStart) Text() string { return "Synchronising" }

// MsgProgress reports the change about to be applied. Index is zero based.
type MsgProgress struct {
	Index int
	Total int
	Path  string
}

func (m MsgProgress) Text() string {
	return fmt.Sprintf("Synchronising %d of %d: %s", m.Index+1, m.Total, m.Path)
}

type MsgSuccess struct {
	Count int
}

func (m MsgSuccess) Text() string {
	if m.Count == 1 {
		return "Synchronised 1 change"
	}
	return fmt.Sprintf("Synchronised %d changes", m.Count)
}

type MsgFailure struct {
	Err error
}

func (m MsgFailure) Text() string {
	if m.Err == nil {
		return "Synchronisation failed"
	}
	return "Synchronisation failed: " + m.Err.Error()
}

// Multi fans every message out to each notifier in order.
type Multi []Notifier

func (m Multi) InitialiseOngoing(msg Message) {
	for _, n := range m {
		n.InitialiseOngoing(msg)
	}
}

func (m Multi) ShowOngoing(msg Message) {
	for _, n := range m {
		n.ShowOngoing(msg)
	}
}

func (m Multi) ShowClearable(msg Message) {
	for _, n := range m {
		n.ShowClearable(msg)
	}
}
