package notify

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessages(t *testing.T) {
	assert.Equal(t, "Synchronising", MsgStart{}.Text())
	assert.Equal(t, "Synchronising 1 of 3: A/B/t.mp3", MsgProgress{Index: 0, Total: 3, Path: "A/B/t.mp3"}.Text())
	assert.Equal(t, "Synchronised 1 change", MsgSuccess{Count: 1}.Text())
	assert.Equal(t, "Synchronised 0 changes", MsgSuccess{}.Text())
	assert.Equal(t, "Synchronisation failed: status 500", MsgFailure{Err: errors.New("status 500")}.Text())
	assert.Equal(t, "Synchronisation failed", MsgFailure{}.Text())
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	assert.Equal(t, Snapshot{}, m.Snapshot())

	m.InitialiseOngoing(MsgStart{})
	assert.Equal(t, "Synchronising", m.Snapshot().Ongoing)

	m.ShowOngoing(MsgProgress{Index: 1, Total: 2, Path: "x"})
	assert.Equal(t, "Synchronising 2 of 2: x", m.Snapshot().Ongoing)

	m.ShowClearable(MsgFailure{Err: errors.New("boom")})
	snap := m.Snapshot()
	assert.Empty(t, snap.Ongoing)
	assert.Equal(t, "Synchronisation failed: boom", snap.Clearable)
	assert.True(t, snap.Failed)
	assert.False(t, snap.LastUpdated.IsZero())

	m.InitialiseOngoing(MsgStart{})
	assert.Empty(t, m.Snapshot().Clearable)
}

func TestTerminal(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	term := NewTerminal(&buf)

	term.InitialiseOngoing(MsgStart{})
	term.ShowOngoing(MsgProgress{Index: 0, Total: 1, Path: "t.mp3"})
	term.ShowClearable(MsgSuccess{Count: 1})

	out := buf.String()
	assert.Contains(t, out, "\r\033[KSynchronising 1 of 1: t.mp3")
	assert.True(t, strings.HasSuffix(out, "\r\033[KSynchronised 1 change\n"))
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestLog(t *testing.T) {
	var buf bytes.Buffer
	l := Log{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	l.ShowOngoing(MsgProgress{Index: 4, Total: 9, Path: "A/t.mp3"})
	l.ShowClearable(MsgFailure{Err: errors.New("boom")})

	out := buf.String()
	assert.Contains(t, out, "index=5")
	assert.Contains(t, out, "path=A/t.mp3")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "error=boom")
}

func TestMulti(t *testing.T) {
	a, b := NewMemory(), NewMemory()
	var n Notifier = Multi{a, b}

	n.InitialiseOngoing(MsgStart{})
	n.ShowClearable(MsgSuccess{Count: 2})

	require.Equal(t, a.Snapshot().Clearable, b.Snapshot().Clearable)
	assert.Equal(t, "Synchronised 2 changes", a.Snapshot().Clearable)
}
