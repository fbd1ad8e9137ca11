package notify

import (
	"sync"
	"time"
)

// Snapshot is the current content of both slots. Empty strings mean nothing is shown.
type Snapshot struct {
	Ongoing     string    `json:"ongoing,omitempty"`
	Clearable   string    `json:"clearable,omitempty"`
	Failed      bool      `json:"failed"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Memory keeps the latest messages so they can be served to other processes.
type Memory struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

func NewMemory() *Memory {
	return &Memory{now: time.Now}
}

func (m *Memory) InitialiseOngoing(msg Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = Snapshot{Ongoing: msg.Text(), LastUpdated: m.now()}
}

func (m *Memory) ShowOngoing(msg Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.Ongoing = msg.Text()
	m.snap.LastUpdated = m.now()
}

// ShowClearable also ends the ongoing slot, the run is over.
func (m *Memory) ShowClearable(msg Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, failed := msg.(MsgFailure)
	m.snap = Snapshot{Clearable: msg.Text(), Failed: failed, LastUpdated: m.now()}
}

func (m *Memory) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}
