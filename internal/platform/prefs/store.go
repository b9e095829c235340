// Package prefs persists lightweight UI preferences across sessions. The
// calendar keeps its granularity and cancelled-visibility choices here so a
// restart brings the practitioner back to the view they left.
package prefs

import (
	"context"
	"sync"
)

// Key is the single storage key calendar preferences live under.
const Key = "calendar:prefs"

// Prefs is the persisted preference set. Pivot date and cached windows are
// deliberately session-local and never stored.
type Prefs struct {
	Granularity   string `json:"granularity"`
	ShowCancelled bool   `json:"show_cancelled"`
}

// Store loads and saves the preference set. Load returns (nil, nil) when
// nothing has been saved yet, letting callers fall back to defaults without
// treating a fresh install as an error.
type Store interface {
	Load(ctx context.Context) (*Prefs, error)
	Save(ctx context.Context, p Prefs) error
}

// Memory is a process-local Store used in tests and when no Redis is
// configured. Contents do not survive a restart.
type Memory struct {
	mu    sync.Mutex
	prefs *Prefs
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Load(_ context.Context) (*Prefs, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.prefs == nil {
		return nil, nil
	}
	p := *m.prefs
	return &p, nil
}

func (m *Memory) Save(_ context.Context, p Prefs) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs = &p
	return nil
}
