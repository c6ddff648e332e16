// Package lifecycle owns chart-widget instances and recurring timers bound to
// one page view. A render target must never host two live widgets, so
// registration for an occupied key tears the old handle down synchronously
// before the factory runs, and every teardown path is idempotent.
package lifecycle

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Widget is a chart-rendering instance. Destroy releases the render target;
// the manager guarantees it is called at most once per handle.
type Widget interface {
	Destroy()
}

// Factory builds a widget against a fresh target. It runs only after any
// previous widget for the same key has been destroyed.
type Factory func() (Widget, error)

// Handle wraps one live widget registration.
type Handle struct {
	ID     string
	Key    string
	widget Widget

	mu       sync.Mutex
	disposed bool
}

// destroy is idempotent; repeated calls are no-ops.
func (h *Handle) destroy() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.disposed {
		return
	}
	h.disposed = true
	if h.widget != nil {
		h.widget.Destroy()
	}
}

// Disposed reports whether the handle's widget has been destroyed.
func (h *Handle) Disposed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.disposed
}

type timerEntry struct {
	ticker *time.Ticker
	done   chan struct{}
}

type Manager struct {
	mu      sync.Mutex
	widgets map[string]*Handle
	timers  map[string]*timerEntry
	log     zerolog.Logger
}

func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		widgets: make(map[string]*Handle),
		timers:  make(map[string]*timerEntry),
		log:     log.With().Str("component", "lifecycle").Logger(),
	}
}

// Register creates a widget for key. If key already has a live handle it is
// torn down first, before the factory is invoked, so the factory always sees
// a free render target.
func (m *Manager) Register(key string, factory Factory) (*Handle, error) {
	m.mu.Lock()
	prev := m.widgets[key]
	delete(m.widgets, key)
	m.mu.Unlock()

	if prev != nil {
		prev.destroy()
	}

	w, err := factory()
	if err != nil {
		return nil, errors.Wrapf(err, "create widget %q", key)
	}

	h := &Handle{ID: uuid.NewString(), Key: key, widget: w}

	m.mu.Lock()
	// A concurrent Register for the same key may have slipped in while the
	// factory ran; the later registration wins and this one is destroyed.
	if cur, ok := m.widgets[key]; ok && cur != h {
		m.mu.Unlock()
		h.destroy()
		return nil, errors.Errorf("widget %q re-registered during creation", key)
	}
	m.widgets[key] = h
	m.mu.Unlock()

	m.log.Debug().Str("key", key).Str("handle", h.ID).Msg("widget registered")
	return h, nil
}

// Teardown destroys the widget for key. Unknown or already-destroyed keys are
// no-ops.
func (m *Manager) Teardown(key string) {
	m.mu.Lock()
	h := m.widgets[key]
	delete(m.widgets, key)
	m.mu.Unlock()

	if h != nil {
		h.destroy()
		m.log.Debug().Str("key", key).Msg("widget torn down")
	}
}

// StartTicker runs fn every interval under a logical name. A live timer with
// the same name is stopped first so a page transition can never leave two
// competing timers against one UI target.
func (m *Manager) StartTicker(name string, interval time.Duration, fn func()) {
	entry := &timerEntry{
		ticker: time.NewTicker(interval),
		done:   make(chan struct{}),
	}

	m.mu.Lock()
	prev := m.timers[name]
	m.timers[name] = entry
	m.mu.Unlock()

	stopTimer(prev)

	go func() {
		for {
			select {
			case <-entry.ticker.C:
				fn()
			case <-entry.done:
				return
			}
		}
	}()
}

// StopTicker stops the named timer; unknown names are no-ops.
func (m *Manager) StopTicker(name string) {
	m.mu.Lock()
	entry := m.timers[name]
	delete(m.timers, name)
	m.mu.Unlock()

	stopTimer(entry)
}

func stopTimer(e *timerEntry) {
	if e == nil {
		return
	}
	e.ticker.Stop()
	close(e.done)
}

// TeardownAll destroys every live widget and timer. It must run before a
// page-cache eviction or re-render and may be called any number of times.
func (m *Manager) TeardownAll() {
	m.mu.Lock()
	widgets := m.widgets
	timers := m.timers
	m.widgets = make(map[string]*Handle)
	m.timers = make(map[string]*timerEntry)
	m.mu.Unlock()

	for _, h := range widgets {
		h.destroy()
	}
	for _, e := range timers {
		stopTimer(e)
	}

	if len(widgets) > 0 || len(timers) > 0 {
		m.log.Debug().
			Int("widgets", len(widgets)).
			Int("timers", len(timers)).
			Msg("teardown all")
	}
}

// LiveWidgets returns the number of live widget handles.
func (m *Manager) LiveWidgets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.widgets)
}
