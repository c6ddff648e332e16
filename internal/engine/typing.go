package engine

import (
	"sync/atomic"
	"time"

	"github.com/tablepilot/tablepilot/internal/lifecycle"
)

const typingTimerName = "typing-indicator"

// typingIndicator animates the "assistant is typing" affordance through the
// lifecycle manager's timer registry, so a page transition can never leave a
// stray animation running.
type typingIndicator struct {
	lm      *lifecycle.Manager
	tick    time.Duration
	visible atomic.Bool
	frame   atomic.Uint32
}

func newTypingIndicator(lm *lifecycle.Manager, tick time.Duration) *typingIndicator {
	if tick <= 0 {
		tick = 400 * time.Millisecond
	}
	return &typingIndicator{lm: lm, tick: tick}
}

func (t *typingIndicator) Show() {
	t.visible.Store(true)
	t.lm.StartTicker(typingTimerName, t.tick, func() {
		t.frame.Add(1)
	})
}

func (t *typingIndicator) Hide() {
	t.visible.Store(false)
	t.lm.StopTicker(typingTimerName)
}

// Visible reports whether the indicator is currently shown.
func (t *typingIndicator) Visible() bool {
	return t.visible.Load()
}
