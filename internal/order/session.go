// Package order owns the in-progress order session: line items, customer
// identification, and the collection → confirmation → submission state
// machine. Exactly one session exists per chat surface; it is discarded, not
// archived, once submitted or abandoned.
package order

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tablepilot/tablepilot/internal/config"
	"github.com/tablepilot/tablepilot/internal/remote"
)

type State string

const (
	Idle                 State = "idle"
	Collecting           State = "collecting"
	AwaitingConfirmation State = "awaiting_confirmation"
	Submitting           State = "submitting"
)

// Placer submits a confirmed order to the order-placement endpoint.
type Placer interface {
	Place(ctx context.Context, p remote.Placement) (string, error)
}

// Refusal is a client-side validation failure. It is rendered as a bot
// message, never surfaced as a hard error, and no network call is made.
type Refusal struct {
	BotMessage string
}

func (r *Refusal) Error() string { return r.BotMessage }

// ErrSubmitInFlight means Confirm was called while a submission is already
// running. The duplicate attempt is dropped; no queuing.
type submitInFlight struct{}

func (submitInFlight) Error() string { return "submission already in flight" }

var ErrSubmitInFlight error = submitInFlight{}

type Session struct {
	mu sync.Mutex

	state       State
	items       []remote.LineItem
	name        string
	contact     string
	contactMode config.ContactMode

	placer Placer
	log    zerolog.Logger
}

func NewSession(placer Placer, mode config.ContactMode, log zerolog.Logger) *Session {
	if mode != config.ContactEmail {
		mode = config.ContactTable
	}
	return &Session{
		state:       Idle,
		contactMode: mode,
		placer:      placer,
		log:         log.With().Str("component", "order").Logger(),
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Items returns a copy of the current line items.
func (s *Session) Items() []remote.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]remote.LineItem(nil), s.items...)
}

// Total recomputes the order total from the current items. It is never
// cached.
func (s *Session) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return remote.SumTotal(s.items)
}

// Begin marks the user's intent to order. A no-op unless the session is
// idle.
func (s *Session) Begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Idle {
		s.state = Collecting
		s.log.Debug().Msg("order collection started")
	}
}

// Propose installs the extracted items from an order-ready reply and moves
// the session to awaiting-confirmation. An empty item list is ignored. The
// chat endpoint may flag readiness before an explicit Begin, so idle sessions
// accept proposals too.
func (s *Session) Propose(items []remote.LineItem) bool {
	if len(items) == 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Submitting {
		return false
	}
	s.items = append([]remote.LineItem(nil), items...)
	s.state = AwaitingConfirmation
	s.log.Debug().Int("items", len(items)).Msg("order proposed")
	return true
}

// Confirm validates identification fields, recomputes the total, and submits
// the order. Validation failures return *Refusal without any network call.
// On success the session resets to idle with everything cleared; on placement
// failure the items are retained and the session returns to
// awaiting-confirmation so the user can retry.
func (s *Session) Confirm(ctx context.Context, name, contact string) (string, error) {
	s.mu.Lock()
	if s.state == Submitting {
		s.mu.Unlock()
		return "", ErrSubmitInFlight
	}
	if refusal := s.validateLocked(name, contact); refusal != nil {
		s.mu.Unlock()
		return "", refusal
	}

	s.state = Submitting
	s.name = name
	s.contact = contact
	items := append([]remote.LineItem(nil), s.items...)
	mode := s.contactMode
	s.mu.Unlock()

	// Total is recomputed from items here, never reused from a previously
	// rendered value.
	placement := remote.Placement{
		CustomerName: name,
		Items:        items,
		TotalAmount:  remote.SumTotal(items),
	}
	if mode == config.ContactEmail {
		placement.CustomerEmail = contact
	} else {
		placement.TableNumber = contact
	}

	msg, err := s.placer.Place(ctx, placement)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		// Retryable: keep the items, release the submit lock.
		s.state = AwaitingConfirmation
		s.log.Warn().Err(err).Msg("order placement failed")
		return "", err
	}

	s.resetLocked()
	s.log.Info().Msg("order placed")
	return msg, nil
}

func (s *Session) validateLocked(name, contact string) *Refusal {
	if len(s.items) == 0 {
		return &Refusal{BotMessage: "Your order is empty. Please add some items before placing an order."}
	}
	if strings.TrimSpace(name) == "" || strings.TrimSpace(contact) == "" {
		if s.contactMode == config.ContactEmail {
			return &Refusal{BotMessage: "Please provide your name and contact email so we can place your order."}
		}
		return &Refusal{BotMessage: "Please provide your name and table number so we can place your order."}
	}
	return nil
}

// Abandon discards the session and returns it to idle.
func (s *Session) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Submitting {
		return
	}
	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.state = Idle
	s.items = nil
	s.name = ""
	s.contact = ""
}

