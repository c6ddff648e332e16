// Package engine is the page-lifecycle coordinator: one Controller per chat
// or analytics surface, constructed at activation and discarded at teardown.
// It owns what the browser original kept in ambient globals: the cached brand
// config, the conversation history, the order session, and the activation
// token that fences every asynchronous result.
package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tablepilot/tablepilot/internal/analytics"
	"github.com/tablepilot/tablepilot/internal/config"
	"github.com/tablepilot/tablepilot/internal/guard"
	"github.com/tablepilot/tablepilot/internal/lifecycle"
	"github.com/tablepilot/tablepilot/internal/order"
	"github.com/tablepilot/tablepilot/internal/remote"
	"github.com/tablepilot/tablepilot/internal/render"
	"github.com/tablepilot/tablepilot/internal/router"
)

// QuickActionOrder starts order collection; the other quick actions map to
// canned generators registered on the router.
const (
	QuickActionOrder   = "order"
	QuickActionMenu    = "menu"
	QuickActionHours   = "hours"
	QuickActionContact = "contact"
)

const genericFailure = "Sorry, something went wrong on our end. Please try again."

// ConfigFetcher fetches the brand configuration.
type ConfigFetcher interface {
	Fetch(ctx context.Context) (*remote.BrandConfig, error)
}

// Deps bundles the collaborator clients a Controller talks to.
type Deps struct {
	Config ConfigFetcher
	Chat   router.ChatSender
	Placer order.Placer
	Orders analytics.OrderLister

	// ChartFactory builds chart widgets; nil disables the analytics surface.
	ChartFactory analytics.ChartFactory
}

type Controller struct {
	cfg  config.Config
	deps Deps
	log  zerolog.Logger

	guard     *guard.Guard
	lifecycle *lifecycle.Manager
	typing    *typingIndicator
	chatLog   *render.Log
	session   *order.Session
	router    *router.Router
	dashboard *analytics.Dashboard

	mu      sync.Mutex
	brand   *remote.BrandConfig
	history []remote.HistoryMessage
}

func NewController(cfg config.Config, deps Deps, log zerolog.Logger) *Controller {
	logger := log.With().Str("component", "engine").Logger()

	g := guard.New()
	lm := lifecycle.NewManager(log)
	typing := newTypingIndicator(lm, cfg.TypingTick)

	c := &Controller{
		cfg:       cfg,
		deps:      deps,
		log:       logger,
		guard:     g,
		lifecycle: lm,
		typing:    typing,
		chatLog:   render.NewLog(),
		session:   order.NewSession(deps.Placer, cfg.ContactMode, log),
		router:    router.New(deps.Chat, typing, cfg.CannedReplyDelay, log),
	}

	if deps.Orders != nil && deps.ChartFactory != nil {
		c.dashboard = analytics.NewDashboard(deps.Orders, g, lm, deps.ChartFactory, log)
	}

	c.router.Register(QuickActionMenu, router.MenuReply)
	c.router.Register(QuickActionHours, router.HoursReply)
	c.router.Register(QuickActionContact, router.ContactReply)

	return c
}

// Activate runs one page activation: mint a fresh token, tear down widgets
// and timers from the previous view, then load brand config and analytics
// concurrently. Results apply only while the token stays current.
func (c *Controller) Activate(ctx context.Context) error {
	tok := c.guard.Begin()
	c.lifecycle.TeardownAll()

	grp, gctx := errgroup.WithContext(ctx)

	grp.Go(func() error {
		brand, err := c.deps.Config.Fetch(gctx)
		if err != nil {
			// Config is optional end to end: defaults cover absence.
			c.log.Warn().Err(err).Msg("brand config unavailable, using defaults")
			return nil
		}
		if !c.guard.Current(tok) {
			return nil
		}
		c.mu.Lock()
		c.brand = brand
		c.mu.Unlock()
		return nil
	})

	if c.dashboard != nil {
		grp.Go(func() error {
			if _, err := c.dashboard.Load(gctx, tok); err != nil {
				if err == analytics.ErrStaleActivation {
					return nil
				}
				c.log.Warn().Err(err).Msg("analytics load failed")
			}
			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		return err
	}

	if !c.guard.Current(tok) {
		return nil
	}

	if c.dashboard != nil && c.cfg.AnalyticsRefresh > 0 {
		refreshTok := tok
		c.lifecycle.StartTicker("analytics-refresh", c.cfg.AnalyticsRefresh, func() {
			if _, err := c.dashboard.Load(context.Background(), refreshTok); err != nil && err != analytics.ErrStaleActivation {
				c.log.Warn().Err(err).Msg("analytics refresh failed")
			}
		})
	}

	c.renderBot(fmt.Sprintf("Hi! Welcome to **%s**. How can I help you today?", c.Brand().Name()))
	c.log.Info().Uint64("token", uint64(tok)).Msg("page activated")
	return nil
}

// Deactivate tears the view down ahead of a page-cache eviction. Safe to call
// repeatedly; any in-flight results are fenced out by the invalidated token.
func (c *Controller) Deactivate() {
	c.guard.Invalidate()
	c.lifecycle.TeardownAll()
	c.log.Debug().Msg("page deactivated")
}

// Brand returns the cached brand config (possibly nil-safe defaults).
func (c *Controller) Brand() *remote.BrandConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.brand
}

// Log exposes the conversation log.
func (c *Controller) Log() *render.Log { return c.chatLog }

// Session exposes the order session.
func (c *Controller) Session() *order.Session { return c.session }

// Typing reports whether the typing indicator is visible.
func (c *Controller) Typing() bool { return c.typing.Visible() }

// HandleQuickAction processes a quick-action tap. The order action flips the
// session into collecting and answers locally; the rest route through the
// canned registry.
func (c *Controller) HandleQuickAction(ctx context.Context, key string) {
	if strings.EqualFold(key, QuickActionOrder) {
		c.session.Begin()
		text, _ := router.OrderIntentReply(ctx, c.Brand())
		c.renderBot(text)
		return
	}
	c.Handle(ctx, key, key)
}

// Handle processes one user utterance. The reply is fenced by the activation
// token captured at launch: if a new activation lands while the round-trip is
// in flight, the reply is dropped with no visible effect.
func (c *Controller) Handle(ctx context.Context, utterance, quickKey string) {
	tok := c.guard.Peek()
	c.renderUser(utterance)

	c.mu.Lock()
	history := append([]remote.HistoryMessage(nil), c.history...)
	brand := c.brand
	c.mu.Unlock()

	reply, err := c.router.Route(ctx, utterance, quickKey, brand, history)

	if !c.guard.Current(tok) {
		c.log.Debug().Msg("dropping reply from superseded activation")
		return
	}

	if err != nil {
		c.renderBot(genericFailure)
		return
	}

	switch r := reply.(type) {
	case remote.PlainReply:
		c.appendHistory(utterance, r.Text)
		c.renderBot(r.Text)

	case remote.OrderReady:
		c.appendHistory(utterance, r.Message)
		c.session.Begin()
		if c.session.Propose(r.Items) {
			c.renderBot(r.Message)
			c.renderConfirmation(r.Items)
		} else {
			c.renderBot(r.Message)
		}
	}
}

// renderConfirmation emits the inline confirmation form as a bot message:
// the item summary, the recomputed total, and the identification prompt.
func (c *Controller) renderConfirmation(items []remote.LineItem) {
	currency := c.Brand().Currency()
	var b strings.Builder
	b.WriteString("Here's your order:\n")
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s x%d - %s%.2f\n", i+1, item.Name, item.Quantity, currency, item.Total())
	}
	fmt.Fprintf(&b, "**Total: %s%.2f**\n", currency, remote.SumTotal(items))
	if c.cfg.ContactMode == config.ContactEmail {
		b.WriteString("Please enter your name and contact email, then confirm to place the order.")
	} else {
		b.WriteString("Please enter your name and table number, then confirm to place the order.")
	}
	c.renderBot(b.String())
}

// ConfirmOrder submits the awaiting order. Validation refusals and placement
// failures both come back as bot messages; only success resets the session
// and clears the conversation history.
func (c *Controller) ConfirmOrder(ctx context.Context, name, contact string) {
	msg, err := c.session.Confirm(ctx, name, contact)
	if err != nil {
		switch e := err.(type) {
		case *order.Refusal:
			c.renderBot(e.BotMessage)
		case *remote.PlacementError:
			if e.Message != "" {
				c.renderBot(e.Message)
			} else {
				c.renderBot(genericFailure)
			}
		default:
			if err == order.ErrSubmitInFlight {
				// Double tap on the confirm control; the first submission owns
				// the outcome.
				return
			}
			c.renderBot(genericFailure)
		}
		return
	}

	c.mu.Lock()
	c.history = nil
	c.mu.Unlock()

	c.renderBot("✓ " + msg)
	c.log.Info().Msg("order completed, conversation context reset")
}

// History returns a copy of the chat context that accompanies remote calls.
func (c *Controller) History() []remote.HistoryMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]remote.HistoryMessage(nil), c.history...)
}

func (c *Controller) appendHistory(user, assistant string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history,
		remote.HistoryMessage{Role: "user", Content: user},
		remote.HistoryMessage{Role: "assistant", Content: assistant},
	)
}

func (c *Controller) renderUser(text string) {
	c.chatLog.Render(text, render.SpeakerUser)
}

func (c *Controller) renderBot(text string) {
	c.chatLog.Render(text, render.SpeakerBot)
}
