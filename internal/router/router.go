// Package router decides, per user utterance, between a precomputed canned
// reply and the remote chat endpoint. Canned generators are registered by
// quick-action key; everything else is forwarded remotely inside a
// typing-indicator bracket, and order-ready signals are unwrapped into the
// tagged reply union at the boundary.
package router

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tablepilot/tablepilot/internal/remote"
)

// ChatSender is the remote chat endpoint.
type ChatSender interface {
	Send(ctx context.Context, message string, history []remote.HistoryMessage) (remote.Reply, error)
}

// TypingIndicator brackets remote round-trips. Hide is always called after a
// matching Show, including on error paths.
type TypingIndicator interface {
	Show()
	Hide()
}

// NopTyping satisfies TypingIndicator with no visible effect.
type NopTyping struct{}

func (NopTyping) Show() {}
func (NopTyping) Hide() {}

// CannedFunc produces a canned reply from the currently cached brand config.
type CannedFunc func(ctx context.Context, brand *remote.BrandConfig) (string, error)

type Router struct {
	mu     sync.RWMutex
	canned map[string]CannedFunc

	chat   ChatSender
	typing TypingIndicator
	delay  time.Duration
	log    zerolog.Logger
}

func New(chat ChatSender, typing TypingIndicator, cannedDelay time.Duration, log zerolog.Logger) *Router {
	if typing == nil {
		typing = NopTyping{}
	}
	return &Router{
		canned: make(map[string]CannedFunc),
		chat:   chat,
		typing: typing,
		delay:  cannedDelay,
		log:    log.With().Str("component", "router").Logger(),
	}
}

// Register installs a canned generator for a quick-action key. Keys are
// case-insensitive.
func (r *Router) Register(key string, fn CannedFunc) {
	key = strings.ToLower(strings.TrimSpace(key))
	r.mu.Lock()
	defer r.mu.Unlock()
	r.canned[key] = fn
}

// Route answers the utterance. quickKey is the quick-action key that produced
// it, or empty for free text. A registered canned generator wins; otherwise
// the utterance goes to the remote endpoint with the supplied history.
func (r *Router) Route(ctx context.Context, utterance, quickKey string, brand *remote.BrandConfig, history []remote.HistoryMessage) (remote.Reply, error) {
	if quickKey != "" {
		r.mu.RLock()
		fn, ok := r.canned[strings.ToLower(strings.TrimSpace(quickKey))]
		r.mu.RUnlock()
		if ok {
			return r.routeCanned(ctx, quickKey, fn, brand)
		}
	}
	return r.routeRemote(ctx, utterance, history)
}

func (r *Router) routeCanned(ctx context.Context, key string, fn CannedFunc, brand *remote.BrandConfig) (remote.Reply, error) {
	// Pacing delay so instant replies do not feel mechanical.
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	text, err := fn(ctx, brand)
	if err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("canned generator failed")
		return nil, err
	}
	return remote.PlainReply{Text: text}, nil
}

func (r *Router) routeRemote(ctx context.Context, utterance string, history []remote.HistoryMessage) (remote.Reply, error) {
	r.typing.Show()
	defer r.typing.Hide()

	reply, err := r.chat.Send(ctx, utterance, history)
	if err != nil {
		return nil, err
	}
	return reply, nil
}
