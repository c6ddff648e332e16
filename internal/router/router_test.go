package router

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablepilot/tablepilot/internal/remote"
)

type fakeChat struct {
	reply remote.Reply
	err   error
	sent  []string
}

func (f *fakeChat) Send(_ context.Context, message string, _ []remote.HistoryMessage) (remote.Reply, error) {
	f.sent = append(f.sent, message)
	return f.reply, f.err
}

type recordingTyping struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingTyping) Show() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "show")
}

func (r *recordingTyping) Hide() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "hide")
}

func TestRouteCannedWinsOverRemote(t *testing.T) {
	chat := &fakeChat{reply: remote.PlainReply{Text: "remote"}}
	r := New(chat, nil, 0, zerolog.Nop())
	r.Register("Menu", func(_ context.Context, brand *remote.BrandConfig) (string, error) {
		return "canned for " + brand.Name(), nil
	})

	brand := &remote.BrandConfig{EstablishmentName: "Casa Verde"}
	reply, err := r.Route(context.Background(), "show me the menu", "menu", brand, nil)
	require.NoError(t, err)

	plain, ok := reply.(remote.PlainReply)
	require.True(t, ok)
	assert.Equal(t, "canned for Casa Verde", plain.Text)
	assert.Empty(t, chat.sent, "canned route must not hit the remote endpoint")
}

func TestRouteUnknownKeyFallsThroughToRemote(t *testing.T) {
	chat := &fakeChat{reply: remote.PlainReply{Text: "hi there"}}
	typing := &recordingTyping{}
	r := New(chat, typing, 0, zerolog.Nop())

	reply, err := r.Route(context.Background(), "hello", "no-such-key", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, remote.PlainReply{Text: "hi there"}, reply)
	assert.Equal(t, []string{"hello"}, chat.sent)
	assert.Equal(t, []string{"show", "hide"}, typing.events, "remote replies pass through the typing bracket")
}

func TestRouteRemoteHidesTypingOnError(t *testing.T) {
	chat := &fakeChat{err: errors.New("boom")}
	typing := &recordingTyping{}
	r := New(chat, typing, 0, zerolog.Nop())

	_, err := r.Route(context.Background(), "hello", "", nil, nil)
	require.Error(t, err)
	assert.Equal(t, []string{"show", "hide"}, typing.events)
}

func TestRouteUnwrapsOrderReady(t *testing.T) {
	chat := &fakeChat{reply: remote.OrderReady{
		Items: []remote.LineItem{{Name: "Burger", Price: 12.99, Quantity: 2}},
		Total: 25.98,
	}}
	r := New(chat, nil, 0, zerolog.Nop())

	reply, err := r.Route(context.Background(), "2 burgers", "", nil, nil)
	require.NoError(t, err)

	ready, ok := reply.(remote.OrderReady)
	require.True(t, ok, "order-ready signal must survive routing as the structured variant")
	assert.InDelta(t, 25.98, ready.Total, 1e-9)
}

func TestMenuReplyRendersItemsAndPhotos(t *testing.T) {
	brand := &remote.BrandConfig{
		EstablishmentName: "Casa Verde",
		CurrencySymbol:    "$",
		MenuItems: []remote.MenuItem{
			{Name: "Burger", Description: "flame-grilled", Price: 12.99, ImageURL: "http://x/burger.png"},
			{Name: "Wings", Price: 8.50},
		},
	}

	text, err := MenuReply(context.Background(), brand)
	require.NoError(t, err)
	assert.Contains(t, text, "Burger - flame-grilled ($12.99)")
	assert.Contains(t, text, "photo: Burger - http://x/burger.png")
	assert.Contains(t, text, "Wings ($8.50)")
}

func TestMenuReplyFallsBackToMenuText(t *testing.T) {
	text, err := MenuReply(context.Background(), &remote.BrandConfig{MenuText: "Burgers and wings."})
	require.NoError(t, err)
	assert.Equal(t, "Burgers and wings.", text)
}

func TestHoursAndContactDefaults(t *testing.T) {
	hours, err := HoursReply(context.Background(), nil)
	require.NoError(t, err)
	assert.Contains(t, hours, "don't have our opening hours")

	contact, err := ContactReply(context.Background(), &remote.BrandConfig{BusinessPhone: "555-0101"})
	require.NoError(t, err)
	assert.Contains(t, contact, "Phone: 555-0101")
}
