package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tablepilot/tablepilot/internal/analytics"
	"github.com/tablepilot/tablepilot/internal/config"
	"github.com/tablepilot/tablepilot/internal/lifecycle"
	"github.com/tablepilot/tablepilot/internal/order"
	"github.com/tablepilot/tablepilot/internal/remote"
	"github.com/tablepilot/tablepilot/internal/render"
)

type fakeConfigFetcher struct {
	brand *remote.BrandConfig
	err   error
}

func (f *fakeConfigFetcher) Fetch(ctx context.Context) (*remote.BrandConfig, error) {
	return f.brand, f.err
}

type scriptedChat struct {
	replies []remote.Reply
	err     error
	entered chan struct{} // signalled when Send is reached
	release chan struct{} // when set, Send blocks until closed
	next    int
}

func (s *scriptedChat) Send(ctx context.Context, message string, history []remote.HistoryMessage) (remote.Reply, error) {
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.release != nil {
		<-s.release
	}
	if s.err != nil {
		return nil, s.err
	}
	r := s.replies[s.next%len(s.replies)]
	s.next++
	return r, nil
}

type fakePlacer struct {
	msg   string
	err   error
	calls int
}

func (f *fakePlacer) Place(ctx context.Context, p remote.Placement) (string, error) {
	f.calls++
	return f.msg, f.err
}

type fakeLister struct {
	records []remote.OrderRecord
}

func (f *fakeLister) List(ctx context.Context) ([]remote.OrderRecord, error) {
	return f.records, nil
}

type nopChart struct{}

func (nopChart) Destroy() {}

func testController(t *testing.T, deps Deps) *Controller {
	t.Helper()
	if deps.Config == nil {
		deps.Config = &fakeConfigFetcher{brand: &remote.BrandConfig{
			EstablishmentName: "Casa Verde",
			CurrencySymbol:    "$",
		}}
	}
	cfg := config.Config{ContactMode: config.ContactTable}
	return NewController(cfg, deps, zerolog.Nop())
}

func botMessages(c *Controller) []string {
	var out []string
	for _, e := range c.Log().Entries() {
		if e.Speaker == render.SpeakerBot {
			out = append(out, e.RawText)
		}
	}
	return out
}

func lastBot(c *Controller) string {
	msgs := botMessages(c)
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1]
}

func TestEndToEndOrderScenario(t *testing.T) {
	chat := &scriptedChat{replies: []remote.Reply{remote.OrderReady{
		Items:   []remote.LineItem{{Name: "Burger", Price: 12.99, Quantity: 2}},
		Total:   25.98,
		Message: "Two burgers coming up. Ready to confirm?",
	}}}
	placer := &fakePlacer{msg: "Order #551 placed"}
	c := testController(t, Deps{Chat: chat, Placer: placer})

	if err := c.Activate(context.Background()); err != nil {
		t.Fatalf("activate: %v", err)
	}

	// Quick action "Order" starts collection.
	c.HandleQuickAction(context.Background(), QuickActionOrder)
	if got := c.Session().State(); got != order.Collecting {
		t.Fatalf("after order quick action: state=%s, want collecting", got)
	}

	// Natural-language order triggers the order-ready signal.
	c.Handle(context.Background(), "2 burgers", "")
	if got := c.Session().State(); got != order.AwaitingConfirmation {
		t.Fatalf("after order-ready reply: state=%s, want awaiting_confirmation", got)
	}
	if msg := lastBot(c); !strings.Contains(msg, "Total: $25.98") {
		t.Fatalf("confirmation must show the recomputed total, got %q", msg)
	}

	// Confirmation submits and resets.
	c.ConfirmOrder(context.Background(), "Alex", "4")
	if got := c.Session().State(); got != order.Idle {
		t.Fatalf("after placement: state=%s, want idle", got)
	}
	if got := lastBot(c); got != "✓ Order #551 placed" {
		t.Fatalf("unexpected completion message %q", got)
	}
	if len(c.History()) != 0 {
		t.Fatalf("conversation history must be cleared after a placed order")
	}
	if placer.calls != 1 {
		t.Fatalf("expected one placement call, got %d", placer.calls)
	}
}

func TestRefusalRendersBotMessageWithoutNetworkCall(t *testing.T) {
	placer := &fakePlacer{}
	c := testController(t, Deps{Chat: &scriptedChat{replies: []remote.Reply{remote.PlainReply{Text: "x"}}}, Placer: placer})
	if err := c.Activate(context.Background()); err != nil {
		t.Fatalf("activate: %v", err)
	}

	c.ConfirmOrder(context.Background(), "", "")
	if placer.calls != 0 {
		t.Fatalf("refusal must not POST")
	}
	if msg := lastBot(c); !strings.Contains(msg, "Your order is empty") {
		t.Fatalf("unexpected refusal message %q", msg)
	}
}

func TestPlacementFailureStaysRetryable(t *testing.T) {
	chat := &scriptedChat{replies: []remote.Reply{remote.OrderReady{
		Items: []remote.LineItem{{Name: "Burger", Price: 12.99, Quantity: 2}},
		Total: 25.98,
	}}}
	placer := &fakePlacer{err: &remote.PlacementError{StatusCode: 500, Message: "kitchen is closed"}}
	c := testController(t, Deps{Chat: chat, Placer: placer})
	if err := c.Activate(context.Background()); err != nil {
		t.Fatalf("activate: %v", err)
	}

	c.Handle(context.Background(), "2 burgers", "")
	c.ConfirmOrder(context.Background(), "Alex", "4")

	if got := c.Session().State(); got != order.AwaitingConfirmation {
		t.Fatalf("failure must return to awaiting_confirmation, got %s", got)
	}
	if msg := lastBot(c); msg != "kitchen is closed" {
		t.Fatalf("server error must surface verbatim, got %q", msg)
	}

	// Retry with the same items succeeds and recomputes the same total.
	placer.err = nil
	placer.msg = "Order #552 placed"
	c.ConfirmOrder(context.Background(), "Alex", "4")
	if got := c.Session().State(); got != order.Idle {
		t.Fatalf("retry should complete, state=%s", got)
	}
}

func TestReplyFromSupersededActivationIsDropped(t *testing.T) {
	release := make(chan struct{})
	chat := &scriptedChat{
		replies: []remote.Reply{remote.PlainReply{Text: "late reply"}},
		entered: make(chan struct{}, 1),
		release: release,
	}
	c := testController(t, Deps{Chat: chat, Placer: &fakePlacer{}})
	if err := c.Activate(context.Background()); err != nil {
		t.Fatalf("activate: %v", err)
	}

	done := make(chan struct{})
	go func() {
		c.Handle(context.Background(), "hello", "")
		close(done)
	}()

	// Once the route is in flight, a new activation supersedes its token.
	<-chat.entered
	if err := c.Activate(context.Background()); err != nil {
		t.Fatalf("re-activate: %v", err)
	}
	close(release)
	<-done

	for _, msg := range botMessages(c) {
		if msg == "late reply" {
			t.Fatalf("stale reply must not render")
		}
	}
	if len(c.History()) != 0 {
		t.Fatalf("stale reply must not enter history")
	}
}

func TestChatFailureRendersGenericMessage(t *testing.T) {
	chat := &scriptedChat{err: context.DeadlineExceeded}
	c := testController(t, Deps{Chat: chat, Placer: &fakePlacer{}})
	if err := c.Activate(context.Background()); err != nil {
		t.Fatalf("activate: %v", err)
	}

	c.Handle(context.Background(), "hello", "")
	if msg := lastBot(c); msg != genericFailure {
		t.Fatalf("expected generic failure message, got %q", msg)
	}
	if len(c.History()) != 0 {
		t.Fatalf("failed round-trips must not enter history")
	}
}

func TestActivationRebuildsAnalyticsWidgetsOnce(t *testing.T) {
	var factoryCalls int
	deps := Deps{
		Chat:   &scriptedChat{replies: []remote.Reply{remote.PlainReply{Text: "x"}}},
		Placer: &fakePlacer{},
		Orders: &fakeLister{records: []remote.OrderRecord{
			{TotalAmount: 25.98, Status: "completed", CreatedAt: "2026-08-30T10:00:00Z"},
		}},
		ChartFactory: func(key string, data analytics.ChartData) (lifecycle.Widget, error) {
			factoryCalls++
			return nopChart{}, nil
		},
	}
	c := testController(t, deps)

	for i := 0; i < 3; i++ {
		if err := c.Activate(context.Background()); err != nil {
			t.Fatalf("activate %d: %v", i, err)
		}
	}

	if factoryCalls != 9 {
		t.Fatalf("expected 3 activations x 3 widgets, got %d factory calls", factoryCalls)
	}

	c.Deactivate()
	c.Deactivate() // idempotent
}

func TestCannedQuickActionsUseCachedConfig(t *testing.T) {
	brand := &remote.BrandConfig{
		EstablishmentName: "Casa Verde",
		CurrencySymbol:    "$",
		OpenTime:          "09:00",
		CloseTime:         "22:00",
		MenuItems:         []remote.MenuItem{{Name: "Burger", Price: 12.99}},
	}
	c := testController(t, Deps{
		Config: &fakeConfigFetcher{brand: brand},
		Chat:   &scriptedChat{replies: []remote.Reply{remote.PlainReply{Text: "remote"}}},
		Placer: &fakePlacer{},
	})
	if err := c.Activate(context.Background()); err != nil {
		t.Fatalf("activate: %v", err)
	}

	c.HandleQuickAction(context.Background(), QuickActionMenu)
	if msg := lastBot(c); !strings.Contains(msg, "Burger ($12.99)") {
		t.Fatalf("menu quick action should render the cached menu, got %q", msg)
	}

	c.HandleQuickAction(context.Background(), QuickActionHours)
	if msg := lastBot(c); !strings.Contains(msg, "09:00") {
		t.Fatalf("hours quick action should use cached config, got %q", msg)
	}
}
