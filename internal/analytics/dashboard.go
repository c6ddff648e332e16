package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/tablepilot/tablepilot/internal/guard"
	"github.com/tablepilot/tablepilot/internal/lifecycle"
	"github.com/tablepilot/tablepilot/internal/remote"
)

// ErrStaleActivation marks a load whose results lost the race against a newer
// page activation. It is silently absorbed by callers, never shown.
var ErrStaleActivation = errors.New("analytics: stale activation")

// OrderLister is the order-listing endpoint.
type OrderLister interface {
	List(ctx context.Context) ([]remote.OrderRecord, error)
}

// ChartFactory builds a chart widget for one key and dataset. Returning the
// widget lets the lifecycle manager own its destruction.
type ChartFactory func(key string, data ChartData) (lifecycle.Widget, error)

// Dashboard loads order records and renders the three chart widgets,
// respecting the activation token: results carrying a superseded token apply
// no visible effect.
type Dashboard struct {
	lister    OrderLister
	guard     *guard.Guard
	lifecycle *lifecycle.Manager
	factory   ChartFactory
	now       func() time.Time
	log       zerolog.Logger

	mu          sync.Mutex
	lastSummary *Summary
}

func NewDashboard(lister OrderLister, g *guard.Guard, lm *lifecycle.Manager, factory ChartFactory, log zerolog.Logger) *Dashboard {
	return &Dashboard{
		lister:    lister,
		guard:     g,
		lifecycle: lm,
		factory:   factory,
		now:       time.Now,
		log:       log.With().Str("component", "analytics").Logger(),
	}
}

// Load fetches the listing and rebuilds the widgets, provided tok is still
// the current activation once the listing returns. A stale token yields
// ErrStaleActivation with no widget touched.
func (d *Dashboard) Load(ctx context.Context, tok guard.Token) (*Summary, error) {
	records, err := d.lister.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load analytics")
	}

	// Re-check after the round-trip: a newer activation may own the page now.
	if !d.guard.Current(tok) {
		d.log.Debug().Uint64("token", uint64(tok)).Msg("discarding stale analytics load")
		return nil, ErrStaleActivation
	}

	summary := Aggregate(records, d.now())

	charts := []struct {
		key  string
		data ChartData
	}{
		{WidgetRevenue, summary.Revenue},
		{WidgetOrderVolume, summary.OrderVolume},
		{WidgetGrowth, ChartData{Labels: []string{"growth"}, Values: []float64{summary.GrowthPercent}}},
	}

	// No per-widget re-check: the stale check above is all-or-nothing so a
	// losing load can never apply a partial update.
	for _, c := range charts {
		c := c
		if _, err := d.lifecycle.Register(c.key, func() (lifecycle.Widget, error) {
			return d.factory(c.key, c.data)
		}); err != nil {
			return nil, err
		}
	}

	d.mu.Lock()
	d.lastSummary = &summary
	d.mu.Unlock()
	d.log.Info().Int("orders", len(records)).Msg("analytics rendered")
	return &summary, nil
}

// LastSummary returns the most recently applied summary, or nil.
func (d *Dashboard) LastSummary() *Summary {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastSummary
}
