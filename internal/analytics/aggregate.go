// Package analytics turns order-listing records into chart datasets and owns
// the token-guarded load that (re)builds the chart widgets for a page
// activation.
package analytics

import (
	"sort"
	"time"

	"github.com/tablepilot/tablepilot/internal/remote"
)

// Widget keys, one per chart target.
const (
	WidgetRevenue     = "revenue"
	WidgetOrderVolume = "order-volume"
	WidgetGrowth      = "growth"
)

// ChartData is one widget's dataset: parallel labels and values.
type ChartData struct {
	Labels []string
	Values []float64
}

// Summary holds the three datasets derived from one listing snapshot.
type Summary struct {
	Revenue     ChartData
	OrderVolume ChartData
	// Growth compares the trailing seven days against the seven before.
	GrowthPercent float64
}

var createdAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseCreatedAt(s string) (time.Time, bool) {
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Aggregate buckets records by day. Cancelled orders count toward volume but
// not revenue. Records with unparseable timestamps are skipped.
func Aggregate(records []remote.OrderRecord, now time.Time) Summary {
	revenueByDay := make(map[string]float64)
	volumeByDay := make(map[string]float64)

	var recentRevenue, priorRevenue float64
	weekAgo := now.AddDate(0, 0, -7)
	twoWeeksAgo := now.AddDate(0, 0, -14)

	for _, rec := range records {
		at, ok := parseCreatedAt(rec.CreatedAt)
		if !ok {
			continue
		}
		day := at.Format("2006-01-02")
		volumeByDay[day]++
		if rec.Status != "cancelled" {
			revenueByDay[day] += rec.TotalAmount
			switch {
			case at.After(weekAgo):
				recentRevenue += rec.TotalAmount
			case at.After(twoWeeksAgo):
				priorRevenue += rec.TotalAmount
			}
		}
	}

	return Summary{
		Revenue:       toSeries(revenueByDay),
		OrderVolume:   toSeries(volumeByDay),
		GrowthPercent: growth(recentRevenue, priorRevenue),
	}
}

func toSeries(byDay map[string]float64) ChartData {
	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Strings(days)

	data := ChartData{Labels: days, Values: make([]float64, len(days))}
	for i, d := range days {
		data.Values[i] = byDay[d]
	}
	return data
}

func growth(recent, prior float64) float64 {
	if prior == 0 {
		if recent == 0 {
			return 0
		}
		return 100
	}
	return (recent - prior) / prior * 100
}
