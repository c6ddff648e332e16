package stub

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tablepilot/tablepilot/internal/remote"
)

// chatScript is the deterministic stand-in for the AI chat endpoint: it
// extracts "<qty> <item>" mentions against the configured menu and flags
// order readiness when anything matched. Real response generation is the
// production backend's job, not this stub's.
type chatScript struct {
	currency string
}

var qtyMentionRe = regexp.MustCompile(`(?i)(\d+)\s+([a-z][a-z ]*)`)

type scriptReply struct {
	Response   string            `json:"response"`
	OrderReady bool              `json:"order_ready,omitempty"`
	OrderItems []remote.LineItem `json:"order_items,omitempty"`
	OrderTotal float64           `json:"order_total,omitempty"`
}

func (c chatScript) reply(message string, brand *remote.BrandConfig) scriptReply {
	items := c.extract(message, brand.MenuItems)
	if len(items) == 0 {
		return scriptReply{Response: fmt.Sprintf(
			"I can help you order from %s. Tell me the items and quantities, or ask for the menu!",
			brand.Name(),
		)}
	}

	total := remote.SumTotal(items)
	currency := c.currency
	if brand.CurrencySymbol != "" {
		currency = brand.CurrencySymbol
	}

	var lines []string
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("%dx %s (%s%.2f)", it.Quantity, it.Name, currency, it.Total()))
	}
	return scriptReply{
		Response: fmt.Sprintf("Got it: %s. Your total is %s%.2f. Ready to confirm?",
			strings.Join(lines, ", "), currency, total),
		OrderReady: true,
		OrderItems: items,
		OrderTotal: total,
	}
}

func (c chatScript) extract(message string, menu []remote.MenuItem) []remote.LineItem {
	var out []remote.LineItem
	for _, m := range qtyMentionRe.FindAllStringSubmatch(message, -1) {
		qty, err := strconv.Atoi(m[1])
		if err != nil || qty < 1 {
			continue
		}
		mention := normalize(m[2])
		for _, item := range menu {
			if mention == "" || item.Name == "" {
				continue
			}
			if strings.Contains(mention, normalize(item.Name)) {
				out = append(out, remote.LineItem{Name: item.Name, Price: item.Price, Quantity: qty})
				break
			}
		}
	}
	return out
}

// normalize lowercases and strips a crude plural so "burgers" matches
// "Burger".
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, "s")
	return s
}
