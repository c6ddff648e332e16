package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/tablepilot/tablepilot/internal/remote"
)

// Built-in canned generators, all driven by the cached brand config so a
// deployment without some field degrades to a sensible default.

// MenuReply renders the structured menu, one line per item, with a media line
// for items that carry an image so the renderer emits photo cards.
func MenuReply(_ context.Context, brand *remote.BrandConfig) (string, error) {
	if brand == nil || len(brand.MenuItems) == 0 {
		if brand != nil && brand.MenuText != "" {
			return brand.MenuText, nil
		}
		return "We don't have a menu loaded yet. Please check back soon!", nil
	}

	currency := brand.Currency()
	var b strings.Builder
	fmt.Fprintf(&b, "Here's the menu at **%s**:\n", brand.Name())
	for _, item := range brand.MenuItems {
		if item.Name == "" {
			continue
		}
		b.WriteString(item.Name)
		if item.Description != "" {
			b.WriteString(" - " + item.Description)
		}
		if item.Price > 0 {
			fmt.Fprintf(&b, " (%s%.2f)", currency, item.Price)
		}
		b.WriteString("\n")
		if item.ImageURL != "" {
			fmt.Fprintf(&b, "photo: %s - %s\n", item.Name, item.ImageURL)
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// HoursReply answers the opening-hours quick action.
func HoursReply(_ context.Context, brand *remote.BrandConfig) (string, error) {
	if brand == nil || brand.OpenTime == "" || brand.CloseTime == "" {
		return "I don't have our opening hours on file yet. Please contact us directly!", nil
	}
	return fmt.Sprintf("We're open from **%s** to **%s**. See you soon!", brand.OpenTime, brand.CloseTime), nil
}

// ContactReply answers the contact quick action from the business block.
func ContactReply(_ context.Context, brand *remote.BrandConfig) (string, error) {
	if brand == nil {
		return "Contact details aren't set up yet.", nil
	}
	var lines []string
	if brand.BusinessPhone != "" {
		lines = append(lines, "Phone: "+brand.BusinessPhone)
	}
	if brand.BusinessEmail != "" {
		lines = append(lines, "Email: "+brand.BusinessEmail)
	}
	if brand.BusinessAddress != "" {
		lines = append(lines, "Address: "+brand.BusinessAddress)
	}
	if len(lines) == 0 {
		return "Contact details aren't set up yet.", nil
	}
	return "You can reach " + brand.Name() + " here:\n" + strings.Join(lines, "\n"), nil
}

// OrderIntentReply greets the user once order collection starts.
func OrderIntentReply(_ context.Context, brand *remote.BrandConfig) (string, error) {
	return fmt.Sprintf("Great! What would you like to order from %s? Just tell me the items and quantities.", brand.Name()), nil
}
