package remote

import (
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
)

// BrandConfig is the per-restaurant configuration served by the backend.
// Every field is optional; absence leaves the corresponding UI aspect at its
// default.
type BrandConfig struct {
	EstablishmentName string     `json:"establishment_name,omitempty"`
	AccentColor       string     `json:"color_hex,omitempty"`
	FontFamily        string     `json:"font_family,omitempty"`
	CurrencySymbol    string     `json:"currency_symbol,omitempty"`
	LogoURL           string     `json:"logo_url,omitempty"`
	ChatbotAvatar     string     `json:"chatbot_avatar,omitempty"`
	MenuText          string     `json:"menu_text,omitempty"`
	MenuItems         []MenuItem `json:"menu_items,omitempty"`

	BusinessName    string `json:"business_name,omitempty"`
	BusinessEmail   string `json:"business_email,omitempty"`
	BusinessPhone   string `json:"business_phone,omitempty"`
	BusinessAddress string `json:"business_address,omitempty"`
	OpenTime        string `json:"open_time,omitempty"`
	CloseTime       string `json:"close_time,omitempty"`
}

// Currency returns the configured currency symbol, defaulting to "₱".
func (c *BrandConfig) Currency() string {
	if c == nil || c.CurrencySymbol == "" {
		return "₱"
	}
	return c.CurrencySymbol
}

// Name returns the establishment name, defaulting to a generic label.
func (c *BrandConfig) Name() string {
	if c == nil || c.EstablishmentName == "" {
		return "our restaurant"
	}
	return c.EstablishmentName
}

type MenuItem struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Category    string  `json:"category,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
}

// LineItem is one ordered item. The line total is always derived, never
// stored.
type LineItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Total computes the line total from unit price and quantity.
func (li LineItem) Total() float64 {
	return li.Price * float64(li.Quantity)
}

// SumTotal recomputes an order total from its items.
func SumTotal(items []LineItem) float64 {
	var t float64
	for _, li := range items {
		t += li.Total()
	}
	return t
}

// HistoryMessage is one turn of context sent to the chat endpoint.
type HistoryMessage struct {
	Role    string `json:"role"` // "user" | "assistant"
	Content string `json:"content"`
}

// Reply is the chat endpoint's answer, decided once at the boundary: either
// plain text or an order-ready signal with extracted items.
type Reply interface {
	reply()
}

// PlainReply is ordinary assistant text.
type PlainReply struct {
	Text string
}

// OrderReady carries the extracted order awaiting confirmation. Items is
// always non-empty; a ready flag without items decodes as a PlainReply.
type OrderReady struct {
	Items   []LineItem
	Total   float64
	Message string
}

func (PlainReply) reply() {}
func (OrderReady) reply() {}

// Placement is the order-placement request. Exactly one of CustomerEmail and
// TableNumber is set, per deployment variant.
type Placement struct {
	CustomerName  string     `json:"customer_name"`
	CustomerEmail string     `json:"customer_email,omitempty"`
	TableNumber   string     `json:"table_number,omitempty"`
	Items         []LineItem `json:"items"`
	TotalAmount   float64    `json:"total_amount"`
}

// PlacementError is a non-2xx order-placement response. Message carries the
// server-supplied error text when present.
type PlacementError struct {
	StatusCode int
	Message    string
}

func (e *PlacementError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "order placement failed with status " + strconv.Itoa(e.StatusCode)
}

// FlexID tolerates backends that serialize record IDs as either JSON strings
// or numbers.
type FlexID string

func (f *FlexID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.Wrap(err, "order id")
	}
	*f = FlexID(n.String())
	return nil
}

// OrderRecord is one row of the order-listing endpoint, consumed by the
// analytics aggregation.
type OrderRecord struct {
	ID           FlexID            `json:"id"`
	CustomerName string            `json:"customer_name"`
	TotalAmount  float64           `json:"total_amount"`
	Status       string            `json:"status"`
	CreatedAt    string            `json:"created_at"`
	Items        []OrderRecordItem `json:"items,omitempty"`
}

type OrderRecordItem struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// TrainingFile is one entry of the training-file listing. The engine does not
// interpret it beyond identity and display fields.
type TrainingFile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size int64  `json:"size,omitempty"`
}
