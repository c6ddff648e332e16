package config

import (
	"os"
	"strconv"
	"time"
)

// ContactMode selects which identification field the deployment collects
// alongside the customer name.
type ContactMode string

const (
	ContactEmail ContactMode = "email"
	ContactTable ContactMode = "table"
)

type Config struct {
	// Base URL of the collaborator backend (config, chat, orders, training).
	BackendBaseURL string

	// Deployment variant: email or table-number identification.
	ContactMode ContactMode

	// Restaurant the engine is bound to; forwarded as a query param so the
	// multi-tenant backend can resolve branding and menu.
	RestaurantID string

	HTTPTimeout      time.Duration
	TypingTick       time.Duration
	CannedReplyDelay time.Duration

	// Analytics refresh cadence; zero disables the periodic refresh timer.
	AnalyticsRefresh time.Duration

	// devserver
	DevListenAddr string
	DevDBPath     string
	DevJWTSecret  string
	DevAdminEmail string
	DevAdminPass  string
	DevCurrency   string
}

func Load() Config {
	base := os.Getenv("BACKEND_BASE_URL")
	if base == "" {
		base = "http://localhost:8080"
	}

	mode := ContactMode(os.Getenv("CONTACT_MODE"))
	if mode != ContactEmail && mode != ContactTable {
		mode = ContactTable
	}

	httpTimeout := 30 * time.Second
	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			httpTimeout = time.Duration(n) * time.Second
		}
	}

	typingTick := 400 * time.Millisecond
	if v := os.Getenv("TYPING_TICK_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			typingTick = time.Duration(n) * time.Millisecond
		}
	}

	cannedDelay := 300 * time.Millisecond
	if v := os.Getenv("CANNED_REPLY_DELAY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cannedDelay = time.Duration(n) * time.Millisecond
		}
	}

	var refresh time.Duration
	if v := os.Getenv("ANALYTICS_REFRESH_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			refresh = time.Duration(n) * time.Second
		}
	}

	listen := os.Getenv("DEV_LISTEN_ADDR")
	if listen == "" {
		listen = ":8080"
	}

	dbPath := os.Getenv("DEV_DB_PATH")
	if dbPath == "" {
		dbPath = "file::memory:?cache=shared"
	}

	secret := os.Getenv("DEV_JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
	}

	adminEmail := os.Getenv("DEV_ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@example.com"
	}
	adminPass := os.Getenv("DEV_ADMIN_PASS")
	if adminPass == "" {
		adminPass = "admin"
	}

	currency := os.Getenv("DEV_CURRENCY_SYMBOL")
	if currency == "" {
		currency = "₱"
	}

	return Config{
		BackendBaseURL: base,
		ContactMode:    mode,
		RestaurantID:   os.Getenv("RESTAURANT_ID"),

		HTTPTimeout:      httpTimeout,
		TypingTick:       typingTick,
		CannedReplyDelay: cannedDelay,
		AnalyticsRefresh: refresh,

		DevListenAddr: listen,
		DevDBPath:     dbPath,
		DevJWTSecret:  secret,
		DevAdminEmail: adminEmail,
		DevAdminPass:  adminPass,
		DevCurrency:   currency,
	}
}
