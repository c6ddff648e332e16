// devserver runs the stub collaborator backend locally: configuration, chat,
// order, and training endpoints in the shapes the engine consumes.
package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/tablepilot/tablepilot/internal/config"
	"github.com/tablepilot/tablepilot/internal/remote"
	"github.com/tablepilot/tablepilot/internal/stub"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	cfg := config.Load()

	store, err := stub.OpenStore(cfg.DevDBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("open store")
	}

	// Seed a demo menu so a fresh database is immediately usable.
	brand, err := store.LoadBrand(context.Background(), cfg.RestaurantID)
	if err != nil {
		log.Fatal().Err(err).Msg("load brand settings")
	}
	if len(brand.MenuItems) == 0 {
		seed := &remote.BrandConfig{
			EstablishmentName: "Casa Verde",
			CurrencySymbol:    cfg.DevCurrency,
			OpenTime:          "09:00",
			CloseTime:         "22:00",
			MenuItems: []remote.MenuItem{
				{Name: "Burger", Description: "flame-grilled, with fries", Price: 12.99, Category: "mains"},
				{Name: "Wings", Description: "spicy buffalo wings", Price: 8.50, Category: "starters"},
				{Name: "Halo-halo", Description: "shaved ice with everything", Price: 6.25, Category: "desserts"},
			},
		}
		if err := store.SaveBrand(context.Background(), cfg.RestaurantID, seed); err != nil {
			log.Fatal().Err(err).Msg("seed brand settings")
		}
		log.Info().Msg("seeded demo menu")
	}

	srv, err := stub.NewServer(store, stub.Options{
		JWTSecret:     cfg.DevJWTSecret,
		AdminEmail:    cfg.DevAdminEmail,
		AdminPassword: cfg.DevAdminPass,
		Currency:      cfg.DevCurrency,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("build server")
	}

	log.Info().Str("addr", cfg.DevListenAddr).Msg("devserver listening")
	if err := srv.Router().Run(cfg.DevListenAddr); err != nil {
		log.Fatal().Err(err).Msg("serve")
	}
}
