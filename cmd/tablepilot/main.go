// tablepilot is a terminal harness for the client engine: it activates a
// controller against a collaborator backend and relays a conversation from
// stdin. Quick actions are entered as "/order", "/menu", "/hours",
// "/contact"; "/confirm <name> <contact>" submits the awaiting order and
// "/reload" simulates an in-place page transition.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tablepilot/tablepilot/internal/analytics"
	"github.com/tablepilot/tablepilot/internal/config"
	"github.com/tablepilot/tablepilot/internal/engine"
	"github.com/tablepilot/tablepilot/internal/lifecycle"
	"github.com/tablepilot/tablepilot/internal/remote"
	"github.com/tablepilot/tablepilot/internal/render"
)

type consoleChart struct {
	key string
}

func (c consoleChart) Destroy() {
	fmt.Printf("[chart %s destroyed]\n", c.key)
}

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.WarnLevel).With().Timestamp().Logger()
	cfg := config.Load()

	client := remote.NewClient(cfg.BackendBaseURL, cfg.RestaurantID, cfg.HTTPTimeout)
	if err := client.Login(context.Background(), cfg.DevAdminEmail, cfg.DevAdminPass); err != nil {
		log.Warn().Err(err).Msg("login failed, analytics listing will be unavailable")
	}

	ctrl := engine.NewController(cfg, engine.Deps{
		Config: remote.ConfigClient{Client: client},
		Chat:   remote.ChatClient{Client: client},
		Placer: remote.OrderClient{Client: client},
		Orders: remote.OrderClient{Client: client},
		ChartFactory: func(key string, data analytics.ChartData) (lifecycle.Widget, error) {
			fmt.Printf("[chart %s: %d points]\n", key, len(data.Values))
			return consoleChart{key: key}, nil
		},
	}, log)

	ctx := context.Background()
	if err := ctrl.Activate(ctx); err != nil {
		log.Fatal().Err(err).Msg("activate")
	}
	printed := flush(ctrl, 0)

	sc := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
		case line == "/quit":
			ctrl.Deactivate()
			return
		case line == "/reload":
			if err := ctrl.Activate(ctx); err != nil {
				log.Error().Err(err).Msg("reactivate")
			}
		case strings.HasPrefix(line, "/confirm "):
			fields := strings.Fields(strings.TrimPrefix(line, "/confirm "))
			if len(fields) < 2 {
				fmt.Println("usage: /confirm <name> <contact>")
				break
			}
			ctrl.ConfirmOrder(ctx, fields[0], strings.Join(fields[1:], " "))
		case strings.HasPrefix(line, "/"):
			ctrl.HandleQuickAction(ctx, strings.TrimPrefix(line, "/"))
		default:
			ctrl.Handle(ctx, line, "")
		}
		printed = flush(ctrl, printed)
		fmt.Print("> ")
	}
}

// flush prints log entries appended since the last call and returns the new
// high-water mark.
func flush(ctrl *engine.Controller, printed int) int {
	entries := ctrl.Log().Entries()
	for _, e := range entries[printed:] {
		prefix := "bot"
		if e.Speaker == render.SpeakerUser {
			prefix = "you"
		}
		for _, f := range e.Fragments {
			switch frag := f.(type) {
			case render.TextFragment:
				fmt.Printf("%s: %s\n", prefix, frag.HTML)
			case render.MediaFragment:
				if frag.Caption != "" {
					fmt.Printf("%s: [photo] %s <%s>\n", prefix, frag.Caption, frag.URL)
				} else {
					fmt.Printf("%s: [photo] <%s>\n", prefix, frag.URL)
				}
			}
		}
	}
	return len(entries)
}
