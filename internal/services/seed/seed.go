// Package seed creates the demo fixture against a running engine. It
// talks to the same HTTP API every other client uses, so seeding also
// doubles as a smoke test of the deployed engine.
package seed

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/louisbranch/roundtable/internal/services/engine/api"
	"github.com/louisbranch/roundtable/internal/services/engine/client"
)

// defaultCampaignName names the demo campaign unless overridden.
const defaultCampaignName = "Demo Campaign"

// Config holds seed tool configuration.
type Config struct {
	// EngineURL is the base URL of the engine HTTP API.
	EngineURL string
	// EngineKey is the pre-shared key sent on every engine request.
	EngineKey string
	// Name overrides the demo campaign name when non-empty.
	Name string
	// Out receives the created campaign id, one line. Defaults to
	// stdout so scripts can capture it.
	Out io.Writer
}

// Run creates the demo campaign and writes its id to cfg.Out.
func Run(ctx context.Context, cfg Config) error {
	if strings.TrimSpace(cfg.EngineURL) == "" {
		return fmt.Errorf("engine URL is required")
	}
	if strings.TrimSpace(cfg.EngineKey) == "" {
		return fmt.Errorf("engine key is required")
	}

	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		name = defaultCampaignName
	}
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}

	engine := client.New(cfg.EngineURL, cfg.EngineKey, nil)
	created, err := engine.CreateCampaign(ctx, api.CampaignCreate{
		Name:   name,
		Actors: demoRoster(),
	})
	if err != nil {
		return fmt.Errorf("create demo campaign: %w", err)
	}

	log.Printf("seeded campaign %q (%s), turn owner %s", created.Name, created.ID, created.TurnOwner)
	if _, err := fmt.Fprintln(out, created.ID); err != nil {
		return fmt.Errorf("write campaign id: %w", err)
	}
	return nil
}

// demoRoster is the fixed demo table: an AI dm, an AI player, and one
// human seat to keep the turn rotation honest.
func demoRoster() []api.ActorCreate {
	return []api.ActorCreate{
		{ID: "dm", Name: "Dungeon Master", ActorType: "dm", IsAI: true},
		{ID: "player1", Name: "Player 1", ActorType: "player", IsAI: true},
		{ID: "human", Name: "Human", ActorType: "human"},
	}
}
