package app

import (
	"time"

	"github.com/louisbranch/roundtable/internal/platform/id"
	"github.com/louisbranch/roundtable/internal/platform/random"
	"github.com/louisbranch/roundtable/internal/services/engine/storage"
)

// Defaults for the anti-ramble breaker and the dm memory omniscience
// toggle.
const (
	DefaultAIOnlyStreakLimit  = 3
	defaultMaxOutputSentences = 6
)

// Config tunes campaign-independent service behavior. The zero value is
// normalized to the defaults above.
type Config struct {
	// AIOnlyStreakLimit is the streak length that trips the refocus
	// breaker on turn advance.
	AIOnlyStreakLimit int
	// DMOmniscientPrivate widens private memory reads to dm viewers.
	DMOmniscientPrivate bool
}

// Service exposes the engine operations backed by a single store.
type Service struct {
	store storage.Store
	cfg   Config

	locks *campaignLocks

	// Injected for deterministic tests.
	now     func() time.Time
	newID   func() (string, error)
	newSeed func() (int64, error)
}

// NewService builds a service over store. A zero AIOnlyStreakLimit falls
// back to the default of three.
func NewService(store storage.Store, cfg Config) *Service {
	if cfg.AIOnlyStreakLimit <= 0 {
		cfg.AIOnlyStreakLimit = DefaultAIOnlyStreakLimit
	}
	return &Service{
		store:   store,
		cfg:     cfg,
		locks:   newCampaignLocks(),
		now:     time.Now,
		newID:   id.NewID,
		newSeed: random.NewSeed,
	}
}
