package campaign

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/roundtable/internal/platform/errors"
	"github.com/louisbranch/roundtable/internal/platform/id"
)

// ActorType describes the role an actor plays in a campaign.
type ActorType int

const (
	// ActorTypeUnspecified represents an invalid actor type value.
	ActorTypeUnspecified ActorType = iota
	// ActorTypeDM indicates a dungeon-master actor.
	ActorTypeDM
	// ActorTypePlayer indicates a player-character actor.
	ActorTypePlayer
	// ActorTypeHuman indicates a human speaker or observer.
	ActorTypeHuman
)

var (
	// ErrEmptyName indicates a missing campaign name.
	ErrEmptyName = apperrors.New(apperrors.CodeCampaignNameEmpty, "campaign name is required")
	// ErrActorIDEmpty indicates a roster entry without an id.
	ErrActorIDEmpty = apperrors.New(apperrors.CodeActorIDEmpty, "actor id is required")
	// ErrActorNameEmpty indicates a roster entry without a display name.
	ErrActorNameEmpty = apperrors.New(apperrors.CodeActorNameEmpty, "actor name is required")
	// ErrActorInvalidType indicates a missing or unknown actor type.
	ErrActorInvalidType = apperrors.New(apperrors.CodeActorInvalidType, "actor type is required")
	// ErrActorDuplicateID indicates two roster entries sharing an id.
	ErrActorDuplicateID = apperrors.New(apperrors.CodeActorDuplicateID, "actor id must be unique within a campaign")
	// ErrHumanActorAI indicates a human roster entry flagged as AI.
	ErrHumanActorAI = apperrors.New(apperrors.CodeActorHumanNeverAI, "human actors cannot be AI driven")
)

// Actor is a named participant in a campaign. Actor ids are client-supplied
// and unique within their campaign.
type Actor struct {
	ID         string
	CampaignID string
	Name       string
	Type       ActorType
	IsAI       bool
}

// IsDM reports whether the actor holds the dungeon-master role.
func (a Actor) IsDM() bool {
	return a.Type == ActorTypeDM
}

// Campaign holds the roster, turn ownership, and anti-ramble counter for
// one session. StateJSON is a free-form bag owned by external tooling.
// FloorLock records who last took the floor; nothing in the core reads it
// back.
type Campaign struct {
	ID           string
	Name         string
	StateJSON    string
	TurnOwner    string
	AIOnlyStreak int
	FloorLock    string
	FloorLockAt  *time.Time
	CreatedAt    time.Time
	Actors       []Actor
}

// ActorByID returns the roster entry with the given id.
func (c Campaign) ActorByID(actorID string) (Actor, bool) {
	for _, actor := range c.Actors {
		if actor.ID == actorID {
			return actor, true
		}
	}
	return Actor{}, false
}

// ActorInput describes one roster entry at campaign creation.
type ActorInput struct {
	ID   string
	Name string
	Type ActorType
	IsAI bool
}

// CreateCampaignInput describes the data needed to create a campaign.
type CreateCampaignInput struct {
	Name   string
	Actors []ActorInput
}

// CreateCampaign builds a campaign with its full roster and a generated id.
// The initial turn owner is the head of the canonical order, which puts the
// first dm actor on the floor; an empty roster leaves the owner empty until
// actors exist.
func CreateCampaign(input CreateCampaignInput, now func() time.Time, idGenerator func() (string, error)) (Campaign, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := normalizeCreateCampaignInput(input)
	if err != nil {
		return Campaign{}, err
	}

	campaignID, err := idGenerator()
	if err != nil {
		return Campaign{}, fmt.Errorf("generate campaign id: %w", err)
	}

	actors := make([]Actor, 0, len(normalized.Actors))
	for _, entry := range normalized.Actors {
		actors = append(actors, Actor{
			ID:         entry.ID,
			CampaignID: campaignID,
			Name:       entry.Name,
			Type:       entry.Type,
			IsAI:       entry.IsAI,
		})
	}

	return Campaign{
		ID:           campaignID,
		Name:         normalized.Name,
		StateJSON:    "{}",
		TurnOwner:    InitialOwner(actors),
		AIOnlyStreak: 0,
		CreatedAt:    now().UTC(),
		Actors:       actors,
	}, nil
}

// normalizeCreateCampaignInput trims free-text fields and validates the
// roster.
func normalizeCreateCampaignInput(input CreateCampaignInput) (CreateCampaignInput, error) {
	normalized := CreateCampaignInput{
		Name:   strings.TrimSpace(input.Name),
		Actors: make([]ActorInput, 0, len(input.Actors)),
	}
	if normalized.Name == "" {
		return CreateCampaignInput{}, ErrEmptyName
	}

	seen := make(map[string]struct{}, len(input.Actors))
	for _, entry := range input.Actors {
		actor := ActorInput{
			ID:   strings.TrimSpace(entry.ID),
			Name: strings.TrimSpace(entry.Name),
			Type: entry.Type,
			IsAI: entry.IsAI,
		}
		if actor.ID == "" {
			return CreateCampaignInput{}, ErrActorIDEmpty
		}
		if actor.Name == "" {
			return CreateCampaignInput{}, ErrActorNameEmpty
		}
		switch actor.Type {
		case ActorTypeDM, ActorTypePlayer, ActorTypeHuman:
		default:
			return CreateCampaignInput{}, ErrActorInvalidType
		}
		if actor.Type == ActorTypeHuman && actor.IsAI {
			return CreateCampaignInput{}, ErrHumanActorAI
		}
		if _, dup := seen[actor.ID]; dup {
			return CreateCampaignInput{}, apperrors.WithMetadata(
				apperrors.CodeActorDuplicateID,
				fmt.Sprintf("actor id %q must be unique within a campaign", actor.ID),
				map[string]string{"ActorID": actor.ID},
			)
		}
		seen[actor.ID] = struct{}{}
		normalized.Actors = append(normalized.Actors, actor)
	}

	return normalized, nil
}

// actorTypeLabel returns the wire label for an actor type.
func actorTypeLabel(actorType ActorType) string {
	switch actorType {
	case ActorTypeDM:
		return "dm"
	case ActorTypePlayer:
		return "player"
	case ActorTypeHuman:
		return "human"
	default:
		return "unspecified"
	}
}

// Label returns the lowercase wire form of the actor type.
func (t ActorType) Label() string {
	return actorTypeLabel(t)
}

// ActorTypeFromLabel parses a wire label into an ActorType. It trims
// whitespace and matches case-insensitively.
func ActorTypeFromLabel(value string) (ActorType, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ActorTypeUnspecified, ErrActorInvalidType
	}
	switch strings.ToLower(trimmed) {
	case "dm":
		return ActorTypeDM, nil
	case "player":
		return ActorTypePlayer, nil
	case "human":
		return ActorTypeHuman, nil
	default:
		return ActorTypeUnspecified, apperrors.WithMetadata(
			apperrors.CodeActorInvalidType,
			fmt.Sprintf("unknown actor type: %s", trimmed),
			map[string]string{"ActorType": trimmed},
		)
	}
}
