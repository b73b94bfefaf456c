package event

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/roundtable/internal/platform/errors"
	"github.com/louisbranch/roundtable/internal/platform/id"
)

// Visibility labels with defined lattice semantics. Any other label is
// stored as-is and visible to no one.
const (
	VisibilityPublic = "public"
	VisibilityParty  = "party"
	VisibilityDMOnly = "dm_only"

	privatePrefix = "private:"
)

// Reserved event types. Everything else is free-form.
const (
	TypeUtterance     = "utterance"
	TypeRoll          = "roll"
	TypeSystemRefocus = "system_refocus"
	TypeRunnerError   = "runner_error"
)

// SystemActorID is the synthetic author of engine-generated events. It
// never resolves to a roster entry.
const SystemActorID = "system"

// RefocusContent is the body of the anti-ramble circuit breaker event.
const RefocusContent = "[SYSTEM] Anti-ramble triggered: Human player, please take action."

// ErrInvalid indicates an event that cannot be appended.
var ErrInvalid = apperrors.New(apperrors.CodeEventInvalid, "event is invalid")

// Event is one immutable entry in a campaign's append-only log.
type Event struct {
	ID         string
	CampaignID string
	ActorID    string
	Type       string
	Content    string
	Visibility string
	CreatedAt  time.Time
}

// CreateEventInput describes a pending append.
type CreateEventInput struct {
	ActorID    string
	Type       string
	Content    string
	Visibility string
}

// New builds an event ready for appending. An empty visibility defaults to
// public. Content may be empty; visibility labels are stored unvalidated
// because the lattice fails closed on read.
func New(campaignID string, input CreateEventInput, now func() time.Time, idGenerator func() (string, error)) (Event, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	if strings.TrimSpace(campaignID) == "" {
		return Event{}, apperrors.New(apperrors.CodeEventInvalid, "event campaign id is required")
	}
	if strings.TrimSpace(input.ActorID) == "" {
		return Event{}, apperrors.New(apperrors.CodeEventInvalid, "event actor id is required")
	}
	if strings.TrimSpace(input.Type) == "" {
		return Event{}, apperrors.New(apperrors.CodeEventInvalid, "event type is required")
	}

	visibility := input.Visibility
	if visibility == "" {
		visibility = VisibilityPublic
	}

	eventID, err := idGenerator()
	if err != nil {
		return Event{}, fmt.Errorf("generate event id: %w", err)
	}

	return Event{
		ID:         eventID,
		CampaignID: campaignID,
		ActorID:    input.ActorID,
		Type:       input.Type,
		Content:    input.Content,
		Visibility: visibility,
		CreatedAt:  now().UTC(),
	}, nil
}

// RefocusInput returns the synthetic event appended when the anti-ramble
// breaker trips.
func RefocusInput() CreateEventInput {
	return CreateEventInput{
		ActorID:    SystemActorID,
		Type:       TypeSystemRefocus,
		Content:    RefocusContent,
		Visibility: VisibilityPublic,
	}
}

// PrivateFor returns the visibility label restricting an event to one actor
// (and the DM).
func PrivateFor(actorID string) string {
	return privatePrefix + actorID
}

// PrivateSubject extracts the actor id from a private visibility label.
func PrivateSubject(visibility string) (string, bool) {
	if !strings.HasPrefix(visibility, privatePrefix) {
		return "", false
	}
	return visibility[len(privatePrefix):], true
}

// Visible reports whether a viewer may read an event with the given
// visibility label. Unknown labels are visible to no one.
func Visible(visibility, viewerActorID string, viewerIsDM bool) bool {
	switch visibility {
	case VisibilityPublic:
		return true
	case VisibilityParty:
		// Party includes the dm.
		return true
	case VisibilityDMOnly:
		return viewerIsDM
	}
	if subject, ok := PrivateSubject(visibility); ok {
		return viewerActorID == subject || viewerIsDM
	}
	return false
}
