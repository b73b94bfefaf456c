// Package memory provides scoped campaign memory entries.
//
// Scopes are coarser than event visibility: world, public, and party are
// readable by everyone, dm_only by the dm, and private by the author. A
// process-wide toggle can extend private reads to the dm. Unknown scopes
// are stored but never returned.
package memory

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/roundtable/internal/platform/errors"
	"github.com/louisbranch/roundtable/internal/platform/id"
)

// Known memory scopes. Writes do not validate against this set; reads
// fail closed on anything else.
const (
	ScopeWorld   = "world"
	ScopePublic  = "public"
	ScopeParty   = "party"
	ScopePrivate = "private"
	ScopeDMOnly  = "dm_only"
)

// ErrInvalid indicates a memory that cannot be written.
var ErrInvalid = apperrors.New(apperrors.CodeMemoryInvalid, "memory is invalid")

// Memory is one immutable scoped entry in a campaign's memory store.
type Memory struct {
	ID         string
	CampaignID string
	ActorID    string
	Scope      string
	Text       string
	Tags       []string
	CreatedAt  time.Time
}

// WriteMemoryInput describes a pending memory write.
type WriteMemoryInput struct {
	ActorID string
	Scope   string
	Text    string
	Tags    []string
}

// New builds a memory ready for persisting. Tags default to an empty list
// so readers never see null.
func New(campaignID string, input WriteMemoryInput, now func() time.Time, idGenerator func() (string, error)) (Memory, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	if strings.TrimSpace(campaignID) == "" {
		return Memory{}, apperrors.New(apperrors.CodeMemoryInvalid, "memory campaign id is required")
	}
	if strings.TrimSpace(input.ActorID) == "" {
		return Memory{}, apperrors.New(apperrors.CodeMemoryInvalid, "memory actor id is required")
	}
	if strings.TrimSpace(input.Scope) == "" {
		return Memory{}, apperrors.New(apperrors.CodeMemoryInvalid, "memory scope is required")
	}

	memoryID, err := idGenerator()
	if err != nil {
		return Memory{}, fmt.Errorf("generate memory id: %w", err)
	}

	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}

	return Memory{
		ID:         memoryID,
		CampaignID: campaignID,
		ActorID:    input.ActorID,
		Scope:      input.Scope,
		Text:       input.Text,
		Tags:       tags,
		CreatedAt:  now().UTC(),
	}, nil
}

// Visible reports whether a viewer may read a memory. The dmOmniscient
// toggle widens private scope to dm viewers; it affects no other scope.
func Visible(m Memory, viewerActorID string, viewerIsDM, dmOmniscient bool) bool {
	switch m.Scope {
	case ScopeWorld, ScopePublic, ScopeParty:
		return true
	case ScopeDMOnly:
		return viewerIsDM
	case ScopePrivate:
		if m.ActorID == viewerActorID {
			return true
		}
		return viewerIsDM && dmOmniscient
	}
	return false
}
