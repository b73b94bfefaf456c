package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	apperrors "github.com/louisbranch/roundtable/internal/platform/errors"
	"github.com/louisbranch/roundtable/internal/services/engine/storage"
)

// Mutation types understood by ApplyMutations.
const (
	MutationHPSet           = "hp_set"
	MutationHPDelta         = "hp_delta"
	MutationInventoryAdd    = "inventory_add"
	MutationInventoryRemove = "inventory_remove"
	MutationFlagSet         = "flag_set"
	MutationTimeAdvance     = "time_advance"
)

// StateKV key prefixes written by the mutation pipeline.
const (
	hpKeyPrefix        = "hp:"
	inventoryKeyPrefix = "inventory:"
	flagKeyPrefix      = "flag:"
	timeCurrentKey     = "time:current"
)

// Mutation is one requested state change. Payload is the raw JSON object
// for the type; each type decodes its own shape.
type Mutation struct {
	Type    string
	Payload json.RawMessage
}

// MutationResult echoes one applied mutation with the key it touched and
// the value after application. Value carries the natural type per
// mutation: int for hp, the full list for inventory, the raw JSON value
// for flags, and the clock string for time.
type MutationResult struct {
	Type  string
	Key   string
	Value any
}

// MutationOutcome summarizes an applied batch.
type MutationOutcome struct {
	MutationsApplied int
	Results          []MutationResult
}

// mutationState stages a batch's writes over the stored bag so later
// mutations in the same batch read earlier ones before anything commits.
type mutationState struct {
	store      storage.StateStore
	campaignID string
	staged     map[string]string
}

func (m *mutationState) get(ctx context.Context, key, fallback string) (string, error) {
	if value, ok := m.staged[key]; ok {
		return value, nil
	}
	value, err := m.store.GetState(ctx, m.campaignID, key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return fallback, nil
	case err != nil:
		return "", fmt.Errorf("get state %s: %w", key, err)
	}
	return value, nil
}

func (m *mutationState) set(key, value string) {
	m.staged[key] = value
}

// ApplyMutations applies a batch of state mutations atomically: either
// every mutation commits or, on the first unknown type or bad payload,
// nothing does. The batch runs under the campaign lock because hp_delta
// reads before it writes.
func (s *Service) ApplyMutations(ctx context.Context, campaignID string, mutations []Mutation) (MutationOutcome, error) {
	unlock := s.locks.lock(campaignID)
	defer unlock()

	if _, err := s.store.GetCampaign(ctx, campaignID); err != nil {
		return MutationOutcome{}, err
	}

	staged := &mutationState{
		store:      s.store,
		campaignID: campaignID,
		staged:     make(map[string]string, len(mutations)),
	}
	results := make([]MutationResult, 0, len(mutations))

	for _, mut := range mutations {
		result, err := applyMutation(ctx, staged, mut)
		if err != nil {
			return MutationOutcome{}, err
		}
		results = append(results, result)
	}

	if err := s.store.SetStateMany(ctx, campaignID, staged.staged); err != nil {
		return MutationOutcome{}, fmt.Errorf("set state: %w", err)
	}

	return MutationOutcome{
		MutationsApplied: len(results),
		Results:          results,
	}, nil
}

func applyMutation(ctx context.Context, staged *mutationState, mut Mutation) (MutationResult, error) {
	switch mut.Type {
	case MutationHPSet:
		return applyHPSet(staged, mut)
	case MutationHPDelta:
		return applyHPDelta(ctx, staged, mut)
	case MutationInventoryAdd:
		return applyInventoryAdd(ctx, staged, mut)
	case MutationInventoryRemove:
		return applyInventoryRemove(ctx, staged, mut)
	case MutationFlagSet:
		return applyFlagSet(staged, mut)
	case MutationTimeAdvance:
		return applyTimeAdvance(staged, mut)
	default:
		return MutationResult{}, apperrors.WithMetadata(
			apperrors.CodeMutationUnknownType,
			fmt.Sprintf("Unknown mutation type: %s", mut.Type),
			map[string]string{"MutationType": mut.Type},
		)
	}
}

func applyHPSet(staged *mutationState, mut Mutation) (MutationResult, error) {
	var payload struct {
		ActorID string `json:"actor_id"`
		HP      int    `json:"hp"`
	}
	if err := decodePayload(mut, &payload); err != nil {
		return MutationResult{}, err
	}
	if err := requireField(mut, "actor_id", payload.ActorID); err != nil {
		return MutationResult{}, err
	}
	key := hpKeyPrefix + payload.ActorID
	staged.set(key, strconv.Itoa(payload.HP))
	return MutationResult{Type: mut.Type, Key: key, Value: payload.HP}, nil
}

func applyHPDelta(ctx context.Context, staged *mutationState, mut Mutation) (MutationResult, error) {
	var payload struct {
		ActorID string `json:"actor_id"`
		Delta   int    `json:"delta"`
	}
	if err := decodePayload(mut, &payload); err != nil {
		return MutationResult{}, err
	}
	if err := requireField(mut, "actor_id", payload.ActorID); err != nil {
		return MutationResult{}, err
	}
	key := hpKeyPrefix + payload.ActorID
	current, err := staged.get(ctx, key, "0")
	if err != nil {
		return MutationResult{}, err
	}
	hp, err := strconv.Atoi(current)
	if err != nil {
		return MutationResult{}, fmt.Errorf("parse stored hp %q: %w", current, err)
	}
	hp += payload.Delta
	staged.set(key, strconv.Itoa(hp))
	return MutationResult{Type: mut.Type, Key: key, Value: hp}, nil
}

func applyInventoryAdd(ctx context.Context, staged *mutationState, mut Mutation) (MutationResult, error) {
	var payload struct {
		ActorID string `json:"actor_id"`
		Item    string `json:"item"`
	}
	if err := decodePayload(mut, &payload); err != nil {
		return MutationResult{}, err
	}
	if err := requireField(mut, "actor_id", payload.ActorID); err != nil {
		return MutationResult{}, err
	}
	key := inventoryKeyPrefix + payload.ActorID
	items, err := stagedInventory(ctx, staged, key)
	if err != nil {
		return MutationResult{}, err
	}
	items = append(items, payload.Item)
	if err := stageInventory(staged, key, items); err != nil {
		return MutationResult{}, err
	}
	return MutationResult{Type: mut.Type, Key: key, Value: items}, nil
}

func applyInventoryRemove(ctx context.Context, staged *mutationState, mut Mutation) (MutationResult, error) {
	var payload struct {
		ActorID string `json:"actor_id"`
		Item    string `json:"item"`
	}
	if err := decodePayload(mut, &payload); err != nil {
		return MutationResult{}, err
	}
	if err := requireField(mut, "actor_id", payload.ActorID); err != nil {
		return MutationResult{}, err
	}
	key := inventoryKeyPrefix + payload.ActorID
	items, err := stagedInventory(ctx, staged, key)
	if err != nil {
		return MutationResult{}, err
	}
	// Removing an absent item is a no-op; only the first occurrence goes.
	for i, item := range items {
		if item == payload.Item {
			items = append(items[:i], items[i+1:]...)
			break
		}
	}
	if err := stageInventory(staged, key, items); err != nil {
		return MutationResult{}, err
	}
	return MutationResult{Type: mut.Type, Key: key, Value: items}, nil
}

func applyFlagSet(staged *mutationState, mut Mutation) (MutationResult, error) {
	var payload struct {
		Key   string          `json:"key"`
		Value json.RawMessage `json:"value"`
	}
	if err := decodePayload(mut, &payload); err != nil {
		return MutationResult{}, err
	}
	if err := requireField(mut, "key", payload.Key); err != nil {
		return MutationResult{}, err
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, payload.Value); err != nil {
		return MutationResult{}, invalidPayload(mut.Type, err)
	}
	key := flagKeyPrefix + payload.Key
	staged.set(key, compact.String())
	return MutationResult{Type: mut.Type, Key: key, Value: json.RawMessage(compact.Bytes())}, nil
}

func applyTimeAdvance(staged *mutationState, mut Mutation) (MutationResult, error) {
	var payload struct {
		Amount json.Number `json:"amount"`
		Unit   string      `json:"unit"`
	}
	if err := decodePayload(mut, &payload); err != nil {
		return MutationResult{}, err
	}
	if err := requireField(mut, "amount", payload.Amount.String()); err != nil {
		return MutationResult{}, err
	}
	if err := requireField(mut, "unit", payload.Unit); err != nil {
		return MutationResult{}, err
	}
	value := fmt.Sprintf("%s %s", payload.Amount.String(), payload.Unit)
	staged.set(timeCurrentKey, value)
	return MutationResult{Type: mut.Type, Key: timeCurrentKey, Value: value}, nil
}

func stagedInventory(ctx context.Context, staged *mutationState, key string) ([]string, error) {
	raw, err := staged.get(ctx, key, "[]")
	if err != nil {
		return nil, err
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("parse stored inventory %s: %w", key, err)
	}
	if items == nil {
		items = []string{}
	}
	return items, nil
}

func stageInventory(staged *mutationState, key string, items []string) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode inventory %s: %w", key, err)
	}
	staged.set(key, string(raw))
	return nil
}

func decodePayload(mut Mutation, dst any) error {
	if len(mut.Payload) == 0 {
		return invalidPayload(mut.Type, errors.New("payload is required"))
	}
	if err := json.Unmarshal(mut.Payload, dst); err != nil {
		return invalidPayload(mut.Type, err)
	}
	return nil
}

func requireField(mut Mutation, name, value string) error {
	if value == "" {
		return invalidPayload(mut.Type, fmt.Errorf("%s is required", name))
	}
	return nil
}

func invalidPayload(mutationType string, err error) error {
	return apperrors.WithMetadata(
		apperrors.CodeMutationInvalidPayload,
		fmt.Sprintf("invalid %s payload: %v", mutationType, err),
		map[string]string{"MutationType": mutationType},
	)
}
