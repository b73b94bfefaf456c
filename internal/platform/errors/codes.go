// Package errors provides structured error handling for engine operations.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// CodeInternal represents a store or infrastructure failure.
	CodeInternal Code = "INTERNAL"

	// CodeUnauthorized indicates a missing or mismatched engine key.
	CodeUnauthorized Code = "UNAUTHORIZED"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"

	// Generic validation failure for request payloads.
	CodeInvalidArgument Code = "INVALID_ARGUMENT"

	// Campaign errors
	CodeCampaignNameEmpty Code = "CAMPAIGN_NAME_EMPTY"

	// Actor errors
	CodeActorIDEmpty      Code = "ACTOR_ID_EMPTY"
	CodeActorNameEmpty    Code = "ACTOR_NAME_EMPTY"
	CodeActorInvalidType  Code = "ACTOR_INVALID_TYPE"
	CodeActorDuplicateID  Code = "ACTOR_DUPLICATE_ID"
	CodeActorHumanNeverAI Code = "ACTOR_HUMAN_NEVER_AI"

	// Event errors
	CodeEventInvalid Code = "EVENT_INVALID"

	// Memory errors
	CodeMemoryInvalid Code = "MEMORY_INVALID"

	// Dice errors
	CodeDiceInvalidSpec Code = "DICE_INVALID_SPEC"

	// Mutation errors
	CodeMutationUnknownType    Code = "MUTATION_UNKNOWN_TYPE"
	CodeMutationInvalidPayload Code = "MUTATION_INVALID_PAYLOAD"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// BadRequest - validation failures, bad input
	case CodeInvalidArgument,
		CodeCampaignNameEmpty,
		CodeActorIDEmpty,
		CodeActorNameEmpty,
		CodeActorInvalidType,
		CodeActorDuplicateID,
		CodeActorHumanNeverAI,
		CodeEventInvalid,
		CodeMemoryInvalid,
		CodeDiceInvalidSpec,
		CodeMutationUnknownType,
		CodeMutationInvalidPayload:
		return http.StatusBadRequest

	// NotFound - resource doesn't exist
	case CodeNotFound:
		return http.StatusNotFound

	// Forbidden - pre-shared key mismatch
	case CodeUnauthorized:
		return http.StatusForbidden

	default:
		return http.StatusInternalServerError
	}
}
