package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	apperrors "github.com/louisbranch/roundtable/internal/platform/errors"
	"github.com/louisbranch/roundtable/internal/services/engine/app"
	"github.com/louisbranch/roundtable/internal/services/engine/domain/event"
	"github.com/louisbranch/roundtable/internal/services/engine/domain/memory"
)

// Handler serves the engine HTTP API.
type Handler struct {
	svc *app.Service
}

// NewHandler builds the engine's HTTP handler: routes, the pre-shared key
// check, and a tracing span per request.
func NewHandler(svc *app.Service, engineKey string) http.Handler {
	h := &Handler{svc: svc}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/campaigns", h.createCampaign)
	mux.HandleFunc("GET /v1/campaigns/{campaignID}/state", h.campaignState)
	mux.HandleFunc("POST /v1/campaigns/{campaignID}/mutate", h.mutateState)
	mux.HandleFunc("POST /v1/campaigns/{campaignID}/events", h.appendEvent)
	mux.HandleFunc("GET /v1/campaigns/{campaignID}/events", h.listEvents)
	mux.HandleFunc("POST /v1/campaigns/{campaignID}/roll", h.roll)
	mux.HandleFunc("POST /v1/campaigns/{campaignID}/memory/write", h.writeMemory)
	mux.HandleFunc("GET /v1/campaigns/{campaignID}/memory/read", h.readMemories)
	mux.HandleFunc("POST /v1/campaigns/{campaignID}/turn/advance", h.advanceTurn)
	mux.HandleFunc("POST /v1/campaigns/{campaignID}/director/next", h.directorNext)
	mux.HandleFunc("GET /up", handleUp)

	return withTracing(requireEngineKey(mux, engineKey))
}

func handleUp(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// fail writes the error response and logs server-side failures; client
// errors are the caller's problem and stay out of the logs.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	if apperrors.HTTPStatusFor(err) == http.StatusInternalServerError {
		log.Printf("engine api error: %v", err)
	}
	writeError(w, err)
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidArgument, "invalid request body", err)
	}
	return nil
}

// decodeJSONAllowEmpty tolerates an absent body for endpoints whose
// request fields all have defaults.
func decodeJSONAllowEmpty(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return apperrors.Wrap(apperrors.CodeInvalidArgument, "invalid request body", err)
}

func (h *Handler) createCampaign(w http.ResponseWriter, r *http.Request) {
	var req CampaignCreate
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, err)
		return
	}

	input, err := campaignInputFromWire(req)
	if err != nil {
		h.fail(w, err)
		return
	}

	created, err := h.svc.CreateCampaign(r.Context(), input)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaignToWire(created))
}

func (h *Handler) campaignState(w http.ResponseWriter, r *http.Request) {
	campaignID := r.PathValue("campaignID")
	viewer := r.URL.Query().Get("viewer")

	state, err := h.svc.State(r.Context(), campaignID, viewer)
	if err != nil {
		h.fail(w, campaignError(campaignID, err))
		return
	}
	writeJSON(w, http.StatusOK, stateToWire(state))
}

func (h *Handler) mutateState(w http.ResponseWriter, r *http.Request) {
	campaignID := r.PathValue("campaignID")

	var req MutateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, err)
		return
	}

	outcome, err := h.svc.ApplyMutations(r.Context(), campaignID, mutationsFromWire(req.Mutations))
	if err != nil {
		h.fail(w, campaignError(campaignID, err))
		return
	}
	writeJSON(w, http.StatusOK, mutateToWire(outcome))
}

func (h *Handler) appendEvent(w http.ResponseWriter, r *http.Request) {
	campaignID := r.PathValue("campaignID")

	var req EventCreate
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, err)
		return
	}

	evt, err := h.svc.AppendEvent(r.Context(), campaignID, event.CreateEventInput{
		ActorID:    req.ActorID,
		Type:       req.EventType,
		Content:    req.Content,
		Visibility: req.Visibility,
	})
	if err != nil {
		h.fail(w, campaignError(campaignID, err))
		return
	}
	writeJSON(w, http.StatusOK, eventToWire(evt))
}

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	campaignID := r.PathValue("campaignID")
	query := r.URL.Query()

	events, err := h.svc.ListEvents(r.Context(), campaignID, query.Get("viewer"), query.Get("after"))
	if err != nil {
		h.fail(w, campaignError(campaignID, err))
		return
	}
	writeJSON(w, http.StatusOK, eventsToWire(events))
}

func (h *Handler) roll(w http.ResponseWriter, r *http.Request) {
	campaignID := r.PathValue("campaignID")

	var req RollRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, err)
		return
	}

	roll, err := h.svc.Roll(r.Context(), campaignID, app.RollInput{
		ActorID: req.ActorID,
		Expr:    req.Expr,
		Reason:  req.Reason,
	})
	if err != nil {
		h.fail(w, campaignError(campaignID, err))
		return
	}
	writeJSON(w, http.StatusOK, rollToWire(roll))
}

func (h *Handler) writeMemory(w http.ResponseWriter, r *http.Request) {
	campaignID := r.PathValue("campaignID")

	var req MemoryWrite
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, err)
		return
	}

	m, err := h.svc.WriteMemory(r.Context(), campaignID, memory.WriteMemoryInput{
		ActorID: req.ActorID,
		Scope:   req.Scope,
		Text:    req.Text,
		Tags:    req.Tags,
	})
	if err != nil {
		h.fail(w, campaignError(campaignID, err))
		return
	}
	writeJSON(w, http.StatusOK, memoryToWire(m))
}

func (h *Handler) readMemories(w http.ResponseWriter, r *http.Request) {
	campaignID := r.PathValue("campaignID")
	query := r.URL.Query()

	memories, err := h.svc.ReadMemories(r.Context(), campaignID, query.Get("viewer"), query.Get("scope"))
	if err != nil {
		h.fail(w, campaignError(campaignID, err))
		return
	}
	writeJSON(w, http.StatusOK, memoriesToWire(memories))
}

func (h *Handler) advanceTurn(w http.ResponseWriter, r *http.Request) {
	campaignID := r.PathValue("campaignID")

	result, err := h.svc.AdvanceTurn(r.Context(), campaignID)
	if err != nil {
		h.fail(w, campaignError(campaignID, err))
		return
	}
	writeJSON(w, http.StatusOK, turnToWire(result))
}

func (h *Handler) directorNext(w http.ResponseWriter, r *http.Request) {
	campaignID := r.PathValue("campaignID")

	var req DirectorNextRequest
	if err := decodeJSONAllowEmpty(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	if req.MaxEvents <= 0 {
		req.MaxEvents = app.DefaultMaxEvents
	}
	if req.MaxMemories <= 0 {
		req.MaxMemories = app.DefaultMaxMemories
	}

	pkg, err := h.svc.NextContext(r.Context(), campaignID, req.MaxEvents, req.MaxMemories)
	if err != nil {
		h.fail(w, campaignError(campaignID, err))
		return
	}
	writeJSON(w, http.StatusOK, directorToWire(pkg))
}
