/*
handlers.go - HTTP API handlers for the game

PURPOSE:
  Exposes the game orchestrator over REST. Handles HTTP request/response
  and JSON serialization and delegates every decision to game.Game.

ENDPOINTS:
  State:
    GET    /api/state                      Full read model
    GET    /api/ledger                     Recent ledger journal
    GET    /api/version                    Build metadata

  Actions (all respond ActionResponse):
    POST   /api/actions/work               Earn day-job income
    POST   /api/actions/found-company      Job -> company
    POST   /api/actions/found-lab          Company -> research
    POST   /api/actions/think              Manual insight click
    POST   /api/staff/{role}/hire          Hire one
    POST   /api/staff/{role}/fire          Fire one
    PUT    /api/staff/researcher/allocation
    POST   /api/products/launch            Launch next product
    POST   /api/products/marketing         Marketing campaign
    POST   /api/tech/{id}/unlock           Start research
    POST   /api/tech/{id}/work             Manual research work
    POST   /api/tech/{id}/select           Work target for its kind
    PUT    /api/tech/split                 Product share of research work
    POST   /api/hardware/upgrade           Buy next tier
    POST   /api/hardware/savings           Deposit money into savings
    PUT    /api/phase                      Jump to a phase
    POST   /api/clock/pause | /resume | /advance
    POST   /api/game/save | /load | /reset

ERROR HANDLING:
  An action that is not possible right now (insufficient funds, wrong
  phase) is 200 with ok=false. Errors are returned as JSON:
  - 400: Invalid body or value
  - 404: Unknown role or tech id
  - 500: Save backend failure

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warp/march-of-mind/game"
	"github.com/warp/march-of-mind/generic"
)

// maxAdvanceMonths bounds one offline simulation request.
const maxAdvanceMonths = 1200

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Game    *game.Game
	Store   generic.Store
	Version VersionDTO
}

func NewHandler(g *game.Game, store generic.Store, version VersionDTO) *Handler {
	return &Handler{Game: g, Store: store, Version: version}
}

// =============================================================================
// STATE HANDLERS
// =============================================================================

func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toStateDTO(h.Game.View()))
}

func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toLedgerEntryDTOs(h.Game.Journal()))
}

func (h *Handler) GetVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Version)
}

// =============================================================================
// ACTION HANDLERS
// =============================================================================

// simple adapts a no-argument action.
func (h *Handler) simple(action func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.respond(w, action())
	}
}

func (h *Handler) Hire(w http.ResponseWriter, r *http.Request) {
	ok, err := h.Game.Hire(chi.URLParam(r, "role"))
	h.respondOrError(w, ok, err)
}

func (h *Handler) Fire(w http.ResponseWriter, r *http.Request) {
	ok, err := h.Game.Fire(chi.URLParam(r, "role"))
	h.respondOrError(w, ok, err)
}

func (h *Handler) SetAllocation(w http.ResponseWriter, r *http.Request) {
	var req AllocationRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Allocation == nil {
		writeError(w, http.StatusBadRequest, "allocation is required", nil)
		return
	}
	h.respond(w, h.Game.SetAllocation(*req.Allocation))
}

func (h *Handler) UnlockTech(w http.ResponseWriter, r *http.Request) {
	ok, err := h.Game.Unlock(chi.URLParam(r, "id"))
	h.respondOrError(w, ok, err)
}

func (h *Handler) WorkTech(w http.ResponseWriter, r *http.Request) {
	var req AmountRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Amount == nil || *req.Amount < 0 {
		writeError(w, http.StatusBadRequest, "a non-negative amount is required", nil)
		return
	}
	ok, err := h.Game.ApplyWork(chi.URLParam(r, "id"), *req.Amount)
	h.respondOrError(w, ok, err)
}

func (h *Handler) SelectTech(w http.ResponseWriter, r *http.Request) {
	ok, err := h.Game.Select(chi.URLParam(r, "id"))
	h.respondOrError(w, ok, err)
}

func (h *Handler) SetWorkSplit(w http.ResponseWriter, r *http.Request) {
	var req WorkSplitRequest
	if !decode(w, r, &req) {
		return
	}
	if req.ProductShare == nil {
		writeError(w, http.StatusBadRequest, "product_share is required", nil)
		return
	}
	h.respond(w, h.Game.SetWorkSplit(*req.ProductShare))
}

func (h *Handler) DepositSavings(w http.ResponseWriter, r *http.Request) {
	var req AmountRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Amount == nil {
		writeError(w, http.StatusBadRequest, "amount is required", nil)
		return
	}
	h.respond(w, h.Game.DepositSavings(*req.Amount))
}

func (h *Handler) SetPhase(w http.ResponseWriter, r *http.Request) {
	var req PhaseRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.Game.EnterPhase(req.Phase); err != nil {
		writeGameError(w, err)
		return
	}
	h.respond(w, true)
}

func (h *Handler) Pause(w http.ResponseWriter, r *http.Request) {
	h.Game.Pause()
	h.respond(w, true)
}

func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	h.Game.Resume()
	h.respond(w, true)
}

// Advance simulates whole months immediately.
func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	var req AdvanceRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Months <= 0 || req.Months > maxAdvanceMonths {
		writeError(w, http.StatusBadRequest, "months must be within 1..1200", nil)
		return
	}
	h.respond(w, h.Game.AdvanceMonths(req.Months) == req.Months)
}

// =============================================================================
// GAME LIFECYCLE
// =============================================================================

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	if err := h.Game.SaveGame(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save game", err)
		return
	}
	h.respond(w, true)
}

func (h *Handler) Load(w http.ResponseWriter, r *http.Request) {
	found, err := h.Game.LoadGame(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load game", err)
		return
	}
	h.respond(w, found)
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.Game.ResetGame(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset game", err)
		return
	}
	h.respond(w, true)
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) respond(w http.ResponseWriter, ok bool) {
	writeJSON(w, http.StatusOK, ActionResponse{OK: ok, State: toStateDTO(h.Game.View())})
}

func (h *Handler) respondOrError(w http.ResponseWriter, ok bool, err error) {
	if err != nil {
		writeGameError(w, err)
		return
	}
	h.respond(w, ok)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeGameError maps domain errors to HTTP status codes.
func writeGameError(w http.ResponseWriter, err error) {
	var lookup *generic.LookupError
	switch {
	case errors.As(err, &lookup):
		writeError(w, http.StatusNotFound, "Not found", err)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
