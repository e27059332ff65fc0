// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/okian/bounty/internal/domain/model"
	"github.com/okian/bounty/internal/domain/types"
)

// timeFormat renders settlement and claim timestamps.
const timeFormat = time.RFC3339Nano

// SettlementHandler handles event settlement and reward claims.
type SettlementHandler struct {
	deps Dependencies
}

// NewSettlementHandler creates a new settlement handler.
func NewSettlementHandler(deps Dependencies) *SettlementHandler {
	return &SettlementHandler{deps: deps}
}

// settlementRequest is the optional body of finish and claim requests.
type settlementRequest struct {
	RequestID string `json:"request_id,omitempty"`
}

func winnersViewOf(w model.Winners) types.Winners {
	return types.Winners{
		Winner:     w.Winner,
		RunnerUp:   w.RunnerUp,
		ThirdPlace: w.ThirdPlace,
		SettledAt:  w.SettledAt.UTC().Format(timeFormat),
		Claimed:    w.Claimed[:],
	}
}

func receiptViewOf(rc model.Receipt) types.Receipt {
	return types.Receipt{
		ReceiptID: rc.ReceiptID,
		Claimant:  rc.Claimant,
		Rank:      rc.Rank,
		Payout:    rc.Payout,
		AssetID:   rc.AssetID,
		ClaimedAt: rc.ClaimedAt.UTC().Format(timeFormat),
	}
}

// decodeOptionalBody tolerates an empty body; finish and claims carry no
// required fields.
func decodeOptionalBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || err == io.EOF {
		return nil
	}
	return err
}

// HandleFinish handles POST /events/{id}/finish requests.
func (h *SettlementHandler) HandleFinish(w http.ResponseWriter, r *http.Request, id uint64) {
	const op = "api.finish_event"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing_caller", NewKind(op, err))
		return
	}
	var req settlementRequest
	if err := decodeOptionalBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	key, err := keyFrom(r, id, caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, err))
		return
	}

	rid := requestID(r, req.RequestID)
	if rid != "" && h.deps.SeenAndRecord(r.Context(), rid) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	winners, err := h.deps.FinishEvent(r.Context(), caller, key)
	if err != nil {
		if rid != "" {
			h.deps.Unrecord(r.Context(), rid)
		}
		writeStoreError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, winnersViewOf(winners))
}

// HandleClaim handles POST /events/{id}/claims requests. The X-Caller
// identity is the claimant; the maintainer arrives as a query parameter.
func (h *SettlementHandler) HandleClaim(w http.ResponseWriter, r *http.Request, id uint64) {
	const op = "api.claim_rewards"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing_caller", NewKind(op, err))
		return
	}
	var req settlementRequest
	if err := decodeOptionalBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	// Claimants are rarely the maintainer, so the key needs the explicit
	// maintainer query parameter.
	key, err := keyFrom(r, id, "")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, err))
		return
	}

	rid := requestID(r, req.RequestID)
	if rid != "" && h.deps.SeenAndRecord(r.Context(), rid) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	receipt, err := h.deps.ClaimRewards(r.Context(), caller, key)
	if err != nil {
		if rid != "" {
			h.deps.Unrecord(r.Context(), rid)
		}
		writeStoreError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, receiptViewOf(receipt))
}
