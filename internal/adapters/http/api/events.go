// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/okian/bounty/internal/adapters/repository"
	"github.com/okian/bounty/internal/domain/model"
)

// EventsHandler handles event creation and event record reads.
type EventsHandler struct {
	deps Dependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps Dependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// createEventRequest mirrors the JSON schema for POST /events.
type createEventRequest struct {
	RequestID     string   `json:"request_id,omitempty"`
	ID            uint64   `json:"id"`
	Name          string   `json:"name"`
	StartTime     string   `json:"start_time"`
	EndTime       string   `json:"end_time"`
	Split         []uint16 `json:"split"`
	RewardAmount  uint64   `json:"reward_amount"`
	RewardAssetID string   `json:"reward_asset_id,omitempty"`
}

func (e createEventRequest) validate() error {
	switch {
	case strings.TrimSpace(e.Name) == "":
		return errors.New("missing name")
	case strings.TrimSpace(e.StartTime) == "":
		return errors.New("missing start_time")
	case strings.TrimSpace(e.EndTime) == "":
		return errors.New("missing end_time")
	case len(e.Split) != 3:
		return errors.New("split must list exactly three percentages")
	}
	if _, err := time.Parse(time.RFC3339, e.StartTime); err != nil {
		return errors.New("invalid start_time; must be RFC3339")
	}
	if _, err := time.Parse(time.RFC3339, e.EndTime); err != nil {
		return errors.New("invalid end_time; must be RFC3339")
	}
	return nil
}

// eventView is the read shape of an event record.
type eventView struct {
	ID            uint64    `json:"id"`
	Name          string    `json:"name"`
	Maintainer    string    `json:"maintainer"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Split         [3]uint16 `json:"split"`
	RewardAmount  uint64    `json:"reward_amount"`
	RewardAssetID string    `json:"reward_asset_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func viewOf(ev model.Event) eventView {
	return eventView{
		ID:            ev.ID,
		Name:          ev.Name,
		Maintainer:    ev.Maintainer,
		StartTime:     ev.StartTime,
		EndTime:       ev.EndTime,
		Split:         ev.SplitPercentages,
		RewardAmount:  ev.TotalRewardAmount,
		RewardAssetID: ev.RewardAssetID,
		CreatedAt:     ev.CreatedAt,
	}
}

// eventResponse pairs the event record with its escrow state.
type eventResponse struct {
	Event eventView `json:"event"`
	Vault vaultView `json:"vault"`
}

type vaultView struct {
	Account   string `json:"account"`
	Balance   uint64 `json:"balance"`
	AssetHeld string `json:"asset_held,omitempty"`
}

// HandlePostEvent handles POST /events requests. The X-Caller identity
// becomes the event maintainer.
func (h *EventsHandler) HandlePostEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_event"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing_caller", NewKind(op, err))
		return
	}
	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	// Idempotency check - mark as seen first.
	rid := requestID(r, req.RequestID)
	if rid != "" && h.deps.SeenAndRecord(r.Context(), rid) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	start, _ := time.Parse(time.RFC3339, req.StartTime)
	end, _ := time.Parse(time.RFC3339, req.EndTime)
	ev, err := h.deps.CreateEvent(r.Context(), repository.CreateEventParams{
		ID:               req.ID,
		Name:             req.Name,
		StartTime:        start,
		EndTime:          end,
		Maintainer:       caller,
		SplitPercentages: [3]uint16{req.Split[0], req.Split[1], req.Split[2]},
		RewardAmount:     req.RewardAmount,
		RewardAssetID:    req.RewardAssetID,
	})
	if err != nil {
		// Rollback the "seen" status so the request can be retried.
		if rid != "" {
			h.deps.Unrecord(r.Context(), rid)
		}
		writeStoreError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewOf(ev))
}

// HandleGetEvent handles GET /events/{id}?maintainer=&name= requests.
func (h *EventsHandler) HandleGetEvent(w http.ResponseWriter, r *http.Request, id uint64) {
	const op = "api.get_event"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	key, err := keyFrom(r, id, "")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, err))
		return
	}
	ev, err := h.deps.Event(r.Context(), key)
	if err != nil {
		writeStoreError(w, op, err)
		return
	}
	vault, err := h.deps.Vault(r.Context(), key)
	if err != nil {
		writeStoreError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, eventResponse{
		Event: viewOf(ev),
		Vault: vaultView{Account: vault.Account, Balance: vault.Balance, AssetHeld: vault.AssetHeld},
	})
}
