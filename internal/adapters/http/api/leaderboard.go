// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"
)

// LeaderboardHandler handles leaderboard and winners reads.
type LeaderboardHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps Dependencies, maxLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// leaderboardResponse pairs the ranked rows with the points accumulated
// across the whole event.
type leaderboardResponse struct {
	Entries     []Entry `json:"entries"`
	TotalPoints uint64  `json:"total_points"`
}

// HandleGetLeaderboard handles GET /events/{id}/leaderboard?limit=N requests.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request, id uint64) {
	const op = "api.get_leaderboard"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	key, err := keyFrom(r, id, "")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, err))
		return
	}
	n := h.maxLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err = strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		if n > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
			return
		}
	}
	entries, total, err := h.deps.Leaderboard(r.Context(), key)
	if err != nil {
		writeStoreError(w, op, err)
		return
	}
	if len(entries) > n {
		entries = entries[:n]
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{Entries: entries, TotalPoints: total})
}

// HandleGetWinners handles GET /events/{id}/winners requests.
func (h *LeaderboardHandler) HandleGetWinners(w http.ResponseWriter, r *http.Request, id uint64) {
	const op = "api.get_winners"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	key, err := keyFrom(r, id, "")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, err))
		return
	}
	winners, err := h.deps.Winners(r.Context(), key)
	if err != nil {
		writeStoreError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, winnersViewOf(winners))
}
