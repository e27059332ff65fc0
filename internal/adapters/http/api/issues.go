// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/okian/bounty/internal/domain/model"
)

// IssuesHandler handles the issue ledger: batch appends, listing and
// resolution.
type IssuesHandler struct {
	deps Dependencies
}

// NewIssuesHandler creates a new issues handler.
func NewIssuesHandler(deps Dependencies) *IssuesHandler {
	return &IssuesHandler{deps: deps}
}

// issueInput is one open issue in a batch append.
type issueInput struct {
	IssueID uint64 `json:"issue_id"`
	Points  uint64 `json:"points"`
}

// addIssuesRequest mirrors the JSON schema for POST /events/{id}/issues.
type addIssuesRequest struct {
	RequestID string       `json:"request_id,omitempty"`
	Issues    []issueInput `json:"issues"`
}

// resolveRequest mirrors the JSON schema for POST /events/{id}/resolve.
type resolveRequest struct {
	RequestID   string `json:"request_id,omitempty"`
	IssueID     uint64 `json:"issue_id"`
	Contributor string `json:"contributor"`
}

// issueView is the read shape of a ledger entry.
type issueView struct {
	IssueID     uint64     `json:"issue_id"`
	Points      uint64     `json:"points"`
	Resolved    bool       `json:"resolved"`
	Contributor string     `json:"contributor,omitempty"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

func issueViewOf(is model.Issue) issueView {
	return issueView{
		IssueID:     is.IssueID,
		Points:      is.Points,
		Resolved:    is.Resolved,
		Contributor: is.Contributor,
		ResolvedAt:  is.ResolvedAt,
	}
}

// resolveResponse pairs the resolved issue with the credited leaderboard row.
type resolveResponse struct {
	Issue       issueView `json:"issue"`
	Contributor string    `json:"contributor"`
	Points      uint64    `json:"points"`
}

// HandleIssues handles POST (batch append) and GET (list) on
// /events/{id}/issues.
func (h *IssuesHandler) HandleIssues(w http.ResponseWriter, r *http.Request, id uint64) {
	switch r.Method {
	case http.MethodPost:
		h.handleAddIssues(w, r, id)
	case http.MethodGet:
		h.handleListIssues(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (h *IssuesHandler) handleAddIssues(w http.ResponseWriter, r *http.Request, id uint64) {
	const op = "api.add_issues"
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing_caller", NewKind(op, err))
		return
	}
	var req addIssuesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if len(req.Issues) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("empty issue batch")))
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

	batch := make([]model.Issue, len(req.Issues))
	for i, in := range req.Issues {
		batch[i] = model.Issue{IssueID: in.IssueID, Points: in.Points}
	}
	all, err := h.deps.AddIssues(r.Context(), caller, key, batch)
	if err != nil {
		if rid != "" {
			h.deps.Unrecord(r.Context(), rid)
		}
		writeStoreError(w, op, err)
		return
	}
	views := make([]issueView, len(all))
	for i, is := range all {
		views[i] = issueViewOf(is)
	}
	writeJSON(w, http.StatusCreated, views)
}

func (h *IssuesHandler) handleListIssues(w http.ResponseWriter, r *http.Request, id uint64) {
	const op = "api.list_issues"
	key, err := keyFrom(r, id, "")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, err))
		return
	}
	issues, err := h.deps.Issues(r.Context(), key)
	if err != nil {
		writeStoreError(w, op, err)
		return
	}
	views := make([]issueView, len(issues))
	for i, is := range issues {
		views[i] = issueViewOf(is)
	}
	writeJSON(w, http.StatusOK, views)
}

// HandleResolve handles POST /events/{id}/resolve requests.
func (h *IssuesHandler) HandleResolve(w http.ResponseWriter, r *http.Request, id uint64) {
	const op = "api.resolve_issue"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing_caller", NewKind(op, err))
		return
	}
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.Contributor) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing contributor")))
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

	issue, entry, err := h.deps.ResolveIssue(r.Context(), caller, key, req.IssueID, req.Contributor)
	if err != nil {
		if rid != "" {
			h.deps.Unrecord(r.Context(), rid)
		}
		writeStoreError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, resolveResponse{
		Issue:       issueViewOf(issue),
		Contributor: entry.Contributor,
		Points:      entry.Points,
	})
}
