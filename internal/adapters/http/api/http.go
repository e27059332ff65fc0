// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/bounty/internal/adapters/repository"
	"github.com/okian/bounty/internal/domain/dedupe"
	"github.com/okian/bounty/internal/domain/model"
	"github.com/okian/bounty/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Mutations. The caller string is the trusted identity from X-Caller.
	CreateEvent(ctx context.Context, p repository.CreateEventParams) (model.Event, error)
	AddIssues(ctx context.Context, caller string, key model.EventKey, issues []model.Issue) ([]model.Issue, error)
	ResolveIssue(ctx context.Context, caller string, key model.EventKey, issueID uint64, contributor string) (model.Issue, model.Entry, error)
	FinishEvent(ctx context.Context, caller string, key model.EventKey) (model.Winners, error)
	ClaimRewards(ctx context.Context, caller string, key model.EventKey) (model.Receipt, error)

	// Reads expose event, ledger, leaderboard and settlement data.
	Event(ctx context.Context, key model.EventKey) (model.Event, error)
	Issues(ctx context.Context, key model.EventKey) ([]model.Issue, error)
	Leaderboard(ctx context.Context, key model.EventKey) ([]types.Entry, uint64, error)
	Winners(ctx context.Context, key model.EventKey) (model.Winners, error)
	Vault(ctx context.Context, key model.EventKey) (model.Vault, error)
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	eventsHandler      *EventsHandler
	issuesHandler      *IssuesHandler
	settlementHandler  *SettlementHandler
	leaderboardHandler *LeaderboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLeaderboardLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		eventsHandler:      NewEventsHandler(deps),
		issuesHandler:      NewIssuesHandler(deps),
		settlementHandler:  NewSettlementHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLeaderboardLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/events", MetricsMiddleware(s.eventsHandler.HandlePostEvent, "events"))
	mux.HandleFunc("/events/", MetricsMiddleware(s.routeEvent, "events"))
}

// routeEvent dispatches /events/{id} and /events/{id}/{action} paths.
func (s *Server) routeEvent(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/events/")
	idStr, action, _ := strings.Cut(rest, "/")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || strings.Contains(action, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	switch action {
	case "":
		s.eventsHandler.HandleGetEvent(w, r, id)
	case "issues":
		s.issuesHandler.HandleIssues(w, r, id)
	case "resolve":
		s.issuesHandler.HandleResolve(w, r, id)
	case "finish":
		s.settlementHandler.HandleFinish(w, r, id)
	case "claims":
		s.settlementHandler.HandleClaim(w, r, id)
	case "leaderboard":
		s.leaderboardHandler.HandleGetLeaderboard(w, r, id)
	case "winners":
		s.leaderboardHandler.HandleGetWinners(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeStoreError translates a store error to its stable code and status.
func writeStoreError(w http.ResponseWriter, op string, err error) {
	status, code := statusFor(err)
	writeError(w, status, code, Wrap(op, err))
}

// callerFrom extracts the trusted identity header. The header is a stand-in
// for a real identity subsystem.
func callerFrom(r *http.Request) (string, error) {
	caller := strings.TrimSpace(r.Header.Get("X-Caller"))
	if caller == "" {
		return "", ErrMissingCaller
	}
	return caller, nil
}

// keyFrom assembles the event addressing triple from the path id and query
// parameters. When the maintainer is implicit (mutations by the maintainer),
// pass it in caller and leave the query parameter unset.
func keyFrom(r *http.Request, id uint64, caller string) (model.EventKey, error) {
	q := r.URL.Query()
	maintainer := strings.TrimSpace(q.Get("maintainer"))
	if maintainer == "" {
		maintainer = caller
	}
	name := strings.TrimSpace(q.Get("name"))
	if maintainer == "" || name == "" {
		return model.EventKey{}, ErrBadRequest
	}
	return model.EventKey{Maintainer: maintainer, ID: id, Name: name}, nil
}

// requestID returns the optional idempotency id of a mutating request.
func requestID(r *http.Request, bodyID string) string {
	if h := strings.TrimSpace(r.Header.Get("X-Request-Id")); h != "" {
		return h
	}
	return strings.TrimSpace(bodyID)
}
