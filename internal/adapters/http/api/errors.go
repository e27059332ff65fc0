package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/bounty/internal/adapters/bank"
	"github.com/okian/bounty/internal/adapters/repository"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrBackpressure  = errors.New("backpressure")
	ErrMissingCaller = errors.New("missing X-Caller header")
)

// NewKind tags a sentinel with the failing operation.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// WrapKind tags a sentinel with the failing operation plus its cause.
func WrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// Wrap tags an error with the failing operation.
func Wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

// statusMapping pairs a store sentinel with its HTTP translation.
type statusMapping struct {
	kind   error
	status int
	code   string
}

// storeStatus is ordered; the first errors.Is match wins.
var storeStatus = []statusMapping{
	{repository.ErrEventExists, http.StatusConflict, "event_exists"},
	{repository.ErrEventNotFound, http.StatusNotFound, "event_not_found"},
	{repository.ErrInvalidRewardSplit, http.StatusBadRequest, "invalid_reward_split"},
	{repository.ErrInvalidSchedule, http.StatusBadRequest, "invalid_schedule"},
	{repository.ErrInvalidIssueInput, http.StatusBadRequest, "invalid_issue_input"},
	{repository.ErrDuplicateIssueID, http.StatusConflict, "duplicate_issue_id"},
	{repository.ErrUnauthorizedMaintainer, http.StatusForbidden, "unauthorized_maintainer"},
	{repository.ErrInvalidMaintainer, http.StatusBadRequest, "invalid_maintainer"},
	{repository.ErrInvalidIssueID, http.StatusNotFound, "invalid_issue_id"},
	{repository.ErrEventNotEnded, http.StatusConflict, "event_not_ended"},
	{repository.ErrNotEnoughContributors, http.StatusConflict, "not_enough_contributors"},
	{repository.ErrSettlementLocked, http.StatusConflict, "settlement_locked"},
	{repository.ErrNotSettled, http.StatusConflict, "not_settled"},
	{repository.ErrNotAWinner, http.StatusForbidden, "not_a_winner"},
	{repository.ErrAlreadyClaimed, http.StatusConflict, "already_claimed"},
	{repository.ErrInsufficientVaultBalance, http.StatusConflict, "insufficient_vault_balance"},
	{bank.ErrInsufficientFunds, http.StatusConflict, "insufficient_funds"},
	{bank.ErrUnknownAsset, http.StatusBadRequest, "unknown_asset"},
	{bank.ErrNotAssetOwner, http.StatusConflict, "not_asset_owner"},
}

// statusFor translates a store error into an HTTP status and a stable
// machine-readable code.
func statusFor(err error) (int, string) {
	for _, m := range storeStatus {
		if errors.Is(err, m.kind) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "internal_error"
}
