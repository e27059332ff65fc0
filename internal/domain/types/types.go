// Package types contains common read shapes used across the application
package types

// Entry represents a ranked leaderboard row
type Entry struct {
	Rank        int    `json:"rank"`
	Contributor string `json:"contributor"`
	Points      uint64 `json:"points"`
}

// Winners mirrors the settlement snapshot returned by winners queries
type Winners struct {
	Winner     string `json:"winner"`
	RunnerUp   string `json:"runner_up"`
	ThirdPlace string `json:"third_place"`
	SettledAt  string `json:"settled_at"`
	Claimed    []bool `json:"claimed"`
}

// Receipt mirrors the payout receipt returned by successful claims
type Receipt struct {
	ReceiptID string `json:"receipt_id"`
	Claimant  string `json:"claimant"`
	Rank      int    `json:"rank"`
	Payout    uint64 `json:"payout"`
	AssetID   string `json:"asset_id,omitempty"`
	ClaimedAt string `json:"claimed_at"`
}
