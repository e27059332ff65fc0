// Package bank provides the currency- and asset-transfer capabilities the
// core consumes. The core never moves value itself: it asks these interfaces,
// and in production they would sit in front of a real settlement system. The
// in-memory implementation here is the deterministic stand-in the service and
// tests run against.
package bank

import (
	"context"
	"fmt"
	"sync"
)

// Ledger moves currency between named accounts.
type Ledger interface {
	// Balance returns the current balance of account, creating it with the
	// configured opening balance if it does not exist yet.
	Balance(ctx context.Context, account string) (uint64, error)

	// Transfer moves amount from one account to another. It either fully
	// applies or fails with no effect.
	Transfer(ctx context.Context, from, to string, amount uint64) error
}

// AssetRegistry tracks ownership of collectible asset units.
type AssetRegistry interface {
	// OwnerOf returns the current owner of the asset.
	OwnerOf(ctx context.Context, assetID string) (string, error)

	// TransferAsset moves the asset from its current owner to another
	// account. The from account must actually own the asset.
	TransferAsset(ctx context.Context, assetID, from, to string) error
}

// InMemoryBank implements Ledger and AssetRegistry with plain maps. Accounts
// are created lazily with the opening balance; assets must be registered
// before they can move.
type InMemoryBank struct {
	mu             sync.Mutex
	balances       map[string]uint64
	assets         map[string]string // assetID -> owner
	openingBalance uint64
}

// Option applies a configuration option to the InMemoryBank.
type Option func(*InMemoryBank)

// WithOpeningBalance sets the balance lazily-created accounts start with.
func WithOpeningBalance(amount uint64) Option {
	return func(b *InMemoryBank) {
		b.openingBalance = amount
	}
}

// WithAccount seeds an account with an explicit balance.
func WithAccount(account string, balance uint64) Option {
	return func(b *InMemoryBank) {
		b.balances[account] = balance
	}
}

// WithAsset registers a collectible unit under an owner.
func WithAsset(assetID, owner string) Option {
	return func(b *InMemoryBank) {
		b.assets[assetID] = owner
	}
}

// NewInMemoryBank creates a bank with configuration options.
func NewInMemoryBank(opts ...Option) *InMemoryBank {
	b := &InMemoryBank{
		balances: make(map[string]uint64),
		assets:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// account returns the balance entry for name, creating it lazily.
// Callers must hold b.mu.
func (b *InMemoryBank) account(name string) uint64 {
	bal, ok := b.balances[name]
	if !ok {
		bal = b.openingBalance
		b.balances[name] = bal
	}
	return bal
}

// Balance returns the current balance of account.
func (b *InMemoryBank) Balance(_ context.Context, account string) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.account(account), nil
}

// Transfer moves amount between accounts, all or nothing.
func (b *InMemoryBank) Transfer(_ context.Context, from, to string, amount uint64) error {
	if from == to {
		return fmt.Errorf("%w: %q to itself", ErrSelfTransfer, from)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	fromBal := b.account(from)
	if fromBal < amount {
		return fmt.Errorf("%w: account %q holds %d, needs %d", ErrInsufficientFunds, from, fromBal, amount)
	}
	b.balances[from] = fromBal - amount
	b.balances[to] = b.account(to) + amount
	return nil
}

// OwnerOf returns the current owner of assetID.
func (b *InMemoryBank) OwnerOf(_ context.Context, assetID string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	owner, ok := b.assets[assetID]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAsset, assetID)
	}
	return owner, nil
}

// TransferAsset moves assetID from its owner to another account.
func (b *InMemoryBank) TransferAsset(_ context.Context, assetID, from, to string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	owner, ok := b.assets[assetID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAsset, assetID)
	}
	if owner != from {
		return fmt.Errorf("%w: %q is owned by %q, not %q", ErrNotAssetOwner, assetID, owner, from)
	}
	b.assets[assetID] = to
	return nil
}
