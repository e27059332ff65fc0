package bank

import "errors"

// Sentinel kinds for bank errors.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrSelfTransfer      = errors.New("transfer to self")
	ErrUnknownAsset      = errors.New("unknown asset")
	ErrNotAssetOwner     = errors.New("not the asset owner")
)
